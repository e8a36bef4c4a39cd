package render

import (
	"sort"
	"strings"

	"github.com/njchilds90/svgsanitizer/slug"
	"golang.org/x/net/html"
)

// Render returns icon as inline SVG inside a wrapper element. tag must be
// "span", "i" or "div"; anything else becomes "span". attrs are added to
// the wrapper: "class" is merged with the icon classes, event handlers and
// malformed names are dropped. The markup is sanitized on every call.
// Render returns "" when the library or icon is unknown or the icon's
// markup does not survive sanitization.
func (r *Registry) Render(icon Icon, attrs map[string]string, tag string) string {
	lib, ok := r.lookup(icon.Library)
	if !ok {
		return ""
	}
	iconSlug := extractSlug(icon.Value, lib.Prefix)
	if iconSlug == "" {
		return ""
	}
	entry, ok := r.entries(lib)[iconSlug]
	if !ok {
		return ""
	}
	svg := entry.Sanitized(r.sanitizer)
	if svg == "" {
		return ""
	}

	tag = strings.ToLower(strings.TrimSpace(tag))
	if !wrapperTags[tag] {
		tag = "span"
	}

	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tag)
	for _, a := range wrapperAttrs(lib, iconSlug, attrs) {
		b.WriteByte(' ')
		b.WriteString(a[0])
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a[1]))
		b.WriteByte('"')
	}
	b.WriteByte('>')
	b.WriteString(svg)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
	return b.String()
}

// extractSlug takes the last whitespace-separated token of value, strips
// the library prefix and normalizes the rest.
func extractSlug(value, prefix string) string {
	fields := strings.Fields(strings.ToLower(value))
	if len(fields) == 0 {
		return ""
	}
	last := fields[len(fields)-1]
	if p := strings.ToLower(prefix); p != "" && strings.HasPrefix(last, p) {
		last = last[len(p):]
	}
	return slug.Make(last)
}

// wrapperAttrs returns the wrapper's attributes in output order: class,
// data-spectre-library, then caller attributes sorted by name.
func wrapperAttrs(lib *library, iconSlug string, attrs map[string]string) [][2]string {
	classes := []string{lib.Prefix + iconSlug}
	classes = append(classes, strings.Fields(attrs["class"])...)
	classes = append(classes, "spectre-icon--rendered", "spectre-icon--"+lib.Name)
	if lib.Style != "" {
		classes = append(classes, "spectre-icon--style-"+lib.Style)
	}

	out := [][2]string{
		{"class", strings.Join(unique(classes), " ")},
		{"data-spectre-library", lib.Name},
	}

	names := make([]string, 0, len(attrs))
	for name := range attrs {
		lower := strings.ToLower(name)
		if lower == "class" || lower == "data-spectre-library" || strings.HasPrefix(lower, "on") {
			continue
		}
		if !attrNameRegexp.MatchString(name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out = append(out, [2]string{name, attrs[name]})
	}
	return out
}

func unique(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
