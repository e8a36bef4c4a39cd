package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/njchilds90/svgsanitizer"
	"github.com/njchilds90/svgsanitizer/slug"
	"github.com/tidwall/gjson"
)

// ErrInvalidManifest is returned for data that is not a JSON object or
// array.
var ErrInvalidManifest = errors.New("invalid manifest")

// bodyWrapperStart opens the default 24x24 stroke icon used for entries
// that carry only inner markup.
const bodyWrapperStart = `<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24" ` +
	`fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round">`

// Entry is one icon read from a manifest. Exactly one of SVG and Body is
// normally set; neither is trusted.
type Entry struct {
	Slug string
	SVG  string
	Body string
}

// Markup returns the entry as a complete SVG document: SVG when present,
// otherwise Body wrapped in the default icon element.
func (e Entry) Markup() string {
	if e.SVG != "" {
		return e.SVG
	}
	if e.Body != "" {
		return bodyWrapperStart + e.Body + "</svg>"
	}
	return ""
}

// Sanitized returns the entry's markup cleaned by s. Nil s means the
// default policy.
func (e Entry) Sanitized(s svgsanitizer.Sanitizer) string {
	markup := e.Markup()
	if markup == "" {
		return ""
	}
	if s == nil {
		return svgsanitizer.Sanitize(markup)
	}
	return s.Sanitize(markup)
}

// Load reads and parses the manifest file at path.
func Load(path string) (map[string]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return Parse(data)
}

// Parse decodes manifest JSON. Three layouts are accepted:
//
//	{"icons": {"arrow-right": "<svg…>", "x": {"svg": "<svg…>"}}}
//	{"arrow-right": "<svg…>", …}
//	[{"slug": "arrow-right", "body": "<path…/>"}, …]
//
// The "icons" wrapper may also hold a list. Slugs are normalized; entries
// with an empty slug or without string svg/body markup are skipped.
func Parse(data []byte) (map[string]Entry, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidManifest)
	}
	root := gjson.ParseBytes(data)
	if icons := root.Get("icons"); root.IsObject() && (icons.IsObject() || icons.IsArray()) {
		root = icons
	}

	entries := make(map[string]Entry)
	switch {
	case root.IsObject():
		root.ForEach(func(key, value gjson.Result) bool {
			if e, ok := entryFrom(key.String(), value); ok {
				entries[e.Slug] = e
			}
			return true
		})
	case root.IsArray():
		root.ForEach(func(_, value gjson.Result) bool {
			if !value.IsObject() {
				return true
			}
			if e, ok := entryFrom(value.Get("slug").String(), value); ok {
				entries[e.Slug] = e
			}
			return true
		})
	default:
		return nil, fmt.Errorf("%w: expected object or array", ErrInvalidManifest)
	}
	return entries, nil
}

func entryFrom(rawSlug string, value gjson.Result) (Entry, bool) {
	e := Entry{Slug: slug.Make(rawSlug)}
	if e.Slug == "" {
		return Entry{}, false
	}
	switch {
	case value.Type == gjson.String:
		e.SVG = value.String()
	case value.IsObject():
		if v := value.Get("svg"); v.Type == gjson.String {
			e.SVG = v.String()
		}
		if v := value.Get("body"); v.Type == gjson.String {
			e.Body = v.String()
		}
	}
	if strings.TrimSpace(e.SVG) == "" && strings.TrimSpace(e.Body) == "" {
		return Entry{}, false
	}
	return e, true
}
