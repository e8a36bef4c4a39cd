package svgsanitizer

import (
	"regexp"
	"strings"
)

const (
	svgNamespace   = "http://www.w3.org/2000/svg"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
	xmlNamespace   = "http://www.w3.org/XML/1998/namespace"
)

// defaultElements lists the SVG elements kept by DefaultPolicy and the
// attributes allowed on each. The "*" entry applies to every element.
// Entries ending in "*" match any attribute with that prefix.
var defaultElements = map[string][]string{
	"*": {
		"id", "class", "role", "focusable",
		"aria-hidden", "aria-label", "aria-labelledby", "aria-describedby",
		"fill", "fill-opacity", "fill-rule",
		"stroke", "stroke-width", "stroke-linecap", "stroke-linejoin",
		"stroke-miterlimit", "stroke-dasharray", "stroke-dashoffset", "stroke-opacity",
		"opacity", "color", "transform", "display", "visibility",
		"clip-path", "clip-rule", "mask", "vector-effect", "shape-rendering",
		"data-*",
	},
	"svg": {
		"xmlns", "xmlns:xlink", "xml:space", "version",
		"viewBox", "preserveAspectRatio", "width", "height", "x", "y",
	},
	"g":        {},
	"defs":     {},
	"title":    {},
	"desc":     {},
	"path":     {"d", "pathLength"},
	"circle":   {"cx", "cy", "r", "pathLength"},
	"ellipse":  {"cx", "cy", "rx", "ry", "pathLength"},
	"rect":     {"x", "y", "width", "height", "rx", "ry", "pathLength"},
	"line":     {"x1", "y1", "x2", "y2", "pathLength"},
	"polyline": {"points", "pathLength"},
	"polygon":  {"points", "pathLength"},
	"symbol":   {"viewBox", "preserveAspectRatio", "width", "height", "x", "y"},
	"use":      {"x", "y", "width", "height"},
	"clipPath": {"clipPathUnits"},
	"mask":     {"x", "y", "width", "height", "maskUnits", "maskContentUnits"},
	"linearGradient": {
		"x1", "y1", "x2", "y2",
		"gradientUnits", "gradientTransform", "spreadMethod",
	},
	"radialGradient": {
		"cx", "cy", "r", "fx", "fy", "fr",
		"gradientUnits", "gradientTransform", "spreadMethod",
	},
	"stop": {"offset", "stop-color", "stop-opacity"},
}

// forbiddenElements are never kept, even when a custom Policy lists them.
// Lookups use lowercase local names.
var forbiddenElements = map[string]bool{
	"script":           true,
	"foreignobject":    true,
	"iframe":           true,
	"object":           true,
	"embed":            true,
	"audio":            true,
	"video":            true,
	"canvas":           true,
	"style":            true,
	"image":            true,
	"feimage":          true,
	"a":                true,
	"animate":          true,
	"animatemotion":    true,
	"animatetransform": true,
	"set":              true,
	"handler":          true,
	"listener":         true,
}

// forbiddenAttributes are never kept, even when a custom Policy lists them.
var forbiddenAttributes = map[string]bool{
	"style":      true,
	"href":       true,
	"xlink:href": true,
	"src":        true,
}

// disallowedSchemes are rejected anywhere in a normalized attribute value.
var disallowedSchemes = []string{"javascript:", "data:", "vbscript:"}

var (
	fragmentRefRegexp   = regexp.MustCompile(`^#[A-Za-z][\w\-]*$`)
	prefixSuffixRegexp  = regexp.MustCompile(`^[a-z0-9_\-]+$`)
	embeddedEventRegexp = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
)

// elementRule is the compiled form of one AllowedElements entry.
type elementRule struct {
	name  string // canonical element name, e.g. "linearGradient"
	attrs attrTable
}

// attrTable resolves attribute names case-insensitively.
type attrTable struct {
	exact    map[string]string
	prefixes []string
}

func newAttrTable(names []string) attrTable {
	t := attrTable{exact: make(map[string]string, len(names))}
	for _, name := range names {
		lower := strings.ToLower(name)
		if strings.HasSuffix(lower, "*") {
			if prefix := strings.TrimSuffix(lower, "*"); prefix != "" {
				t.prefixes = append(t.prefixes, prefix)
			}
			continue
		}
		if forbiddenAttributes[lower] || strings.HasPrefix(lower, "on") {
			continue
		}
		t.exact[lower] = name
	}
	return t
}

// lookup returns the canonical spelling of name, if allowed. Forbidden
// and event handler names never match a prefix.
func (t attrTable) lookup(lower string) (string, bool) {
	if name, ok := t.exact[lower]; ok {
		return name, true
	}
	if forbiddenAttributes[lower] || strings.HasPrefix(lower, "on") {
		return "", false
	}
	for _, prefix := range t.prefixes {
		if strings.HasPrefix(lower, prefix) && prefixSuffixRegexp.MatchString(lower[len(prefix):]) {
			return lower, true
		}
	}
	return "", false
}

// AllowedElements returns a copy of the element and attribute table used
// by DefaultPolicy.
func AllowedElements() map[string][]string {
	m := make(map[string][]string, len(defaultElements))
	for k, v := range defaultElements {
		m[k] = append([]string(nil), v...)
	}
	return m
}
