package svgsanitizer

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// safeValue reports whether an attribute value is free of script schemes,
// external url() references and embedded event handlers.
func safeValue(raw string) bool {
	if embeddedEventRegexp.MatchString(raw) {
		return false
	}
	v := normalizeValue(raw)
	for _, scheme := range disallowedSchemes {
		if strings.Contains(v, scheme) {
			return false
		}
	}
	return localURLRefs(v)
}

// normalizeValue decodes HTML character references, which a browser may
// apply when the markup is inlined into an HTML page, then removes
// whitespace, control and format characters and lowercases the result so
// that "java&#x09;script:" and "JaVaScRiPt:" compare equal.
func normalizeValue(raw string) string {
	decoded := html.UnescapeString(raw)
	decoded = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, decoded)
	return strings.ToLower(decoded)
}

// localURLRefs reports whether every url(...) in a normalized value points
// at a same-document fragment.
func localURLRefs(v string) bool {
	for {
		i := strings.Index(v, "url(")
		if i < 0 {
			return true
		}
		v = v[i+len("url("):]
		end := strings.IndexByte(v, ')')
		if end < 0 {
			return false
		}
		target := strings.Trim(v[:end], `"'`)
		if !strings.HasPrefix(target, "#") {
			return false
		}
		v = v[end+1:]
	}
}
