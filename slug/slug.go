// Package slug derives icon identifiers from file names.
package slug

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var invalidRunRegexp = regexp.MustCompile(`[^a-z0-9\-]+`)

// Make converts s into a lowercase, hyphen-separated identifier.
// Diacritics are folded ("Café" becomes "cafe"), any run of characters
// outside [a-z0-9-] becomes a single dash, dash runs are collapsed and
// leading/trailing dashes are trimmed. The result may be empty.
func Make(s string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), s)
	if err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	s = invalidRunRegexp.ReplaceAllString(s, "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// FromPath derives the slug of the icon file at path inside root. Nested
// directories become part of the slug, so "arrows/Left.svg" yields
// "arrows-left".
func FromPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	if ext := filepath.Ext(rel); strings.EqualFold(ext, ".svg") {
		rel = rel[:len(rel)-len(ext)]
	}
	rel = strings.ReplaceAll(filepath.ToSlash(rel), "/", "-")
	return Make(rel)
}
