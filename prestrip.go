package svgsanitizer

import (
	"regexp"
)

// svgSpanRegexp matches the first <svg ...>...</svg> span. RE2 keeps the
// match linear in the input length.
var svgSpanRegexp = regexp.MustCompile(`(?i)<svg[\s>/][\s\S]*?</svg\s*>`)

var commentRegexp = regexp.MustCompile(`<!--[\s\S]*?-->`)

// containerTags are removed at string level before parsing. The tree walk
// removes them again; this pass only covers parsers that might be lenient
// about malformed nesting.
var containerTags = []string{
	"script", "foreignObject", "iframe", "object", "embed", "audio", "video", "canvas",
}

var (
	containerBlockRegexps = compileBlockRegexps(containerTags)
	containerTagRegexp    = regexp.MustCompile(`(?i)</?(?:script|foreignobject|iframe|object|embed|audio|video|canvas)\b[^>]*>`)

	eventDoubleQuotedRegexp = regexp.MustCompile(`(?i)\son[a-z]+\s*=\s*"[^"]*"`)
	eventSingleQuotedRegexp = regexp.MustCompile(`(?i)\son[a-z]+\s*=\s*'[^']*'`)
	eventUnquotedRegexp     = regexp.MustCompile(`(?i)\son[a-z]+\s*=\s*[^\s"'>]+`)

	doctypeRegexp = regexp.MustCompile(`(?is)<!DOCTYPE[^\[>]*(?:\[.*?\])?\s*>`)
	entityRegexp  = regexp.MustCompile(`(?is)<!ENTITY[^>]*>`)
)

// compileBlockRegexps builds one open-to-close pattern per tag; RE2 has
// no backreferences.
func compileBlockRegexps(tags []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(tags))
	for _, tag := range tags {
		res = append(res, regexp.MustCompile(`(?is)<`+tag+`\b[^>]*>.*?</`+tag+`\s*>`))
	}
	return res
}

// extractSVG returns the first <svg>...</svg> span of s that is not
// inside a comment.
func extractSVG(s string) (string, bool) {
	span := svgSpanRegexp.FindString(commentRegexp.ReplaceAllString(s, ""))
	return span, span != ""
}

// preStrip removes script-capable containers, inline event handlers and
// DTD declarations. It repeats until the string stops changing so that a
// removal cannot splice a new match together.
func preStrip(s string) string {
	for {
		next := preStripOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func preStripOnce(s string) string {
	s = doctypeRegexp.ReplaceAllString(s, "")
	s = entityRegexp.ReplaceAllString(s, "")
	for _, re := range containerBlockRegexps {
		s = re.ReplaceAllString(s, "")
	}
	s = containerTagRegexp.ReplaceAllString(s, "")
	s = eventDoubleQuotedRegexp.ReplaceAllString(s, "")
	s = eventSingleQuotedRegexp.ReplaceAllString(s, "")
	s = eventUnquotedRegexp.ReplaceAllString(s, "")
	return s
}
