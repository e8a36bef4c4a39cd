// Package svgsanitizer reduces untrusted SVG icon markup to a safe,
// allow-listed subset that can be inlined into an HTML page.
//
// Basic usage:
//
//	clean := svgsanitizer.Sanitize(rawSVG)
//	if clean == "" {
//		// no icon available
//	}
package svgsanitizer

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"
	"sync"
)

const (
	// DefaultMaxBytes bounds the input accepted by DefaultPolicy.
	DefaultMaxBytes = 512 << 10

	// DefaultMaxDepth bounds element nesting accepted by DefaultPolicy.
	DefaultMaxDepth = 64
)

// Sanitizer is implemented by anything that turns raw SVG into safe SVG.
// An empty result means the input was rejected.
type Sanitizer interface {
	Sanitize(raw string) string
}

// SanitizerFunc adapts a plain function to the Sanitizer interface.
type SanitizerFunc func(raw string) string

// Sanitize calls f(raw).
func (f SanitizerFunc) Sanitize(raw string) string {
	return f(raw)
}

// Policy defines which SVG structure is considered safe.
//
// A Policy is compiled on first use and must not be mutated afterwards.
type Policy struct {
	// AllowedElements maps canonical SVG element names (e.g. "path",
	// "linearGradient") to the attribute names kept on that element. Use
	// "*" as a key for attributes allowed on every element. An attribute
	// name ending in "*" allows any attribute with that prefix, e.g.
	// "data-*". Element and attribute names are matched case-insensitively
	// and emitted in the spelling given here.
	AllowedElements map[string][]string

	// AllowFragmentHref keeps href and xlink:href on <use> elements when
	// the value is a same-document reference such as "#icon-arrow". The
	// attribute is emitted as href. All other href attributes are removed.
	AllowFragmentHref bool

	// MaxBytes rejects inputs longer than this many bytes. Zero means
	// DefaultMaxBytes.
	MaxBytes int

	// MaxDepth drops elements (with their subtrees) nested deeper than
	// this. The root <svg> is at depth 1. Zero means DefaultMaxDepth.
	MaxDepth int

	// CompactWhitespace collapses whitespace runs in text and attribute
	// values and drops whitespace-only text between elements.
	CompactWhitespace bool

	once     sync.Once
	compiled *compiledPolicy
}

// compiledPolicy is the read-only lookup form of a Policy.
type compiledPolicy struct {
	elements     map[string]elementRule // lowercase local name -> rule
	global       attrTable
	fragmentHref bool
	maxBytes     int
	maxDepth     int
	compact      bool
}

// defaultPolicy is compiled at package initialization and read-only
// afterwards.
var defaultPolicy = func() *Policy {
	p := DefaultPolicy()
	p.compile()
	return p
}()

// DefaultPolicy returns a Policy covering the elements used by icon packs
// such as Lucide and Font Awesome: basic shapes, paths, groups, symbols,
// gradients, clip paths and masks, with presentation attributes. Script,
// foreign content, animation, links, images and styling are never kept.
func DefaultPolicy() *Policy {
	return &Policy{
		AllowedElements:   AllowedElements(),
		MaxBytes:          DefaultMaxBytes,
		MaxDepth:          DefaultMaxDepth,
		CompactWhitespace: true,
	}
}

// StrictPolicy returns a Policy that keeps only basic shapes and groups
// with geometry and paint attributes. Identifiers, classes, ARIA and data
// attributes, and anything that references another element are removed.
func StrictPolicy() *Policy {
	elements := AllowedElements()
	for name := range elements {
		if !strictElements[name] {
			delete(elements, name)
		}
	}
	global := elements["*"][:0]
	for _, a := range elements["*"] {
		switch {
		case a == "id", a == "class", a == "role", a == "clip-path", a == "mask":
		case strings.HasPrefix(a, "aria-"), strings.HasPrefix(a, "data-"):
		default:
			global = append(global, a)
		}
	}
	elements["*"] = global
	return &Policy{
		AllowedElements:   elements,
		MaxBytes:          DefaultMaxBytes,
		MaxDepth:          DefaultMaxDepth,
		CompactWhitespace: true,
	}
}

var strictElements = map[string]bool{
	"*": true, "svg": true, "g": true, "path": true, "circle": true,
	"ellipse": true, "rect": true, "line": true, "polyline": true, "polygon": true,
}

// Sanitize cleans raw with DefaultPolicy. It never fails: any input that
// cannot be reduced to a well-formed <svg> element yields "".
func Sanitize(raw string) string {
	return defaultPolicy.Sanitize(raw)
}

// SanitizeReader reads SVG from r and cleans it with DefaultPolicy.
func SanitizeReader(r io.Reader) string {
	return defaultPolicy.SanitizeReader(r)
}

// SanitizeReader reads at most MaxBytes from r and cleans the result.
// Read errors and oversize input yield "".
func (p *Policy) SanitizeReader(r io.Reader) string {
	if r == nil {
		return ""
	}
	c := p.compile()
	data, err := io.ReadAll(io.LimitReader(r, int64(c.maxBytes)+1))
	if err != nil {
		return ""
	}
	return c.sanitize(string(data))
}

// Sanitize cleans raw according to p. It never fails: any input that
// cannot be reduced to a well-formed <svg> element yields "".
func (p *Policy) Sanitize(raw string) string {
	return p.compile().sanitize(raw)
}

func (p *Policy) compile() *compiledPolicy {
	p.once.Do(func() {
		c := &compiledPolicy{
			elements:     make(map[string]elementRule, len(p.AllowedElements)),
			global:       newAttrTable(p.AllowedElements["*"]),
			fragmentHref: p.AllowFragmentHref,
			maxBytes:     p.MaxBytes,
			maxDepth:     p.MaxDepth,
			compact:      p.CompactWhitespace,
		}
		if c.maxBytes <= 0 {
			c.maxBytes = DefaultMaxBytes
		}
		if c.maxDepth <= 0 {
			c.maxDepth = DefaultMaxDepth
		}
		for name, attrs := range p.AllowedElements {
			lower := strings.ToLower(name)
			if name == "*" || forbiddenElements[lower] {
				continue
			}
			c.elements[lower] = elementRule{name: name, attrs: newAttrTable(attrs)}
		}
		p.compiled = c
	})
	return p.compiled
}

func (c *compiledPolicy) sanitize(raw string) string {
	if len(raw) > c.maxBytes || strings.TrimSpace(raw) == "" {
		return ""
	}

	span, ok := extractSVG(raw)
	if !ok {
		return ""
	}
	span = preStrip(span)

	root, ok := c.parse(span)
	if !ok {
		return ""
	}
	if c.compact {
		root.compact()
	}

	var buf bytes.Buffer
	root.writeRoot(&buf)
	return buf.String()
}

// parse decodes src as strict XML and builds the sanitized output tree in
// the same pass. Elements that are not allowed are skipped together with
// their subtrees, but their tokens are still consumed so that the decoder
// verifies nesting across the whole document.
func (c *compiledPolicy) parse(src string) (*node, bool) {
	d := xml.NewDecoder(strings.NewReader(src))
	d.Strict = true

	var (
		root  *node
		stack []*node
		skip  int
	)
	for {
		tok, err := d.Token()
		if err == io.EOF {
			// Strict mode reports unclosed elements as a syntax error, so
			// EOF here means nothing was open.
			return nil, false
		}
		if err != nil {
			return nil, false
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if skip > 0 {
				skip++
				continue
			}
			n, ok := c.element(t, len(stack)+1)
			if root == nil {
				if !ok || n.name != "svg" {
					return nil, false
				}
				root = n
				stack = append(stack, n)
				continue
			}
			if !ok {
				skip = 1
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)

		case xml.EndElement:
			if skip > 0 {
				skip--
				continue
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return root, true
			}

		case xml.CharData:
			if skip > 0 || len(stack) == 0 {
				continue
			}
			stack[len(stack)-1].appendText(string(t))

		default:
			// xml.Comment, xml.ProcInst and xml.Directive are dropped.
		}
	}
}

// element converts a start tag into an output node, or reports that the
// element and its subtree must be dropped.
func (c *compiledPolicy) element(t xml.StartElement, depth int) (*node, bool) {
	if depth > c.maxDepth {
		return nil, false
	}
	if t.Name.Space != "" && t.Name.Space != svgNamespace {
		return nil, false
	}
	lower := strings.ToLower(t.Name.Local)
	if forbiddenElements[lower] {
		return nil, false
	}
	rule, ok := c.elements[lower]
	if !ok {
		return nil, false
	}

	n := &node{name: rule.name}
	seen := make(map[string]bool, len(t.Attr))
	for _, a := range t.Attr {
		name, value, ok := c.attribute(rule, a)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		if c.compact {
			value = collapseSpace(value, true)
		}
		n.attrs = append(n.attrs, attr{name: name, value: value})
	}
	return n, true
}

// attribute returns the canonical name and value of a, or false when the
// attribute must be removed.
func (c *compiledPolicy) attribute(rule elementRule, a xml.Attr) (string, string, bool) {
	qualified, ok := qualifiedName(a.Name)
	if !ok {
		return "", "", false
	}
	lower := strings.ToLower(qualified)
	if strings.HasPrefix(lower, "on") {
		return "", "", false
	}

	if lower == "href" || lower == "xlink:href" {
		if c.fragmentHref && rule.name == "use" && fragmentRefRegexp.MatchString(a.Value) {
			return "href", a.Value, true
		}
		return "", "", false
	}

	name, ok := rule.attrs.lookup(lower)
	if !ok {
		name, ok = c.global.lookup(lower)
	}
	if !ok {
		return "", "", false
	}

	switch name {
	case "xmlns":
		return name, a.Value, a.Value == svgNamespace
	case "xmlns:xlink":
		return name, a.Value, a.Value == xlinkNamespace
	}
	if !safeValue(a.Value) {
		return "", "", false
	}
	return name, a.Value, true
}

// qualifiedName maps a decoded attribute name back to its prefixed form.
// Attributes in namespaces other than xmlns, xlink and xml are rejected.
func qualifiedName(n xml.Name) (string, bool) {
	switch n.Space {
	case "":
		return n.Local, true
	case "xmlns":
		return "xmlns:" + n.Local, true
	case xlinkNamespace, "xlink":
		return "xlink:" + n.Local, true
	case xmlNamespace, "xml":
		return "xml:" + n.Local, true
	}
	return "", false
}
