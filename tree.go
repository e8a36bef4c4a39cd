package svgsanitizer

import (
	"bytes"
	"regexp"
	"strings"
)

// node is an element or text node of the sanitized output tree. Text
// nodes have an empty name.
type node struct {
	name     string
	attrs    []attr
	children []*node
	text     string
}

type attr struct {
	name  string
	value string
}

var spaceRunRegexp = regexp.MustCompile(`\s+`)

var (
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&#34;",
		"'", "&#39;",
		"=", "&#61;",
		"\r", "&#xD;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&#34;",
		"'", "&#39;",
		"=", "&#61;",
		"\t", "&#x9;",
		"\n", "&#xA;",
		"\r", "&#xD;",
	)
)

// appendText adds text to n, merging it with a preceding text node. Text on
// either side of a dropped element ends up in one node.
func (n *node) appendText(s string) {
	if last := len(n.children) - 1; last >= 0 && n.children[last].name == "" {
		n.children[last].text += s
		return
	}
	n.children = append(n.children, &node{text: s})
}

// compact collapses whitespace in text nodes below n and removes text nodes
// that are only whitespace.
func (n *node) compact() {
	kept := n.children[:0]
	for _, c := range n.children {
		if c.name == "" {
			c.text = collapseSpace(c.text, false)
			if strings.TrimSpace(c.text) == "" {
				continue
			}
		} else {
			c.compact()
		}
		kept = append(kept, c)
	}
	n.children = kept
}

func collapseSpace(s string, trim bool) string {
	s = spaceRunRegexp.ReplaceAllString(s, " ")
	if trim {
		s = strings.TrimSpace(s)
	}
	return s
}

// writeRoot serializes the root element. The root always gets an explicit
// end tag so that the output is itself a complete <svg>...</svg> span.
func (n *node) writeRoot(buf *bytes.Buffer) {
	n.writeStart(buf)
	buf.WriteByte('>')
	for _, c := range n.children {
		c.write(buf)
	}
	n.writeEnd(buf)
}

func (n *node) write(buf *bytes.Buffer) {
	if n.name == "" {
		buf.WriteString(textEscaper.Replace(n.text))
		return
	}
	n.writeStart(buf)
	if len(n.children) == 0 {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	for _, c := range n.children {
		c.write(buf)
	}
	n.writeEnd(buf)
}

func (n *node) writeStart(buf *bytes.Buffer) {
	buf.WriteByte('<')
	buf.WriteString(n.name)
	for _, a := range n.attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.name)
		buf.WriteString(`="`)
		buf.WriteString(attrEscaper.Replace(a.value))
		buf.WriteByte('"')
	}
}

func (n *node) writeEnd(buf *bytes.Buffer) {
	buf.WriteString("</")
	buf.WriteString(n.name)
	buf.WriteByte('>')
}
