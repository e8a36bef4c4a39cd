package svgsanitizer_test

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/njchilds90/svgsanitizer"
)

// injectionCorpus holds inputs that each carry at least one construct that
// must never survive sanitization.
var injectionCorpus = []string{
	`<svg onload="alert(1)"><path d="M1 1" fill="red"/><script>alert(2)</script></svg>`,
	`<svg><script type="text/javascript">alert(1)</script><path d="M0 0"/></svg>`,
	`<svg><SCRIPT>alert(1)</SCRIPT></svg>`,
	`<svg><script/><path d="M0 0"/></svg>`,
	`<svg><path d="M0 0" onclick='alert(1)'/></svg>`,
	`<svg><path d="M0 0" ONMOUSEOVER="alert(1)"/></svg>`,
	`<svg onload=alert(1)><path d="M0 0"/></svg>`,
	`<svg><use xlink:href="javascript:alert(1)"/></svg>`,
	`<svg><use href="data:image/svg+xml;base64,PHN2Zz48L3N2Zz4="/></svg>`,
	`<svg xmlns:xlink="http://www.w3.org/1999/xlink"><use xlink:href="#a"/></svg>`,
	`<svg><a href="javascript:alert(1)"><path d="M0 0"/></a></svg>`,
	`<svg><foreignObject><div onclick="alert(1)">x</div></foreignObject></svg>`,
	`<svg><FOREIGNOBJECT><body/></FOREIGNOBJECT><g/></svg>`,
	`<svg><iframe src="https://evil.example"></iframe></svg>`,
	`<svg><object data="x.swf"/><embed src="x.swf"/></svg>`,
	`<svg><audio src="x.mp3"/><video/><canvas/></svg>`,
	`<svg><path d="M0 0" fill="&#106;avascript:alert(1)"/></svg>`,
	`<svg><path d="M0 0" fill="javascript&amp;colon;alert(1)"/></svg>`,
	`<svg><path d="M0 0" fill="java&#x09;script:alert(1)"/></svg>`,
	`<svg><path d="M0 0" fill="VBScript:msgbox(1)"/></svg>`,
	`<svg><path d="M0 0" fill="url(https://evil.example/x.svg#a)"/></svg>`,
	`<svg><path d="M0 0" style="background:url(javascript:alert(1))"/></svg>`,
	`<svg><style>@import url(https://evil.example/x.css);</style><path d="M0 0"/></svg>`,
	`<svg><image href="https://evil.example/x.png"/></svg>`,
	`<svg><animate attributeName="href" to="javascript:alert(1)"/><set attributeName="onclick"/></svg>`,
	`<svg xmlns="http://www.w3.org/2000/svg"><x:script xmlns:x="http://www.w3.org/1999/xhtml">alert(1)</x:script></svg>`,
	`<svg><!-- <script>alert(1)</script> --><path d="M0 0"/></svg>`,
	`<svg><?xml-stylesheet href="x.css"?><path d="M0 0"/></svg>`,
	`<svg><path d="M0 0" aria-label="x onerror=alert(1)"/></svg>`,
	`<svg><title>a &lt;script&gt;alert(1)&lt;/script&gt;</title></svg>`,
}

func TestSanitize_Scenario(t *testing.T) {
	input := `<svg onload="alert(1)"><path d="M1 1" fill="red"/><script>alert(2)</script></svg>`
	got := svgsanitizer.Sanitize(input)
	want := `<svg><path d="M1 1" fill="red"/></svg>`
	if got != want {
		t.Errorf("Sanitize(%q)\n got %q\nwant %q", input, got, want)
	}
}

func TestSanitize_InjectionCorpusFailsClosed(t *testing.T) {
	for _, input := range injectionCorpus {
		got := svgsanitizer.Sanitize(input)
		if got == "" {
			continue
		}
		if err := checkSafe(got); err != nil {
			t.Errorf("Sanitize(%q) = %q: %v", input, got, err)
		}
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := append([]string{
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2">
			<path d="M5 12h14"/>
			<path d="m12 5 7 7-7 7"/>
		</svg>`,
		`<svg viewBox="0 0 10 10"><title> Arrow  right </title><g><rect x="1" y="1" width="8" height="8" rx="2"/></g></svg>`,
		`<svg><linearGradient id="g"><stop offset="0" stop-color="#fff"/></linearGradient><path d="M0 0" fill="url(#g)"/></svg>`,
		`<svg><title>a<script>x</script>b</title></svg>`,
		`<svg><title>it's "quoted" &amp; a=b</title></svg>`,
		`<svg><svg/></svg>`,
	}, injectionCorpus...)

	for _, input := range inputs {
		once := svgsanitizer.Sanitize(input)
		twice := svgsanitizer.Sanitize(once)
		if once != twice {
			t.Errorf("not idempotent for %q\n once %q\ntwice %q", input, once, twice)
		}
	}
}

func TestSanitize_PreservesCleanStructure(t *testing.T) {
	input := `<svg viewBox="0 0 24 24"><path d="M0 0h24v24H0z" fill="currentColor"/></svg>`
	got := svgsanitizer.Sanitize(input)
	if got != input {
		t.Errorf("clean input changed\n got %q\nwant %q", got, input)
	}

	want := []element{
		{Name: "svg", Attrs: map[string]string{"viewBox": "0 0 24 24"}},
		{Name: "path", Attrs: map[string]string{"d": "M0 0h24v24H0z", "fill": "currentColor"}},
	}
	if diff := cmp.Diff(want, elements(t, got)); diff != "" {
		t.Errorf("structure mismatch (-want +got):\n%s", diff)
	}
}

func TestSanitize_LucideIcon(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?>
<!-- @license lucide-static v0.400.0 - ISC -->
<svg
  class="lucide lucide-arrow-right"
  xmlns="http://www.w3.org/2000/svg"
  width="24"
  height="24"
  viewBox="0 0 24 24"
  fill="none"
  stroke="currentColor"
  stroke-width="2"
  stroke-linecap="round"
  stroke-linejoin="round"
>
  <path d="M5 12h14" />
  <path d="m12 5 7 7-7 7" />
</svg>
`
	want := `<svg class="lucide lucide-arrow-right" xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24" fill="none" stroke="currentColor" stroke-width="2" stroke-linecap="round" stroke-linejoin="round"><path d="M5 12h14"/><path d="m12 5 7 7-7 7"/></svg>`
	if got := svgsanitizer.Sanitize(input); got != want {
		t.Errorf("got  %q\nwant %q", got, want)
	}
}

func TestSanitize_RejectsNonSVG(t *testing.T) {
	for _, input := range []string{
		"",
		"   \n\t ",
		"hello world",
		`<div>hello</div>`,
		`<svgfoo></svgfoo>`,
		`<html><body><p>no icon</p></body></html>`,
	} {
		if got := svgsanitizer.Sanitize(input); got != "" {
			t.Errorf("Sanitize(%q) = %q, want empty", input, got)
		}
	}
}

func TestSanitize_MalformedFailsClosed(t *testing.T) {
	for _, input := range []string{
		`<svg><path d="M0 0"></svg`,
		`<svg><path d="M0 0"></svg>`,
		`<svg><g><path d="M0 0"/></svg>`,
		`<svg><path d="M0 0></svg>`,
		`<svg><path d="M0 0"/></g></svg>`,
		`<svg><title>&nbsp;</title></svg>`,
		`<svg><title>&colon;</title></svg>`,
		"<svg><title>\xff\xfe</title></svg>",
		`<svg><!DOCTYPE svg [<!ENTITY x "boom">]><title>&x;</title></svg>`,
		`<svg><svg><path d="M0 0"/></svg></svg>`,
	} {
		if got := svgsanitizer.Sanitize(input); got != "" {
			t.Errorf("Sanitize(%q) = %q, want empty", input, got)
		}
	}
}

func TestSanitize_DiscardsSurroundingText(t *testing.T) {
	input := `junk before <svg><path d="M0 0"/></svg> junk after <svg><script/></svg>`
	want := `<svg><path d="M0 0"/></svg>`
	if got := svgsanitizer.Sanitize(input); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSanitize_RemovesDisallowedSubtree(t *testing.T) {
	input := `<svg><unknown><path d="M0 0"/></unknown><circle cx="1" cy="1" r="1"/></svg>`
	want := `<svg><circle cx="1" cy="1" r="1"/></svg>`
	if got := svgsanitizer.Sanitize(input); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSanitize_CanonicalCase(t *testing.T) {
	input := `<SVG VIEWBOX="0 0 2 2"><LINEARGRADIENT ID="g" GRADIENTUNITS="userSpaceOnUse"/></SVG>`
	want := `<svg viewBox="0 0 2 2"><linearGradient id="g" gradientUnits="userSpaceOnUse"/></svg>`
	if got := svgsanitizer.Sanitize(input); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSanitize_AttributeFiltering(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "attribute not allowed on element",
			input: `<svg><circle d="M0 0" r="2"/></svg>`,
			want:  `<svg><circle r="2"/></svg>`,
		},
		{
			name:  "wildcard and data attributes",
			input: `<svg aria-hidden="true" data-icon="x"><g data-Name="y" data-bad.name="z"/></svg>`,
			want:  `<svg aria-hidden="true" data-icon="x"><g data-name="y"/></svg>`,
		},
		{
			name:  "local url reference kept",
			input: `<svg><path d="M0 0" clip-path="url(#c)" fill="url('#g')"/></svg>`,
			want:  `<svg><path d="M0 0" clip-path="url(#c)" fill="url(&#39;#g&#39;)"/></svg>`,
		},
		{
			name:  "external url reference dropped",
			input: `<svg><path d="M0 0" fill="url(//evil.example/a#b)"/></svg>`,
			want:  `<svg><path d="M0 0"/></svg>`,
		},
		{
			name:  "foreign namespace xmlns dropped",
			input: `<svg xmlns="http://www.w3.org/2000/svg" xmlns:ev="http://www.w3.org/2001/xml-events"><path d="M0 0"/></svg>`,
			want:  `<svg xmlns="http://www.w3.org/2000/svg"><path d="M0 0"/></svg>`,
		},
		{
			name:  "duplicate attribute after case folding",
			input: `<svg viewBox="0 0 1 1" VIEWBOX="0 0 9 9"/>`,
			want:  "",
		},
		{
			name:  "duplicate attribute inside root",
			input: `<svg viewBox="0 0 1 1" VIEWBOX="0 0 9 9"></svg>`,
			want:  `<svg viewBox="0 0 1 1"></svg>`,
		},
		{
			name:  "href stripped by default",
			input: `<svg><use href="#a" x="1"/></svg>`,
			want:  `<svg><use x="1"/></svg>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svgsanitizer.Sanitize(tt.input); got != tt.want {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestPolicy_FragmentHref(t *testing.T) {
	p := svgsanitizer.DefaultPolicy()
	p.AllowFragmentHref = true

	tests := []struct {
		input string
		want  string
	}{
		{`<svg><use href="#icon-a"/></svg>`, `<svg><use href="#icon-a"/></svg>`},
		{`<svg><use xlink:href="#a_b"/></svg>`, `<svg><use href="#a_b"/></svg>`},
		{`<svg><use href="#1bad"/></svg>`, `<svg><use/></svg>`},
		{`<svg><use href="other.svg#a"/></svg>`, `<svg><use/></svg>`},
		{`<svg><use href="#a b"/></svg>`, `<svg><use/></svg>`},
		{`<svg><g href="#a"/></svg>`, `<svg><g/></svg>`},
	}
	for _, tt := range tests {
		if got := p.Sanitize(tt.input); got != tt.want {
			t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPolicy_CustomCannotAllowForbidden(t *testing.T) {
	p := &svgsanitizer.Policy{
		AllowedElements: map[string][]string{
			"svg":    {"onload", "style", "href"},
			"script": {},
			"style":  {},
			"path":   {"d"},
		},
	}
	input := `<svg onload="x()" style="fill:red" href="#a"><style>*{}</style><path d="M0 0"/></svg>`
	want := `<svg><path d="M0 0"/></svg>`
	if got := p.Sanitize(input); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestPolicy_WildcardCannotAllowForbidden(t *testing.T) {
	p := &svgsanitizer.Policy{
		AllowedElements: map[string][]string{
			"svg":  {"*"},
			"path": {"d", "s*", "o*"},
		},
	}
	input := `<svg style="position:fixed;top:0;left:0;width:100%;height:100%;z-index:99999" src="x">` +
		`<path d="M0 0" style="fill:red" src="y" opacity="1" onclick="x()"/></svg>`
	want := `<svg><path d="M0 0" opacity="1"/></svg>`
	if got := p.Sanitize(input); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSanitize_SkipsCommentedOutSVG(t *testing.T) {
	input := `<!-- <svg></svg> --><svg><path d="M0 0"/></svg>`
	want := `<svg><path d="M0 0"/></svg>`
	if got := svgsanitizer.Sanitize(input); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestPolicy_MaxDepth(t *testing.T) {
	p := svgsanitizer.DefaultPolicy()
	p.MaxDepth = 2
	input := `<svg><g><g><path d="M0 0"/></g></g></svg>`
	want := `<svg><g/></svg>`
	if got := p.Sanitize(input); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestStrictPolicy(t *testing.T) {
	p := svgsanitizer.StrictPolicy()
	input := `<svg viewBox="0 0 24 24"><defs><linearGradient id="g"/></defs>` +
		`<path id="p" class="c" d="M0 0" fill="red" data-x="1" aria-hidden="true"/><use href="#p"/></svg>`
	want := `<svg viewBox="0 0 24 24"><path d="M0 0" fill="red"/></svg>`
	if got := p.Sanitize(input); got != want {
		t.Errorf("got %q want %q", got, want)
	}
	if _, ok := svgsanitizer.AllowedElements()["defs"]; !ok {
		t.Error("StrictPolicy must not modify the default table")
	}
}

func TestPolicy_MaxBytes(t *testing.T) {
	p := svgsanitizer.DefaultPolicy()
	p.MaxBytes = 64
	small := `<svg><path d="M0 0"/></svg>`
	if got := p.Sanitize(small); got != small {
		t.Errorf("small input rejected: %q", got)
	}
	large := `<svg><path d="` + strings.Repeat("M0 0", 32) + `"/></svg>`
	if got := p.Sanitize(large); got != "" {
		t.Errorf("oversize input accepted: %q", got)
	}
}

func TestPolicy_WithoutCompaction(t *testing.T) {
	p := svgsanitizer.DefaultPolicy()
	p.CompactWhitespace = false
	input := "<svg>\n  <path d=\"M0 0\"/>\n</svg>"
	want := "<svg>\n  <path d=\"M0 0\"/>\n</svg>"
	if got := p.Sanitize(input); got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSanitizeReader(t *testing.T) {
	r := strings.NewReader(`<svg><path d="M0 0"/><script>bad()</script></svg>`)
	if got, want := svgsanitizer.SanitizeReader(r), `<svg><path d="M0 0"/></svg>`; got != want {
		t.Errorf("got %q want %q", got, want)
	}
	if got := svgsanitizer.SanitizeReader(errReader{}); got != "" {
		t.Errorf("read error should fail closed, got %q", got)
	}
	if got := svgsanitizer.SanitizeReader(nil); got != "" {
		t.Errorf("nil reader should fail closed, got %q", got)
	}
	huge := strings.NewReader(`<svg>` + strings.Repeat(" ", svgsanitizer.DefaultMaxBytes) + `</svg>`)
	if got := svgsanitizer.SanitizeReader(huge); got != "" {
		t.Errorf("oversize reader should fail closed, got %q", got)
	}
}

func TestAllowedElements_ReturnsCopy(t *testing.T) {
	m := svgsanitizer.AllowedElements()
	m["script"] = []string{}
	m["path"] = append(m["path"], "onclick")
	if _, ok := svgsanitizer.AllowedElements()["script"]; ok {
		t.Fatal("AllowedElements exposed the package table")
	}
	if got := svgsanitizer.Sanitize(`<svg><path d="M0 0" onclick="x"/></svg>`); got != `<svg><path d="M0 0"/></svg>` {
		t.Fatalf("mutation of copy changed behavior: %q", got)
	}
}

func TestSanitize_Concurrent(t *testing.T) {
	done := make(chan string)
	for i := 0; i < 8; i++ {
		go func() {
			done <- svgsanitizer.Sanitize(injectionCorpus[0])
		}()
	}
	for i := 0; i < 8; i++ {
		if got := <-done; got != `<svg><path d="M1 1" fill="red"/></svg>` {
			t.Errorf("unexpected concurrent result %q", got)
		}
	}
}

func BenchmarkSanitize(b *testing.B) {
	input := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24">` +
		strings.Repeat(`<path d="M5 12h14" onclick="x()"/><script>bad()</script>`, 100) + `</svg>`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = svgsanitizer.Sanitize(input)
	}
}

// --- helpers ---------------------------------------------------------

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("boom") }

type element struct {
	Name  string
	Attrs map[string]string
}

// elements re-parses s and lists its elements in document order.
func elements(t *testing.T, s string) []element {
	t.Helper()
	d := xml.NewDecoder(strings.NewReader(s))
	d.Strict = true
	var out []element
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("output is not well-formed XML: %v (%q)", err, s)
		}
		if se, ok := tok.(xml.StartElement); ok {
			e := element{Name: se.Name.Local, Attrs: map[string]string{}}
			for _, a := range se.Attr {
				e.Attrs[a.Name.Local] = a.Value
			}
			out = append(out, e)
		}
	}
}

var forbiddenNames = map[string]bool{
	"script": true, "foreignobject": true, "iframe": true, "object": true,
	"embed": true, "audio": true, "video": true, "canvas": true,
	"style": true, "image": true, "a": true, "animate": true, "set": true,
}

// checkSafe re-parses sanitized output and reports any construct that
// should have been removed.
func checkSafe(s string) error {
	d := xml.NewDecoder(strings.NewReader(s))
	d.Strict = true
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if forbiddenNames[strings.ToLower(t.Name.Local)] {
				return errors.New("forbidden element " + t.Name.Local)
			}
			for _, a := range t.Attr {
				name := strings.ToLower(a.Name.Local)
				value := strings.ToLower(a.Value)
				switch {
				case strings.HasPrefix(name, "on"):
					return errors.New("event handler " + a.Name.Local)
				case name == "href" || name == "style":
					return errors.New("attribute " + a.Name.Local)
				case strings.Contains(value, "javascript:"), strings.Contains(value, "data:"),
					strings.Contains(value, "vbscript:"), strings.Contains(value, "onerror"):
					return errors.New("unsafe value " + a.Value)
				}
			}
		case xml.Comment:
			return errors.New("comment survived")
		case xml.ProcInst:
			return errors.New("processing instruction survived")
		case xml.Directive:
			return errors.New("directive survived")
		}
	}
}
