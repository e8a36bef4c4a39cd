// Package svgsanitizer provides a fail-closed, allow-list SVG sanitizer
// for inlining icon markup into HTML pages.
//
// # Overview
//
// svgsanitizer extracts the first <svg>...</svg> span from its input,
// strips script-capable containers and inline event handlers at string
// level, parses the remainder as strict XML with encoding/xml, walks the
// resulting elements and produces a new SVG string that contains only the
// elements, attributes and values permitted by a [Policy].
//
// # Policies
//
// A [Policy] controls:
//   - Which elements are kept and which attributes each may carry ([Policy.AllowedElements])
//   - Whether same-document href references are kept on <use> ([Policy.AllowFragmentHref])
//   - The maximum input size ([Policy.MaxBytes]) and nesting depth ([Policy.MaxDepth])
//   - Whether output whitespace is compacted ([Policy.CompactWhitespace])
//
// [DefaultPolicy] covers the shapes, groups, symbols, gradients, clip
// paths and masks used by common icon packs. [Sanitize] uses it.
// [StrictPolicy] keeps only basic shapes with paint attributes.
//
// # Security
//
// The sanitizer removes, regardless of policy:
//   - <script>, <foreignObject>, <iframe>, <object>, <embed>, <audio>,
//     <video>, <canvas>, <style>, <image>, <a> and animation elements,
//     together with their subtrees
//   - Event handler attributes (onload, onclick, ...)
//   - href and xlink:href, except fragment references on <use> when enabled
//   - Attribute values containing javascript:, data: or vbscript:
//     (including entity-encoded and whitespace-split forms)
//   - url(...) references to anything but a same-document fragment
//   - Comments, processing instructions and DTD declarations
//
// Every failure (empty input, no <svg> element, malformed XML, oversize
// input, a rejected root element) yields the empty string. Callers treat
// "" as "no icon available".
//
// Sanitizing already sanitized output returns it unchanged.
//
// # Thread Safety
//
// Sanitize and Policy.Sanitize are safe for concurrent use. Policy structs
// must not be mutated after first use.
//
// # Example
//
//	clean := svgsanitizer.Sanitize(`<svg onload="alert(1)"><path d="M1 1"/></svg>`)
//	// clean == `<svg><path d="M1 1"/></svg>`
package svgsanitizer
