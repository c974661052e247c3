// Package htmlsanitize cleans HTML that originates outside this service
// before it is rendered into console pages. The dashboard alert banner and
// the footer blurb both arrive from the proxy backend as HTML fragments;
// they are treated as untrusted content and run through a bluemonday policy
// that keeps ordinary formatting and strips anything executable.
package htmlsanitize

import (
	"html/template"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy
)

// sanitizePolicy builds the shared policy: bluemonday's UGC baseline plus
// tables and a few text-formatting elements the banner content uses.
func sanitizePolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()

		// Tables (UGCPolicy does not include them).
		p.AllowElements("table", "thead", "tbody", "tfoot", "tr", "th", "td", "caption")
		p.AllowAttrs("colspan", "rowspan").OnElements("th", "td")
		p.AllowAttrs("class").OnElements("table", "thead", "tbody", "tr", "th", "td")
		p.AllowAttrs("style").OnElements("table", "thead", "tbody", "tr", "th", "td")

		// Inline formatting beyond the UGC defaults.
		p.AllowElements("u", "s", "sub", "sup", "mark")

		policy = p
	})
	return policy
}

// Sanitize returns a safe version of the given HTML fragment.
func Sanitize(html string) string {
	return sanitizePolicy().Sanitize(html)
}

// SanitizeToHTML sanitizes and returns template.HTML so templates render
// the fragment unescaped. Only ever pass the result of sanitization to
// templates this way.
func SanitizeToHTML(html string) template.HTML {
	return template.HTML(Sanitize(html))
}

// tagStart matches the opening of an HTML tag, comment, or doctype. A bare
// comparison like "5 < 10" doesn't match.
var tagStart = regexp.MustCompile(`<[a-zA-Z/!]`)

// IsPlainText reports whether s contains no HTML tags. Callers use it to
// decide between text and HTML rendering paths.
func IsPlainText(s string) bool {
	return !tagStart.MatchString(s)
}

// PlainTextToHTML escapes s for HTML display, converts newlines to <br>,
// and wraps the result in a paragraph. Empty input stays empty.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay readies untrusted banner or message content for a
// template: plain text is escaped and paragraph-wrapped, anything with
// markup is run through the sanitizer.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
