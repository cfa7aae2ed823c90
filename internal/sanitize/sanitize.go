// Package sanitize filters untrusted HTML before it is shown in widgets.
package sanitize

import (
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	allowedTags = []string{
		"a", "abbr", "b", "blockquote", "code", "em", "i",
		"img", "li", "ol", "strong", "style", "ul",
	}
	allowedAttributes = []string{"href", "media", "src", "title"}
)

// Policy is an immutable sanitization policy.
type Policy struct {
	name   string
	policy *bluemonday.Policy
}

var (
	descriptionOnce   sync.Once
	descriptionPolicy *Policy

	untrustedOnce   sync.Once
	untrustedPolicy *Policy

	moduleViewOnce   sync.Once
	moduleViewPolicy *Policy
)

// CSS properties module views may set inline.
var moduleViewStyles = []string{
	"align-items", "background-color", "border", "border-radius", "color",
	"display", "flex", "flex-direction", "font-family", "font-size",
	"font-style", "font-weight", "gap", "height", "justify-content",
	"margin", "max-height", "max-width", "min-height", "min-width",
	"opacity", "overflow", "padding", "text-align", "text-decoration",
	"visibility", "white-space", "width",
}

// Description returns the policy used for HTML widget descriptions.
func Description() *Policy {
	descriptionOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements(allowedTags...)
		p.AllowAttrs(allowedAttributes...).Globally()
		p.RequireParseableURLs(true)
		p.AllowRelativeURLs(true)
		p.AllowURLSchemes("http", "https", "mailto")
		// style is the only unsafe element in the allow-list; script never
		// reaches bluemonday because stage one removes it.
		p.AllowUnsafe(true)
		descriptionPolicy = &Policy{name: "description", policy: p}
	})
	return descriptionPolicy
}

// Untrusted returns the general policy for untrusted rich output.
func Untrusted() *Policy {
	untrustedOnce.Do(func() {
		untrustedPolicy = &Policy{name: "untrusted", policy: bluemonday.UGCPolicy()}
	})
	return untrustedPolicy
}

// ModuleView returns the policy applied to markup built by third-party module
// views: the untrusted policy plus classes, data attributes and a fixed set
// of inline styles.
func ModuleView() *Policy {
	moduleViewOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowStyling()
		p.AllowDataAttributes()
		p.AllowStyles(moduleViewStyles...).Globally()
		moduleViewPolicy = &Policy{name: "module_view", policy: p}
	})
	return moduleViewPolicy
}

// Name identifies the policy in logs and metrics.
func (p *Policy) Name() string {
	return p.name
}

// Sanitize filters htmlStr through the policy. It never fails.
func (p *Policy) Sanitize(htmlStr string) string {
	return p.policy.Sanitize(StripScripts(htmlStr))
}

// DescriptionSanitize sanitizes HTML-formatted widget descriptions.
func DescriptionSanitize(htmlStr string) string {
	return Description().Sanitize(htmlStr)
}

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

var markupInRawText = regexp.MustCompile(`<[/\w!]`)

// StripScripts parses htmlStr as a body fragment, removes every <script>
// element together with its content and drops <style> elements whose text
// looks like markup, then serializes the repaired fragment.
func StripScripts(htmlStr string) string {
	nodes, err := html.ParseFragment(strings.NewReader(htmlStr), bodyContext)
	if err != nil {
		return ""
	}

	container := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	doc := goquery.NewDocumentFromNode(container)
	doc.Find("script").Remove()
	doc.Find("style").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return markupInRawText.MatchString(s.Text())
	}).Remove()

	out, err := doc.Html()
	if err != nil {
		return ""
	}
	return out
}
