package dom

import (
	"bytes"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// ParseFragment parses an HTML fragment in a <body> context.
func ParseFragment(fragment string) ([]*Element, error) {
	nodes, err := html.ParseFragment(strings.NewReader(fragment), bodyContext)
	if err != nil {
		return nil, err
	}
	out := make([]*Element, 0, len(nodes))
	for _, n := range nodes {
		if e := FromNode(n); e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// SetInnerHTML replaces the children of e with the parsed fragment.
// The fragment is not sanitized; callers pass sanitized markup.
func (e *Element) SetInnerHTML(fragment string) error {
	children, err := ParseFragment(fragment)
	if err != nil {
		return err
	}
	e.Clear()
	for _, child := range children {
		e.AddElement(child)
	}
	return nil
}

// FromNode converts an x/net/html node tree. Comments and doctypes are dropped.
func FromNode(n *html.Node) *Element {
	switch n.Type {
	case html.TextNode:
		return NewText(n.Data)
	case html.ElementNode:
		e := NewElement(n.Data)
		for _, a := range n.Attr {
			key := a.Key
			if a.Namespace != "" {
				key = a.Namespace + ":" + a.Key
			}
			e.SetAttribute(key, a.Val)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if child := FromNode(c); child != nil {
				e.AddElement(child)
			}
		}
		return e
	default:
		return nil
	}
}

// Node converts e into an x/net/html node tree.
func (e *Element) Node() *html.Node {
	if e.IsText() {
		return &html.Node{Type: html.TextNode, Data: e.TextContent}
	}
	n := &html.Node{Type: html.ElementNode, Data: e.TagName}
	if e.ID != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "id", Val: e.ID})
	}
	if e.ClassName != "" {
		n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: e.ClassName})
	}
	keys := make([]string, 0, len(e.Attributes))
	for k := range e.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: e.Attributes[k]})
	}
	for _, child := range e.Children {
		n.AppendChild(child.Node())
	}
	return n
}

// OuterHTML serializes e including its own tag.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.Node()); err != nil {
		return ""
	}
	return buf.String()
}

// InnerHTML serializes the children of e.
func (e *Element) InnerHTML() string {
	var b strings.Builder
	for _, child := range e.Children {
		b.WriteString(child.OuterHTML())
	}
	return b.String()
}
