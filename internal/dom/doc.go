// Package dom provides the element tree that widget views render into.
//
// The tree is a lightweight stand-in for a browser document: views build
// Elements, the manager attaches their roots into caller-owned targets, and
// the result serializes to HTML through golang.org/x/net/html.
//
// Example Usage:
//
//	target := dom.NewElement("div")
//	if err := dom.Attach(view.El(), target); err != nil {
//		return err
//	}
//	out := target.OuterHTML()
package dom
