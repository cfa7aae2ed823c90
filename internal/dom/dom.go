package dom

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// TextTag is the tag name used for text nodes.
const TextTag = "#text"

// ErrNilElement is returned when an attach target or child is missing.
var ErrNilElement = errors.New("dom: nil element")

// ErrHierarchy is returned when an element would be attached under itself or
// one of its descendants.
var ErrHierarchy = errors.New("dom: element cannot contain its ancestor")

// Element represents a node of the host document.
// Text nodes carry TagName TextTag and only TextContent.
type Element struct {
	TagName     string
	ID          string
	ClassName   string
	TextContent string
	Attributes  map[string]string
	Children    []*Element
	Parent      *Element
}

// NewElement creates an empty element with the given tag.
func NewElement(tag string) *Element {
	return &Element{
		TagName:    strings.ToLower(tag),
		Attributes: make(map[string]string),
		Children:   []*Element{},
	}
}

// NewText creates a text node.
func NewText(text string) *Element {
	return &Element{
		TagName:     TextTag,
		TextContent: text,
		Attributes:  make(map[string]string),
	}
}

// IsText reports whether e is a text node.
func (e *Element) IsText() bool {
	return e.TagName == TextTag
}

// GetAttribute retrieves attribute value
func (e *Element) GetAttribute(name string) string {
	switch name {
	case "id":
		return e.ID
	case "class":
		return e.ClassName
	}
	return e.Attributes[name]
}

// SetAttribute sets attribute value
func (e *Element) SetAttribute(name, value string) {
	switch name {
	case "id":
		e.ID = value
	case "class":
		e.ClassName = value
	default:
		if e.Attributes == nil {
			e.Attributes = make(map[string]string)
		}
		e.Attributes[name] = value
	}
}

// RemoveAttribute deletes an attribute.
func (e *Element) RemoveAttribute(name string) {
	switch name {
	case "id":
		e.ID = ""
	case "class":
		e.ClassName = ""
	default:
		delete(e.Attributes, name)
	}
}

// AddClass appends class names that are not present yet.
func (e *Element) AddClass(names ...string) {
	for _, name := range names {
		if name == "" || e.HasClass(name) {
			continue
		}
		if e.ClassName == "" {
			e.ClassName = name
		} else {
			e.ClassName += " " + name
		}
	}
}

// HasClass reports whether the class attribute contains name as a whole word.
func (e *Element) HasClass(name string) bool {
	for _, c := range strings.Fields(e.ClassName) {
		if c == name {
			return true
		}
	}
	return false
}

// SetStyle sets one inline CSS property. An empty value removes it.
func (e *Element) SetStyle(property, value string) {
	props := parseStyle(e.Attributes["style"])
	if value == "" {
		delete(props, property)
	} else {
		props[property] = value
	}
	if len(props) == 0 {
		delete(e.Attributes, "style")
		return
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+props[k])
	}
	e.SetAttribute("style", strings.Join(parts, "; ")+";")
}

// Style returns one inline CSS property.
func (e *Element) Style(property string) string {
	return parseStyle(e.Attributes["style"])[property]
}

func parseStyle(style string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		props[k] = strings.TrimSpace(v)
	}
	return props
}

// AddElement adds a child element. Adding e or one of its ancestors is a
// no-op; use Attach to get the error.
func (e *Element) AddElement(child *Element) {
	if child.Contains(e) {
		return
	}
	if child.Parent != nil {
		child.Remove()
	}
	child.Parent = e
	e.Children = append(e.Children, child)
}

// InsertBefore inserts child before ref. A nil or foreign ref appends.
// Like AddElement it refuses e and its ancestors.
func (e *Element) InsertBefore(child, ref *Element) {
	if child.Contains(e) {
		return
	}
	if child.Parent != nil {
		child.Remove()
	}
	child.Parent = e
	for i, c := range e.Children {
		if c == ref {
			e.Children = append(e.Children[:i], append([]*Element{child}, e.Children[i:]...)...)
			return
		}
	}
	e.Children = append(e.Children, child)
}

// Remove removes element from parent
func (e *Element) Remove() {
	if e.Parent == nil {
		return
	}
	children := e.Parent.Children[:0]
	for _, child := range e.Parent.Children {
		if child != e {
			children = append(children, child)
		}
	}
	e.Parent.Children = children
	e.Parent = nil
}

// Clear detaches every child.
func (e *Element) Clear() {
	for _, child := range e.Children {
		child.Parent = nil
	}
	e.Children = []*Element{}
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	e.Clear()
	if text != "" {
		e.AddElement(NewText(text))
	}
}

// Text returns the concatenated text of e and its descendants.
func (e *Element) Text() string {
	if e.IsText() {
		return e.TextContent
	}
	var b strings.Builder
	for _, child := range e.Children {
		b.WriteString(child.Text())
	}
	return b.String()
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.Parent {
		if n == e {
			return true
		}
	}
	return false
}

// Attach appends child under parent, detaching it from any previous parent.
func Attach(child, parent *Element) error {
	if child == nil || parent == nil {
		return ErrNilElement
	}
	if child.Contains(parent) {
		return ErrHierarchy
	}
	parent.AddElement(child)
	return nil
}

// Document is the root of a host document.
type Document struct {
	root *Element
	mu   sync.RWMutex
}

// NewDocument creates an empty document.
func NewDocument() *Document {
	return &Document{root: NewElement("document")}
}

// Root returns the document root.
func (d *Document) Root() *Element {
	return d.root
}

// Query finds elements by selector (#id, .class or tag)
func (d *Document) Query(selector string) []*Element {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Query(d.root, selector)
}

// Query finds elements under root by a simple selector.
func Query(root *Element, selector string) []*Element {
	switch {
	case strings.HasPrefix(selector, "#"):
		if elem := findByID(root, strings.TrimPrefix(selector, "#")); elem != nil {
			return []*Element{elem}
		}
		return []*Element{}
	case strings.HasPrefix(selector, "."):
		return findAll(root, func(e *Element) bool {
			return e.HasClass(strings.TrimPrefix(selector, "."))
		})
	default:
		return findAll(root, func(e *Element) bool {
			return strings.EqualFold(e.TagName, selector)
		})
	}
}

func findByID(elem *Element, id string) *Element {
	if elem.ID == id {
		return elem
	}
	for _, child := range elem.Children {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

func findAll(elem *Element, match func(*Element) bool) []*Element {
	var result []*Element
	if !elem.IsText() && match(elem) {
		result = append(result, elem)
	}
	for _, child := range elem.Children {
		result = append(result, findAll(child, match)...)
	}
	return result
}

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
