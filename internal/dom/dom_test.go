package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentQuery(t *testing.T) {
	doc := NewDocument()

	elem := NewElement("div")
	elem.ID = "test-id"
	elem.ClassName = "test-class other"
	doc.Root().AddElement(elem)

	tests := []struct {
		name     string
		selector string
		wantLen  int
	}{
		{name: "ID selector", selector: "#test-id", wantLen: 1},
		{name: "class selector", selector: ".test-class", wantLen: 1},
		{name: "partial class does not match", selector: ".test", wantLen: 0},
		{name: "tag selector", selector: "div", wantLen: 1},
		{name: "non-existent", selector: "#not-found", wantLen: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, doc.Query(tt.selector), tt.wantLen)
		})
	}
}

func TestAttachMovesChild(t *testing.T) {
	first := NewElement("div")
	second := NewElement("div")
	child := NewElement("span")

	require.NoError(t, Attach(child, first))
	require.NoError(t, Attach(child, second))

	assert.Empty(t, first.Children)
	assert.Same(t, second, child.Parent)
	assert.True(t, second.Contains(child))
	assert.False(t, first.Contains(child))
}

func TestAttachNil(t *testing.T) {
	assert.ErrorIs(t, Attach(nil, NewElement("div")), ErrNilElement)
	assert.ErrorIs(t, Attach(NewElement("div"), nil), ErrNilElement)
}

func TestAttachRejectsAncestors(t *testing.T) {
	root := NewElement("div")
	mid := NewElement("section")
	leaf := NewElement("span")
	root.AddElement(mid)
	mid.AddElement(leaf)

	tests := []struct {
		name   string
		child  *Element
		parent *Element
	}{
		{name: "self", child: mid, parent: mid},
		{name: "into child", child: root, parent: mid},
		{name: "into grandchild", child: root, parent: leaf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, Attach(tt.child, tt.parent), ErrHierarchy)

			tt.parent.AddElement(tt.child)
			tt.parent.InsertBefore(tt.child, nil)

			assert.Nil(t, root.Parent)
			assert.Same(t, root, mid.Parent)
			assert.Same(t, mid, leaf.Parent)
			assert.Len(t, mid.Children, 1)
			assert.Equal(t, "<div><section><span></span></section></div>", root.OuterHTML())
		})
	}
}

func TestOuterHTML(t *testing.T) {
	root := NewElement("div")
	root.ID = "w"
	root.AddClass("widget", "jupyter-widgets", "widget")
	root.SetAttribute("title", `a "quoted" <title>`)
	root.AddElement(NewText("1 < 2"))

	assert.Equal(t,
		`<div id="w" class="widget jupyter-widgets" title="a &#34;quoted&#34; &lt;title&gt;">1 &lt; 2</div>`,
		root.OuterHTML())
}

func TestSetInnerHTML(t *testing.T) {
	root := NewElement("div")
	require.NoError(t, root.SetInnerHTML(`<b class="x">bold</b> and <i>it</i>`))

	require.Len(t, root.Children, 3)
	assert.Equal(t, "b", root.Children[0].TagName)
	assert.True(t, root.Children[0].HasClass("x"))
	assert.Equal(t, "bold and it", root.Text())
	assert.Equal(t, `<b class="x">bold</b> and <i>it</i>`, root.InnerHTML())
}

func TestSetStyle(t *testing.T) {
	e := NewElement("div")
	e.SetStyle("width", "50%")
	e.SetStyle("height", "10px")
	assert.Equal(t, "height: 10px; width: 50%;", e.GetAttribute("style"))
	assert.Equal(t, "50%", e.Style("width"))

	e.SetStyle("height", "")
	e.SetStyle("width", "")
	_, ok := e.Attributes["style"]
	assert.False(t, ok)
}

func TestInsertBefore(t *testing.T) {
	parent := NewElement("div")
	a := NewElement("a")
	b := NewElement("b")
	parent.AddElement(b)
	parent.InsertBefore(a, b)

	require.Len(t, parent.Children, 2)
	assert.Same(t, a, parent.Children[0])
	assert.Same(t, b, parent.Children[1])
}
