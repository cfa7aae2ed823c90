package widget

import "sort"

// Namespace is a Module backed by a fixed set of classes.
// It is immutable after construction.
type Namespace struct {
	name    string
	version string
	classes map[string]Class
}

// NewNamespace creates a namespace exporting classes under their own names.
func NewNamespace(name, version string, classes ...Class) *Namespace {
	ns := &Namespace{
		name:    name,
		version: version,
		classes: make(map[string]Class, len(classes)),
	}
	for _, c := range classes {
		ns.classes[c.ClassName()] = c
	}
	return ns
}

func (n *Namespace) Name() string    { return n.name }
func (n *Namespace) Version() string { return n.version }

// Export looks up a class by exported name.
func (n *Namespace) Export(className string) (Class, bool) {
	c, ok := n.classes[className]
	return c, ok
}

// Exports lists exported names in sorted order.
func (n *Namespace) Exports() []string {
	names := make([]string, 0, len(n.classes))
	for name := range n.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var _ Module = (*Namespace)(nil)
