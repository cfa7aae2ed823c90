package widget

import "fmt"

// Mime types of the widget protocol.
const (
	ViewMimeType  = "application/vnd.jupyter.widget-view+json"
	StateMimeType = "application/vnd.jupyter.widget-state+json"
)

// ModelRefPrefix marks a state value that points at another model.
const ModelRefPrefix = "IPY_MODEL_"

// ModuleReference identifies a widget implementation.
type ModuleReference struct {
	ModuleName    string `json:"module_name"`
	ModuleVersion string `json:"module_version"`
	ClassName     string `json:"class_name"`
}

func (r ModuleReference) String() string {
	return fmt.Sprintf("%s@%s:%s", r.ModuleName, r.ModuleVersion, r.ClassName)
}

// Kind tells model classes from view classes.
type Kind string

const (
	KindModel Kind = "model"
	KindView  Kind = "view"
)

// Class is a resolved widget model or view class.
type Class interface {
	ClassName() string
	Kind() Kind
}

// Module is a namespace of exported widget classes.
type Module interface {
	Name() string
	Version() string
	Export(className string) (Class, bool)
	Exports() []string
}

// ModelClass constructs models seeded with class defaults.
type ModelClass struct {
	name     string
	defaults map[string]interface{}
}

// NewModelClass creates a model class. Defaults are copied.
func NewModelClass(name string, defaults map[string]interface{}) *ModelClass {
	return &ModelClass{name: name, defaults: copyState(defaults)}
}

// Extend derives a subclass whose defaults override the receiver's.
func (c *ModelClass) Extend(name string, defaults map[string]interface{}) *ModelClass {
	merged := copyState(c.defaults)
	for k, v := range defaults {
		merged[k] = v
	}
	return &ModelClass{name: name, defaults: merged}
}

func (c *ModelClass) ClassName() string { return c.name }
func (c *ModelClass) Kind() Kind        { return KindModel }

// Defaults returns a copy of the class defaults.
func (c *ModelClass) Defaults() map[string]interface{} {
	return copyState(c.defaults)
}

// ViewOptions are handed to view constructors.
type ViewOptions struct {
	Model *Model
	Host  Host
}

// ViewClass constructs views.
type ViewClass struct {
	name string
	ctor func(opts ViewOptions) View
}

// NewViewClass creates a view class from a constructor.
func NewViewClass(name string, ctor func(opts ViewOptions) View) *ViewClass {
	return &ViewClass{name: name, ctor: ctor}
}

func (c *ViewClass) ClassName() string { return c.name }
func (c *ViewClass) Kind() Kind        { return KindView }

// New constructs an unrendered view.
func (c *ViewClass) New(opts ViewOptions) View {
	return c.ctor(opts)
}

var (
	_ Class = (*ModelClass)(nil)
	_ Class = (*ViewClass)(nil)
)
