// Package comm defines the messaging channel between the display surface and
// the kernel that owns widget state.
//
// Only an inert implementation ships here: static pages have no kernel to
// talk to. A real transport satisfies the same Comm interface.
package comm

// TargetName is the comm target used for widget models.
const TargetName = "jupyter.widget"

// Message is a decoded comm message.
type Message struct {
	CommID   string                 `json:"comm_id"`
	Data     map[string]interface{} `json:"data"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Buffers  [][]byte               `json:"-"`
}

// Handler receives comm messages.
type Handler func(msg Message)

// Comm is a bidirectional channel bound to one widget model.
type Comm interface {
	CommID() string
	TargetName() string
	OnMsg(h Handler)
	OnClose(h Handler)
	Close() error
}

// Nop is a comm that never delivers or sends anything.
type Nop struct {
	id     string
	target string
}

// NewNop creates an inert comm.
func NewNop(target, id string) *Nop {
	return &Nop{id: id, target: target}
}

// CommID returns the comm id, which matches the model id.
func (c *Nop) CommID() string { return c.id }

// TargetName returns the comm target.
func (c *Nop) TargetName() string { return c.target }

// OnMsg discards the handler.
func (c *Nop) OnMsg(Handler) {}

// OnClose discards the handler.
func (c *Nop) OnClose(Handler) {}

// Close does nothing.
func (c *Nop) Close() error { return nil }

var _ Comm = (*Nop)(nil)
