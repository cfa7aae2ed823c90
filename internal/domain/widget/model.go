package widget

import (
	"strings"
	"sync"

	"github.com/GriffinCanCode/AgentOS/htmlmanager/internal/comm"
)

// Protocol state keys naming a model's classes.
const (
	KeyModelName          = "_model_name"
	KeyModelModule        = "_model_module"
	KeyModelModuleVersion = "_model_module_version"
	KeyViewName           = "_view_name"
	KeyViewModule         = "_view_module"
	KeyViewModuleVersion  = "_view_module_version"
)

// Model holds the synchronized state of one widget.
type Model struct {
	id   string
	comm comm.Comm

	mu    sync.RWMutex
	state map[string]interface{} // Protected by mu
}

// NewModel creates a model. The state map is copied.
func NewModel(id string, state map[string]interface{}, c comm.Comm) *Model {
	if c == nil {
		c = comm.NewNop(comm.TargetName, id)
	}
	return &Model{
		id:    id,
		comm:  c,
		state: copyState(state),
	}
}

// ID returns the model id.
func (m *Model) ID() string { return m.id }

// Comm returns the channel assigned at creation.
func (m *Model) Comm() comm.Comm { return m.comm }

// Get returns a state value.
func (m *Model) Get(key string) (interface{}, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.state[key]
	return v, ok
}

// GetString returns a string value, or "" when absent or not a string.
func (m *Model) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

// GetFloat returns a numeric value.
func (m *Model) GetFloat(key string) (float64, bool) {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// GetBool returns a boolean value, false when absent.
func (m *Model) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

// GetStrings returns a list of strings, skipping non-string entries.
func (m *Model) GetStrings(key string) []string {
	v, _ := m.Get(key)
	var out []string
	switch list := v.(type) {
	case []string:
		out = append(out, list...)
	case []interface{}:
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// SetState merges values into the state.
func (m *Model) SetState(values map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.state[k] = v
	}
}

// State returns a shallow copy of the state.
func (m *Model) State() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyState(m.state)
}

// ModelReference names the class this model was built from.
func (m *Model) ModelReference() ModuleReference {
	return ModuleReference{
		ModuleName:    m.GetString(KeyModelModule),
		ModuleVersion: m.GetString(KeyModelModuleVersion),
		ClassName:     m.GetString(KeyModelName),
	}
}

// ViewReference names the view class used to display this model.
// ClassName is empty for models without a view.
func (m *Model) ViewReference() ModuleReference {
	return ModuleReference{
		ModuleName:    m.GetString(KeyViewModule),
		ModuleVersion: m.GetString(KeyViewModuleVersion),
		ClassName:     m.GetString(KeyViewName),
	}
}

// ParseModelRef extracts the model id from an "IPY_MODEL_<id>" value.
func ParseModelRef(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, ModelRefPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(s, ModelRefPrefix)
	return id, id != ""
}

// ModelRef formats a reference to the model with the given id.
func ModelRef(id string) string {
	return ModelRefPrefix + id
}

func copyState(in map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
