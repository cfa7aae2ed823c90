package widget

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Supported state document version.
const (
	StateVersionMajor = 2
	StateVersionMinor = 0
)

// StateDocument is the widget-state+json payload embedded in exported pages.
type StateDocument struct {
	VersionMajor int                   `json:"version_major"`
	VersionMinor int                   `json:"version_minor"`
	State        map[string]ModelState `json:"state"`
}

// ModelState is the serialized form of one model.
type ModelState struct {
	ModelName          string                 `json:"model_name"`
	ModelModule        string                 `json:"model_module"`
	ModelModuleVersion string                 `json:"model_module_version"`
	State              map[string]interface{} `json:"state"`
}

// Reference returns the model class reference.
func (s ModelState) Reference() ModuleReference {
	return ModuleReference{
		ModuleName:    s.ModelModule,
		ModuleVersion: s.ModelModuleVersion,
		ClassName:     s.ModelName,
	}
}

// ParseStateDocument decodes a widget-state+json document.
func ParseStateDocument(data []byte) (*StateDocument, error) {
	var doc StateDocument
	if err := sonic.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode widget state: %w", err)
	}
	if doc.State == nil {
		doc.State = make(map[string]ModelState)
	}
	return &doc, nil
}

// Encode serializes the document.
func (d *StateDocument) Encode() ([]byte, error) {
	return sonic.Marshal(d)
}

// ViewPayload is the widget-view+json payload naming the model to display.
type ViewPayload struct {
	ModelID      string `json:"model_id"`
	VersionMajor int    `json:"version_major"`
	VersionMinor int    `json:"version_minor"`
}

// ParseViewPayload accepts either raw JSON or an already decoded value.
func ParseViewPayload(v interface{}) (*ViewPayload, error) {
	var payload ViewPayload
	switch raw := v.(type) {
	case []byte:
		if err := sonic.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode widget view: %w", err)
		}
	case string:
		if err := sonic.UnmarshalString(raw, &payload); err != nil {
			return nil, fmt.Errorf("decode widget view: %w", err)
		}
	case map[string]interface{}:
		payload.ModelID, _ = raw["model_id"].(string)
		if n, ok := raw["version_major"].(float64); ok {
			payload.VersionMajor = int(n)
		}
		if n, ok := raw["version_minor"].(float64); ok {
			payload.VersionMinor = int(n)
		}
	default:
		return nil, fmt.Errorf("decode widget view: unexpected payload %T", v)
	}
	if payload.ModelID == "" {
		return nil, fmt.Errorf("decode widget view: missing model_id")
	}
	return &payload, nil
}
