package api

import (
	"encoding/json"
	"fmt"
)

// ModelDescriptor is the normalized shape of one element of a provider's model list.
type ModelDescriptor struct {
	ID      string `json:"id"`
	Created *int64 `json:"created,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`
}

// UnmarshalJSON handles the union type: string | {id, created, owned_by}
func (m *ModelDescriptor) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		*m = ModelDescriptor{}
		return json.Unmarshal(data, &m.ID)
	}

	var obj struct {
		ID      string          `json:"id"`
		Created json.RawMessage `json:"created"`
		OwnedBy string          `json:"owned_by"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.ID == "" {
		return fmt.Errorf("model descriptor without id: %s", string(data))
	}

	*m = ModelDescriptor{ID: obj.ID, OwnedBy: obj.OwnedBy}
	var created int64
	if len(obj.Created) > 0 && json.Unmarshal(obj.Created, &created) == nil {
		m.Created = &created
	}
	return nil
}

// ModelsShape tags which of the accepted payload shapes a models response used.
type ModelsShape int

const (
	ShapeUnknown ModelsShape = iota
	// ShapeObjectList is `{"data": [...]}`.
	ShapeObjectList
	// ShapeBareArray is `[...]`.
	ShapeBareArray
)

func (s ModelsShape) String() string {
	switch s {
	case ShapeObjectList:
		return "object_list"
	case ShapeBareArray:
		return "bare_array"
	default:
		return "unknown"
	}
}

// ModelsResponse is the decoded body of GET {api_base}/models.
type ModelsResponse struct {
	Shape ModelsShape
	Data  []ModelDescriptor
}

// UnmarshalJSON handles the union type: {"data": [...]} | [...]
func (r *ModelsResponse) UnmarshalJSON(data []byte) error {
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case ' ', '\t', '\r', '\n':
			continue
		case '[':
			r.Shape = ShapeBareArray
			return json.Unmarshal(data, &r.Data)
		case '{':
			var wrapper struct {
				Data *[]ModelDescriptor `json:"data"`
			}
			if err := json.Unmarshal(data, &wrapper); err != nil {
				return err
			}
			if wrapper.Data == nil {
				return fmt.Errorf("models response object has no data array")
			}
			r.Shape = ShapeObjectList
			r.Data = *wrapper.Data
			return nil
		default:
			return fmt.Errorf("unexpected models response starting with %q", data[i])
		}
	}
	return fmt.Errorf("empty models response")
}
