package tool

import (
	"encoding/json"
)

// Schema wraps a JSON Schema document describing tool input.
type Schema struct {
	raw json.RawMessage
}

// NewSchema creates a schema from raw JSON.
func NewSchema(raw json.RawMessage) Schema {
	return Schema{raw: raw}
}

// EmptySchema returns a schema that accepts any object.
func EmptySchema() Schema {
	return Schema{raw: json.RawMessage(`{"type":"object"}`)}
}

// ObjectSchema returns a schema for an object with the given properties.
func ObjectSchema(properties map[string]json.RawMessage, required []string) Schema {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	raw, _ := json.Marshal(schema)
	return Schema{raw: raw}
}

// Raw returns the underlying JSON schema.
func (s Schema) Raw() json.RawMessage {
	return s.raw
}

// IsEmpty returns true if the schema is empty or nil.
func (s Schema) IsEmpty() bool {
	return len(s.raw) == 0 || string(s.raw) == "{}" || string(s.raw) == "null"
}

// MarshalJSON implements json.Marshaler.
func (s Schema) MarshalJSON() ([]byte, error) {
	if s.raw == nil {
		return []byte("{}"), nil
	}
	return s.raw, nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Schema) UnmarshalJSON(data []byte) error {
	s.raw = append(json.RawMessage(nil), data...)
	return nil
}
