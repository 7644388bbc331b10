package schema

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema is a parsed and resolved JSON Schema, identified by the filename it
// was loaded from. Instances are immutable once loaded.
type Schema struct {
	name     string
	path     string
	raw      json.RawMessage
	resolved *jsonschema.Resolved
}

// Parse builds a Schema from raw JSON Schema bytes.
func Parse(name, path string, raw []byte) (*Schema, error) {
	var js jsonschema.Schema
	if err := json.Unmarshal(raw, &js); err != nil {
		return nil, NewValidationError(name, "invalid schema document: "+err.Error())
	}
	resolved, err := js.Resolve(nil)
	if err != nil {
		return nil, NewValidationError(name, "failed to resolve schema: "+err.Error())
	}
	return &Schema{
		name:     name,
		path:     path,
		raw:      append(json.RawMessage(nil), raw...),
		resolved: resolved,
	}, nil
}

// Name returns the filename the schema was loaded under.
func (s *Schema) Name() string {
	return s.name
}

// Path returns the location the schema file was found at.
func (s *Schema) Path() string {
	return s.path
}

// JSON returns the raw schema document.
func (s *Schema) JSON() json.RawMessage {
	return append(json.RawMessage(nil), s.raw...)
}

// Validate checks doc against the schema. It returns nil on success and a
// *ValidationError describing the first violation otherwise.
func (s *Schema) Validate(doc map[string]interface{}) error {
	if err := s.resolved.Validate(doc); err != nil {
		return NewValidationError(s.name, err.Error())
	}
	return nil
}
