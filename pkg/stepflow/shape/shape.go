// Package shape provides runtime value validation for the untyped flow
// boundary, backed by JSON Schema.
//
// A Shape validates without throwing: SafeParse reports success or
// failure, which lets the flow executor try a value against the
// continuation shape first and fall back to the output shape.
package shape

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Shape describes the required structure of a value.
// A nil *Shape (or one built with Any) accepts anything.
//
// Values are JSON-normalized before validation, so Go structs, maps,
// and primitives all validate against the same schema their JSON
// encoding would.
type Shape struct {
	name     string
	schema   *jsonschema.Schema
	resolved *jsonschema.Resolved
}

// Any returns a shape that accepts every JSON-encodable value.
func Any() *Shape {
	return &Shape{name: "any"}
}

// FromSchema builds a shape from a JSON Schema.
// The schema is resolved eagerly so SafeParse never pays resolution cost.
func FromSchema(s *jsonschema.Schema) (*Shape, error) {
	resolved, err := s.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	return &Shape{schema: s, resolved: resolved}, nil
}

// For derives a shape from a Go type using its json and jsonschema
// struct tags.
func For[T any]() (*Shape, error) {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, fmt.Errorf("derive schema: %w", err)
	}
	return FromSchema(s)
}

// MustFor is For but panics on error. Intended for package-level shape
// variables built from static types.
func MustFor[T any]() *Shape {
	sh, err := For[T]()
	if err != nil {
		panic("shape: " + err.Error())
	}
	return sh
}

// Named sets a display name used in Parse error messages.
func (s *Shape) Named(name string) *Shape {
	s.name = name
	return s
}

// Name returns the shape's display name, or "" if unset.
func (s *Shape) Name() string {
	if s == nil {
		return "any"
	}
	return s.name
}

// IsAny reports whether the shape accepts everything.
func (s *Shape) IsAny() bool {
	return s == nil || s.resolved == nil
}

// Schema returns the underlying JSON Schema, or nil for an any-shape.
func (s *Shape) Schema() *jsonschema.Schema {
	if s == nil {
		return nil
	}
	return s.schema
}

// SafeParse validates v and returns its JSON-normalized form.
// It never returns an error value; the boolean is false when v does not
// conform (or cannot be JSON-encoded at all).
func (s *Shape) SafeParse(v any) (any, bool) {
	norm, err := normalize(v)
	if err != nil {
		return nil, false
	}
	if s.IsAny() {
		return norm, true
	}
	if err := s.resolved.Validate(norm); err != nil {
		return nil, false
	}
	return norm, true
}

// Parse validates v and returns its JSON-normalized form, or the
// validation error.
func (s *Shape) Parse(v any) (any, error) {
	norm, err := normalize(v)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	if s.IsAny() {
		return norm, nil
	}
	if err := s.resolved.Validate(norm); err != nil {
		if s.name != "" {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		return nil, err
	}
	return norm, nil
}

// normalize round-trips v through JSON so validation sees the same
// value the wire would carry (structs become maps, numbers float64).
func normalize(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
