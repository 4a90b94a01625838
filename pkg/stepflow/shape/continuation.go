package shape

import "github.com/google/jsonschema-go/jsonschema"

// Continuation builds the shape of a handoff value: an object carrying
// the flow state under "state" and the name of the node to dispatch
// next under "nextNode". Both fields are required and no others are
// allowed, so a continuation can be told apart from an arbitrary
// object output.
//
// A nil or any state shape leaves "state" unconstrained.
func Continuation(state *Shape) (*Shape, error) {
	stateSchema := state.Schema()
	if stateSchema == nil {
		stateSchema = &jsonschema.Schema{}
	}
	s := &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"state":    stateSchema,
			"nextNode": {Type: "string"},
		},
		Required:             []string{"state", "nextNode"},
		AdditionalProperties: &jsonschema.Schema{Not: &jsonschema.Schema{}},
	}
	sh, err := FromSchema(s)
	if err != nil {
		return nil, err
	}
	return sh.Named("continuation"), nil
}

// MustContinuation is Continuation but panics on error.
func MustContinuation(state *Shape) *Shape {
	sh, err := Continuation(state)
	if err != nil {
		panic("shape: " + err.Error())
	}
	return sh
}
