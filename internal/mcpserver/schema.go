package mcpserver

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// propertyRule adjusts one property of an inferred input schema.
type propertyRule func(*jsonschema.Schema)

func between(lo, hi float64) propertyRule {
	return func(s *jsonschema.Schema) {
		s.Minimum = &lo
		s.Maximum = &hi
	}
}

func atLeast(lo float64) propertyRule {
	return func(s *jsonschema.Schema) {
		s.Minimum = &lo
	}
}

func oneOf(values []string) propertyRule {
	return func(s *jsonschema.Schema) {
		s.Enum = make([]any, len(values))
		for i, v := range values {
			s.Enum[i] = v
		}
	}
}

func positiveItems() propertyRule {
	return func(s *jsonschema.Schema) {
		if s.Items != nil {
			one := 1.0
			s.Items.Minimum = &one
		}
	}
}

// integerOrString lets a property be sent as a number or as a numeric
// string.
func integerOrString() propertyRule {
	return func(s *jsonschema.Schema) {
		s.Type = ""
		s.Types = []string{"integer", "string"}
	}
}

// inputSchema infers the schema of T and applies rules to its properties.
// It panics on a rule naming an unknown property, which is a programming
// error.
func inputSchema[T any](rules map[string][]propertyRule) *jsonschema.Schema {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		panic(fmt.Sprintf("infer input schema: %v", err))
	}
	for name, rs := range rules {
		prop, ok := s.Properties[name]
		if !ok {
			panic(fmt.Sprintf("input schema has no property %q", name))
		}
		for _, r := range rs {
			r(prop)
		}
	}
	return s
}
