package schema

import "slices"

// Shape is the JSON shape a parameter value takes on the wire.
type Shape int

const (
	// ShapePrimitive covers strings, numbers, integers, booleans and null.
	ShapePrimitive Shape = iota
	// ShapeArray is a JSON array.
	ShapeArray
	// ShapeObject is a JSON object.
	ShapeObject
)

func (s Shape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeObject:
		return "object"
	default:
		return "primitive"
	}
}

// TypeOf returns the declared JSON type of a schema. A type list yields its
// first non-null entry. Without a "type" keyword the type is inferred from
// structural keywords, and "" is returned when nothing hints at one.
func TypeOf(raw map[string]any) string {
	switch t := raw["type"].(type) {
	case string:
		return t
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s != "null" {
				return s
			}
		}
	}
	switch {
	case raw["properties"] != nil, raw["additionalProperties"] != nil, raw["patternProperties"] != nil:
		return "object"
	case raw["items"] != nil, raw["prefixItems"] != nil:
		return "array"
	}
	return ""
}

// ShapeOf derives the wire shape of a schema from its declared type.
func ShapeOf(raw map[string]any) Shape {
	switch TypeOf(raw) {
	case "array":
		return ShapeArray
	case "object":
		return ShapeObject
	default:
		return ShapePrimitive
	}
}

// Items returns the item schema of an array schema, or nil.
func Items(raw map[string]any) map[string]any {
	m, _ := raw["items"].(map[string]any)
	return m
}

// Property returns the schema of a named object property, falling back to
// additionalProperties when it is a schema.
func Property(raw map[string]any, name string) map[string]any {
	if props, ok := raw["properties"].(map[string]any); ok {
		if m, ok := props[name].(map[string]any); ok {
			return m
		}
	}
	m, _ := raw["additionalProperties"].(map[string]any)
	return m
}

// PropertyNames returns the declared property names of an object schema.
func PropertyNames(raw map[string]any) []string {
	props, _ := raw["properties"].(map[string]any)
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// binaryKeywords may accompany a binary string schema without constraining it.
var binaryKeywords = map[string]bool{
	"type":             true,
	"format":           true,
	"title":            true,
	"description":      true,
	"example":          true,
	"examples":         true,
	"nullable":         true,
	"deprecated":       true,
	"readOnly":         true,
	"writeOnly":        true,
	"contentMediaType": true,
}

// IsBinary reports whether raw declares an opaque binary string
// ({type: string, format: binary}) and nothing that could constrain it.
func IsBinary(raw map[string]any) bool {
	if TypeOf(raw) != "string" || raw["format"] != "binary" {
		return false
	}
	for k := range raw {
		if !binaryKeywords[k] && !isExtension(k) {
			return false
		}
	}
	return true
}

// IsEmpty reports whether raw has no keywords other than extensions.
func IsEmpty(raw map[string]any) bool {
	for k := range raw {
		if !isExtension(k) {
			return false
		}
	}
	return true
}

func isExtension(k string) bool {
	return len(k) > 2 && k[:2] == "x-"
}
