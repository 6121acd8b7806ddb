package style

import (
	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/schema"
)

// Style is a parameter serialization style.
type Style string

const (
	// Simple is the default for path and header parameters: a,b,c
	Simple Style = "simple"
	// Label prefixes values with a dot: .a.b.c
	Label Style = "label"
	// Matrix prefixes values with ;name=
	Matrix Style = "matrix"
	// Form is the default for query and cookie parameters: name=a&name=b
	Form Style = "form"
	// DeepObject renders exploded objects as name[key]=value
	DeepObject Style = "deepObject"
	// SpaceDelimited is recognized but not implemented.
	SpaceDelimited Style = "spaceDelimited"
	// PipeDelimited is recognized but not implemented.
	PipeDelimited Style = "pipeDelimited"
)

// Parse converts a declared style name. Styles OpenAPI defines but this
// package does not implement are UNSUPPORTED_FEATURE; anything else is
// INVALID_SPEC.
func Parse(s string) (Style, error) {
	switch st := Style(s); st {
	case Simple, Label, Matrix, Form, DeepObject:
		return st, nil
	case SpaceDelimited, PipeDelimited:
		return "", oaserrors.New(oaserrors.KindUnsupportedFeature, "", "style %q is not supported", s)
	default:
		return "", oaserrors.New(oaserrors.KindInvalidSpec, "", "unknown style %q", s)
	}
}

// DefaultExplode is the explode default OpenAPI assigns to a style.
func (s Style) DefaultExplode() bool {
	return s == Form
}

// Escaping selects how individual wire elements are percent-decoded.
type Escaping int

const (
	// EscapeNone leaves elements untouched (headers, pre-decoded input).
	EscapeNone Escaping = iota
	// EscapePath applies RFC 3986 path unescaping.
	EscapePath
	// EscapeQuery applies application/x-www-form-urlencoded unescaping.
	EscapeQuery
)

// Param describes the parameter a raw value belongs to.
type Param struct {
	// Name is the declared parameter name.
	Name string
	// Style selects the wire grammar.
	Style Style
	// Explode selects the multi-value variant of the grammar.
	Explode bool
	// Shape is the JSON shape of the value.
	Shape schema.Shape
	// Schema is consulted for element types; may be nil.
	Schema map[string]any
	// Escaping applies to every element after splitting.
	Escaping Escaping
	// Location names the parameter in errors, e.g. "query.color".
	// Defaults to Name.
	Location string
}

func (p *Param) loc() string {
	if p.Location != "" {
		return p.Location
	}
	return p.Name
}

// Strategy implements one style's wire grammar in both directions.
type Strategy interface {
	TransformPrimitive(p *Param, raw string) (any, error)
	TransformArray(p *Param, raw string) (any, error)
	TransformObject(p *Param, raw string) (any, error)
	Render(p *Param, value any) (string, error)
}

var strategies = map[Style]Strategy{
	Simple:     simpleStyle{},
	Label:      labelStyle{},
	Matrix:     matrixStyle{},
	Form:       formStyle{},
	DeepObject: deepObjectStyle{},
}

// Lookup returns the strategy for s.
func Lookup(s Style) (Strategy, bool) {
	st, ok := strategies[s]
	return st, ok
}

// Transform decodes raw into a JSON value according to the parameter's
// style and shape.
func Transform(p *Param, raw string) (any, error) {
	st, ok := strategies[p.Style]
	if !ok {
		return nil, oaserrors.New(oaserrors.KindUnsupportedValueFormat, p.loc(), "style %q is not supported", p.Style)
	}
	switch p.Shape {
	case schema.ShapeArray:
		return st.TransformArray(p, raw)
	case schema.ShapeObject:
		return st.TransformObject(p, raw)
	default:
		return st.TransformPrimitive(p, raw)
	}
}

// Render encodes value in the parameter's wire form. It is the inverse of
// Transform.
func Render(p *Param, value any) (string, error) {
	st, ok := strategies[p.Style]
	if !ok {
		return "", oaserrors.New(oaserrors.KindUnsupportedValueFormat, p.loc(), "style %q is not supported", p.Style)
	}
	return st.Render(p, value)
}

func (p *Param) itemType() string {
	if items := schema.Items(p.Schema); items != nil {
		return schema.TypeOf(items)
	}
	return ""
}

func (p *Param) propertyType(name string) string {
	if prop := schema.Property(p.Schema, name); prop != nil {
		return schema.TypeOf(prop)
	}
	return ""
}

func (p *Param) scalarType() string {
	if p.Schema == nil {
		return ""
	}
	return schema.TypeOf(p.Schema)
}
