package contract

import (
	"slices"
	"strconv"
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/schema"
	"github.com/erraggy/oascontract/style"
)

// allowedStyles lists the styles OpenAPI permits per location.
var allowedStyles = map[Location][]style.Style{
	InPath:   {style.Simple, style.Label, style.Matrix},
	InHeader: {style.Simple},
	InQuery:  {style.Form, style.DeepObject, style.SpaceDelimited, style.PipeDelimited},
	InCookie: {style.Form},
}

// ignoredHeaders are header parameters OpenAPI says to ignore.
var ignoredHeaders = []string{"accept", "content-type", "authorization"}

func (b *builder) parameters(raw any, path ...string) ([]*Parameter, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, at(path...), "parameters must be an array")
	}
	var out []*Parameter
	for i, e := range list {
		loc := at(append(path, strconv.Itoa(i))...)
		p, err := b.parameter(e, loc)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		if slices.ContainsFunc(out, func(o *Parameter) bool { return o.In == p.In && o.Name == p.Name }) {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "duplicate parameter %s", p.Key())
		}
		out = append(out, p)
	}
	return out, nil
}

// parameter builds one parameter. Ignored header parameters yield nil.
func (b *builder) parameter(raw any, loc string) (*Parameter, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "parameter must be an object")
	}
	name, _ := m["name"].(string)
	if name == "" {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "parameter must have a name")
	}
	in := Location(stringField(m, "in"))
	if _, known := allowedStyles[in]; !known {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "parameter %q has invalid location %q", name, in)
	}
	if in == InHeader && slices.Contains(ignoredHeaders, strings.ToLower(name)) {
		b.c.logger.Debug("ignoring reserved header parameter", "name", name, "location", loc)
		return nil, nil
	}

	p := &Parameter{Name: name, In: in}
	p.Required, _ = m["required"].(bool)
	p.Deprecated, _ = m["deprecated"].(bool)
	if in == InPath {
		if required, declared := m["required"]; declared && required != true {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "path parameter %q must be required", name)
		}
		p.Required = true
	}

	if err := b.parameterSchema(p, m, loc); err != nil {
		return nil, err
	}
	if err := resolveStyle(p, m, loc); err != nil {
		return nil, err
	}
	return p, nil
}

// header builds a response header, which is a parameter without name and
// location fields.
func (b *builder) header(name string, raw any, path ...string) (*Parameter, error) {
	loc := at(path...)
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "header must be an object")
	}
	if s, declared := m["style"]; declared && s != string(style.Simple) {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, loc, "header %q must use simple style", name)
	}
	p := &Parameter{Name: name, In: InHeader, Style: style.Simple}
	p.Required, _ = m["required"].(bool)
	p.Deprecated, _ = m["deprecated"].(bool)
	p.Explode, _ = m["explode"].(bool)
	if err := b.parameterSchema(p, m, loc); err != nil {
		return nil, err
	}
	return p, nil
}

func (b *builder) parameterSchema(p *Parameter, m map[string]any, loc string) error {
	if _, hasContent := m["content"]; hasContent {
		return oaserrors.New(oaserrors.KindUnsupportedFeature, loc, "parameter %q uses content instead of schema", p.Name)
	}
	rawSchema, present := m["schema"]
	if !present {
		return oaserrors.New(oaserrors.KindInvalidSpec, loc, "parameter %q has no schema", p.Name)
	}
	v, err := b.c.repo.Validator(rawSchema)
	if err != nil {
		return relocate(err, loc+"/schema")
	}
	p.Schema = v
	if raw := v.Resolved(); raw != nil {
		p.Shape = schema.ShapeOf(raw)
	}
	return nil
}

// resolveStyle applies location defaults and the per-location style rules.
func resolveStyle(p *Parameter, m map[string]any, loc string) error {
	declared := stringField(m, "style")
	if declared == "" {
		if p.In == InPath || p.In == InHeader {
			declared = string(style.Simple)
		} else {
			declared = string(style.Form)
		}
	}
	if !slices.Contains(allowedStyles[p.In], style.Style(declared)) {
		return oaserrors.New(oaserrors.KindInvalidSpec, loc, "style %q is not allowed for %s parameter %q", declared, p.In, p.Name)
	}
	st, err := style.Parse(declared)
	if err != nil {
		return relocate(err, loc)
	}
	p.Style = st

	p.Explode = st.DefaultExplode()
	if explode, ok := m["explode"].(bool); ok {
		p.Explode = explode
	}

	if p.In == InCookie && p.Explode && p.Shape == schema.ShapeArray {
		return oaserrors.New(oaserrors.KindInvalidSpec, loc, "cookie parameter %q cannot be an exploded array", p.Name)
	}
	return nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
