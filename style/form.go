package style

import (
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/schema"
)

// formStyle: name=a,b,c / name=a&name=b for arrays, name=k1,v1 /
// k1=v1&k2=v2 for objects. Cookies use the same grammar.
type formStyle struct{}

// prefix is "name=" with the name escaped like the values.
func (formStyle) prefix(p *Param) string {
	return p.escape(p.Name) + "="
}

// named strips "name=". A bare value is accepted as is.
func (s formStyle) named(p *Param, raw string) string {
	if v, ok := strings.CutPrefix(raw, s.prefix(p)); ok {
		return v
	}
	return raw
}

func (s formStyle) TransformPrimitive(p *Param, raw string) (any, error) {
	return p.value(s.named(p, raw), p.scalarType())
}

func (s formStyle) TransformArray(p *Param, raw string) (any, error) {
	if !p.Explode {
		return p.array(split(s.named(p, raw), ","))
	}
	pieces := split(raw, "&")
	tokens := make([]string, len(pieces))
	for i, piece := range pieces {
		v, ok := strings.CutPrefix(piece, s.prefix(p))
		if !ok {
			return nil, oaserrors.New(oaserrors.KindInvalidValueFormat, p.loc(), "expected %s=value, got %q", p.Name, piece)
		}
		tokens[i] = v
	}
	return p.array(tokens)
}

func (s formStyle) TransformObject(p *Param, raw string) (any, error) {
	if !p.Explode {
		return p.alternating(split(s.named(p, raw), ","))
	}
	return p.pairs(split(raw, "&"))
}

func (s formStyle) Render(p *Param, value any) (string, error) {
	prefix := s.prefix(p)
	switch p.Shape {
	case schema.ShapeArray:
		items, err := p.renderArray(value)
		if err != nil {
			return "", err
		}
		if p.Explode {
			return prefix + strings.Join(items, "&"+prefix), nil
		}
		return prefix + strings.Join(items, ","), nil
	case schema.ShapeObject:
		entries, err := p.renderObject(value)
		if err != nil {
			return "", err
		}
		if p.Explode {
			return joinPairs(entries, "", "&"), nil
		}
		return prefix + joinAlternating(entries, ","), nil
	default:
		v, err := p.renderPrimitive(value)
		if err != nil {
			return "", err
		}
		return prefix + v, nil
	}
}

// deepObjectStyle: name[k1]=v1&name[k2]=v2, exploded objects only.
type deepObjectStyle struct{}

func (deepObjectStyle) unsupported(p *Param, what string) error {
	return oaserrors.New(oaserrors.KindUnsupportedFeature, p.loc(), "deepObject style does not support %s", what)
}

func (s deepObjectStyle) TransformPrimitive(p *Param, _ string) (any, error) {
	return nil, s.unsupported(p, "primitive values")
}

func (s deepObjectStyle) TransformArray(p *Param, _ string) (any, error) {
	return nil, s.unsupported(p, "arrays")
}

func (s deepObjectStyle) TransformObject(p *Param, raw string) (any, error) {
	if !p.Explode {
		return nil, s.unsupported(p, "explode=false")
	}
	pieces := split(raw, "&")
	tokens := make([]string, len(pieces))
	for i, piece := range pieces {
		key, err := p.unescape(piece)
		if err != nil {
			return nil, err
		}
		rest, ok := strings.CutPrefix(key, p.Name+"[")
		if !ok {
			return nil, oaserrors.New(oaserrors.KindInvalidValueFormat, p.loc(), "expected %s[key]=value, got %q", p.Name, piece)
		}
		k, v, ok := strings.Cut(rest, "]=")
		if !ok || strings.ContainsAny(k, "[]") {
			return nil, oaserrors.New(oaserrors.KindInvalidValueFormat, p.loc(), "expected %s[key]=value, got %q", p.Name, piece)
		}
		tokens[i] = p.escape(k) + "=" + p.escape(v)
	}
	return p.pairs(tokens)
}

func (s deepObjectStyle) Render(p *Param, value any) (string, error) {
	if p.Shape != schema.ShapeObject {
		return "", s.unsupported(p, p.Shape.String()+" values")
	}
	if !p.Explode {
		return "", s.unsupported(p, "explode=false")
	}
	entries, err := p.renderObject(value)
	if err != nil {
		return "", err
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = p.Name + "[" + e.key + "]=" + e.value
	}
	return strings.Join(parts, "&"), nil
}
