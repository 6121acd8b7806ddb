package style

import (
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/schema"
)

// simpleStyle: a,b,c for arrays, k1,v1,k2,v2 or k1=v1,k2=v2 for objects.
type simpleStyle struct{}

func (simpleStyle) TransformPrimitive(p *Param, raw string) (any, error) {
	return p.value(raw, p.scalarType())
}

func (simpleStyle) TransformArray(p *Param, raw string) (any, error) {
	return p.array(split(raw, ","))
}

func (simpleStyle) TransformObject(p *Param, raw string) (any, error) {
	if p.Explode {
		return p.pairs(split(raw, ","))
	}
	return p.alternating(split(raw, ","))
}

func (simpleStyle) Render(p *Param, value any) (string, error) {
	switch p.Shape {
	case schema.ShapeArray:
		items, err := p.renderArray(value)
		if err != nil {
			return "", err
		}
		return strings.Join(items, ","), nil
	case schema.ShapeObject:
		entries, err := p.renderObject(value)
		if err != nil {
			return "", err
		}
		if p.Explode {
			return joinPairs(entries, "", ","), nil
		}
		return joinAlternating(entries, ","), nil
	default:
		return p.renderPrimitive(value)
	}
}

// labelStyle: .a,b,c / .a.b.c for arrays, .k1,v1 / .k1=v1.k2=v2 for
// objects. Non-exploded lists keep RFC 6570's comma separator.
type labelStyle struct{}

func (labelStyle) body(p *Param, raw string) (string, error) {
	rest, ok := strings.CutPrefix(raw, ".")
	if !ok {
		return "", oaserrors.New(oaserrors.KindInvalidValueFormat, p.loc(), "label value must start with '.'")
	}
	return rest, nil
}

func (s labelStyle) separator(p *Param) string {
	if p.Explode {
		return "."
	}
	return ","
}

func (s labelStyle) TransformPrimitive(p *Param, raw string) (any, error) {
	rest, err := s.body(p, raw)
	if err != nil {
		return nil, err
	}
	return p.value(rest, p.scalarType())
}

func (s labelStyle) TransformArray(p *Param, raw string) (any, error) {
	rest, err := s.body(p, raw)
	if err != nil {
		return nil, err
	}
	return p.array(split(rest, s.separator(p)))
}

func (s labelStyle) TransformObject(p *Param, raw string) (any, error) {
	rest, err := s.body(p, raw)
	if err != nil {
		return nil, err
	}
	if p.Explode {
		return p.pairs(split(rest, "."))
	}
	return p.alternating(split(rest, ","))
}

func (s labelStyle) Render(p *Param, value any) (string, error) {
	switch p.Shape {
	case schema.ShapeArray:
		items, err := p.renderArray(value)
		if err != nil {
			return "", err
		}
		return "." + strings.Join(items, s.separator(p)), nil
	case schema.ShapeObject:
		entries, err := p.renderObject(value)
		if err != nil {
			return "", err
		}
		if p.Explode {
			return "." + joinPairs(entries, "", "."), nil
		}
		return "." + joinAlternating(entries, ","), nil
	default:
		v, err := p.renderPrimitive(value)
		if err != nil {
			return "", err
		}
		return "." + v, nil
	}
}
