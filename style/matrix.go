package style

import (
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/schema"
)

// matrixStyle: ;name=a,b,c / ;name=a;name=b for arrays, ;name=k1,v1 /
// ;k1=v1;k2=v2 for objects.
type matrixStyle struct{}

// named strips ";name=" (or a bare ";name", the empty value).
func (matrixStyle) named(p *Param, raw string) (string, error) {
	rest, ok := strings.CutPrefix(raw, ";"+p.Name)
	if !ok {
		return "", oaserrors.New(oaserrors.KindInvalidValueFormat, p.loc(), "matrix value must start with ';%s'", p.Name)
	}
	if rest == "" {
		return "", nil
	}
	value, ok := strings.CutPrefix(rest, "=")
	if !ok {
		return "", oaserrors.New(oaserrors.KindInvalidValueFormat, p.loc(), "matrix value must start with ';%s='", p.Name)
	}
	return value, nil
}

func (s matrixStyle) TransformPrimitive(p *Param, raw string) (any, error) {
	v, err := s.named(p, raw)
	if err != nil {
		return nil, err
	}
	return p.value(v, p.scalarType())
}

func (s matrixStyle) TransformArray(p *Param, raw string) (any, error) {
	if !p.Explode {
		v, err := s.named(p, raw)
		if err != nil {
			return nil, err
		}
		return p.array(split(v, ","))
	}
	if !strings.HasPrefix(raw, ";") {
		return nil, oaserrors.New(oaserrors.KindInvalidValueFormat, p.loc(), "matrix value must start with ';'")
	}
	pieces := strings.Split(raw[1:], ";")
	tokens := make([]string, len(pieces))
	for i, piece := range pieces {
		v, err := s.named(p, ";"+piece)
		if err != nil {
			return nil, err
		}
		tokens[i] = v
	}
	return p.array(tokens)
}

func (s matrixStyle) TransformObject(p *Param, raw string) (any, error) {
	if !p.Explode {
		v, err := s.named(p, raw)
		if err != nil {
			return nil, err
		}
		return p.alternating(split(v, ","))
	}
	rest, ok := strings.CutPrefix(raw, ";")
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidValueFormat, p.loc(), "matrix value must start with ';'")
	}
	return p.pairs(split(rest, ";"))
}

func (s matrixStyle) Render(p *Param, value any) (string, error) {
	prefix := ";" + p.Name + "="
	switch p.Shape {
	case schema.ShapeArray:
		items, err := p.renderArray(value)
		if err != nil {
			return "", err
		}
		if p.Explode {
			return prefix + strings.Join(items, ";"+p.Name+"="), nil
		}
		return prefix + strings.Join(items, ","), nil
	case schema.ShapeObject:
		entries, err := p.renderObject(value)
		if err != nil {
			return "", err
		}
		if p.Explode {
			return joinPairs(entries, ";", ""), nil
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
