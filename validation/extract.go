package validation

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/schema"
	"github.com/erraggy/oascontract/style"
)

// queryPiece is one "key=value" element of a query string. raw carries the
// key in canonical escaped form and the value exactly as sent.
type queryPiece struct {
	raw   string
	key   string
	value string
}

type query []queryPiece

func parseQuery(s string) query {
	var q query
	for _, raw := range strings.Split(strings.TrimPrefix(s, "?"), "&") {
		if raw == "" {
			continue
		}
		k, v, hasValue := strings.Cut(raw, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			key = k
		} else if hasValue {
			raw = url.QueryEscape(key) + "=" + v
		} else {
			raw = url.QueryEscape(key)
		}
		q = append(q, queryPiece{raw: raw, key: key, value: v})
	}
	return q
}

func (q query) filter(keep func(queryPiece) bool) []queryPiece {
	var out []queryPiece
	for _, p := range q {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// extracted is the wire text of one parameter.
type extracted struct {
	raw     string
	present bool
	empty   bool
}

// queryValue collects the pieces of the query string that belong to p and
// joins them back into the text its codec expects.
func queryValue(q query, p *contract.Parameter, op *contract.Operation) extracted {
	var pieces []queryPiece
	switch {
	case p.Style == style.DeepObject:
		prefix := p.Name + "["
		pieces = q.filter(func(qp queryPiece) bool { return strings.HasPrefix(qp.key, prefix) })
	case p.Explode && p.Shape == schema.ShapeObject:
		pieces = objectPieces(q, p, op)
	case p.Explode && p.Shape == schema.ShapeArray:
		pieces = q.filter(func(qp queryPiece) bool { return qp.key == p.Name })
	default:
		if i := slices.IndexFunc(q, func(qp queryPiece) bool { return qp.key == p.Name }); i >= 0 {
			pieces = q[i : i+1]
		}
	}
	if len(pieces) == 0 {
		return extracted{}
	}
	raws := make([]string, len(pieces))
	for i, piece := range pieces {
		raws[i] = piece.raw
	}
	return extracted{
		raw:     strings.Join(raws, "&"),
		present: true,
		empty:   len(pieces) == 1 && pieces[0].key == p.Name && pieces[0].value == "",
	}
}

// objectPieces selects the keys of an exploded form object: its declared
// properties, or every key no other query parameter claims when the schema
// declares none.
func objectPieces(q query, p *contract.Parameter, op *contract.Operation) []queryPiece {
	var raw map[string]any
	if p.Schema != nil {
		raw = p.Schema.Resolved()
	}
	props := schema.PropertyNames(raw)
	if len(props) > 0 {
		if extra, open := raw["additionalProperties"]; !open || extra == false {
			return q.filter(func(qp queryPiece) bool { return slices.Contains(props, qp.key) })
		}
	}
	return q.filter(func(qp queryPiece) bool { return !claimed(qp.key, p, op) })
}

func claimed(key string, self *contract.Parameter, op *contract.Operation) bool {
	for _, other := range op.Parameters {
		if other == self || other.In != contract.InQuery {
			continue
		}
		if other.Style == style.DeepObject {
			if strings.HasPrefix(key, other.Name+"[") {
				return true
			}
			continue
		}
		if key == other.Name {
			return true
		}
	}
	return false
}

// headerValue joins every line of a header with commas, the way HTTP folds
// repeated fields.
func headerValue(h http.Header, name string) extracted {
	values := h.Values(name)
	if len(values) == 0 {
		for k, v := range h {
			if strings.EqualFold(k, name) {
				values = v
				break
			}
		}
	}
	if len(values) == 0 {
		return extracted{}
	}
	trimmed := make([]string, len(values))
	for i, v := range values {
		trimmed[i] = strings.TrimSpace(v)
	}
	raw := strings.Join(trimmed, ",")
	return extracted{raw: raw, present: true, empty: raw == ""}
}

func mapValue(m map[string]string, name string) extracted {
	v, ok := m[name]
	if !ok {
		return extracted{}
	}
	return extracted{raw: v, present: true, empty: v == ""}
}
