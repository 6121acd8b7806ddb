package style

import (
	"bytes"
	"net/url"
	"slices"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/erraggy/oascontract/oaserrors"
)

// DecodeValue decodes a single wire token into a JSON value.
//
// A token that is a strict JSON literal decodes as such, so "42" is the
// integer 42 and "true" the boolean. Anything else that does not start with
// a quote is taken as a plain string; an empty token is the empty string.
// A declared string type keeps unquoted text as is, so "42" stays "42".
// A token starting with a quote is always decoded strictly, whatever the
// declared type: a quoted 42 is the string 42, and a quoted token that is
// not valid JSON is ILLEGAL_VALUE.
func DecodeValue(raw, declaredType string) (any, error) {
	if raw == "" || (declaredType == "string" && !strings.HasPrefix(raw, `"`)) {
		return raw, nil
	}
	data := []byte(raw)
	if gojson.Valid(data) {
		dec := gojson.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err == nil {
			return NormalizeNumbers(v), nil
		}
	}
	if strings.HasPrefix(raw, `"`) {
		return nil, oaserrors.New(oaserrors.KindIllegalValue, "", "value %s is not a valid JSON string", raw)
	}
	return raw, nil
}

// number matches the json.Number implementations of both encoding/json
// and goccy/go-json.
type number interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

// NormalizeNumbers replaces decoded json.Number values with int64 when the
// literal is integral and fits, float64 otherwise.
func NormalizeNumbers(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			t[k] = NormalizeNumbers(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = NormalizeNumbers(e)
		}
		return t
	case number:
		if !strings.ContainsAny(t.String(), ".eE") {
			if i, err := t.Int64(); err == nil {
				return i
			}
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}

// encodeValue is the inverse of DecodeValue for primitives. Strings are
// written bare; everything else as JSON.
func encodeValue(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	data, err := gojson.Marshal(v)
	if err != nil {
		return "", oaserrors.Wrap(oaserrors.KindIllegalValue, "", err, "value cannot be encoded")
	}
	return string(data), nil
}

func (p *Param) unescape(s string) (string, error) {
	switch p.Escaping {
	case EscapePath:
		u, err := url.PathUnescape(s)
		if err != nil {
			return "", oaserrors.Wrap(oaserrors.KindIllegalValue, p.loc(), err, "malformed percent-encoding")
		}
		return u, nil
	case EscapeQuery:
		u, err := url.QueryUnescape(s)
		if err != nil {
			return "", oaserrors.Wrap(oaserrors.KindIllegalValue, p.loc(), err, "malformed percent-encoding")
		}
		return u, nil
	default:
		return s, nil
	}
}

func (p *Param) escape(s string) string {
	switch p.Escaping {
	case EscapePath:
		return url.PathEscape(s)
	case EscapeQuery:
		return url.QueryEscape(s)
	default:
		return s
	}
}

// value unescapes and decodes one element token.
func (p *Param) value(token, declaredType string) (any, error) {
	s, err := p.unescape(token)
	if err != nil {
		return nil, err
	}
	v, err := DecodeValue(s, declaredType)
	if err != nil {
		return nil, err.(*oaserrors.Error).WithLocation(p.loc())
	}
	return v, nil
}

// array decodes each token as an array item.
func (p *Param) array(tokens []string) ([]any, error) {
	out := make([]any, 0, len(tokens))
	typ := p.itemType()
	for _, tok := range tokens {
		v, err := p.value(tok, typ)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// alternating decodes k1,v1,k2,v2 token lists.
func (p *Param) alternating(tokens []string) (map[string]any, error) {
	if len(tokens)%2 != 0 {
		return nil, oaserrors.New(oaserrors.KindInvalidValueFormat, p.loc(), "object value has an odd number of key/value tokens")
	}
	out := make(map[string]any, len(tokens)/2)
	for i := 0; i < len(tokens); i += 2 {
		key, err := p.unescape(tokens[i])
		if err != nil {
			return nil, err
		}
		v, err := p.value(tokens[i+1], p.propertyType(key))
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// pairs decodes k1=v1 token lists.
func (p *Param) pairs(tokens []string) (map[string]any, error) {
	out := make(map[string]any, len(tokens))
	for _, tok := range tokens {
		k, v, ok := strings.Cut(tok, "=")
		if !ok {
			return nil, oaserrors.New(oaserrors.KindInvalidValueFormat, p.loc(), "expected key=value, got %q", tok)
		}
		key, err := p.unescape(k)
		if err != nil {
			return nil, err
		}
		decoded, err := p.value(v, p.propertyType(key))
		if err != nil {
			return nil, err
		}
		out[key] = decoded
	}
	return out, nil
}

// split is strings.Split except that the empty string has no elements.
func split(s, sep string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, sep)
}

// renderArray encodes and escapes every array item.
func (p *Param) renderArray(value any) ([]string, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindIllegalValue, p.loc(), "expected an array, got %T", value)
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, err := encodeValue(item)
		if err != nil {
			return nil, err
		}
		out[i] = p.escape(s)
	}
	return out, nil
}

type entry struct {
	key, value string
}

// renderObject encodes and escapes every property, ordered by key.
func (p *Param) renderObject(value any) ([]entry, error) {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindIllegalValue, p.loc(), "expected an object, got %T", value)
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]entry, len(keys))
	for i, k := range keys {
		s, err := encodeValue(obj[k])
		if err != nil {
			return nil, err
		}
		out[i] = entry{key: p.escape(k), value: p.escape(s)}
	}
	return out, nil
}

func (p *Param) renderPrimitive(value any) (string, error) {
	switch value.(type) {
	case []any, map[string]any:
		return "", oaserrors.New(oaserrors.KindIllegalValue, p.loc(), "expected a primitive, got %T", value)
	}
	s, err := encodeValue(value)
	if err != nil {
		return "", err
	}
	return p.escape(s), nil
}

func joinAlternating(entries []entry, sep string) string {
	parts := make([]string, 0, 2*len(entries))
	for _, e := range entries {
		parts = append(parts, e.key, e.value)
	}
	return strings.Join(parts, sep)
}

func joinPairs(entries []entry, prefix, sep string) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = prefix + e.key + "=" + e.value
	}
	return strings.Join(parts, sep)
}
