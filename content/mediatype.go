package content

import (
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
)

// MediaParam is one media type parameter.
type MediaParam struct {
	Name  string
	Value string
}

// MediaTypeInfo is a parsed Content-Type value. Type, subtype, suffix and
// parameter names are lower-cased; parameters keep their order.
type MediaTypeInfo struct {
	Type    string
	Subtype string
	// Suffix is the structured syntax suffix without the '+', e.g. "json"
	// for application/vnd.api+json.
	Suffix string
	Params []MediaParam
}

// ParseMediaType parses a Content-Type header value such as
// "application/vnd.api+json; charset=utf-8". A value without a type and
// subtype is INVALID_VALUE_FORMAT.
func ParseMediaType(raw string) (MediaTypeInfo, error) {
	head, rest, _ := strings.Cut(raw, ";")
	typ, sub, ok := strings.Cut(strings.ToLower(strings.TrimSpace(head)), "/")
	if !ok || !isToken(typ) || sub == "" {
		return MediaTypeInfo{}, oaserrors.New(oaserrors.KindInvalidValueFormat, "content-type", "malformed media type %q", raw)
	}
	info := MediaTypeInfo{Type: typ, Subtype: sub}
	if i := strings.LastIndexByte(sub, '+'); i > 0 && i < len(sub)-1 {
		info.Subtype, info.Suffix = sub[:i], sub[i+1:]
	}
	if !isToken(info.Subtype) {
		return MediaTypeInfo{}, oaserrors.New(oaserrors.KindInvalidValueFormat, "content-type", "malformed media type %q", raw)
	}

	for _, p := range splitParams(rest) {
		name, value, ok := strings.Cut(p, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if !ok || !isToken(name) {
			return MediaTypeInfo{}, oaserrors.New(oaserrors.KindInvalidValueFormat, "content-type", "malformed media type parameter %q", p)
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = unquote(value[1 : len(value)-1])
		}
		info.Params = append(info.Params, MediaParam{Name: name, Value: value})
	}
	return info, nil
}

// MustParseMediaType is ParseMediaType for literals known to be valid.
func MustParseMediaType(raw string) MediaTypeInfo {
	info, err := ParseMediaType(raw)
	if err != nil {
		panic(err)
	}
	return info
}

// Param returns the value of a named parameter.
func (m MediaTypeInfo) Param(name string) (string, bool) {
	name = strings.ToLower(name)
	for _, p := range m.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Essence is "type/subtype[+suffix]" without parameters.
func (m MediaTypeInfo) Essence() string {
	if m.Suffix != "" {
		return m.Type + "/" + m.Subtype + "+" + m.Suffix
	}
	return m.Type + "/" + m.Subtype
}

// String renders the media type with its parameters.
func (m MediaTypeInfo) String() string {
	var b strings.Builder
	b.WriteString(m.Essence())
	for _, p := range m.Params {
		b.WriteString("; ")
		b.WriteString(p.Name)
		b.WriteByte('=')
		if isToken(p.Value) {
			b.WriteString(p.Value)
		} else {
			b.WriteString(`"` + strings.ReplaceAll(strings.ReplaceAll(p.Value, `\`, `\\`), `"`, `\"`) + `"`)
		}
	}
	return b.String()
}

// Includes reports whether candidate is an acceptable instance of m. The
// type must match; the subtype must match unless m's is "*"; m's suffix,
// when set, must match; every parameter of m must be present on candidate
// with an equal value. Extra candidate parameters are ignored.
func (m MediaTypeInfo) Includes(candidate MediaTypeInfo) bool {
	if m.Type != "*" && m.Type != candidate.Type {
		return false
	}
	if m.Subtype != "*" && m.Subtype != candidate.Subtype {
		return false
	}
	if m.Suffix != "" && m.Suffix != candidate.Suffix {
		return false
	}
	for _, p := range m.Params {
		v, ok := candidate.Param(p.Name)
		if !ok {
			return false
		}
		if p.Name == "charset" {
			if !strings.EqualFold(v, p.Value) {
				return false
			}
		} else if v != p.Value {
			return false
		}
	}
	return true
}

// splitParams splits on ';' outside quoted strings.
func splitParams(s string) []string {
	var out []string
	start, quoted := 0, false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				out = appendParam(out, s[start:i])
				start = i + 1
			}
		}
	}
	return appendParam(out, s[start:])
}

func appendParam(out []string, p string) []string {
	if strings.TrimSpace(p) == "" {
		return out
	}
	return append(out, p)
}

func unquote(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// isToken reports whether s is an RFC 7230 token.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= ' ' || c >= 0x7f || strings.IndexByte(`()<>@,;:\"/[]?={}`, c) >= 0 {
			return false
		}
	}
	return true
}
