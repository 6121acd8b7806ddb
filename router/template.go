package router

import (
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
)

// CanonicalToken replaces every placeholder when templates are compared by
// shape.
const CanonicalToken = "{}"

// Template is a parsed path template such as "/pets/{petId}".
type Template struct {
	raw      string
	segments []segment
	params   []string
}

type segment struct {
	literal string
	param   string
}

func (s segment) placeholder() bool {
	return s.param != ""
}

// ParseTemplate validates a path template. The template must start with a
// slash; a trailing slash is dropped. Placeholders must span whole
// segments, be named, and be unique. Wildcards are rejected.
func ParseTemplate(raw string) (*Template, error) {
	if !strings.HasPrefix(raw, "/") {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, raw, "path must start with '/'")
	}
	if strings.Contains(raw, "*") {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, raw, "wildcards are not allowed in paths")
	}
	norm := NormalizePath(raw)
	t := &Template{raw: norm}
	for _, part := range Split(norm) {
		open := strings.Count(part, "{")
		closing := strings.Count(part, "}")
		if open == 0 && closing == 0 {
			t.segments = append(t.segments, segment{literal: part})
			continue
		}
		if open != 1 || closing != 1 || !strings.HasPrefix(part, "{") || !strings.HasSuffix(part, "}") {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, raw, "curly braces must enclose a whole segment, got %q", part)
		}
		name := part[1 : len(part)-1]
		if name == "" {
			return nil, oaserrors.New(oaserrors.KindInvalidSpec, raw, "empty path parameter name")
		}
		for _, existing := range t.params {
			if existing == name {
				return nil, oaserrors.New(oaserrors.KindInvalidSpec, raw, "duplicate path parameter %q", name)
			}
		}
		t.params = append(t.params, name)
		t.segments = append(t.segments, segment{param: name})
	}
	return t, nil
}

// String returns the normalized template.
func (t *Template) String() string {
	return t.raw
}

// Templated reports whether the template has placeholders.
func (t *Template) Templated() bool {
	return len(t.params) > 0
}

// ParamNames returns the placeholder names in order of appearance.
func (t *Template) ParamNames() []string {
	return t.params
}

// Len is the number of segments.
func (t *Template) Len() int {
	return len(t.segments)
}

// Canonical returns the template with every placeholder replaced by
// CanonicalToken, so "/pets/{id}" and "/pets/{petId}" share a shape.
func (t *Template) Canonical() string {
	if !t.Templated() {
		return t.raw
	}
	parts := make([]string, len(t.segments))
	for i, s := range t.segments {
		if s.placeholder() {
			parts[i] = CanonicalToken
		} else {
			parts[i] = s.literal
		}
	}
	return "/" + strings.Join(parts, "/")
}

// score rates how well segs match the template: a placeholder adds 0, a
// literal match at index i adds Len()-i, a literal mismatch returns -1.
func (t *Template) score(segs []string) int {
	total := 0
	for i, s := range t.segments {
		if s.placeholder() {
			continue
		}
		if s.literal != segs[i] {
			return -1
		}
		total += len(t.segments) - i
	}
	return total
}

func (t *Template) extract(segs []string) map[string]string {
	params := make(map[string]string, len(t.params))
	for i, s := range t.segments {
		if s.placeholder() {
			params[s.param] = segs[i]
		}
	}
	return params
}

// NormalizePath drops a query string and a trailing slash ("/" is kept).
func NormalizePath(p string) string {
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

// Split returns the slash-delimited segments of a normalized path. The
// root path has none.
func Split(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
