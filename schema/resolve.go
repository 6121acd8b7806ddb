package schema

import (
	"slices"
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/parser"
)

// Resolve produces the fully resolved form of an OpenAPI document and
// registers it with the repository.
//
// Outside of schemas every {"$ref": "#/..."} object (parameters, request
// bodies, responses, headers, path items) is replaced by a copy of its
// target. Inside schemas references are kept, made absolute against
// DocumentURI, so recursive schemas stay finite and are evaluated by the
// engine. For 3.0 documents "nullable: true" is folded into the type list.
//
// The input document is not modified.
func (r *Repository) Resolve(doc map[string]any) (map[string]any, error) {
	res := &resolver{repo: r, root: doc}
	out, err := res.node(doc, nil, false, nil)
	if err != nil {
		return nil, err
	}
	resolved := out.(map[string]any)
	if err := r.Dereference(r.docURI, resolved); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.doc = resolved
	r.mu.Unlock()
	r.logger.Debug("resolved contract document", "uri", r.docURI)
	return resolved, nil
}

type resolver struct {
	repo *Repository
	root map[string]any
}

func (res *resolver) node(v any, path []string, inSchema bool, refs []string) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		if inSchema {
			return res.schemaObject(t, path, refs)
		}
		if ref, ok := t["$ref"].(string); ok {
			if slices.Contains(refs, ref) {
				return nil, oaserrors.New(oaserrors.KindInvalidSpec, pointer(path), "circular reference %s", ref)
			}
			target, err := Lookup(res.root, ref)
			if err != nil {
				return nil, err
			}
			return res.node(target, path, false, append(slices.Clip(refs), ref))
		}
		out := make(map[string]any, len(t))
		for k, e := range t {
			child := append(slices.Clip(path), k)
			switch {
			case k == "example" || strings.HasPrefix(k, "x-"):
				out[k] = e
				continue
			case k == "examples":
				out[k] = e
				continue
			case len(path) == 1 && path[0] == "components" && k == "schemas":
				named, err := res.componentSchemas(e, child, refs)
				if err != nil {
					return nil, err
				}
				out[k] = named
				continue
			}
			resolved, err := res.node(e, child, k == "schema", refs)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			resolved, err := res.node(e, append(slices.Clip(path), "-"), inSchema, refs)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

// schemaObject copies a schema, absolutizing local references.
func (res *resolver) schemaObject(t map[string]any, path []string, refs []string) (any, error) {
	out := make(map[string]any, len(t))
	for k, e := range t {
		child := append(slices.Clip(path), k)
		switch {
		case k == "$ref":
			if ref, ok := e.(string); ok && strings.HasPrefix(ref, "#") {
				out[k] = res.repo.docURI + ref
				continue
			}
			out[k] = e
		case k == "example" || k == "examples" || k == "default" || k == "enum" || k == "const" || strings.HasPrefix(k, "x-"):
			out[k] = e
		case namedSchemas[k]:
			m, ok := e.(map[string]any)
			if !ok {
				out[k] = e
				continue
			}
			named := make(map[string]any, len(m))
			for name, sub := range m {
				resolved, err := res.node(sub, append(slices.Clip(child), name), true, refs)
				if err != nil {
					return nil, err
				}
				named[name] = resolved
			}
			out[k] = named
		default:
			resolved, err := res.node(e, child, true, refs)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
	}
	if res.repo.version == parser.OASVersion30x {
		foldNullable(out)
	}
	return out, nil
}

// namedSchemas are keywords whose value maps arbitrary names to schemas.
var namedSchemas = map[string]bool{
	"properties":        true,
	"patternProperties": true,
	"definitions":       true,
	"$defs":             true,
	"dependentSchemas":  true,
}

// foldNullable rewrites the 3.0 "nullable" keyword into a draft 4 type list.
func foldNullable(s map[string]any) {
	if nullable, _ := s["nullable"].(bool); !nullable {
		return
	}
	if typ, ok := s["type"].(string); ok {
		s["type"] = []any{typ, "null"}
	}
	if enum, ok := s["enum"].([]any); ok && !slices.Contains(enum, nil) {
		s["enum"] = append(slices.Clone(enum), nil)
	}
}

func (res *resolver) componentSchemas(v any, path []string, refs []string) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindInvalidSpec, pointer(path), "components.schemas must be an object")
	}
	out := make(map[string]any, len(m))
	for name, sub := range m {
		resolved, err := res.node(sub, append(slices.Clip(path), name), true, refs)
		if err != nil {
			return nil, err
		}
		out[name] = resolved
	}
	return out, nil
}

func pointer(path []string) string {
	if len(path) == 0 {
		return "#"
	}
	escaped := make([]string, len(path))
	for i, p := range path {
		escaped[i] = strings.ReplaceAll(strings.ReplaceAll(p, "~", "~0"), "/", "~1")
	}
	return "#/" + strings.Join(escaped, "/")
}
