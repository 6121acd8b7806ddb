package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"net/url"
	"strings"
	"sync"

	gojson "github.com/goccy/go-json"
	"github.com/go-openapi/jsonpointer"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/parser"
)

// DefaultBaseURI is the base under which contract resources are registered.
const DefaultBaseURI = "mem://contract"

// Repository owns every schema compiled for one contract. It is the only
// place that talks to the JSON Schema engine: registration, $ref
// resolution and validator compilation all go through it.
//
// Compilation is serialized; compiled validators are safe for concurrent use.
type Repository struct {
	mu       sync.Mutex
	compiler *jsonschema.Compiler
	version  parser.OASVersion
	baseURI  string
	docURI   string
	doc      map[string]any
	next     int
	logger   parser.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithBaseURI sets the URI prefix used for registered resources.
func WithBaseURI(uri string) Option {
	return func(r *Repository) {
		r.baseURI = strings.TrimSuffix(uri, "/")
	}
}

// WithLogger sets the repository logger.
func WithLogger(l parser.Logger) Option {
	return func(r *Repository) {
		r.logger = parser.Component(l, "schema")
	}
}

// WithFormatAssertions enables format assertions on every draft.
func WithFormatAssertions(enabled bool) Option {
	return func(r *Repository) {
		r.compiler.AssertFormat = enabled
	}
}

// NewRepository creates a repository whose default draft matches the
// OpenAPI version: draft 4 for 3.0.x, 2020-12 for 3.1.x.
func NewRepository(version parser.OASVersion, opts ...Option) *Repository {
	c := jsonschema.NewCompiler()
	if version == parser.OASVersion30x {
		c.Draft = jsonschema.Draft4
	} else {
		c.Draft = jsonschema.Draft2020
	}
	r := &Repository{
		compiler: c,
		version:  version,
		baseURI:  DefaultBaseURI,
		logger:   parser.NopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.docURI = r.baseURI + "/openapi.json"
	return r
}

// DocumentURI is the URI the resolved contract document is registered under.
func (r *Repository) DocumentURI() string {
	return r.docURI
}

// Dereference registers raw under uri so that schemas may $ref into it.
func (r *Repository) Dereference(uri string, raw any) error {
	data, err := gojson.Marshal(raw)
	if err != nil {
		return fmt.Errorf("schema: encoding resource %s: %w", uri, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.compiler.AddResource(uri, bytes.NewReader(data)); err != nil {
		return oaserrors.Wrap(oaserrors.KindInvalidSpec, uri, err, "cannot register schema resource")
	}
	return nil
}

// Validator compiles raw as a standalone schema. Local references inside
// raw must already be absolute (Resolve rewrites them).
func (r *Repository) Validator(raw any) (*Validator, error) {
	if b, ok := raw.(bool); ok {
		raw = boolSchema(b)
	}
	data, err := gojson.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("schema: encoding schema: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	uri := fmt.Sprintf("%s/schemas/%d.json", r.baseURI, r.next)
	if err := r.compiler.AddResource(uri, bytes.NewReader(data)); err != nil {
		return nil, oaserrors.Wrap(oaserrors.KindInvalidSpec, uri, err, "cannot register schema")
	}
	compiled, err := r.compiler.Compile(uri)
	if err != nil {
		return nil, oaserrors.Wrap(oaserrors.KindInvalidSpec, "", err, "cannot compile schema")
	}
	r.logger.Debug("compiled schema", "uri", uri)

	m, _ := raw.(map[string]any)
	return &Validator{schema: compiled, raw: m, uri: uri, repo: r}, nil
}

func boolSchema(b bool) map[string]any {
	if b {
		return map[string]any{}
	}
	return map[string]any{"not": map[string]any{}}
}

// FollowRef follows a chain of $ref keywords from raw into the resolved
// contract document and returns the schema it ends at. References that
// leave the document, dangle or loop stop the walk where they are.
func (r *Repository) FollowRef(raw map[string]any) map[string]any {
	r.mu.Lock()
	doc := r.doc
	r.mu.Unlock()
	if doc == nil {
		return raw
	}
	seen := make(map[string]bool)
	for {
		ref, ok := raw["$ref"].(string)
		if !ok || seen[ref] {
			return raw
		}
		seen[ref] = true
		frag, local := strings.CutPrefix(ref, r.docURI)
		if !local {
			return raw
		}
		target, err := Lookup(doc, frag)
		if err != nil {
			return raw
		}
		m, ok := target.(map[string]any)
		if !ok {
			return raw
		}
		raw = m
	}
}

// Validator validates values against one compiled schema.
type Validator struct {
	schema *jsonschema.Schema
	raw    map[string]any
	uri    string
	repo   *Repository

	once     sync.Once
	resolved map[string]any
}

// Result is the outcome of a validation.
type Result struct {
	Valid  bool
	Errors []oaserrors.Diagnostic
}

// Raw returns the schema object the validator was compiled from.
func (v *Validator) Raw() map[string]any {
	return v.raw
}

// Resolved returns the schema with references followed at the top level
// and in its direct subschemas (items, properties, additionalProperties).
// That is as deep as wire shapes and element types are read. The result
// is shared and must not be modified.
func (v *Validator) Resolved() map[string]any {
	v.once.Do(func() {
		if v.raw == nil || v.repo == nil {
			v.resolved = v.raw
			return
		}
		top := v.repo.FollowRef(v.raw)
		out := maps.Clone(top)
		if items, ok := top["items"].(map[string]any); ok {
			out["items"] = v.repo.FollowRef(items)
		}
		if extra, ok := top["additionalProperties"].(map[string]any); ok {
			out["additionalProperties"] = v.repo.FollowRef(extra)
		}
		if props, ok := top["properties"].(map[string]any); ok {
			named := make(map[string]any, len(props))
			for name, sub := range props {
				if m, ok := sub.(map[string]any); ok {
					sub = v.repo.FollowRef(m)
				}
				named[name] = sub
			}
			out["properties"] = named
		}
		v.resolved = out
	})
	return v.resolved
}

// URI returns the resource URI of the compiled schema.
func (v *Validator) URI() string {
	return v.uri
}

// Validate checks value against the schema. value may hold any JSON
// compatible Go value, including int64 and []byte (validated as a base64
// string, the JSON encoding of bytes).
func (v *Validator) Validate(value any) *Result {
	doc, err := toEngineValue(value)
	if err != nil {
		return &Result{Errors: []oaserrors.Diagnostic{{Message: err.Error()}}}
	}
	if err := v.schema.Validate(doc); err != nil {
		return &Result{Errors: diagnostics(err)}
	}
	return &Result{Valid: true}
}

// toEngineValue re-decodes value the way the engine expects its input:
// encoding/json output with json.Number for numbers.
func toEngineValue(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("value is not JSON encodable: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func diagnostics(err error) []oaserrors.Diagnostic {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []oaserrors.Diagnostic{{Message: err.Error()}}
	}
	var out []oaserrors.Diagnostic
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, oaserrors.Diagnostic{
				InstanceLocation: e.InstanceLocation,
				KeywordLocation:  e.KeywordLocation,
				Message:          e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}

// Lookup returns the value at a local JSON pointer reference ("#/a/b").
func Lookup(doc map[string]any, ref string) (any, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, oaserrors.New(oaserrors.KindUnsupportedFeature, ref, "only local references are supported")
	}
	frag, err := url.PathUnescape(strings.TrimPrefix(ref, "#"))
	if err != nil {
		return nil, oaserrors.Wrap(oaserrors.KindInvalidSpec, ref, err, "malformed reference")
	}
	ptr, err := jsonpointer.New(frag)
	if err != nil {
		return nil, oaserrors.Wrap(oaserrors.KindInvalidSpec, ref, err, "malformed reference")
	}
	v, _, err := ptr.Get(doc)
	if err != nil {
		return nil, oaserrors.Wrap(oaserrors.KindInvalidSpec, ref, err, "unresolvable reference")
	}
	return v, nil
}
