package content

import (
	"regexp"
	"slices"
	"sync"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/parser"
)

// Input is what an analyser works on.
type Input struct {
	// Info is the parsed Content-Type of the body.
	Info MediaTypeInfo
	// Body is the complete body.
	Body []byte
	// Logger receives tolerated oddities. Never nil.
	Logger parser.Logger
}

// Analyzer is an unchecked body. Check verifies its syntax and returns the
// only value that can be transformed.
type Analyzer interface {
	Check() (*Checked, error)
}

// Checked is a body that passed Check. It carries whatever Check parsed so
// Transform does not repeat the work.
type Checked struct {
	transform func() (any, error)
}

// NewChecked wraps the transform step of a custom analyser.
func NewChecked(transform func() (any, error)) *Checked {
	return &Checked{transform: transform}
}

// Transform converts the checked body into a JSON value.
func (c *Checked) Transform() (any, error) {
	if c == nil || c.transform == nil {
		return nil, oaserrors.New(oaserrors.KindIllegalValue, "body", "body was not checked")
	}
	return c.transform()
}

// Factory creates an analyser for one body.
type Factory func(in Input) Analyzer

// Predicate selects the media types a registration handles.
type Predicate interface {
	Match(info MediaTypeInfo) bool
}

type exact []string

func (e exact) Match(info MediaTypeInfo) bool {
	return slices.Contains(e, info.Essence())
}

// Exact matches the listed media types, ignoring parameters.
func Exact(types ...string) Predicate {
	return exact(types)
}

type pattern struct {
	re *regexp.Regexp
}

func (p pattern) Match(info MediaTypeInfo) bool {
	return p.re.MatchString(info.Essence())
}

// Pattern matches media type essences against re.
func Pattern(re *regexp.Regexp) Predicate {
	return pattern{re: re}
}

type compatible []MediaTypeInfo

func (c compatible) Match(info MediaTypeInfo) bool {
	for _, r := range c {
		if r.Includes(info) {
			return true
		}
	}
	return false
}

// Compatible matches media types included by any of the ranges, e.g.
// "application/*+json" or "text/plain; charset=utf-8". It panics on a
// malformed range.
func Compatible(ranges ...string) Predicate {
	c := make(compatible, len(ranges))
	for i, r := range ranges {
		c[i] = MustParseMediaType(r)
	}
	return c
}

// VendorJSON matches vendor specific JSON types such as
// application/vnd.github.v3+json.
var VendorJSON = regexp.MustCompile(`^[^/]+/vnd\.[\w.-]+\+json$`)

type registration struct {
	predicate Predicate
	factory   Factory
}

// Registry maps media types to analysers. Later registrations take
// precedence over earlier ones. A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []registration
	logger  parser.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger handed to analysers.
func WithLogger(l parser.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = parser.Component(l, "content")
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{logger: parser.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultRegistry returns a registry with the built-in analysers: the JSON
// family, vendor +json types, application/octet-stream, text/plain,
// multipart/form-data and application/x-www-form-urlencoded.
func DefaultRegistry(opts ...RegistryOption) *Registry {
	r := NewRegistry(opts...)
	r.Register(Exact("application/octet-stream"), newBinary)
	r.Register(Exact("text/plain"), newText)
	r.Register(Exact("application/x-www-form-urlencoded"), newURLEncoded)
	r.Register(Exact("multipart/form-data"), newMultipart)
	r.Register(Pattern(VendorJSON), newJSON)
	r.Register(Exact("application/json", "application/problem+json", "application/merge-patch+json"), newJSON)
	return r
}

// Register adds a registration. It overrides earlier registrations for the
// media types it matches.
func (r *Registry) Register(p Predicate, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, registration{predicate: p, factory: f})
}

// Lookup returns the factory for info.
func (r *Registry) Lookup(info MediaTypeInfo) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].predicate.Match(info) {
			return r.entries[i].factory, true
		}
	}
	return nil, false
}

// Supports reports whether some analyser handles info.
func (r *Registry) Supports(info MediaTypeInfo) bool {
	_, ok := r.Lookup(info)
	return ok
}

// Analyze checks and transforms body. An unregistered media type is
// UNSUPPORTED_VALUE_FORMAT.
func (r *Registry) Analyze(info MediaTypeInfo, body []byte) (any, error) {
	f, ok := r.Lookup(info)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindUnsupportedValueFormat, "body", "no analyser for media type %s", info.Essence())
	}
	checked, err := f(Input{Info: info, Body: body, Logger: r.logger}).Check()
	if err != nil {
		return nil, err
	}
	return checked.Transform()
}
