package router

import (
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/parser"
)

// Router resolves runtime paths to templates. Templates are indexed by
// segment count and split into concrete and templated buckets.
//
// A Router is read-only after New and safe for concurrent use.
type Router struct {
	buckets  map[int]*bucket
	basePath string
	logger   parser.Logger
}

type bucket struct {
	concrete  map[string]*Template
	templated []*Template
}

// Option configures a Router.
type Option func(*Router)

// WithBasePath strips a server base path (e.g. "/v1") from runtime paths
// that start with it.
func WithBasePath(p string) Option {
	return func(r *Router) {
		p = NormalizePath(p)
		if p == "/" {
			p = ""
		}
		r.basePath = p
	}
}

// WithLogger sets the router logger.
func WithLogger(l parser.Logger) Option {
	return func(r *Router) {
		r.logger = parser.Component(l, "router")
	}
}

// Match is the result of a successful lookup.
type Match struct {
	// Template is the matched path template.
	Template *Template
	// Params maps placeholder names to their raw (still escaped) segment.
	Params map[string]string
}

// New indexes templates. They must be given in mount order: among equally
// scored candidates the earliest wins.
func New(templates []*Template, opts ...Option) *Router {
	r := &Router{buckets: make(map[int]*bucket), logger: parser.NopLogger{}}
	for _, opt := range opts {
		opt(r)
	}
	for _, t := range templates {
		b := r.buckets[t.Len()]
		if b == nil {
			b = &bucket{concrete: make(map[string]*Template)}
			r.buckets[t.Len()] = b
		}
		if t.Templated() {
			b.templated = append(b.templated, t)
		} else {
			b.concrete[t.String()] = t
		}
	}
	return r
}

// Route finds the template for a runtime path. A concrete template that
// matches literally always wins; otherwise the templated candidate with
// the highest score does. When a base path is configured the stripped path
// is tried first. No match is MISSING_OPERATION.
func (r *Router) Route(path string) (*Match, error) {
	p := NormalizePath(path)
	if trimmed := r.trimBase(p); trimmed != p {
		if m := r.lookup(trimmed); m != nil {
			return m, nil
		}
	}
	if m := r.lookup(p); m != nil {
		return m, nil
	}
	return nil, oaserrors.New(oaserrors.KindMissingOperation, path, "no path matches %s", path)
}

func (r *Router) lookup(p string) *Match {
	segs := Split(p)
	b := r.buckets[len(segs)]
	if b == nil {
		return nil
	}
	if t, ok := b.concrete[p]; ok {
		r.logger.Debug("routed request", "path", p, "template", t.String())
		return &Match{Template: t, Params: map[string]string{}}
	}

	var best *Template
	bestScore := -1
	for _, t := range b.templated {
		if score := t.score(segs); score > bestScore {
			best, bestScore = t, score
		}
	}
	if best == nil {
		return nil
	}
	r.logger.Debug("routed request", "path", p, "template", best.String(), "score", bestScore)
	return &Match{Template: best, Params: best.extract(segs)}
}

func (r *Router) trimBase(p string) string {
	if r.basePath == "" {
		return p
	}
	rest, ok := strings.CutPrefix(p, r.basePath)
	if !ok {
		return p
	}
	if rest == "" {
		return "/"
	}
	if !strings.HasPrefix(rest, "/") {
		return p
	}
	return rest
}
