package contract

import (
	"maps"
	"slices"
	"strings"

	"github.com/erraggy/oascontract/content"
	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/parser"
	"github.com/erraggy/oascontract/router"
	"github.com/erraggy/oascontract/schema"
)

// Contract is the resolved, immutable model of an OpenAPI document. It is
// safe for concurrent use.
type Contract struct {
	version    string
	oasVersion parser.OASVersion
	raw        map[string]any
	repo       *schema.Repository
	registry   *content.Registry
	paths      []*Path
	byTemplate map[string]*Path
	operations []*Operation
	byID       map[string]*Operation
	servers    []Server
	schemes    map[string]SecurityScheme
	router     *router.Router
	logger     parser.Logger
}

// Option configures contract construction.
type Option func(*config)

type config struct {
	logger        parser.Logger
	registry      *content.Registry
	baseURI       string
	formatAsserts bool
	basePath      *string
}

// WithLogger sets the logger used during construction and routing.
func WithLogger(l parser.Logger) Option {
	return func(c *config) {
		c.logger = parser.Component(l, "contract")
	}
}

// WithRegistry sets the content registry that decides which media types
// are supported. Defaults to content.DefaultRegistry.
func WithRegistry(r *content.Registry) Option {
	return func(c *config) {
		c.registry = r
	}
}

// WithSchemaBaseURI sets the URI prefix under which schemas are registered.
func WithSchemaBaseURI(uri string) Option {
	return func(c *config) {
		c.baseURI = uri
	}
}

// WithFormatAssertions makes "format" an assertion rather than an
// annotation.
func WithFormatAssertions(enabled bool) Option {
	return func(c *config) {
		c.formatAsserts = enabled
	}
}

// WithBasePath overrides the base path stripped before routing. By default
// it is the path of the first server URL.
func WithBasePath(p string) Option {
	return func(c *config) {
		c.basePath = &p
	}
}

// New builds a contract from a decoded document. The document is resolved
// by the schema repository first and is not modified.
func New(doc map[string]any, opts ...Option) (*Contract, error) {
	cfg := &config{logger: parser.NopLogger{}}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.registry == nil {
		cfg.registry = content.DefaultRegistry(content.WithLogger(cfg.logger))
	}

	version, oasVersion, err := parser.DetectVersion(doc)
	if err != nil {
		return nil, err
	}
	repoOpts := []schema.Option{schema.WithLogger(cfg.logger), schema.WithFormatAssertions(cfg.formatAsserts)}
	if cfg.baseURI != "" {
		repoOpts = append(repoOpts, schema.WithBaseURI(cfg.baseURI))
	}
	repo := schema.NewRepository(oasVersion, repoOpts...)
	resolved, err := repo.Resolve(doc)
	if err != nil {
		return nil, err
	}

	c := &Contract{
		version:    version,
		oasVersion: oasVersion,
		raw:        resolved,
		repo:       repo,
		registry:   cfg.registry,
		byTemplate: make(map[string]*Path),
		byID:       make(map[string]*Operation),
		schemes:    make(map[string]SecurityScheme),
		logger:     cfg.logger,
	}
	b := &builder{c: c}
	if err := b.build(); err != nil {
		return nil, err
	}

	basePath := ""
	if cfg.basePath != nil {
		basePath = *cfg.basePath
	} else if len(c.servers) > 0 {
		basePath = serverBasePath(c.servers[0].URL)
	}
	templates := make([]*router.Template, len(c.paths))
	for i, p := range c.paths {
		templates[i] = p.Template
	}
	c.router = router.New(templates, router.WithBasePath(basePath), router.WithLogger(cfg.logger))

	c.logger.Debug("built contract", "version", version, "paths", len(c.paths), "operations", len(c.operations))
	return c, nil
}

// FromParseResult builds a contract from a parser result.
func FromParseResult(res *parser.ParseResult, opts ...Option) (*Contract, error) {
	return New(res.Data, opts...)
}

// Load parses the document at path and builds a contract from it.
func Load(path string, opts ...Option) (*Contract, error) {
	cfg := &config{logger: parser.NopLogger{}}
	for _, opt := range opts {
		opt(cfg)
	}
	res, err := parser.ParseWithOptions(parser.WithFilePath(path), parser.WithLogger(cfg.logger))
	if err != nil {
		return nil, err
	}
	return New(res.Data, opts...)
}

// Version returns the raw "openapi" field.
func (c *Contract) Version() string {
	return c.version
}

// OASVersion returns the version family.
func (c *Contract) OASVersion() parser.OASVersion {
	return c.oasVersion
}

// RawDocument returns the resolved document. Callers must not modify it.
func (c *Contract) RawDocument() map[string]any {
	return c.raw
}

// Repository returns the schema repository holding the compiled schemas.
func (c *Contract) Repository() *schema.Repository {
	return c.repo
}

// Registry returns the content registry the contract was checked against.
func (c *Contract) Registry() *content.Registry {
	return c.registry
}

// Paths returns the paths in mount order: concrete paths first, then
// templated ones, each sorted by their canonical shape.
func (c *Contract) Paths() []*Path {
	return c.paths
}

// Path returns the path with the given template.
func (c *Contract) Path(template string) (*Path, bool) {
	p, ok := c.byTemplate[router.NormalizePath(template)]
	return p, ok
}

// Operations returns every operation in mount order, then Methods order.
func (c *Contract) Operations() []*Operation {
	return c.operations
}

// Operation returns the operation with the given id. An unknown id is
// MISSING_OPERATION.
func (c *Contract) Operation(id string) (*Operation, error) {
	op, ok := c.byID[id]
	if !ok {
		return nil, oaserrors.New(oaserrors.KindMissingOperation, id, "no operation with id %q", id)
	}
	return op, nil
}

// Servers returns the declared servers.
func (c *Contract) Servers() []Server {
	return c.servers
}

// SecuritySchemes returns the declared security schemes by name.
func (c *Contract) SecuritySchemes() map[string]SecurityScheme {
	return maps.Clone(c.schemes)
}

// SecuritySchemeNames returns the declared scheme names, sorted.
func (c *Contract) SecuritySchemeNames() []string {
	return slices.Sorted(maps.Keys(c.schemes))
}

// Route is a resolved request target.
type Route struct {
	Path      *Path
	Operation *Operation
	// PathParams holds the raw, still escaped, placeholder values.
	PathParams map[string]string
}

// Route resolves a runtime path and method. No matching path, or a path
// without the method, is MISSING_OPERATION.
func (c *Contract) Route(path, method string) (*Route, error) {
	m, err := c.router.Route(path)
	if err != nil {
		return nil, err
	}
	p := c.byTemplate[m.Template.String()]
	op, ok := p.Operation(method)
	if !ok {
		return nil, oaserrors.New(oaserrors.KindMissingOperation, path, "path %s has no %s operation", p, strings.ToUpper(method))
	}
	return &Route{Path: p, Operation: op, PathParams: m.Params}, nil
}

// FindOperation returns the operation serving a runtime path and method.
func (c *Contract) FindOperation(path, method string) (*Operation, error) {
	r, err := c.Route(path, method)
	if err != nil {
		return nil, err
	}
	return r.Operation, nil
}
