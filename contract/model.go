package contract

import (
	"strconv"
	"strings"

	"github.com/erraggy/oascontract/content"
	"github.com/erraggy/oascontract/internal/httputil"
	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/router"
	"github.com/erraggy/oascontract/schema"
	"github.com/erraggy/oascontract/style"
)

// Location is where a parameter travels.
type Location string

const (
	// InQuery is a query string parameter.
	InQuery Location = "query"
	// InHeader is a request or response header.
	InHeader Location = "header"
	// InPath is a templated path segment.
	InPath Location = "path"
	// InCookie is a cookie.
	InCookie Location = "cookie"
)

// Methods lists the operation keys of a path item in the order operations
// are reported.
var Methods = httputil.Methods

// Parameter is a declared parameter with its style resolved and its schema
// compiled.
type Parameter struct {
	Name       string
	In         Location
	Required   bool
	Deprecated bool
	Style      style.Style
	Explode    bool
	Shape      schema.Shape
	Schema     *schema.Validator
}

// Key identifies the parameter in errors and result maps, e.g.
// "query.color".
func (p *Parameter) Key() string {
	return string(p.In) + "." + p.Name
}

// Codec returns the codec description of the parameter.
func (p *Parameter) Codec() *style.Param {
	cp := &style.Param{
		Name:     p.Name,
		Style:    p.Style,
		Explode:  p.Explode,
		Shape:    p.Shape,
		Location: p.Key(),
	}
	if p.Schema != nil {
		cp.Schema = p.Schema.Resolved()
	}
	switch p.In {
	case InPath:
		cp.Escaping = style.EscapePath
	case InQuery:
		cp.Escaping = style.EscapeQuery
	}
	return cp
}

// MediaType is one declared content entry.
type MediaType struct {
	// Name is the declared media type key, e.g. "application/json".
	Name string
	// Info is Name parsed.
	Info content.MediaTypeInfo
	// Schema validates the transformed body.
	Schema *schema.Validator
	// Binary is set for {type: string, format: binary} schemas, which are
	// not validated.
	Binary bool
}

// Content maps media types to their declarations.
type Content struct {
	entries []*MediaType
}

// MediaTypes returns the declared media types in sorted order.
func (c *Content) MediaTypes() []*MediaType {
	if c == nil {
		return nil
	}
	return c.entries
}

// Len is the number of declared media types.
func (c *Content) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Match finds the declaration for a concrete media type: an identical
// essence first, then the most specific declaration that includes it.
func (c *Content) Match(info content.MediaTypeInfo) (*MediaType, bool) {
	if c == nil {
		return nil, false
	}
	for _, m := range c.entries {
		if m.Info.Essence() == info.Essence() && m.Info.Includes(info) {
			return m, true
		}
	}
	var best *MediaType
	for _, m := range c.entries {
		if m.Info.Includes(info) && (best == nil || specificity(m.Info) > specificity(best.Info)) {
			best = m
		}
	}
	return best, best != nil
}

func specificity(m content.MediaTypeInfo) int {
	n := len(m.Params)
	if m.Type != "*" {
		n += 100
	}
	if m.Subtype != "*" {
		n += 10
	}
	if m.Suffix != "" {
		n++
	}
	return n
}

// RequestBody is a declared request body.
type RequestBody struct {
	Required bool
	Content  *Content
}

// Response is a declared response.
type Response struct {
	// Status is the declared key: "200", "4XX" or "default".
	Status      string
	Description string
	// Headers excludes Content-Type and always uses simple style.
	Headers []*Parameter
	Content *Content
}

// SecurityRequirement maps scheme names to required scopes.
type SecurityRequirement map[string][]string

// Operation is one method of one path.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Tags        []string
	Deprecated  bool
	Parameters  []*Parameter
	RequestBody *RequestBody
	Responses   map[string]*Response
	Default     *Response
	Security    []SecurityRequirement
}

// Parameter returns the merged parameter with the given location and name.
// Header names compare case-insensitively.
func (o *Operation) Parameter(in Location, name string) (*Parameter, bool) {
	for _, p := range o.Parameters {
		if p.In != in {
			continue
		}
		if p.Name == name || (in == InHeader && strings.EqualFold(p.Name, name)) {
			return p, true
		}
	}
	return nil, false
}

// Response returns the response declared for status: the exact code, then
// its range ("4XX"), then default. Anything else is MISSING_RESPONSE.
func (o *Operation) Response(status int) (*Response, error) {
	code := strconv.Itoa(status)
	if r, ok := o.Responses[code]; ok {
		return r, nil
	}
	if len(code) == 3 {
		if r, ok := o.Responses[code[:1]+"XX"]; ok {
			return r, nil
		}
	}
	if o.Default != nil {
		return o.Default, nil
	}
	return nil, oaserrors.New(oaserrors.KindMissingResponse, o.ID, "operation %s declares no response for status %d", o.ID, status)
}

// Path is one entry of the paths object.
type Path struct {
	Template   *router.Template
	Parameters []*Parameter
	operations map[string]*Operation
}

// String returns the normalized template.
func (p *Path) String() string {
	return p.Template.String()
}

// Operation returns the operation for a method (case-insensitive).
func (p *Path) Operation(method string) (*Operation, bool) {
	op, ok := p.operations[strings.ToLower(method)]
	return op, ok
}

// Operations returns the path's operations in Methods order.
func (p *Path) Operations() []*Operation {
	out := make([]*Operation, 0, len(p.operations))
	for _, m := range Methods {
		if op, ok := p.operations[m]; ok {
			out = append(out, op)
		}
	}
	return out
}

// Server is a declared server.
type Server struct {
	URL         string
	Description string
}

// SecurityScheme is a declared security scheme. It is informational; no
// credentials are checked.
type SecurityScheme struct {
	Name         string
	Type         string
	Description  string
	In           string
	ParamName    string
	Scheme       string
	BearerFormat string
}
