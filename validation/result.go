package validation

import (
	"maps"
	"strings"

	"github.com/erraggy/oascontract/contract"
)

// ValidatedRequest holds the typed values of a request that passed
// validation. Absent optional parameters have no entry.
type ValidatedRequest struct {
	operation *contract.Operation
	path      map[string]any
	query     map[string]any
	header    map[string]any
	cookie    map[string]any
	body      any
	mediaType string
	hasBody   bool
}

func newValidatedRequest(op *contract.Operation) *ValidatedRequest {
	return &ValidatedRequest{
		operation: op,
		path:      make(map[string]any),
		query:     make(map[string]any),
		header:    make(map[string]any),
		cookie:    make(map[string]any),
	}
}

func (r *ValidatedRequest) set(in contract.Location, name string, value any) {
	switch in {
	case contract.InPath:
		r.path[name] = value
	case contract.InQuery:
		r.query[name] = value
	case contract.InHeader:
		r.header[name] = value
	case contract.InCookie:
		r.cookie[name] = value
	}
}

// Operation returns the operation the request was validated against.
func (r *ValidatedRequest) Operation() *contract.Operation {
	return r.operation
}

// Path returns a path parameter.
func (r *ValidatedRequest) Path(name string) (any, bool) {
	v, ok := r.path[name]
	return v, ok
}

// Query returns a query parameter.
func (r *ValidatedRequest) Query(name string) (any, bool) {
	v, ok := r.query[name]
	return v, ok
}

// Header returns a header parameter. Names compare case-insensitively.
func (r *ValidatedRequest) Header(name string) (any, bool) {
	return lookupFold(r.header, name)
}

// Cookie returns a cookie parameter.
func (r *ValidatedRequest) Cookie(name string) (any, bool) {
	v, ok := r.cookie[name]
	return v, ok
}

// PathParams returns a copy of the path parameters.
func (r *ValidatedRequest) PathParams() map[string]any { return maps.Clone(r.path) }

// QueryParams returns a copy of the query parameters.
func (r *ValidatedRequest) QueryParams() map[string]any { return maps.Clone(r.query) }

// HeaderParams returns a copy of the header parameters, keyed by their
// declared names.
func (r *ValidatedRequest) HeaderParams() map[string]any { return maps.Clone(r.header) }

// CookieParams returns a copy of the cookie parameters.
func (r *ValidatedRequest) CookieParams() map[string]any { return maps.Clone(r.cookie) }

// Body returns the transformed body, or nil when there was none.
func (r *ValidatedRequest) Body() any {
	return r.body
}

// HasBody reports whether a body was present and transformed.
func (r *ValidatedRequest) HasBody() bool {
	return r.hasBody
}

// MediaType returns the declared media type the body matched.
func (r *ValidatedRequest) MediaType() string {
	return r.mediaType
}

// ValidatedResponse holds the typed values of a response that passed
// validation.
type ValidatedResponse struct {
	operation *contract.Operation
	response  *contract.Response
	status    int
	header    map[string]any
	body      any
	mediaType string
	hasBody   bool
}

// Operation returns the operation the response was validated against.
func (r *ValidatedResponse) Operation() *contract.Operation {
	return r.operation
}

// Response returns the declared response that matched the status.
func (r *ValidatedResponse) Response() *contract.Response {
	return r.response
}

// Status returns the status code.
func (r *ValidatedResponse) Status() int {
	return r.status
}

// Header returns a declared response header. Names compare
// case-insensitively.
func (r *ValidatedResponse) Header(name string) (any, bool) {
	return lookupFold(r.header, name)
}

// Headers returns a copy of the declared response headers.
func (r *ValidatedResponse) Headers() map[string]any {
	return maps.Clone(r.header)
}

// Body returns the transformed body, or nil when it was not inspected.
func (r *ValidatedResponse) Body() any {
	return r.body
}

// HasBody reports whether a body was transformed.
func (r *ValidatedResponse) HasBody() bool {
	return r.hasBody
}

// MediaType returns the declared media type the body matched.
func (r *ValidatedResponse) MediaType() string {
	return r.mediaType
}

func lookupFold(m map[string]any, name string) (any, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}
