package validation

import (
	"net/http"

	"github.com/erraggy/oascontract/content"
	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/oaserrors"
)

// RawRequest is a request as it arrived on the wire.
type RawRequest struct {
	Method string
	// Path is the request path, still percent-encoded.
	Path string
	// Query is the undecoded query string, without the leading '?'.
	Query  string
	Header http.Header
	// Cookies maps cookie names to their raw values.
	Cookies map[string]string
	Body    []byte
	// ContentType overrides the Content-Type header when set.
	ContentType string
	// PathParams holds already extracted placeholder values. When nil the
	// engine routes Path to extract them.
	PathParams map[string]string
}

func (r *RawRequest) contentType() string {
	if r.ContentType != "" {
		return r.ContentType
	}
	return r.Header.Get("Content-Type")
}

// ValidateRequest validates raw against the operation with the given id,
// or against the operation routed from raw's method and path when
// operationID is empty.
func (e *Engine) ValidateRequest(raw *RawRequest, operationID string) (*ValidatedRequest, error) {
	op, err := e.resolveOperation(operationID, raw.Method, raw.Path)
	if err != nil {
		return nil, err
	}
	return e.ValidateOperationRequest(raw, op)
}

// ValidateOperationRequest validates raw against op.
func (e *Engine) ValidateOperationRequest(raw *RawRequest, op *contract.Operation) (*ValidatedRequest, error) {
	pathParams := raw.PathParams
	if pathParams == nil && hasPathParameters(op) {
		route, err := e.contract.Route(raw.Path, op.Method)
		if err != nil {
			return nil, err
		}
		if route.Operation != op {
			return nil, oaserrors.New(oaserrors.KindMissingOperation, raw.Path,
				"path %s does not belong to operation %s", raw.Path, op.ID)
		}
		pathParams = route.PathParams
	}

	out := newValidatedRequest(op)
	q := parseQuery(raw.Query)
	for _, p := range op.Parameters {
		var ex extracted
		switch p.In {
		case contract.InPath:
			ex = mapValue(pathParams, p.Name)
		case contract.InQuery:
			ex = queryValue(q, p, op)
		case contract.InHeader:
			ex = headerValue(raw.Header, p.Name)
		case contract.InCookie:
			ex = mapValue(raw.Cookies, p.Name)
		}
		if !ex.present || ex.empty {
			if p.Required {
				return nil, missing(p.Key())
			}
			out.set(p.In, p.Name, nil)
			continue
		}
		value, err := decodeParameter(p, ex.raw)
		if err != nil {
			return nil, err
		}
		out.set(p.In, p.Name, value)
	}

	if err := e.requestBody(raw, op, out); err != nil {
		return nil, err
	}
	e.logger.Debug("validated request", "operation", op.ID, "method", raw.Method, "path", raw.Path)
	return out, nil
}

func (e *Engine) requestBody(raw *RawRequest, op *contract.Operation, out *ValidatedRequest) error {
	const location = "requestBody"
	if op.RequestBody == nil {
		if len(raw.Body) > 0 {
			e.logger.Debug("ignoring body of operation without request body", "operation", op.ID)
		}
		return nil
	}
	if len(raw.Body) == 0 {
		if op.RequestBody.Required {
			return missing(location)
		}
		return nil
	}
	value, mt, err := e.body(op.RequestBody.Content, raw.contentType(), raw.Body, location)
	if err != nil {
		return err
	}
	out.body, out.mediaType, out.hasBody = value, mt.Name, true
	return nil
}

// body negotiates the media type, transforms the body and validates it
// unless the schema is a plain binary string.
func (e *Engine) body(declared *contract.Content, contentType string, data []byte, location string) (any, *contract.MediaType, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	info, err := content.ParseMediaType(contentType)
	if err != nil {
		return nil, nil, locate(err, location)
	}
	mt, ok := declared.Match(info)
	if !ok {
		return nil, nil, oaserrors.New(oaserrors.KindUnsupportedValueFormat, location, "media type %s is not declared", info.Essence())
	}
	value, err := e.contract.Registry().Analyze(info, data)
	if err != nil {
		return nil, nil, locate(err, location)
	}
	if mt.Binary {
		return value, mt, nil
	}
	if err := check(mt.Schema, value, location); err != nil {
		return nil, nil, err
	}
	return value, mt, nil
}

func hasPathParameters(op *contract.Operation) bool {
	for _, p := range op.Parameters {
		if p.In == contract.InPath {
			return true
		}
	}
	return false
}
