package validation

import (
	"net/http"

	"github.com/erraggy/oascontract/contract"
)

// RawResponse is a response as produced by a handler.
type RawResponse struct {
	Status int
	Header http.Header
	Body   []byte
	// ContentType overrides the Content-Type header when set.
	ContentType string
}

func (r *RawResponse) contentType() string {
	if r.ContentType != "" {
		return r.ContentType
	}
	return r.Header.Get("Content-Type")
}

// ValidateResponse validates raw against the operation with the given id.
func (e *Engine) ValidateResponse(raw *RawResponse, operationID string) (*ValidatedResponse, error) {
	op, err := e.contract.Operation(operationID)
	if err != nil {
		return nil, err
	}
	return e.ValidateOperationResponse(raw, op)
}

// ValidateOperationResponse validates raw against op. The declared
// response is looked up by exact status, then its range, then default.
// Headers always use simple style. A response without declared content
// has its body left uninspected.
func (e *Engine) ValidateOperationResponse(raw *RawResponse, op *contract.Operation) (*ValidatedResponse, error) {
	resp, err := op.Response(raw.Status)
	if err != nil {
		return nil, err
	}
	out := &ValidatedResponse{
		operation: op,
		response:  resp,
		status:    raw.Status,
		header:    make(map[string]any),
	}

	for _, h := range resp.Headers {
		ex := headerValue(raw.Header, h.Name)
		if !ex.present || ex.empty {
			if h.Required {
				return nil, missing(h.Key())
			}
			out.header[h.Name] = nil
			continue
		}
		value, err := decodeParameter(h, ex.raw)
		if err != nil {
			return nil, err
		}
		out.header[h.Name] = value
	}

	if resp.Content.Len() > 0 && len(raw.Body) > 0 {
		value, mt, err := e.body(resp.Content, raw.contentType(), raw.Body, "responseBody")
		if err != nil {
			return nil, err
		}
		out.body, out.mediaType, out.hasBody = value, mt.Name, true
	}
	e.logger.Debug("validated response", "operation", op.ID, "status", raw.Status)
	return out, nil
}
