package httpvalidator

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/internal/httputil"
	"github.com/erraggy/oascontract/validation"
)

// ErrBodyTooLarge is returned when a body exceeds the configured limit.
var ErrBodyTooLarge = httputil.ErrBodyTooLarge

// Validator validates net/http requests and responses against a contract.
//
// Create a Validator using the New function:
//
//	v, err := httpvalidator.New(c, httpvalidator.WithMaxBodySize(1<<20))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	validated, err := v.ValidateRequest(req)
type Validator struct {
	engine *validation.Engine
	cfg    *config
}

// New creates a Validator for c. WithFilePath and WithContract are ignored.
func New(c *contract.Contract, opts ...Option) (*Validator, error) {
	if c == nil {
		return nil, fmt.Errorf("httpvalidator: contract cannot be nil")
	}
	cfg := defaultConfig()
	if err := cfg.apply(opts); err != nil {
		return nil, err
	}
	return newValidator(c, cfg), nil
}

func newValidator(c *contract.Contract, cfg *config) *Validator {
	return &Validator{
		engine: validation.New(c, validation.WithLogger(cfg.logger)),
		cfg:    cfg,
	}
}

// Engine returns the underlying validation engine.
func (v *Validator) Engine() *validation.Engine {
	return v.engine
}

// ValidateRequest validates req. The body is read and replaced with an
// equivalent reader. Validation failures are *oaserrors.Error values;
// reading failures are wrapped plain errors.
func (v *Validator) ValidateRequest(req *http.Request) (*validation.ValidatedRequest, error) {
	body, err := v.readBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("httpvalidator: reading request body: %w", err)
	}
	if req.Body != nil {
		req.Body = io.NopCloser(bytes.NewReader(body))
	}
	return v.engine.ValidateRequest(rawRequest(req, body), "")
}

// ValidateResponse validates resp as a response to req.
func (v *Validator) ValidateResponse(req *http.Request, resp *http.Response) (*validation.ValidatedResponse, error) {
	body, err := v.readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpvalidator: reading response body: %w", err)
	}
	if resp.Body != nil {
		resp.Body = io.NopCloser(bytes.NewReader(body))
	}
	return v.ValidateResponseData(req, resp.StatusCode, resp.Header, body)
}

// ValidateResponseData validates response data without requiring an
// *http.Response. This is useful in middleware that captured the response
// parts in a recorder.
//
//	validated, err := v.ValidateResponseData(req, rec.Code, rec.Header(), rec.Body.Bytes())
func (v *Validator) ValidateResponseData(req *http.Request, statusCode int, headers http.Header, body []byte) (*validation.ValidatedResponse, error) {
	if int64(len(body)) > v.cfg.maxBodySize {
		return nil, fmt.Errorf("httpvalidator: response body: %w", ErrBodyTooLarge)
	}
	op, err := v.engine.Contract().FindOperation(req.URL.EscapedPath(), req.Method)
	if err != nil {
		return nil, err
	}
	return v.engine.ValidateOperationResponse(&validation.RawResponse{
		Status: statusCode,
		Header: headers,
		Body:   body,
	}, op)
}

func (v *Validator) readBody(r io.Reader) ([]byte, error) {
	if r == nil || r == http.NoBody {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, v.cfg.maxBodySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > v.cfg.maxBodySize {
		return nil, ErrBodyTooLarge
	}
	return data, nil
}

// rawRequest extracts the wire values of req. Repeated cookies keep their
// first value.
func rawRequest(req *http.Request, body []byte) *validation.RawRequest {
	cookies := make(map[string]string)
	for _, c := range req.Cookies() {
		if _, seen := cookies[c.Name]; !seen {
			cookies[c.Name] = c.Value
		}
	}
	return &validation.RawRequest{
		Method:  req.Method,
		Path:    req.URL.EscapedPath(),
		Query:   req.URL.RawQuery,
		Header:  req.Header,
		Cookies: cookies,
		Body:    body,
	}
}
