package httpvalidator

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	gojson "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/erraggy/oascontract/internal/httputil"
	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/validation"
)

type contextKey struct{}

// FromContext returns the validated request stored by the middleware.
func FromContext(ctx context.Context) (*validation.ValidatedRequest, bool) {
	v, ok := ctx.Value(contextKey{}).(*validation.ValidatedRequest)
	return v, ok
}

// Problem is an RFC 9457 problem document describing a rejected request.
type Problem struct {
	Type      string                 `json:"type"`
	Title     string                 `json:"title"`
	Status    int                    `json:"status"`
	Detail    string                 `json:"detail"`
	Kind      oaserrors.Kind         `json:"kind,omitempty"`
	Location  string                 `json:"location,omitempty"`
	Errors    []oaserrors.Diagnostic `json:"errors,omitempty"`
	RequestID string                 `json:"requestId,omitempty"`
}

// NewProblem describes err.
func NewProblem(err error, requestID string) *Problem {
	status := httputil.StatusFor(err)
	p := &Problem{
		Type:      "about:blank",
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    err.Error(),
		RequestID: requestID,
	}
	var oe *oaserrors.Error
	if errors.As(err, &oe) {
		p.Kind = oe.Kind
		p.Location = oe.Location
		p.Errors = oe.Diagnostics
	}
	return p
}

// responseProblem describes a handler response that broke the contract.
// The fault is the server's whatever the error kind.
func responseProblem(err error, requestID string) *Problem {
	p := NewProblem(err, requestID)
	p.Status = http.StatusInternalServerError
	p.Title = http.StatusText(p.Status)
	p.Detail = "response does not match contract: " + p.Detail
	return p
}

// WriteProblem writes p as application/problem+json.
func WriteProblem(w http.ResponseWriter, p *Problem) {
	data, err := gojson.Marshal(p)
	if err != nil {
		http.Error(w, p.Detail, p.Status)
		return
	}
	w.Header().Set("Content-Type", httputil.ProblemContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(p.Status)
	_, _ = w.Write(data)
}

// Middleware validates every request before passing it to next. Invalid
// requests are answered with a problem document and never reach next.
//
// With response validation on, the handler's response is buffered and
// checked before it is sent. A mismatch becomes a 500 problem document,
// or is passed to the configured response error handler.
func (v *Validator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := v.stampRequestID(w, r)

		validated, err := v.ValidateRequest(r)
		if err != nil {
			v.cfg.logger.Debug("rejected request", "method", r.Method, "path", r.URL.Path, "error", err, "request_id", requestID)
			WriteProblem(w, NewProblem(err, requestID))
			return
		}
		r = r.WithContext(context.WithValue(r.Context(), contextKey{}, validated))

		if !v.cfg.validateResponses {
			next.ServeHTTP(w, r)
			return
		}
		rec := &recorder{header: make(http.Header), status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if _, err := v.engine.ValidateOperationResponse(&validation.RawResponse{
			Status: rec.status,
			Header: rec.header,
			Body:   rec.body.Bytes(),
		}, validated.Operation()); err != nil {
			v.cfg.logger.Warn("response does not match contract", "operation", validated.Operation().ID, "status", rec.status, "error", err, "request_id", requestID)
			if v.cfg.onResponseError == nil {
				WriteProblem(w, responseProblem(err, requestID))
				return
			}
			v.cfg.onResponseError(r, err)
		}
		rec.flush(w)
	})
}

// stampRequestID makes sure the request carries an id and echoes it on
// the response.
func (v *Validator) stampRequestID(w http.ResponseWriter, r *http.Request) string {
	name := v.cfg.requestIDHeader
	if name == "" {
		return ""
	}
	id := r.Header.Get(name)
	if id == "" {
		id = uuid.NewString()
		r.Header.Set(name, id)
	}
	w.Header().Set(name, id)
	return id
}

// recorder buffers a handler's response so it can be validated before it
// is sent.
type recorder struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func (r *recorder) Header() http.Header {
	return r.header
}

func (r *recorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status, r.wroteHeader = status, true
}

func (r *recorder) Write(p []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(p)
}

func (r *recorder) flush(w http.ResponseWriter) {
	dst := w.Header()
	for k, vs := range r.header {
		dst[k] = vs
	}
	w.WriteHeader(r.status)
	_, _ = w.Write(r.body.Bytes())
}
