package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/validation"
)

type validateRequestInput struct {
	Spec        specInput         `json:"spec"                   jsonschema:"The OpenAPI contract"`
	OperationID string            `json:"operation_id,omitempty" jsonschema:"Validate against this operation instead of routing method and path"`
	Method      string            `json:"method"                 jsonschema:"HTTP method, e.g. GET"`
	Path        string            `json:"path"                   jsonschema:"Request path, percent-encoded; a ?query suffix is split off into query"`
	Query       string            `json:"query,omitempty"        jsonschema:"Raw query string without the leading '?'"`
	Headers     map[string]string `json:"headers,omitempty"      jsonschema:"Request headers; repeated values comma-joined"`
	Cookies     map[string]string `json:"cookies,omitempty"      jsonschema:"Cookie values by name"`
	Body        string            `json:"body,omitempty"         jsonschema:"Raw request body"`
	ContentType string            `json:"content_type,omitempty" jsonschema:"Body media type; overrides a Content-Type header"`
}

type validateResponseInput struct {
	Spec        specInput         `json:"spec"                   jsonschema:"The OpenAPI contract"`
	OperationID string            `json:"operation_id"           jsonschema:"Operation the response belongs to"`
	Status      int               `json:"status"                 jsonschema:"HTTP status code"`
	Headers     map[string]string `json:"headers,omitempty"      jsonschema:"Response headers"`
	Body        string            `json:"body,omitempty"         jsonschema:"Raw response body"`
	ContentType string            `json:"content_type,omitempty" jsonschema:"Body media type; overrides a Content-Type header"`
}

// validationIssue is the error half of a validation result.
type validationIssue struct {
	Kind        string                 `json:"kind"`
	Location    string                 `json:"location,omitempty"`
	Message     string                 `json:"message"`
	Diagnostics []oaserrors.Diagnostic `json:"diagnostics,omitempty"`
}

type validateRequestOutput struct {
	ContractID  string           `json:"contract_id,omitempty"`
	Valid       bool             `json:"valid"`
	OperationID string           `json:"operation_id,omitempty"`
	Path        map[string]any   `json:"path,omitempty"`
	Query       map[string]any   `json:"query,omitempty"`
	Header      map[string]any   `json:"header,omitempty"`
	Cookie      map[string]any   `json:"cookie,omitempty"`
	MediaType   string           `json:"media_type,omitempty"`
	Body        any              `json:"body,omitempty"`
	Error       *validationIssue `json:"error,omitempty"`
}

type validateResponseOutput struct {
	ContractID  string           `json:"contract_id,omitempty"`
	Valid       bool             `json:"valid"`
	OperationID string           `json:"operation_id"`
	Status      int              `json:"status"`
	Response    string           `json:"response,omitempty"`
	Header      map[string]any   `json:"header,omitempty"`
	MediaType   string           `json:"media_type,omitempty"`
	Body        any              `json:"body,omitempty"`
	Error       *validationIssue `json:"error,omitempty"`
}

func handleValidateRequest(ctx context.Context, _ *mcp.CallToolRequest, input validateRequestInput) (*mcp.CallToolResult, validateRequestOutput, error) {
	if err := checkBodySize(input.Body); err != nil {
		return toolError(err), validateRequestOutput{}, nil
	}
	c, id, err := input.Spec.resolve(ctx)
	if err != nil {
		return toolError(err), validateRequestOutput{}, nil
	}

	raw := &validation.RawRequest{
		Method:      strings.ToUpper(input.Method),
		Header:      headerOf(input.Headers),
		Cookies:     input.Cookies,
		ContentType: input.ContentType,
	}
	raw.Path, raw.Query, _ = strings.Cut(input.Path, "?")
	if input.Query != "" {
		if raw.Query != "" {
			raw.Query += "&"
		}
		raw.Query += strings.TrimPrefix(input.Query, "?")
	}
	if input.Body != "" {
		raw.Body = []byte(input.Body)
	}

	engine := validation.New(c, validation.WithLogger(logger))
	req, err := engine.ValidateRequest(raw, input.OperationID)
	if err != nil {
		issue, ok := issueOf(err)
		if !ok {
			return toolError(err), validateRequestOutput{}, nil
		}
		return nil, validateRequestOutput{ContractID: id, OperationID: input.OperationID, Error: issue}, nil
	}
	return nil, validateRequestOutput{
		ContractID:  id,
		Valid:       true,
		OperationID: req.Operation().ID,
		Path:        req.PathParams(),
		Query:       req.QueryParams(),
		Header:      req.HeaderParams(),
		Cookie:      req.CookieParams(),
		MediaType:   req.MediaType(),
		Body:        req.Body(),
	}, nil
}

func handleValidateResponse(ctx context.Context, _ *mcp.CallToolRequest, input validateResponseInput) (*mcp.CallToolResult, validateResponseOutput, error) {
	if input.OperationID == "" {
		return toolError(errors.New("operation_id is required")), validateResponseOutput{}, nil
	}
	if err := checkBodySize(input.Body); err != nil {
		return toolError(err), validateResponseOutput{}, nil
	}
	c, id, err := input.Spec.resolve(ctx)
	if err != nil {
		return toolError(err), validateResponseOutput{}, nil
	}

	raw := &validation.RawResponse{
		Status:      input.Status,
		Header:      headerOf(input.Headers),
		ContentType: input.ContentType,
	}
	if input.Body != "" {
		raw.Body = []byte(input.Body)
	}

	engine := validation.New(c, validation.WithLogger(logger))
	resp, err := engine.ValidateResponse(raw, input.OperationID)
	if err != nil {
		issue, ok := issueOf(err)
		if !ok {
			return toolError(err), validateResponseOutput{}, nil
		}
		return nil, validateResponseOutput{ContractID: id, OperationID: input.OperationID, Status: input.Status, Error: issue}, nil
	}
	return nil, validateResponseOutput{
		ContractID:  id,
		Valid:       true,
		OperationID: resp.Operation().ID,
		Status:      resp.Status(),
		Response:    resp.Response().Status,
		Header:      resp.Headers(),
		MediaType:   resp.MediaType(),
		Body:        resp.Body(),
	}, nil
}

func checkBodySize(body string) error {
	if int64(len(body)) > cfg.MaxBodySize {
		return fmt.Errorf("body size %d bytes exceeds maximum %d bytes; set OASCONTRACT_MAX_BODY_SIZE to increase", len(body), cfg.MaxBodySize)
	}
	return nil
}

func headerOf(m map[string]string) http.Header {
	h := make(http.Header, len(m))
	for k, v := range m {
		h.Set(k, v)
	}
	return h
}

// issueOf converts a typed validation error. Construction kinds are not
// issues of the traffic and are reported as tool errors instead.
func issueOf(err error) (*validationIssue, bool) {
	var oe *oaserrors.Error
	if !errors.As(err, &oe) || oe.Kind.IsBuildKind() {
		return nil, false
	}
	return &validationIssue{
		Kind:        string(oe.Kind),
		Location:    oe.Location,
		Message:     redact(oe.Message),
		Diagnostics: oe.Diagnostics,
	}, true
}
