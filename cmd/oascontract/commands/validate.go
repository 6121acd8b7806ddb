package commands

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erraggy/oascontract/internal/cliutil"
	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/validation"
)

// requestFlags holds the flags of validate-request.
type requestFlags struct {
	operation   string
	method      string
	path        string
	query       []string
	headers     []string
	cookies     []string
	body        string
	contentType string
}

// responseFlags holds the flags of validate-response.
type responseFlags struct {
	operation   string
	status      int
	headers     []string
	body        string
	contentType string
}

type validationFailure struct {
	Valid       bool                   `json:"valid"                 yaml:"valid"`
	Kind        oaserrors.Kind         `json:"kind"                  yaml:"kind"`
	Location    string                 `json:"location,omitempty"    yaml:"location,omitempty"`
	Message     string                 `json:"message"               yaml:"message"`
	Diagnostics []oaserrors.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
}

type requestOutput struct {
	Valid       bool           `json:"valid"                 yaml:"valid"`
	OperationID string         `json:"operationId"           yaml:"operationId"`
	Path        map[string]any `json:"path,omitempty"        yaml:"path,omitempty"`
	Query       map[string]any `json:"query,omitempty"       yaml:"query,omitempty"`
	Header      map[string]any `json:"header,omitempty"      yaml:"header,omitempty"`
	Cookie      map[string]any `json:"cookie,omitempty"      yaml:"cookie,omitempty"`
	MediaType   string         `json:"mediaType,omitempty"   yaml:"mediaType,omitempty"`
	Body        any            `json:"body,omitempty"        yaml:"body,omitempty"`
}

type responseOutput struct {
	Valid       bool           `json:"valid"               yaml:"valid"`
	OperationID string         `json:"operationId"         yaml:"operationId"`
	Status      int            `json:"status"              yaml:"status"`
	Response    string         `json:"response"            yaml:"response"`
	Header      map[string]any `json:"header,omitempty"    yaml:"header,omitempty"`
	MediaType   string         `json:"mediaType,omitempty" yaml:"mediaType,omitempty"`
	Body        any            `json:"body,omitempty"      yaml:"body,omitempty"`
}

func newValidateRequestCommand(opts *globalOptions) *cobra.Command {
	flags := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "validate-request <spec>",
		Short: "Validate a request against the contract",
		Long: `Validate a request against the contract. The operation is routed from
--method and --path unless --operation names it. Values are given as they
travel on the wire: --path and --query stay percent-encoded.`,
		Example: `  oascontract validate-request petstore.yaml --method GET --path /v1/pets/42
  oascontract validate-request petstore.yaml --path /pets --query 'limit=5&color=black,white'
  oascontract validate-request petstore.yaml --method POST --path /pets \
      --content-type application/json --body '{"name":"Rex"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadContract(cmd, args[0])
			if err != nil {
				return err
			}
			raw, err := flags.rawRequest()
			if err != nil {
				return err
			}
			engine := validation.New(c, validation.WithLogger(opts.logger()))
			req, err := engine.ValidateRequest(raw, flags.operation)
			if err != nil {
				return reportFailure(cmd.OutOrStdout(), opts.format, err)
			}
			out := requestOutput{
				Valid:       true,
				OperationID: req.Operation().ID,
				Path:        req.PathParams(),
				Query:       req.QueryParams(),
				Header:      req.HeaderParams(),
				Cookie:      req.CookieParams(),
				MediaType:   req.MediaType(),
				Body:        req.Body(),
			}
			if opts.format != FormatText {
				return OutputStructured(cmd.OutOrStdout(), out, opts.format)
			}
			writeRequestText(cmd.OutOrStdout(), out)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.operation, "operation", "", "operationId to validate against instead of routing")
	f.StringVarP(&flags.method, "method", "X", http.MethodGet, "request method")
	f.StringVarP(&flags.path, "path", "p", "/", "request path, percent-encoded")
	f.StringArrayVarP(&flags.query, "query", "q", nil, "raw query string; repeated values are joined with '&'")
	f.StringArrayVarP(&flags.headers, "header", "H", nil, "request header 'Name: value' (repeatable)")
	f.StringArrayVar(&flags.cookies, "cookie", nil, "cookie name=value (repeatable)")
	f.StringVarP(&flags.body, "body", "d", "", "request body, or @file to read it from a file")
	f.StringVar(&flags.contentType, "content-type", "", "body media type; overrides a Content-Type header")
	return cmd
}

func newValidateResponseCommand(opts *globalOptions) *cobra.Command {
	flags := &responseFlags{}
	cmd := &cobra.Command{
		Use:   "validate-response <spec>",
		Short: "Validate a response against an operation's declared responses",
		Example: `  oascontract validate-response petstore.yaml --operation showPetById --status 200 \
      --content-type application/json --body '{"id":1,"name":"Rex"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadContract(cmd, args[0])
			if err != nil {
				return err
			}
			raw, err := flags.rawResponse()
			if err != nil {
				return err
			}
			engine := validation.New(c, validation.WithLogger(opts.logger()))
			resp, err := engine.ValidateResponse(raw, flags.operation)
			if err != nil {
				return reportFailure(cmd.OutOrStdout(), opts.format, err)
			}
			out := responseOutput{
				Valid:       true,
				OperationID: resp.Operation().ID,
				Status:      resp.Status(),
				Response:    resp.Response().Status,
				Header:      resp.Headers(),
				MediaType:   resp.MediaType(),
				Body:        resp.Body(),
			}
			if opts.format != FormatText {
				return OutputStructured(cmd.OutOrStdout(), out, opts.format)
			}
			w := cmd.OutOrStdout()
			cliutil.Writef(w, "valid: %s %d (declared %s)\n", out.OperationID, out.Status, out.Response)
			writeValues(w, "header", out.Header)
			if out.MediaType != "" {
				cliutil.Writef(w, "  body (%s): %v\n", out.MediaType, out.Body)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.operation, "operation", "", "operationId the response belongs to (required)")
	f.IntVarP(&flags.status, "status", "s", http.StatusOK, "response status code")
	f.StringArrayVarP(&flags.headers, "header", "H", nil, "response header 'Name: value' (repeatable)")
	f.StringVarP(&flags.body, "body", "d", "", "response body, or @file to read it from a file")
	f.StringVar(&flags.contentType, "content-type", "", "body media type; overrides a Content-Type header")
	_ = cmd.MarkFlagRequired("operation")
	return cmd
}

func (f *requestFlags) rawRequest() (*validation.RawRequest, error) {
	header, err := headerFlags(f.headers)
	if err != nil {
		return nil, err
	}
	cookies, err := parsePairs("cookie", "=", f.cookies)
	if err != nil {
		return nil, err
	}
	body, err := readBodyFlag(f.body)
	if err != nil {
		return nil, err
	}
	raw := &validation.RawRequest{
		Method:      strings.ToUpper(f.method),
		Path:        f.path,
		Header:      header,
		Body:        body,
		ContentType: f.contentType,
	}
	raw.Path, raw.Query, _ = strings.Cut(raw.Path, "?")
	for _, q := range f.query {
		q = strings.TrimPrefix(q, "?")
		if raw.Query != "" && q != "" {
			raw.Query += "&"
		}
		raw.Query += q
	}
	if len(cookies) > 0 {
		raw.Cookies = make(map[string]string, len(cookies))
		for _, kv := range cookies {
			if _, seen := raw.Cookies[kv[0]]; !seen {
				raw.Cookies[kv[0]] = kv[1]
			}
		}
	}
	return raw, nil
}

func (f *responseFlags) rawResponse() (*validation.RawResponse, error) {
	header, err := headerFlags(f.headers)
	if err != nil {
		return nil, err
	}
	body, err := readBodyFlag(f.body)
	if err != nil {
		return nil, err
	}
	return &validation.RawResponse{
		Status:      f.status,
		Header:      header,
		Body:        body,
		ContentType: f.contentType,
	}, nil
}

func headerFlags(values []string) (http.Header, error) {
	pairs, err := parsePairs("header", ":=", values)
	if err != nil {
		return nil, err
	}
	h := make(http.Header, len(pairs))
	for _, kv := range pairs {
		h.Add(kv[0], kv[1])
	}
	return h, nil
}

// readBodyFlag returns the literal flag value, or the contents of the file
// named after a leading '@'.
func readBodyFlag(v string) ([]byte, error) {
	if v == "" {
		return nil, nil
	}
	name, ok := strings.CutPrefix(v, "@")
	if !ok {
		return []byte(v), nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}
	return data, nil
}

// reportFailure writes a validation error in the requested format and
// returns ErrValidationFailed. Errors without a kind are returned as is.
func reportFailure(w io.Writer, format string, err error) error {
	var oe *oaserrors.Error
	if !errors.As(err, &oe) {
		return err
	}
	if format == FormatText {
		cliutil.WriteError(w, oe)
		return ErrValidationFailed
	}
	out := validationFailure{
		Kind:        oe.Kind,
		Location:    oe.Location,
		Message:     oe.Message,
		Diagnostics: oe.Diagnostics,
	}
	if werr := OutputStructured(w, out, format); werr != nil {
		return werr
	}
	return ErrValidationFailed
}

func writeRequestText(w io.Writer, out requestOutput) {
	cliutil.Writef(w, "valid: %s\n", out.OperationID)
	writeValues(w, "path", out.Path)
	writeValues(w, "query", out.Query)
	writeValues(w, "header", out.Header)
	writeValues(w, "cookie", out.Cookie)
	if out.MediaType != "" {
		cliutil.Writef(w, "  body (%s): %v\n", out.MediaType, out.Body)
	}
}

func writeValues(w io.Writer, in string, values map[string]any) {
	for _, name := range sortedNames(values) {
		if values[name] == nil {
			cliutil.Writef(w, "  %s.%s absent\n", in, name)
			continue
		}
		cliutil.Writef(w, "  %s.%s = %v (%T)\n", in, name, values[name], values[name])
	}
}
