package httpvalidator

import (
	"fmt"
	"net/http"

	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/parser"
	"github.com/erraggy/oascontract/validation"
)

// DefaultMaxBodySize bounds request and response bodies when no limit is
// configured.
const DefaultMaxBodySize int64 = 10 << 20

// DefaultRequestIDHeader is the header the middleware stamps.
const DefaultRequestIDHeader = "X-Request-Id"

// Option is a functional option for configuring validation.
type Option func(*config) error

type config struct {
	// Contract source for the one-off functions (one of these must be set)
	filePath string
	contract *contract.Contract

	logger            parser.Logger
	maxBodySize       int64
	requestIDHeader   string
	validateResponses bool
	onResponseError   func(*http.Request, error)
}

func defaultConfig() *config {
	return &config{
		logger:          parser.NopLogger{},
		maxBodySize:     DefaultMaxBodySize,
		requestIDHeader: DefaultRequestIDHeader,
	}
}

func (c *config) apply(opts []Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// WithFilePath loads the contract from a file. Only used by the one-off
// functions.
func WithFilePath(path string) Option {
	return func(c *config) error {
		c.filePath = path
		return nil
	}
}

// WithContract uses an already built contract. Only used by the one-off
// functions.
func WithContract(ct *contract.Contract) Option {
	return func(c *config) error {
		if ct == nil {
			return fmt.Errorf("httpvalidator: contract cannot be nil")
		}
		c.contract = ct
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l parser.Logger) Option {
	return func(c *config) error {
		c.logger = parser.Component(l, "httpvalidator")
		return nil
	}
}

// WithMaxBodySize sets the maximum request/response body size in bytes.
// Bodies exceeding this limit fail with ErrBodyTooLarge.
// Default: 10 MiB.
func WithMaxBodySize(n int64) Option {
	return func(c *config) error {
		if n < 0 {
			return fmt.Errorf("httpvalidator: maxBodySize cannot be negative")
		}
		if n == 0 {
			n = DefaultMaxBodySize
		}
		c.maxBodySize = n
		return nil
	}
}

// WithRequestIDHeader changes the header the middleware stamps with a
// request id. An empty name disables stamping.
func WithRequestIDHeader(name string) Option {
	return func(c *config) error {
		c.requestIDHeader = name
		return nil
	}
}

// WithResponseValidation makes the middleware validate responses too. A
// response that does not match the contract is replaced by a 500 problem
// document unless WithResponseErrorHandler is set.
func WithResponseValidation(enabled bool) Option {
	return func(c *config) error {
		c.validateResponses = enabled
		return nil
	}
}

// WithResponseErrorHandler reports responses that do not match the
// contract to fn and sends them unchanged. Implies WithResponseValidation.
func WithResponseErrorHandler(fn func(*http.Request, error)) Option {
	return func(c *config) error {
		if fn == nil {
			return fmt.Errorf("httpvalidator: response error handler cannot be nil")
		}
		c.onResponseError = fn
		c.validateResponses = true
		return nil
	}
}

// ValidateRequestWithOptions validates a request using functional options.
//
// This is a convenience function for one-off validations. For validating
// many requests, build a Validator once with New.
func ValidateRequestWithOptions(req *http.Request, opts ...Option) (*validation.ValidatedRequest, error) {
	v, err := oneOff(opts)
	if err != nil {
		return nil, err
	}
	return v.ValidateRequest(req)
}

// ValidateResponseDataWithOptions validates captured response parts using
// functional options.
func ValidateResponseDataWithOptions(req *http.Request, statusCode int, headers http.Header, body []byte, opts ...Option) (*validation.ValidatedResponse, error) {
	v, err := oneOff(opts)
	if err != nil {
		return nil, err
	}
	return v.ValidateResponseData(req, statusCode, headers, body)
}

func oneOff(opts []Option) (*Validator, error) {
	cfg := defaultConfig()
	if err := cfg.apply(opts); err != nil {
		return nil, err
	}
	c := cfg.contract
	if c == nil {
		if cfg.filePath == "" {
			return nil, fmt.Errorf("httpvalidator: no contract provided (use WithFilePath or WithContract)")
		}
		var err error
		c, err = contract.Load(cfg.filePath, contract.WithLogger(cfg.logger))
		if err != nil {
			return nil, err
		}
	}
	return newValidator(c, cfg), nil
}
