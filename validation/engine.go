package validation

import (
	"errors"
	"strings"

	"github.com/erraggy/oascontract/contract"
	"github.com/erraggy/oascontract/oaserrors"
	"github.com/erraggy/oascontract/parser"
	"github.com/erraggy/oascontract/schema"
	"github.com/erraggy/oascontract/style"
)

// Engine validates requests and responses against one contract.
type Engine struct {
	contract *contract.Contract
	logger   parser.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger. Successful validations log at Debug.
func WithLogger(l parser.Logger) Option {
	return func(e *Engine) {
		e.logger = parser.Component(l, "validation")
	}
}

// New creates an engine for c.
func New(c *contract.Contract, opts ...Option) *Engine {
	e := &Engine{contract: c, logger: parser.NopLogger{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Contract returns the contract the engine validates against.
func (e *Engine) Contract() *contract.Contract {
	return e.contract
}

// resolveOperation finds the operation by id, or by routing method and
// path when id is empty.
func (e *Engine) resolveOperation(id, method, path string) (*contract.Operation, error) {
	if id != "" {
		return e.contract.Operation(id)
	}
	return e.contract.FindOperation(path, method)
}

// decodeParameter runs raw through the parameter's codec and schema.
func decodeParameter(p *contract.Parameter, raw string) (any, error) {
	codec := p.Codec()
	value, err := style.Transform(codec, raw)
	if err != nil {
		return nil, locate(err, p.Key())
	}
	if err := check(p.Schema, value, p.Key()); err != nil {
		return nil, err
	}
	return value, nil
}

// check validates value against v. A nil validator accepts everything.
func check(v *schema.Validator, value any, location string) error {
	if v == nil {
		return nil
	}
	res := v.Validate(value)
	if res.Valid {
		return nil
	}
	messages := make([]string, 0, len(res.Errors))
	for _, d := range res.Errors {
		messages = append(messages, d.String())
	}
	return &oaserrors.Error{
		Kind:        oaserrors.KindInvalidValue,
		Location:    location,
		Message:     "value does not match schema: " + strings.Join(messages, "; "),
		Diagnostics: res.Errors,
	}
}

// locate fills in the location of codec and analyser errors, which are
// raised without knowing the parameter they belong to.
func locate(err error, location string) error {
	var oe *oaserrors.Error
	if !errors.As(err, &oe) {
		return oaserrors.Wrap(oaserrors.KindIllegalValue, location, err, "cannot decode value")
	}
	switch {
	case oe.Location == "":
		return oe.WithLocation(location)
	case strings.HasPrefix(oe.Location, "body"):
		return oe.WithLocation(location + strings.TrimPrefix(oe.Location, "body"))
	}
	return oe
}

func missing(location string) error {
	return oaserrors.New(oaserrors.KindMissingRequiredParameter, location, "required value %s is missing", location)
}
