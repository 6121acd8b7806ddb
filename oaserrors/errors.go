package oaserrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the stable discriminant of an *Error.
type Kind string

// Contract construction kinds. These are fatal and surface once at load time.
const (
	// KindInvalidSpec marks a malformed, contradictory or ambiguous document.
	KindInvalidSpec Kind = "INVALID_SPEC"
	// KindUnsupportedSpec marks an unrecognized OpenAPI version.
	KindUnsupportedSpec Kind = "UNSUPPORTED_SPEC"
	// KindUnsupportedFeature marks a valid construct this library does not implement.
	KindUnsupportedFeature Kind = "UNSUPPORTED_FEATURE"
)

// Validation kinds. These surface per request or response.
const (
	KindMissingRequiredParameter Kind = "MISSING_REQUIRED_PARAMETER"
	KindInvalidValueFormat       Kind = "INVALID_VALUE_FORMAT"
	KindUnsupportedValueFormat   Kind = "UNSUPPORTED_VALUE_FORMAT"
	KindIllegalValue             Kind = "ILLEGAL_VALUE"
	KindInvalidValue             Kind = "INVALID_VALUE"
	KindMissingOperation         Kind = "MISSING_OPERATION"
	KindMissingResponse          Kind = "MISSING_RESPONSE"
)

// Sentinel errors for use with errors.Is().
var (
	ErrInvalidSpec              = errors.New("invalid spec")
	ErrUnsupportedSpec          = errors.New("unsupported spec")
	ErrUnsupportedFeature       = errors.New("unsupported feature")
	ErrMissingRequiredParameter = errors.New("missing required parameter")
	ErrInvalidValueFormat       = errors.New("invalid value format")
	ErrUnsupportedValueFormat   = errors.New("unsupported value format")
	ErrIllegalValue             = errors.New("illegal value")
	ErrInvalidValue             = errors.New("invalid value")
	ErrMissingOperation         = errors.New("missing operation")
	ErrMissingResponse          = errors.New("missing response")
)

var sentinels = map[Kind]error{
	KindInvalidSpec:              ErrInvalidSpec,
	KindUnsupportedSpec:          ErrUnsupportedSpec,
	KindUnsupportedFeature:       ErrUnsupportedFeature,
	KindMissingRequiredParameter: ErrMissingRequiredParameter,
	KindInvalidValueFormat:       ErrInvalidValueFormat,
	KindUnsupportedValueFormat:   ErrUnsupportedValueFormat,
	KindIllegalValue:             ErrIllegalValue,
	KindInvalidValue:             ErrInvalidValue,
	KindMissingOperation:         ErrMissingOperation,
	KindMissingResponse:          ErrMissingResponse,
}

// Sentinel returns the sentinel error matching kind, or nil for an unknown kind.
func (k Kind) Sentinel() error {
	return sentinels[k]
}

// IsBuildKind reports whether k is raised during contract construction.
func (k Kind) IsBuildKind() bool {
	return k == KindInvalidSpec || k == KindUnsupportedSpec || k == KindUnsupportedFeature
}

// Diagnostic is a single schema violation reported by the schema engine.
type Diagnostic struct {
	// InstanceLocation is the JSON pointer into the validated value.
	InstanceLocation string `json:"instanceLocation"`
	// KeywordLocation is the JSON pointer to the failing schema keyword.
	KeywordLocation string `json:"keywordLocation"`
	// Message describes the violation.
	Message string `json:"message"`
}

// String returns a compact "location: message" form.
func (d Diagnostic) String() string {
	loc := d.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + d.Message
}

// Error is the single error type raised by oascontract.
type Error struct {
	// Kind is the stable discriminant.
	Kind Kind
	// Location identifies where the failure happened, e.g. "query.color",
	// "requestBody" or "paths./pets/{petId}.get".
	Location string
	// Message describes the failure.
	Message string
	// Diagnostics holds the schema engine's structured report for INVALID_VALUE.
	Diagnostics []Diagnostic
	// Cause is the underlying error, if any.
	Cause error
}

// New creates an *Error with a formatted message.
func New(kind Kind, location, format string, args ...any) *Error {
	return &Error{Kind: kind, Location: location, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with a cause.
func Wrap(kind Kind, location string, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Location: location, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Error returns a human-readable error message.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Location != "" {
		b.WriteString(" at ")
		b.WriteString(e.Location)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Diagnostics) > 0 {
		b.WriteString(" [")
		for i, d := range e.Diagnostics {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(d.String())
		}
		b.WriteString("]")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chaining.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel of this error's kind.
func (e *Error) Is(target error) bool {
	s := sentinels[e.Kind]
	return s != nil && target == s
}

// WithLocation returns a copy of e relocated to location. Errors raised deep
// inside a codec are relocated by the caller that knows the parameter.
func (e *Error) WithLocation(location string) *Error {
	c := *e
	c.Location = location
	return &c
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// HasKind reports whether err's chain contains an *Error of the given kind.
func HasKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
