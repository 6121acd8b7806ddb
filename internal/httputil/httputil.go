// Package httputil holds HTTP constants and the mapping from error kinds
// to HTTP status codes shared by the transport adapter and the tool server.
package httputil

import (
	"errors"
	"net/http"
	"strings"

	"github.com/erraggy/oascontract/oaserrors"
)

// HTTP method keys as they appear in a path item.
const (
	MethodGet     = "get"
	MethodPut     = "put"
	MethodPost    = "post"
	MethodDelete  = "delete"
	MethodOptions = "options"
	MethodHead    = "head"
	MethodPatch   = "patch"
	MethodTrace   = "trace"
)

// Methods lists the path item method keys in reporting order.
var Methods = []string{MethodGet, MethodPut, MethodPost, MethodDelete, MethodOptions, MethodHead, MethodPatch, MethodTrace}

// IsMethod reports whether m (any case) is a path item method key.
func IsMethod(m string) bool {
	lower := strings.ToLower(m)
	for _, known := range Methods {
		if known == lower {
			return true
		}
	}
	return false
}

// ProblemContentType is the media type of RFC 9457 problem documents.
const ProblemContentType = "application/problem+json"

// ErrBodyTooLarge is returned when a body exceeds the configured limit.
var ErrBodyTooLarge = errors.New("body exceeds size limit")

// StatusFor maps a validation failure to the status a server should answer
// with. Contract construction kinds and untyped errors are server faults.
func StatusFor(err error) int {
	if errors.Is(err, ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	kind, ok := oaserrors.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case oaserrors.KindMissingOperation:
		return http.StatusNotFound
	case oaserrors.KindUnsupportedValueFormat:
		return http.StatusUnsupportedMediaType
	case oaserrors.KindMissingRequiredParameter,
		oaserrors.KindInvalidValueFormat,
		oaserrors.KindIllegalValue,
		oaserrors.KindInvalidValue:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
