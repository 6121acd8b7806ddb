package httputil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erraggy/oascontract/oaserrors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"missing operation", oaserrors.New(oaserrors.KindMissingOperation, "/x", "no"), http.StatusNotFound},
		{"unsupported media type", oaserrors.New(oaserrors.KindUnsupportedValueFormat, "requestBody", "no"), http.StatusUnsupportedMediaType},
		{"missing parameter", oaserrors.New(oaserrors.KindMissingRequiredParameter, "query.q", "no"), http.StatusBadRequest},
		{"bad format", oaserrors.New(oaserrors.KindInvalidValueFormat, "path.id", "no"), http.StatusBadRequest},
		{"illegal value", oaserrors.New(oaserrors.KindIllegalValue, "requestBody", "no"), http.StatusBadRequest},
		{"schema failure", oaserrors.New(oaserrors.KindInvalidValue, "query.limit", "no"), http.StatusBadRequest},
		{"wrapped kind", fmt.Errorf("outer: %w", oaserrors.New(oaserrors.KindInvalidValue, "", "no")), http.StatusBadRequest},
		{"missing response", oaserrors.New(oaserrors.KindMissingResponse, "op", "no"), http.StatusInternalServerError},
		{"construction kind", oaserrors.New(oaserrors.KindInvalidSpec, "#", "no"), http.StatusInternalServerError},
		{"body too large", fmt.Errorf("read: %w", ErrBodyTooLarge), http.StatusRequestEntityTooLarge},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, StatusFor(tt.err))
		})
	}
}

func TestIsMethod(t *testing.T) {
	for _, m := range []string{"get", "GET", "Patch", "trace"} {
		assert.True(t, IsMethod(m), m)
	}
	for _, m := range []string{"", "connect", "fetch"} {
		assert.False(t, IsMethod(m), m)
	}
}
