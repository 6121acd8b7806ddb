package oaserrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		err := &Error{
			Kind:     KindInvalidValue,
			Location: "query.limit",
			Message:  "value rejected by schema",
			Diagnostics: []Diagnostic{
				{InstanceLocation: "", Message: "must be >= 1"},
				{InstanceLocation: "/0", Message: "expected integer"},
			},
			Cause: errors.New("boom"),
		}
		assert.Equal(t, "INVALID_VALUE at query.limit: value rejected by schema [/: must be >= 1; /0: expected integer]: boom", err.Error())
	})

	t.Run("kind only", func(t *testing.T) {
		err := &Error{Kind: KindMissingResponse}
		assert.Equal(t, "MISSING_RESPONSE", err.Error())
	})

	t.Run("New formats message", func(t *testing.T) {
		err := New(KindInvalidSpec, "paths./a", "duplicate path %q", "/a")
		assert.Equal(t, `INVALID_SPEC at paths./a: duplicate path "/a"`, err.Error())
	})
}

func TestError_Is(t *testing.T) {
	kinds := []Kind{
		KindInvalidSpec, KindUnsupportedSpec, KindUnsupportedFeature,
		KindMissingRequiredParameter, KindInvalidValueFormat, KindUnsupportedValueFormat,
		KindIllegalValue, KindInvalidValue, KindMissingOperation, KindMissingResponse,
	}
	for _, k := range kinds {
		t.Run(string(k), func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", New(k, "", "x"))
			assert.ErrorIs(t, err, k.Sentinel())
			for _, other := range kinds {
				if other != k {
					assert.NotErrorIs(t, err, other.Sentinel())
				}
			}
		})
	}
}

func TestError_UnwrapAndAs(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(KindIllegalValue, "path.id", cause, "cannot decode")
	assert.Same(t, cause, errors.Unwrap(err))

	var target *Error
	require.ErrorAs(t, fmt.Errorf("outer: %w", err), &target)
	assert.Equal(t, KindIllegalValue, target.Kind)
	assert.Equal(t, "path.id", target.Location)
}

func TestKindOf(t *testing.T) {
	k, ok := KindOf(fmt.Errorf("x: %w", New(KindMissingOperation, "", "no route")))
	assert.True(t, ok)
	assert.Equal(t, KindMissingOperation, k)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)

	assert.True(t, HasKind(New(KindInvalidSpec, "", ""), KindInvalidSpec))
	assert.False(t, HasKind(New(KindInvalidSpec, "", ""), KindUnsupportedSpec))
}

func TestKind_IsBuildKind(t *testing.T) {
	assert.True(t, KindInvalidSpec.IsBuildKind())
	assert.True(t, KindUnsupportedFeature.IsBuildKind())
	assert.False(t, KindInvalidValue.IsBuildKind())
}

func TestError_WithLocation(t *testing.T) {
	orig := New(KindInvalidValueFormat, "", "missing leading '.'")
	moved := orig.WithLocation("path.id")
	assert.Equal(t, "path.id", moved.Location)
	assert.Empty(t, orig.Location)
}
