package cliutil

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erraggy/oascontract/oaserrors"
)

func TestWritef(t *testing.T) {
	var buf bytes.Buffer
	Writef(&buf, "%s: %d items, %v active", "Status", 42, true)
	assert.Equal(t, "Status: 42 items, true active", buf.String())
}

type errorWriter struct{}

func (errorWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestWritef_WriteErrorDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Writef(errorWriter{}, "ignored %d", 1)
	})
}

func TestWriteError(t *testing.T) {
	t.Run("typed", func(t *testing.T) {
		err := &oaserrors.Error{
			Kind:     oaserrors.KindInvalidValue,
			Location: "query.limit",
			Message:  "value does not match schema",
			Diagnostics: []oaserrors.Diagnostic{
				{InstanceLocation: "", KeywordLocation: "/maximum", Message: "must be <= 100"},
			},
		}
		var buf bytes.Buffer
		WriteError(&buf, err)
		assert.Equal(t, "INVALID_VALUE\n"+
			"  location: query.limit\n"+
			"  message:  value does not match schema\n"+
			"  - /: must be <= 100 (/maximum)\n", buf.String())
	})

	t.Run("wrapped typed", func(t *testing.T) {
		var buf bytes.Buffer
		WriteError(&buf, errors.Join(errors.New("context"), oaserrors.New(oaserrors.KindMissingOperation, "/nope", "no path")))
		assert.Contains(t, buf.String(), "MISSING_OPERATION\n  location: /nope\n")
	})

	t.Run("untyped", func(t *testing.T) {
		var buf bytes.Buffer
		WriteError(&buf, errors.New("boom"))
		assert.Equal(t, "Error: boom\n", buf.String())
	})
}
