package parser

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNopLogger(t *testing.T) {
	l := NopLogger{}
	l.Debug("debug", "k", "v")
	l.Info("info", "k", "v")
	l.Warn("warn", "k", "v")
	l.Error("error", "k", "v")

	_, ok := l.With("k", "v").(NopLogger)
	assert.True(t, ok, "With should return NopLogger")
}

func TestSlogAdapter(t *testing.T) {
	t.Run("nil uses default", func(t *testing.T) {
		adapter := NewSlogAdapter(nil)
		assert.NotNil(t, adapter.logger)
	})

	t.Run("levels", func(t *testing.T) {
		var buf bytes.Buffer
		handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
		adapter := NewSlogAdapter(slog.New(handler))

		adapter.Debug("routed request", "path", "/pets/42")
		adapter.Info("loaded")
		adapter.Warn("part without content type")
		adapter.Error("failed")

		out := buf.String()
		assert.Contains(t, out, "level=DEBUG")
		assert.Contains(t, out, "path=/pets/42")
		assert.Contains(t, out, "level=INFO")
		assert.Contains(t, out, "level=WARN")
		assert.Contains(t, out, "level=ERROR")
	})

	t.Run("With prepends attrs", func(t *testing.T) {
		var buf bytes.Buffer
		adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))
		adapter.With("component", "router").Info("hello")
		assert.Contains(t, buf.String(), "component=router")
	})
}

func TestComponent(t *testing.T) {
	assert.Equal(t, NopLogger{}, Component(nil, "router"))

	var buf bytes.Buffer
	l := Component(NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil))), "router")
	l.Info("indexed templates", "count", 3)
	assert.Contains(t, buf.String(), "component=router")
	assert.Contains(t, buf.String(), "count=3")
}
