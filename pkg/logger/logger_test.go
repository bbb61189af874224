package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func newBufferLogger(t *testing.T) (Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	log := NewWithConfig(Config{
		Name:   "test",
		Format: FormatJSON,
		Level:  slog.LevelDebug,
		Writer: buf,
	})
	return log, buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestNew_Success(t *testing.T) {
	log := New("test-package")

	assert.NotNil(t, log)
	assert.IsType(t, &SlogLogger{}, log)
}

func TestNewWithConfig_Formats(t *testing.T) {
	tests := []struct {
		name   string
		format Format
	}{
		{"json", FormatJSON},
		{"text", FormatText},
		{"default", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			log := NewWithConfig(Config{Name: "svc", Format: tt.format, Writer: buf})
			log.Info("hello")

			assert.Contains(t, buf.String(), "hello")
			assert.Contains(t, buf.String(), "svc")
		})
	}
}

func TestFunction_AddsAttribute(t *testing.T) {
	log, buf := newBufferLogger(t)

	log.File("habit.controller.go").Function("Create").Info("created")

	entry := lastEntry(t, buf)
	assert.Equal(t, "created", entry["msg"])
	assert.Equal(t, "Create", entry["function"])
	assert.Equal(t, "habit.controller.go", entry["file"])
	assert.Equal(t, "test", entry["package"])
}

func TestError_ReturnsMessage(t *testing.T) {
	log, buf := newBufferLogger(t)

	err := log.Error("bad thing", "habitID", "abc")

	require.Error(t, err)
	assert.Equal(t, "bad thing", err.Error())
	assert.Equal(t, "abc", lastEntry(t, buf)["habitID"])
}

func TestErrorWithType_WrapsSentinel(t *testing.T) {
	log, _ := newBufferLogger(t)

	err := log.ErrorWithType(errSentinel, "title is required")

	assert.ErrorIs(t, err, errSentinel)
	assert.Equal(t, "sentinel: title is required", err.Error())
}

func TestErr_ReturnsOriginal(t *testing.T) {
	log, buf := newBufferLogger(t)
	original := errors.New("original error")

	returned := log.Err("context message", original)

	assert.Same(t, original, returned)
	assert.Equal(t, "original error", lastEntry(t, buf)["error"])
}

func TestErr_NilError(t *testing.T) {
	log, _ := newBufferLogger(t)

	assert.Nil(t, log.Err("message", nil))
}

func TestErrMsgAndErrorf(t *testing.T) {
	log, _ := newBufferLogger(t)

	assert.EqualError(t, log.ErrMsg("simple"), "simple")
	assert.EqualError(t, log.Errorf("failed", "details"), "error: details")
}

func TestLevels(t *testing.T) {
	log, buf := newBufferLogger(t)

	tests := []struct {
		level string
		emit  func()
	}{
		{"DEBUG", func() { log.Debug("d") }},
		{"INFO", func() { log.Info("i") }},
		{"INFO", func() { log.Step("s") }},
		{"WARN", func() { log.Warn("w") }},
		{"ERROR", func() { log.Er("e", errSentinel) }},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			tt.emit()
			assert.Equal(t, tt.level, lastEntry(t, buf)["level"])
		})
	}
}

func TestTimer_LogsCompletion(t *testing.T) {
	log, buf := newBufferLogger(t)

	done := log.Timer("stats")
	done()

	entry := lastEntry(t, buf)
	assert.Equal(t, "Timer Completed", entry["msg"])
	assert.Equal(t, "stats", entry["operation"])
}

func TestTraceID_Context(t *testing.T) {
	ctx := ContextWithTraceID(context.Background(), "trace-123")

	assert.Equal(t, "trace-123", TraceIDFromContext(ctx))
	assert.Equal(t, "", TraceIDFromContext(context.Background()))
	assert.Equal(t, "", TraceIDFromContext(nil)) //nolint:staticcheck
}

func TestTraceFromContext(t *testing.T) {
	t.Run("with trace id", func(t *testing.T) {
		log, buf := newBufferLogger(t)
		ctx := ContextWithTraceID(context.Background(), "trace-789")

		log.TraceFromContext(ctx).Info("traced")

		assert.Equal(t, "trace-789", lastEntry(t, buf)["traceID"])
	})

	t.Run("without trace id", func(t *testing.T) {
		log, buf := newBufferLogger(t)

		log.TraceFromContext(context.Background()).Info("untraced")

		_, ok := lastEntry(t, buf)["traceID"]
		assert.False(t, ok)
	})
}

func TestNewWithContext(t *testing.T) {
	log := NewWithContext(context.Background(), "svc")

	assert.NotNil(t, log)
	assert.NotNil(t, log.Slog())
}

func TestFromSlog(t *testing.T) {
	buf := &bytes.Buffer{}
	log := FromSlog(slog.New(slog.NewJSONHandler(buf, nil)))

	log.Info("wrapped")

	assert.Contains(t, buf.String(), "wrapped")
}
