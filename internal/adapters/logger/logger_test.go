package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/corepm/internal/adapters/logger"
	"go.trai.ch/zerr"
)

// newTestLogger creates a logger with an injected bytes.Buffer for isolated testing.
func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg, ok := logger.New().(*logger.Logger)
	require.True(t, ok)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Levels(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Info("resolving acme:ip:uart")
	lg.Warn("duplicate core ignored")
	lg.Debug("hidden by default")

	out := buf.String()
	assert.Contains(t, out, "resolving acme:ip:uart")
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "duplicate core ignored")
	assert.Contains(t, out, "WARN")
	assert.NotContains(t, out, "hidden by default")
}

func TestLogger_SetVerbose(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetVerbose(true)

	lg.Debug("generator cache hit")
	assert.Contains(t, buf.String(), "generator cache hit")
}

func TestLogger_Error_Chain(t *testing.T) {
	lg, buf := newTestLogger(t)

	err := zerr.Wrap(
		zerr.Wrap(errors.New("exit status 2"), "generator failed"),
		"expanding generate entry",
	)
	lg.Error(err)

	out := buf.String()
	assert.Contains(t, out, "Error: expanding generate entry")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "generator failed")
	assert.Contains(t, out, "exit status 2")
}

func TestLogger_Error_StdlibChain(t *testing.T) {
	lg, buf := newTestLogger(t)

	inner := errors.New("connection refused")
	lg.Error(fmt.Errorf("fetching library: %w", inner))

	assert.Contains(t, buf.String(), "Error: fetching library: connection refused")
}

func TestFormatError_Metadata(t *testing.T) {
	err := zerr.New("dependencies cannot be satisfied")
	err = zerr.With(err, "package", "acme:ip:fifo")
	err = zerr.With(err, "constraints", ">=acme:ip:fifo:2.0, <acme:ip:fifo:2.0")

	out := logger.FormatError(err)
	assert.Contains(t, out, "Error: dependencies cannot be satisfied")
	assert.Contains(t, out, "package: acme:ip:fifo")
	assert.Less(t, bytes.Index([]byte(out), []byte("constraints:")), bytes.Index([]byte(out), []byte("package:")))
}

func TestLogger_Error_Nil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_SetJSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)

	lg.Error(zerr.With(zerr.New("unknown target"), "target", "synth"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "operation failed", entry["msg"])
	assert.Equal(t, "synth", entry["target"])
	assert.Contains(t, entry["error"], "unknown target")
}

func TestLogger_FormatSwitching(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.SetJSON(true)
	lg.Info("json line")
	assert.Contains(t, buf.String(), `"msg":"json line"`)

	buf.Reset()
	lg.SetJSON(false)
	lg.Info("text line")
	assert.NotContains(t, buf.String(), `"msg"`)
	assert.Contains(t, buf.String(), "text line")
}

func TestLogger_ConcurrentAccess(t *testing.T) {
	lg, _ := newTestLogger(t)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				lg.SetJSON(i%4 == 0)
			}
			lg.Info("concurrent")
		}(i)
	}
	wg.Wait()
}
