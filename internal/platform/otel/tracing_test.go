package otel

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitTracer_ExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	tp, err := InitTracer("radar-test", true, &buf, zap.NewNop())
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "pipeline.catalog")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Contains(t, buf.String(), "pipeline.catalog")
	assert.Contains(t, buf.String(), "radar-test")
}

func TestInitTracer_Disabled(t *testing.T) {
	var buf bytes.Buffer
	tp, err := InitTracer("radar-test", false, &buf, zap.NewNop())
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "pipeline.rank")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	assert.Empty(t, buf.String())
}

func TestOpenOutput(t *testing.T) {
	w, closeFn, err := OpenOutput("stderr")
	require.NoError(t, err)
	assert.NotNil(t, w)
	assert.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "traces.json")
	w, closeFn, err = OpenOutput(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("{}\n"))
	require.NoError(t, err)
	assert.NoError(t, closeFn())
	assert.FileExists(t, path)

	_, _, err = OpenOutput(filepath.Join(t.TempDir(), "missing", "dir", "x.json"))
	assert.Error(t, err)
}
