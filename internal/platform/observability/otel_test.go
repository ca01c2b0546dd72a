package observability

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLevel(" WARN "))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestTracesEnabled(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "none")
	assert.False(t, tracesEnabled())
	t.Setenv("OTEL_TRACES_EXPORTER", "otlp")
	assert.True(t, tracesEnabled())
}

func TestNilInstrumentsFallBack(t *testing.T) {
	var instruments *Instruments
	assert.NotNil(t, instruments.Tracer("x"))
	assert.NotNil(t, instruments.Meter("x"))
	assert.NotNil(t, instruments.ComponentLogger("x"))
}
