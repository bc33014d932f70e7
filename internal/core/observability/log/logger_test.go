package log

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"", LevelInfo, false},
		{"INFO", LevelInfo, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},
		{"off", LevelSilent, false},
		{"verbose", LevelInfo, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Parse(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLoggerFieldsAndLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := Wrap(zap.New(core), LevelInfo)

	l.Log(LevelDebug, "hidden")
	l.Log(LevelInfo, "frame", Int("ticks", 3), Float64("dt", 0.5), Error(errors.New("boom")))
	l.With(String("entity", "box")).Log(LevelWarn, "scoped")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "frame", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.EqualValues(t, 3, fields["ticks"])
	assert.Equal(t, 0.5, fields["dt"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "box", entries[1].ContextMap()["entity"])
}

func TestSetLevel(t *testing.T) {
	l := NewNop()
	l.SetLevel(LevelError)
	assert.Equal(t, LevelError, l.GetLevel())
	l.SetLevel(LevelSilent)
	assert.Equal(t, LevelSilent, l.GetLevel())
	assert.NotNil(t, OrNop(nil))
}
