package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, slog.LevelInfo).Info("user ingested", "username", "naver_12345")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "user ingested", entry["msg"])
	assert.Equal(t, "naver_12345", entry["username"])
	assert.Equal(t, "saju-auth", entry["service"])
}

func TestSetup_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	Setup(&buf, slog.LevelWarn).Info("dropped")
	assert.Zero(t, buf.Len())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelInfo},
		{in: "debug", want: slog.LevelDebug},
		{in: "WARN", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
