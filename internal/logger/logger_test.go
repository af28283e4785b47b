package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		env   string
		debug bool
		want  zapcore.Level
	}{
		{"production", false, zapcore.InfoLevel},
		{"local", false, zapcore.InfoLevel},
		{"local", true, zapcore.DebugLevel},
		{"production", true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		l, err := New(tt.env, tt.debug)
		require.NoError(t, err)
		assert.True(t, l.Core().Enabled(tt.want), "%s debug=%t", tt.env, tt.debug)
		assert.False(t, l.Core().Enabled(tt.want-1), "%s debug=%t", tt.env, tt.debug)
	}
}
