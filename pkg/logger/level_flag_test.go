// Copyright (c) Microsoft Corporation. All rights reserved.

package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestStringToLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		value string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"error", zapcore.ErrorLevel},
		{"1", zapcore.Level(-1)},
		{"4", zapcore.Level(-4)},
	}

	for _, c := range cases {
		level, err := StringToLevel(c.value, zapcore.InfoLevel)
		require.NoError(t, err, "value %q", c.value)
		assert.Equal(t, c.want, level, "value %q", c.value)
	}

	for _, bad := range []string{"", "verbose", "-2", "0"} {
		_, err := StringToLevel(bad, zapcore.InfoLevel)
		assert.Error(t, err, "value %q", bad)
	}
}
