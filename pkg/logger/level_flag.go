// Copyright (c) Microsoft Corporation. All rights reserved.

package logger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levelStrings = map[string]zapcore.Level{
	"debug": zap.DebugLevel,
	"info":  zap.InfoLevel,
	"error": zap.ErrorLevel,
}

// StringToLevel converts a flag value ("debug", "info", "error", or a
// positive verbosity number) to a zap level.
func StringToLevel(value string, defaultLevel zapcore.Level) (zapcore.Level, error) {
	if level, named := levelStrings[strings.ToLower(value)]; named {
		return level, nil
	}

	verbosity, err := strconv.Atoi(value)
	if err != nil || verbosity <= 0 {
		return defaultLevel, fmt.Errorf("invalid log level %q", value)
	}

	// Zap has the levels backwards: higher verbosity is a lower level.
	return zapcore.Level(int8(-verbosity)), nil
}

type levelFlagValue struct {
	logger *Logger
	value  string
}

func (v *levelFlagValue) Set(flagValue string) error {
	level, err := StringToLevel(flagValue, zapcore.InfoLevel)
	if err != nil {
		return err
	}
	v.logger.SetLevel(level)
	v.value = flagValue
	return nil
}

func (v *levelFlagValue) String() string {
	return v.value
}

func (v *levelFlagValue) Type() string {
	return "level"
}

// AddFlags registers the --verbosity flag controlling the console log level.
func (l *Logger) AddFlags(fs *pflag.FlagSet) {
	fs.VarP(&levelFlagValue{logger: l}, "verbosity", "v",
		"console log verbosity: debug, info, error, or a positive number")
}
