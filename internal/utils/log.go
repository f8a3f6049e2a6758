package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDebugLogger logs everything to stderr, so that debug output never
// mixes with the commands printed on stdout.
func NewDebugLogger() (*zap.Logger, error) {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.OutputPaths = []string{"stderr"}
	logConfig.ErrorOutputPaths = []string{"stderr"}
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return logConfig.Build()
}
