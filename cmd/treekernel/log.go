package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Logger returns the logger of the command, built on first use
// from the zap production configuration with debug level if
// verbose.
func (rcc *rootCmdConfig) Logger() *zap.Logger {
	if rcc.logger != nil {
		return rcc.logger
	}
	cfg := zap.NewProductionConfig()
	if rcc.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
		logger = zap.NewNop()
	}
	rcc.logger = logger
	return logger
}

// Logf logs a progress message, only shown if verbose.
func (rcc *rootCmdConfig) Logf(format string, a ...interface{}) {
	rcc.Logger().Sugar().Debugf(format, a...)
}
