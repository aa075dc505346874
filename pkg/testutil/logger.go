// Copyright (c) Microsoft Corporation. All rights reserved.

package testutil

import (
	"flag"
	"testing"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"

	"github.com/microsoft/pydevd-adapter/pkg/logger"
)

// NewLogForTesting returns a logger that only shows errors, unless tests run with -v,
// in which case every protocol message is traced.
func NewLogForTesting(name string) logr.Logger {
	log := logger.New(name)
	log.SetLevel(zapcore.ErrorLevel)
	if !flag.Parsed() {
		flag.Parse() // Needed to test if verbose flag was present.
	}
	if testing.Verbose() {
		log.SetLevel(zapcore.Level(-1))
	}
	return log.Logger.WithValues("test", true)
}
