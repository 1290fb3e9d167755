package main

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
)

var debugEnabled atomic.Bool

// setupLogging sends log entries to w (stderr when nil) through the cli handler.
func setupLogging(w io.Writer, debug bool) {
	if w == nil {
		w = os.Stderr
	}
	log.SetHandler(clihandler.New(w))
	if debug {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	debugEnabled.Store(debug)
}

// debugLog logs a printf-style message at debug level.
// Formatting is skipped entirely when debug logging is off.
func debugLog(format string, args ...any) {
	if !debugEnabled.Load() {
		return
	}
	log.Debugf(format, args...)
}
