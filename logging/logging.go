// Package logging provides the zap-backed loggers used across pairmesh.
package logging

import (
	"io"
	"os"
	"sync/atomic"
)

type globalHolder struct {
	logger Logger
}

var global atomic.Pointer[globalHolder]

func init() {
	ReplaceGlobal(NewLogger("pairmesh"))
}

// ReplaceGlobal replaces the logger returned by Global.
func ReplaceGlobal(logger Logger) {
	global.Store(&globalHolder{logger})
}

// Global returns the process wide logger, for code that runs before or outside any component
// that was handed a logger.
func Global() Logger {
	return global.Load().logger
}

// NewLogger returns a logger that writes Info+ lines to stderr in UTC.
func NewLogger(name string) Logger {
	return NewWriterLogger(name, INFO, os.Stderr)
}

// NewWriterLogger returns a logger at the given level that writes lines to w in UTC.
func NewWriterLogger(name string, level Level, w io.Writer) Logger {
	return NewAppenderLogger(name, level, NewWriterAppender(w))
}

// NewAppenderLogger returns a logger at the given level that sends every entry to each of the
// appenders, with times in UTC.
func NewAppenderLogger(name string, level Level, appenders ...Appender) Logger {
	return newImpl(name, level, true, appenders)
}
