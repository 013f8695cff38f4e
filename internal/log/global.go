package log

import "sync/atomic"

var defaultLogger atomic.Pointer[Logger]

// SetDefaultLogger sets the process-wide default logger. The CLI installs
// one built from the config file and global flags.
func SetDefaultLogger(logger *Logger) {
	defaultLogger.Store(logger)
}

// DefaultLogger returns the process-wide default logger, or a Nop logger
// when none was set so library callers stay silent.
func DefaultLogger() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	nop := Nop()
	if defaultLogger.CompareAndSwap(nil, nop) {
		return nop
	}
	return defaultLogger.Load()
}
