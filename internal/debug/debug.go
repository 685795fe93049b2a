// Package debug provides the leveled diagnostic logger used across incheck.
// Diagnostics always go to stderr; reports are written elsewhere.
package debug

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

// TimeFormat is the timestamp layout of every log line.
const TimeFormat = "2006-01-02 15:04:05.000"

// MCPMode is set when serving MCP over stdio; logging is then silenced
// unless a file or writer was explicitly configured.
var MCPMode = false

// Logger is a leveled logger with component-tagged debug helpers.
type Logger struct {
	*log.Logger
	verbose bool
}

// New creates a logger writing to w. Debug lines are emitted when verbose
// is set or the DEBUG environment variable enables them.
func New(w io.Writer, verbose bool) *Logger {
	verbose = verbose || IsDebugEnabled()
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &Logger{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      TimeFormat,
			Level:           level,
		}),
		verbose: verbose,
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return New(io.Discard, false)
}

// Verbose reports whether debug lines are emitted.
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Log writes a debug line tagged with the component that produced it.
func (l *Logger) Log(component, format string, args ...interface{}) {
	if !l.verbose {
		return
	}
	l.Debug(fmt.Sprintf(format, args...), "component", component)
}

// IsDebugEnabled reports whether the DEBUG environment variable asks for
// debug output. It is always false in MCP mode.
func IsDebugEnabled() bool {
	if MCPMode {
		return false
	}
	v := os.Getenv("DEBUG")
	return v == "1" || v == "true"
}

var (
	defaultMu     sync.Mutex
	defaultLogger = New(os.Stderr, false)
)

// SetDefault replaces the process-wide logger used by the package helpers.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default returns the process-wide logger.
func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLogger
}

// SetMCPMode silences the default logger while serving MCP on stdio.
func SetMCPMode(enabled bool) {
	MCPMode = enabled
	if enabled {
		SetDefault(Discard())
	}
}

// Log provides component-tagged debug logging through the default logger.
func Log(component, format string, args ...interface{}) {
	Default().Log(component, format, args...)
}

// LogWatch provides debug logging for watch mode.
func LogWatch(format string, args ...interface{}) {
	Log("WATCH", format, args...)
}

// LogMCP provides debug logging for MCP operations.
func LogMCP(format string, args ...interface{}) {
	Log("MCP", format, args...)
}
