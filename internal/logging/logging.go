package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
)

// Log levels constants.
const (
	None = iota
	Error
	Warning
	Info
	Debug
)

// auditPrefix marks the lines that form the audit trail inside the log stream.
const auditPrefix = "Audit Log: "

// Logger writes timestamped, leveled lines to a single stream.
// A Logger is constructed once by the entry point and handed to every component.
type Logger struct {
	level atomic.Int32 // Current level; messages above it are dropped.
	out   *log.Logger
}

// New creates a Logger writing to w at the given level.
// A nil writer falls back to os.Stderr.
func New(w io.Writer, level int) *Logger {
	if w == nil {
		w = os.Stderr
	}
	l := &Logger{out: log.New(w, "", log.Ldate|log.Ltime|log.Lmicroseconds)}
	l.level.Store(int32(clamp(level)))
	return l
}

// Discard returns a Logger that drops everything. Handy for tests and library use.
func Discard() *Logger {
	return New(io.Discard, None)
}

func clamp(level int) int {
	if level < None {
		return None
	}
	if level > Debug {
		return Debug
	}
	return level
}

// SetLevel atomically sets the logging level, clamped to [None, Debug].
func (l *Logger) SetLevel(level int) {
	level = clamp(level)
	l.level.Store(int32(level))
	if level >= Debug {
		l.logf(Debug, "Log level set to %d", level)
	}
}

// GetLevel atomically retrieves the current logging level.
func (l *Logger) GetLevel() int {
	return int(l.level.Load())
}

// SetOutput changes the output destination of the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.SetOutput(w)
}

// ParseLevel converts a log level string (case-insensitive) to its integer representation.
// Returns Info level and an error if the string is invalid.
func ParseLevel(levelStr string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "none":
		return None, nil
	case "error":
		return Error, nil
	case "warn", "warning":
		return Warning, nil
	case "info":
		return Info, nil
	case "debug":
		return Debug, nil
	default:
		return Info, fmt.Errorf("invalid log level string: '%s'", levelStr)
	}
}

// SetupLevel parses levelStr and applies it, falling back to Info on a bad value.
// Returns the level actually set.
func (l *Logger) SetupLevel(levelStr string) int {
	level, err := ParseLevel(levelStr)
	if err != nil {
		l.logf(Warning, "Invalid log level '%s' provided, defaulting to 'info'. Error: %v", levelStr, err)
	}
	l.SetLevel(level)
	return level
}

// Logf logs a formatted message if level is enabled.
func (l *Logger) Logf(level int, format string, v ...interface{}) {
	l.logf(level, format, v...)
}

// Audit records a pipeline event on the audit trail. Audit lines are Info lines
// prefixed with "Audit Log:" so they can be grepped out of the shared stream.
func (l *Logger) Audit(action, details string) {
	l.logf(Info, "%s%s - %s", auditPrefix, action, details)
}

// logf is shared by Logf and Audit so runtime.Caller(2) always lands on the caller.
func (l *Logger) logf(level int, format string, v ...interface{}) {
	if l == nil || int32(level) > l.level.Load() || level <= None {
		return
	}

	var levelPrefix string
	switch level {
	case Error:
		levelPrefix = "[ERROR] "
	case Warning:
		levelPrefix = "[WARN] "
	case Info:
		levelPrefix = "[INFO] "
	case Debug:
		levelPrefix = "[DEBUG] "
	default:
		levelPrefix = "[UNKN] "
	}

	fullPrefix := levelPrefix
	if level == Debug {
		pc, file, line, ok := runtime.Caller(2)
		if ok {
			funcName := "???"
			if f := runtime.FuncForPC(pc); f != nil {
				funcName = filepath.Base(f.Name())
			}
			fullPrefix = fmt.Sprintf("%s%s:%d:%s ", levelPrefix, filepath.Base(file), line, funcName)
		} else {
			fullPrefix = fmt.Sprintf("%s???:0:??? ", levelPrefix)
		}
	}

	l.out.Println(fullPrefix + fmt.Sprintf(format, v...))
}
