package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level is the severity of a log line
type Level int

const (
	// LevelDebug traces individual compilation steps
	LevelDebug Level = iota
	// LevelInfo reports files compiled and written
	LevelInfo
	// LevelWarn reports @warn output and lint problems
	LevelWarn
	// LevelError reports failed compilations
	LevelError
)

var levelNames = map[string]Level{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var (
	mu       sync.Mutex
	output   io.Writer = os.Stderr
	minLevel Level     = LevelInfo
	prefix   string    = "[DTSC]"
)

// SetOutput redirects log output. A nil writer silences logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetLevel sets the minimum level written
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// GetLevel returns the minimum level written
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return minLevel
}

// ParseLevel maps a configuration string such as "debug" to a Level
func ParseLevel(name string) (Level, error) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// Debug logs at LevelDebug
func Debug(format string, args ...any) {
	write(LevelDebug, format, args...)
}

// Info logs at LevelInfo
func Info(format string, args ...any) {
	write(LevelInfo, format, args...)
}

// Warn logs at LevelWarn
func Warn(format string, args ...any) {
	write(LevelWarn, format, args...)
}

// Error logs at LevelError
func Error(format string, args ...any) {
	write(LevelError, format, args...)
}

func write(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if level < minLevel || output == nil {
		return
	}

	fmt.Fprintf(output, prefix+" "+format+"\n", args...)
}
