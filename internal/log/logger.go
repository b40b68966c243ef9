// SPDX-License-Identifier: MIT
//
// Package log is a small leveled logger shared by every package. The level is
// stored atomically so it can be checked cheaply from any goroutine, and the
// output can be redirected while the terminal renderer owns the screen.
package log

import (
	"fmt"
	"io"
	stdlog "log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel defines the severity of a log message.
type LogLevel uint32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l LogLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel converts a level name (case-insensitive, "warning" accepted) to a
// LogLevel. Unknown names return LevelInfo and false.
func ParseLevel(name string) (LogLevel, bool) {
	name = strings.ToUpper(strings.TrimSpace(name))
	if name == "WARNING" {
		name = "WARN"
	}
	for i, n := range levelNames {
		if n == name {
			return LogLevel(i), true
		}
	}
	return LevelInfo, false
}

var (
	currentLevel atomic.Uint32
	// Date and time with microseconds; audio callbacks are only a few ms apart.
	logger = stdlog.New(os.Stderr, "", stdlog.Ldate|stdlog.Ltime|stdlog.Lmicroseconds)
)

func init() {
	SetLevel(LevelInfo)
}

func SetLevel(level LogLevel) {
	currentLevel.Store(uint32(level))
}

func GetLevel() LogLevel {
	return LogLevel(currentLevel.Load())
}

// SetOutput redirects all log output, e.g. to a file while the TUI is running.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// Configure applies a level name from configuration. debug forces LevelDebug.
// An unknown name keeps LevelInfo and is reported as a warning.
func Configure(name string, debug bool) {
	if debug {
		SetLevel(LevelDebug)
		return
	}
	level, ok := ParseLevel(name)
	SetLevel(level)
	if !ok && name != "" {
		Warnf("Unknown log level %q, using %s", name, level)
	}
}

func logf(level LogLevel, format string, v []any) {
	if level < GetLevel() {
		return
	}
	// "[WARN]" and "[INFO]" are padded to the width of "[ERROR]".
	logger.Printf("%-7s %s", "["+level.String()+"]", fmt.Sprintf(format, v...))
}

func Debugf(format string, v ...any) { logf(LevelDebug, format, v) }
func Infof(format string, v ...any)  { logf(LevelInfo, format, v) }
func Warnf(format string, v ...any)  { logf(LevelWarn, format, v) }
func Errorf(format string, v ...any) { logf(LevelError, format, v) }

// Fatalf always logs, regardless of level, then exits with status 1.
func Fatalf(format string, v ...any) {
	logger.Printf("[%s] %s", LevelFatal, fmt.Sprintf(format, v...))
	os.Exit(1)
}
