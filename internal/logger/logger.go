// Package logger is the process-wide diagnostic log for semsearch.
//
// Errors are always written. Debug, Info and Warn lines appear only with
// --verbose and trace a document through extraction, chunking, embedding
// and retrieval. Lines look like "[WARN] message".
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	level = zap.NewAtomicLevelAt(zapcore.ErrorLevel)

	mu   sync.RWMutex
	out  zapcore.WriteSyncer
	sugo *zap.SugaredLogger
)

func init() {
	SetOutput(os.Stderr)
}

// SetVerbose switches between errors-only and full tracing.
func SetVerbose(v bool) {
	if v {
		level.SetLevel(zapcore.DebugLevel)
		return
	}
	level.SetLevel(zapcore.ErrorLevel)
}

func IsVerbose() bool {
	return level.Enabled(zapcore.DebugLevel)
}

// SetOutput redirects the log. Tests point it at a buffer.
func SetOutput(w io.Writer) {
	ws := zapcore.Lock(zapcore.AddSync(w))
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		LevelKey:         "level",
		MessageKey:       "msg",
		EncodeLevel:      bracketLevel,
		ConsoleSeparator: " ",
	})

	mu.Lock()
	defer mu.Unlock()
	out = ws
	sugo = zap.New(zapcore.NewCore(enc, ws, level)).Sugar()
}

func bracketLevel(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + l.CapitalString() + "]")
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugo
}

func Debug(format string, args ...any) { current().Debugf(format, args...) }

func Info(format string, args ...any) { current().Infof(format, args...) }

func Warn(format string, args ...any) { current().Warnf(format, args...) }

// Error is written whether or not verbose mode is on.
func Error(format string, args ...any) { current().Errorf(format, args...) }

// Section writes a blank line and a "=== name ===" header in verbose mode.
func Section(name string) {
	if !IsVerbose() {
		return
	}
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(out, "\n=== %s ===\n", name)
}

// Timed logs how long an operation took when it returns.
// Typical use: defer logger.Timed("embed batch")().
func Timed(label string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", label, time.Since(start).Round(time.Millisecond))
	}
}
