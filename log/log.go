// Package log provides the process-wide structured logger. It wraps zerolog
// behind package-level helpers so callers never hold a logger instance:
//
//	log.Infow("proposal created", "proposalId", id, "options", n)
package log

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"runtime/debug"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

const logTestWriterName = "log_test_writer"

var (
	log   zerolog.Logger
	level = LogLevelInfo

	// logTestWriter is the output used when Init is called with
	// logTestWriterName. Tests and benchmarks replace it.
	logTestWriter io.Writer = io.Discard

	panicOnInvalidChars = os.Getenv("LOG_PANIC_ON_INVALIDCHARS") == "true"
)

func init() {
	// Allow overriding the default log level via $LOG_LEVEL, so that the
	// environment variable can be set globally even when running tests.
	lvl := os.Getenv("LOG_LEVEL")
	if lvl == "" {
		lvl = LogLevelError
	}
	Init(lvl, "stderr", nil)
}

// invalidCharChecker wraps a writer and panics when a record contains the
// replacement character, which is what zerolog emits for invalid UTF-8.
type invalidCharChecker struct {
	w io.Writer
}

func (c *invalidCharChecker) Write(p []byte) (int, error) {
	if bytes.Contains(p, []byte(`\ufffd`)) || bytes.ContainsRune(p, utf8.RuneError) {
		panic(fmt.Sprintf("log line contains invalid characters: %q", p))
	}
	return c.w.Write(p)
}

// Init configures the logger. Output may be stdout, stderr or a file path.
// When errorOutput is not nil, records at warn level or above are also
// written to it.
func Init(logLevel, output string, errorOutput io.Writer) {
	var out io.Writer
	switch output {
	case "stdout":
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339Nano}
	case "stderr":
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339Nano}
	case logTestWriterName:
		out = logTestWriter
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			panic(fmt.Sprintf("cannot create log output: %v", err))
		}
		out = f
	}
	if panicOnInvalidChars {
		out = &invalidCharChecker{w: out}
	}
	if errorOutput != nil {
		out = zerolog.MultiLevelWriter(out, &errorLevelWriter{zerolog.ConsoleWriter{
			Out: errorOutput, TimeFormat: time.RFC3339Nano, NoColor: true,
		}})
	}

	zerolog.CallerMarshalFunc = func(_ uintptr, file string, line int) string {
		return path.Base(file) + ":" + fmt.Sprint(line)
	}
	log = zerolog.New(out).With().Timestamp().CallerWithSkipFrameCount(3).Logger()

	switch logLevel {
	case LogLevelDebug:
		log = log.Level(zerolog.DebugLevel)
	case LogLevelInfo:
		log = log.Level(zerolog.InfoLevel)
	case LogLevelWarn:
		log = log.Level(zerolog.WarnLevel)
	case LogLevelError:
		log = log.Level(zerolog.ErrorLevel)
	default:
		panic(fmt.Sprintf("invalid log level: %q", logLevel))
	}
	level = logLevel
	log.Info().Msgf("logger construction succeeded at level %s with output %s", logLevel, output)
}

type errorLevelWriter struct {
	io.Writer
}

func (w *errorLevelWriter) WriteLevel(l zerolog.Level, p []byte) (int, error) {
	if l < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.Write(p)
}

// Level returns the current log level.
func Level() string {
	return level
}

// Logger returns the underlying zerolog logger.
func Logger() *zerolog.Logger {
	return &log
}

func Debug(args ...any) {
	log.Debug().Msg(fmt.Sprint(args...))
}

func Info(args ...any) {
	log.Info().Msg(fmt.Sprint(args...))
}

func Warn(args ...any) {
	log.Warn().Msg(fmt.Sprint(args...))
}

func Error(args ...any) {
	log.Error().Msg(fmt.Sprint(args...))
}

func Fatal(args ...any) {
	log.Fatal().Msg(fmt.Sprint(args...) + "\n" + string(debug.Stack()))
}

func Debugf(template string, args ...any) {
	log.Debug().Msgf(template, args...)
}

func Infof(template string, args ...any) {
	log.Info().Msgf(template, args...)
}

func Warnf(template string, args ...any) {
	log.Warn().Msgf(template, args...)
}

func Errorf(template string, args ...any) {
	log.Error().Msgf(template, args...)
}

func Fatalf(template string, args ...any) {
	Fatal(fmt.Sprintf(template, args...))
}

// Debugw logs a message at debug level with key-value pairs.
func Debugw(msg string, keyvalues ...any) {
	log.Debug().Fields(keyvalues).Msg(msg)
}

// Infow logs a message at info level with key-value pairs.
func Infow(msg string, keyvalues ...any) {
	log.Info().Fields(keyvalues).Msg(msg)
}

// Warnw logs a message at warn level with key-value pairs.
func Warnw(msg string, keyvalues ...any) {
	log.Warn().Fields(keyvalues).Msg(msg)
}

// Errorw logs an error with a message and key-value pairs.
func Errorw(err error, msg string, keyvalues ...any) {
	log.Error().Err(err).Fields(keyvalues).Msg(msg)
}

// ValidLevel reports whether l is one of the supported log levels.
func ValidLevel(l string) bool {
	switch strings.ToLower(l) {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	}
	return false
}
