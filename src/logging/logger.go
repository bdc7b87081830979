package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents severity.
type LogLevel = logrus.Level

const (
	LevelDebug = logrus.DebugLevel
	LevelInfo  = logrus.InfoLevel
	LevelWarn  = logrus.WarnLevel
	LevelError = logrus.ErrorLevel
)

var levelNames = map[string]LogLevel{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var baseLogger = newBaseLogger(os.Stderr)

func newBaseLogger(w io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(LevelInfo)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006/01/02 15:04:05.000000",
	})
	return l
}

// SetLogLevel parses and sets the global log level. Unknown names are ignored.
func SetLogLevel(s string) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return
	}
	baseLogger.SetLevel(l)
}

// ValidLevel reports whether s names a level understood by SetLogLevel.
func ValidLevel(s string) bool {
	_, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// GetLogLevel returns the current global log level.
func GetLogLevel() LogLevel { return baseLogger.GetLevel() }

// SetOutput redirects log output, returning the previous writer.
func SetOutput(w io.Writer) io.Writer {
	prev := baseLogger.Out
	baseLogger.SetOutput(w)
	return prev
}

func logf(l LogLevel, format string, args ...interface{}) {
	if !baseLogger.IsLevelEnabled(l) {
		return
	}
	// no args: format is the message, keep literal % intact
	if len(args) == 0 {
		baseLogger.Log(l, format)
		return
	}
	baseLogger.Logf(l, format, args...)
}

// Public helpers
func Debugf(format string, a ...interface{}) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...interface{})  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...interface{})  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...interface{}) { logf(LevelError, format, a...) }

// WithField returns an entry carrying a structured field, e.g. the report name.
func WithField(key string, value interface{}) *logrus.Entry {
	return baseLogger.WithField(key, value)
}

// Timing helper for phases.
func TimeTrack(start time.Time, label string) {
	dur := time.Since(start)
	Debugf("%s took %s", label, dur)
}
