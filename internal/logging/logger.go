// Package logging wires the Logger collaborator (spec §6: "structured,
// level-filtered; no required schema") to the teacher's logrus
// convention (see the deleted internal/util/retry.go's
// logrus.Warnf(logPrefix, ...) usage for the style this follows).
package logging

import (
	"github.com/sirupsen/logrus"
)

// Fields is a structured field set attached to one log entry.
type Fields = logrus.Fields

// Logger is the structured, level-filtered collaborator named in spec §6.
// It carries no required schema: callers pass whatever fields are useful.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	WithFields(fields Fields) Logger
}

// logrusLogger adapts *logrus.Entry to the Logger interface.
type logrusLogger struct {
	entry *logrus.Entry
}

// New builds a Logger backed by a fresh logrus.Logger at the given level.
// An unparsable level falls back to logrus.InfoLevel.
func New(level string) Logger {
	l := logrus.New()
	if parsed, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(parsed)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debugf(format string, args ...any) { l.entry.Debugf(format, args...) }
func (l *logrusLogger) Infof(format string, args ...any)  { l.entry.Infof(format, args...) }
func (l *logrusLogger) Warnf(format string, args ...any)  { l.entry.Warnf(format, args...) }
func (l *logrusLogger) Errorf(format string, args ...any) { l.entry.Errorf(format, args...) }

func (l *logrusLogger) WithFields(fields Fields) Logger {
	return &logrusLogger{entry: l.entry.WithFields(fields)}
}

// Noop returns a Logger that discards everything, for tests and for
// callers that have not configured logging.
func Noop() Logger {
	l := logrus.New()
	l.SetOutput(noopWriter{})
	return &logrusLogger{entry: logrus.NewEntry(l)}
}

type noopWriter struct{}

func (noopWriter) Write(p []byte) (int, error) { return len(p), nil }
