package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Logger interface {
	Debug(args ...any)
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warn(args ...any)
	Warnf(format string, args ...any)
	Error(args ...any)
	Errorf(format string, args ...any)
	WithField(key string, value any) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

func (l *logrusLogger) Debug(args ...any) {
	l.entry.Debug(args...)
}

func (l *logrusLogger) Debugf(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

func (l *logrusLogger) Info(args ...any) {
	l.entry.Info(args...)
}

func (l *logrusLogger) Infof(format string, args ...any) {
	l.entry.Infof(format, args...)
}

func (l *logrusLogger) Error(args ...any) {
	l.entry.Error(args...)
}

func (l *logrusLogger) Errorf(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

func (l *logrusLogger) Warn(args ...any) {
	l.entry.Warn(args...)
}

func (l *logrusLogger) Warnf(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

func (l *logrusLogger) WithField(key string, value any) Logger {
	return &logrusLogger{entry: l.entry.WithField(key, value)}
}

// NewLogger returns a logger from the installed factory, or a default
// logrus logger when none is installed.
func NewLogger(ctx context.Context) Logger {
	factory := GetLoggerFactory()
	if factory != nil {
		return factory.CreateLogger(ctx)
	}

	return newLogrusLogger(ctx, logrus.New())
}

func newLogrusLogger(ctx context.Context, logger *logrus.Logger) Logger {
	entry := logger.WithContext(ctx)
	if fields := fieldsFromContext(ctx); len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	return &logrusLogger{entry: entry}
}

// LogrusFactory builds loggers that share one configured logrus instance.
type LogrusFactory struct {
	logger *logrus.Logger
}

func NewLogrusFactory(level string, format string, out io.Writer) (*LogrusFactory, error) {
	logger := logrus.New()
	if out == nil {
		out = os.Stderr
	}
	logger.SetOutput(out)

	parsed, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, err
	}
	logger.SetLevel(parsed)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, &UnknownFormatError{Format: format}
	}

	return &LogrusFactory{logger: logger}, nil
}

func (f *LogrusFactory) CreateLogger(ctx context.Context) Logger {
	return newLogrusLogger(ctx, f.logger)
}

type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown log format %q (want text or json)", e.Format)
}

type fieldsKey struct{}

// ContextWithField attaches a field that every logger created from ctx carries.
func ContextWithField(ctx context.Context, key string, value any) context.Context {
	existing := fieldsFromContext(ctx)
	fields := make(logrus.Fields, len(existing)+1)
	for k, v := range existing {
		fields[k] = v
	}
	fields[key] = value
	return context.WithValue(ctx, fieldsKey{}, fields)
}

func fieldsFromContext(ctx context.Context) logrus.Fields {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).(logrus.Fields)
	return fields
}
