// Package logging configures logrus and carries request scoped loggers in
// a context.
package logging

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns the application logger.  Development gets colored text at
// debug level; every other environment gets JSON at info level.
func New(env string) *logrus.Logger {
	return newLogger(env, os.Stdout)
}

func newLogger(env string, out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	if env == "dev" {
		l.SetLevel(logrus.DebugLevel)
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return l
	}
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l
}

type ctxKey struct{}

// ToContext stores l in ctx.
func ToContext(ctx context.Context, l logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the logger stored in ctx, or the standard logger.
func FromContext(ctx context.Context) logrus.FieldLogger {
	if l, ok := ctx.Value(ctxKey{}).(logrus.FieldLogger); ok {
		return l
	}
	return logrus.StandardLogger()
}
