// File: internal/log/log.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package log is the structured logger shared by executors and event loops.
// It wraps logrus and tags every entry with the emitting component.

package log

import (
	"io"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger is the logging contract used inside the module.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
	With(key string, value any) Logger
}

type logger struct {
	entry *logrus.Entry
}

var (
	base     = logrus.New()
	baseOnce sync.Once
	mu       sync.Mutex
)

func root() *logrus.Logger {
	baseOnce.Do(func() {
		base.SetLevel(logrus.InfoLevel)
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	})
	return base
}

// For returns a logger tagged with the given component name.
func For(component string) Logger {
	return &logger{entry: root().WithField("component", component)}
}

// SetLevel changes the global level; unknown names fall back to info.
func SetLevel(level string) {
	mu.Lock()
	defer mu.Unlock()
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	root().SetLevel(lvl)
}

// Level returns the current global level name.
func Level() string {
	return root().GetLevel().String()
}

// SetOutput redirects all loggers.
func SetOutput(out io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	root().SetOutput(out)
}

func (l *logger) Debug(format string, v ...any) { l.entry.Debugf(format, v...) }
func (l *logger) Info(format string, v ...any)  { l.entry.Infof(format, v...) }
func (l *logger) Warn(format string, v ...any)  { l.entry.Warnf(format, v...) }
func (l *logger) Error(format string, v ...any) { l.entry.Errorf(format, v...) }

func (l *logger) With(key string, value any) Logger {
	return &logger{entry: l.entry.WithField(key, value)}
}
