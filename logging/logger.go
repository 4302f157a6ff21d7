// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// HandlerType selects the output format.
type HandlerType string

const (
	// JSONHandler writes one JSON object per record.
	JSONHandler HandlerType = "json"
	// TextHandler writes key=value records.
	TextHandler HandlerType = "text"
	// ConsoleHandler writes human-readable records, colored on terminals.
	ConsoleHandler HandlerType = "console"
)

// ParseHandlerType parses "json", "text" or "console". The empty string
// selects JSONHandler.
func ParseHandlerType(s string) (HandlerType, error) {
	switch t := HandlerType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return JSONHandler, nil
	case JSONHandler, TextHandler, ConsoleHandler:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidHandler, s)
	}
}

// Level is a log level.
type Level = slog.Level

const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

// ParseLevel parses a level name such as "debug" or "WARN". The empty string
// selects LevelInfo.
func ParseLevel(s string) (Level, error) {
	if strings.TrimSpace(s) == "" {
		return LevelInfo, nil
	}
	var l Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return LevelInfo, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}

// redactedKeys are replaced by "***REDACTED***" in every record.
var redactedKeys = map[string]bool{
	"password":      true,
	"token":         true,
	"secret":        true,
	"api_key":       true,
	"authorization": true,
}

// Logger builds and owns the process *slog.Logger.
//
// Thread-safety: all methods are safe for concurrent use. The level can be
// changed at runtime with SetLevel.
type Logger struct {
	handlerType HandlerType
	output      io.Writer
	level       slog.LevelVar
	color       *bool

	serviceName    string
	serviceVersion string
	environment    string

	addSource      bool
	replaceAttr    func(groups []string, a slog.Attr) slog.Attr
	registerGlobal bool

	slogger *slog.Logger
}

// Option configures a Logger.
type Option func(*Logger)

func defaultLogger() *Logger {
	l := &Logger{
		handlerType: JSONHandler,
		output:      os.Stdout,
	}
	l.level.Set(LevelInfo)
	return l
}

// New creates a Logger. It does not replace the slog default logger unless
// WithGlobalLogger is given.
func New(opts ...Option) (*Logger, error) {
	l := defaultLogger()
	for _, opt := range opts {
		opt(l)
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}

	var h slog.Handler
	hopts := &slog.HandlerOptions{
		Level:       &l.level,
		AddSource:   l.addSource,
		ReplaceAttr: l.buildReplaceAttr(),
	}
	switch l.handlerType {
	case JSONHandler:
		h = slog.NewJSONHandler(l.output, hopts)
	case TextHandler:
		h = slog.NewTextHandler(l.output, hopts)
	case ConsoleHandler:
		color := isTerminal(l.output)
		if l.color != nil {
			color = *l.color
		}
		h = newConsoleHandler(l.output, hopts, color)
	}

	sl := slog.New(traceHandler{Handler: h})
	var attrs []any
	if l.serviceName != "" {
		attrs = append(attrs, "service", l.serviceName)
	}
	if l.serviceVersion != "" {
		attrs = append(attrs, "version", l.serviceVersion)
	}
	if l.environment != "" {
		attrs = append(attrs, "env", l.environment)
	}
	if len(attrs) > 0 {
		sl = sl.With(attrs...)
	}
	l.slogger = sl

	if l.registerGlobal {
		slog.SetDefault(sl)
	}
	return l, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) *Logger {
	l, err := New(opts...)
	if err != nil {
		panic("logging initialization failed: " + err.Error())
	}
	return l
}

// Validate checks the configuration.
func (l *Logger) Validate() error {
	if l.output == nil {
		return ErrNilOutput
	}
	switch l.handlerType {
	case JSONHandler, TextHandler, ConsoleHandler:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidHandler, l.handlerType)
	}
	return nil
}

func (l *Logger) buildReplaceAttr() func(groups []string, a slog.Attr) slog.Attr {
	return func(groups []string, a slog.Attr) slog.Attr {
		if redactedKeys[strings.ToLower(a.Key)] {
			return slog.String(a.Key, "***REDACTED***")
		}
		if l.replaceAttr != nil {
			return l.replaceAttr(groups, a)
		}
		return a
	}
}

// Logger returns the underlying *slog.Logger. This is what the router and
// the app layer receive.
func (l *Logger) Logger() *slog.Logger { return l.slogger }

// With returns a *slog.Logger with additional attributes.
func (l *Logger) With(args ...any) *slog.Logger { return l.slogger.With(args...) }

// Debug logs at LevelDebug.
func (l *Logger) Debug(msg string, args ...any) {
	l.slogger.Log(context.Background(), LevelDebug, msg, args...)
}

// Info logs at LevelInfo.
func (l *Logger) Info(msg string, args ...any) {
	l.slogger.Log(context.Background(), LevelInfo, msg, args...)
}

// Warn logs at LevelWarn.
func (l *Logger) Warn(msg string, args ...any) {
	l.slogger.Log(context.Background(), LevelWarn, msg, args...)
}

// Error logs at LevelError.
func (l *Logger) Error(msg string, args ...any) {
	l.slogger.Log(context.Background(), LevelError, msg, args...)
}

// SetLevel changes the minimum level at runtime.
func (l *Logger) SetLevel(level Level) { l.level.Set(level) }

// Level returns the current minimum level.
func (l *Logger) Level() Level { return l.level.Level() }

// HandlerType returns the configured output format.
func (l *Logger) HandlerType() HandlerType { return l.handlerType }

// ServiceName returns the configured service name.
func (l *Logger) ServiceName() string { return l.serviceName }

// ServiceVersion returns the configured service version.
func (l *Logger) ServiceVersion() string { return l.serviceVersion }

// Environment returns the configured environment.
func (l *Logger) Environment() string { return l.environment }
