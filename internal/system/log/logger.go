/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package log provides the structured logging facility used across the service.
// Loggers are component-scoped and correlate request flows via a trace ID carried
// in the context.
package log

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Logger key constants for commonly used fields.
const (
	// LoggerKeyComponentName is the field key identifying the emitting component.
	LoggerKeyComponentName = "component"
	// LoggerKeyTraceID is the field key carrying the request correlation ID.
	LoggerKeyTraceID = "traceId"
)

var (
	rootLogger *Logger
	once       sync.Once
)

// Logger wraps a slog.Logger with the field helpers used across the service.
type Logger struct {
	internal *slog.Logger
	level    slog.Level
}

// Field represents a single structured logging field.
type Field struct {
	attr slog.Attr
}

// String creates a string field.
func String(key, value string) Field {
	return Field{attr: slog.String(key, value)}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{attr: slog.Int(key, value)}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{attr: slog.Bool(key, value)}
}

// Any creates a field with an arbitrary value.
func Any(key string, value any) Field {
	return Field{attr: slog.Any(key, value)}
}

// Error creates a field carrying an error value under the "error" key.
func Error(err error) Field {
	if err == nil {
		return Field{attr: slog.String("error", "")}
	}
	return Field{attr: slog.String("error", err.Error())}
}

// MaskString masks a potentially sensitive string for logging, keeping only a
// short prefix so related log lines can still be correlated by eye.
func MaskString(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", 4)
}

// GetLogger returns the process-wide root logger, initializing it on first use.
// The log level is taken from the LOG_LEVEL environment variable (debug, info,
// warn, error) and defaults to info.
func GetLogger() *Logger {
	once.Do(func() {
		level := resolveLogLevel(os.Getenv("LOG_LEVEL"))
		handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
		rootLogger = &Logger{
			internal: slog.New(handler),
			level:    level,
		}
	})
	return rootLogger
}

func resolveLogLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// With returns a logger that includes the given fields on every record.
func (l *Logger) With(fields ...Field) *Logger {
	return &Logger{
		internal: l.internal.With(attrsToArgs(fields)...),
		level:    l.level,
	}
}

// IsDebugEnabled reports whether debug-level records would be emitted. Callers
// use it to guard field construction that is expensive or sensitive.
func (l *Logger) IsDebugEnabled() bool {
	return l.level <= slog.LevelDebug
}

// Debug logs a message at debug level.
func (l *Logger) Debug(msg string, fields ...Field) {
	l.internal.Debug(msg, attrsToArgs(fields)...)
}

// Info logs a message at info level.
func (l *Logger) Info(msg string, fields ...Field) {
	l.internal.Info(msg, attrsToArgs(fields)...)
}

// Warn logs a message at warn level.
func (l *Logger) Warn(msg string, fields ...Field) {
	l.internal.Warn(msg, attrsToArgs(fields)...)
}

// Error logs a message at error level.
func (l *Logger) Error(msg string, fields ...Field) {
	l.internal.Error(msg, attrsToArgs(fields)...)
}

func attrsToArgs(fields []Field) []any {
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, f.attr)
	}
	return args
}
