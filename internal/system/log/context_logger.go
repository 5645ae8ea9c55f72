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

package log

import (
	"context"

	"github.com/google/uuid"
)

type traceIDContextKey struct{}

// WithTraceID returns a context carrying the given trace ID. Request entry
// points call this once so that all downstream logs share the correlation ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDContextKey{}, traceID)
}

// TraceIDFromContext extracts the trace ID from the context, or returns an
// empty string when none is present.
func TraceIDFromContext(ctx context.Context) string {
	if traceID, ok := ctx.Value(traceIDContextKey{}).(string); ok {
		return traceID
	}
	return ""
}

// WithContext returns a logger with the trace ID (correlation ID) from the
// given context attached. If the context does not contain a trace ID, a new
// one is generated.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	traceID := TraceIDFromContext(ctx)
	if traceID == "" {
		traceID = uuid.NewString()
	}
	return l.With(String(LoggerKeyTraceID, traceID))
}

// GetLoggerWithContext returns a logger with the trace ID (correlation ID) from the given context.
// This is the RECOMMENDED way to get a logger in request-scoped code where a context is available.
//
// The trace ID enables correlation of all logs within a single request flow, making it easier
// to trace and debug issues across service boundaries.
//
// Usage in services with context parameter:
//
//	func (s *service) ProcessData(ctx context.Context, data *Data) error {
//	    logger := log.GetLoggerWithContext(ctx).With(log.String(log.LoggerKeyComponentName, "Service"))
//	    logger.Debug("Processing data", log.String("dataId", data.ID))
//	    return nil
//	}
func GetLoggerWithContext(ctx context.Context) *Logger {
	return GetLogger().WithContext(ctx)
}
