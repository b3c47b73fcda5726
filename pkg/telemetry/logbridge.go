// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianViews/pkg/logging"
)

// SpanEventExporter attaches log records to the span active in the logging
// context as "log" events. Records logged without a recording span are
// dropped, so only the *Context logging methods reach a trace.
//
// Thread Safety: Safe for concurrent use.
type SpanEventExporter struct{}

// NewSpanEventExporter creates a SpanEventExporter.
func NewSpanEventExporter() *SpanEventExporter {
	return &SpanEventExporter{}
}

// Export adds entry as an event on the span in ctx.
func (e *SpanEventExporter) Export(ctx context.Context, entry logging.LogEntry) error {
	if ctx == nil {
		return nil
	}
	span := oteltrace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return nil
	}

	keys := make([]string, 0, len(entry.Attrs))
	for k := range entry.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]attribute.KeyValue, 0, len(keys)+2)
	attrs = append(attrs,
		attribute.String("log.severity", entry.Level.String()),
		attribute.String("log.message", entry.Message),
	)
	for _, k := range keys {
		attrs = append(attrs, logAttribute(k, entry.Attrs[k]))
	}
	span.AddEvent("log", oteltrace.WithTimestamp(entry.Timestamp), oteltrace.WithAttributes(attrs...))
	return nil
}

// Flush is a no-op; events are part of the span.
func (e *SpanEventExporter) Flush(context.Context) error { return nil }

// Close is a no-op.
func (e *SpanEventExporter) Close() error { return nil }

func logAttribute(key string, v any) attribute.KeyValue {
	switch val := v.(type) {
	case string:
		return attribute.String(key, val)
	case bool:
		return attribute.Bool(key, val)
	case int64:
		return attribute.Int64(key, val)
	case uint64:
		return attribute.Int64(key, int64(val))
	case float64:
		return attribute.Float64(key, val)
	default:
		return attribute.String(key, fmt.Sprint(val))
	}
}

var _ logging.LogExporter = (*SpanEventExporter)(nil)
