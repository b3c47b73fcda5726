// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package crawler

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/AleutianViews/services/views/component"
)

// Package-level tracer and meter for crawler operations.
var (
	tracer = otel.Tracer("aleutian.views.crawler")
	meter  = otel.Meter("aleutian.views.crawler")
)

// Metrics for traversals.
var (
	visitLatency      metric.Float64Histogram
	visitTotal        metric.Int64Counter
	componentsVisited metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		visitLatency, err = meter.Float64Histogram(
			"views_crawl_duration_seconds",
			metric.WithDescription("Duration of component tree traversals"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		visitTotal, err = meter.Int64Counter(
			"views_crawl_total",
			metric.WithDescription("Total number of component tree traversals"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		componentsVisited, err = meter.Int64Counter(
			"views_crawl_components_visited_total",
			metric.WithDescription("Components visited across all traversals"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordVisitMetrics records one finished traversal.
func recordVisitMetrics(ctx context.Context, cfg Config, duration time.Duration, visited int, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("order", cfg.Order.String()),
		attribute.String("max_depth", cfg.MaxDepth.String()),
		attribute.Bool("success", success),
	)

	visitLatency.Record(ctx, duration.Seconds(), attrs)
	visitTotal.Add(ctx, 1, attrs)
	componentsVisited.Add(ctx, int64(visited), attrs)
}

// startVisitSpan creates the span covering one traversal.
func startVisitSpan(ctx context.Context, cfg Config, root *component.Component) (context.Context, trace.Span) {
	return tracer.Start(ctx, "PathAwareCrawler.Visit",
		trace.WithAttributes(
			attribute.String("crawler.order", cfg.Order.String()),
			attribute.String("crawler.max_depth", cfg.MaxDepth.String()),
			attribute.Int("crawler.root_key", root.Key()),
			attribute.String("crawler.root_type", root.Type().String()),
		),
	)
}

// setVisitSpanResult sets the result attributes on a traversal span.
func setVisitSpanResult(span trace.Span, visited int, err error) {
	span.SetAttributes(attribute.Int("crawler.visited", visited))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}
