// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/AleutianViews/pkg/telemetry"
	"github.com/AleutianAI/AleutianViews/pkg/ux"
	"github.com/AleutianAI/AleutianViews/services/views/crawler"
	"github.com/AleutianAI/AleutianViews/services/views/measure"
	"github.com/AleutianAI/AleutianViews/services/views/store"
)

// maxConcurrentFiles bounds how many definitions are aggregated at once.
const maxConcurrentFiles = 4

// tracerName names the spans of this binary. The tracer is looked up per
// call because telemetry.Init replaces the global provider after startup.
const tracerName = "aleutian.viewcrawl"

// aggregation is the outcome for one definition file.
type aggregation struct {
	file    string
	tree    ux.TreeNode
	results measure.Results
	runID   string
}

func (a *app) newAggregateCmd() *cobra.Command {
	var (
		depth    string
		save     bool
		watch    bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "aggregate FILE...",
		Short: "Sum leaf measures up every tree",
		Long: `Sums the "measure" values of leaf components bottom-up and prints the total
of every visited component. Files are processed concurrently and each file is
an independent traversal. With --save each file becomes a stored run.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.crawlConfig("", depth)
			if err != nil {
				return err
			}

			var results *store.ResultStore
			if save {
				db, err := a.openStore()
				if err != nil {
					return err
				}
				defer db.Close()
				results = store.NewResultStore(db)
			}

			ctx := cmd.Context()
			aggs, err := a.aggregateFiles(ctx, args, cfg.MaxDepth, results)
			if err != nil {
				return err
			}
			for _, agg := range aggs {
				a.printAggregation(agg)
			}

			if !watch {
				return nil
			}
			a.printer.Title("watching for changes, interrupt to stop")
			return watchFiles(ctx, args, debounce, a.log, func(file string) {
				aggs, err := a.aggregateFiles(ctx, []string{file}, cfg.MaxDepth, results)
				if err != nil {
					a.printer.Error(err.Error())
					return
				}
				a.printAggregation(aggs[0])
			})
		},
	}
	cmd.Flags().StringVar(&depth, "depth", "", "deepest component type to visit (default from config)")
	cmd.Flags().BoolVar(&save, "save", false, "store each file's results as a new run")
	cmd.Flags().BoolVar(&watch, "watch", false, "re-aggregate a file whenever it changes")
	cmd.Flags().DurationVar(&debounce, "debounce", 200*time.Millisecond, "quiet period before a change is processed")
	return cmd
}

// aggregateFiles loads and aggregates every file concurrently. Output order
// matches files. The first failure cancels the remaining work.
func (a *app) aggregateFiles(ctx context.Context, files []string, limit crawler.DepthLimit, results *store.ResultStore) ([]aggregation, error) {
	out := make([]aggregation, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFiles)
	for i, file := range files {
		g.Go(func() error {
			agg, err := a.aggregateFile(gctx, file, limit, results)
			if err != nil {
				return err
			}
			out[i] = agg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *app) aggregateFile(ctx context.Context, file string, limit crawler.DepthLimit, results *store.ResultStore) (_ aggregation, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "viewcrawl.aggregateFile",
		trace.WithAttributes(attribute.String("viewcrawl.file", file)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := ctx.Err(); err != nil {
		return aggregation{}, err
	}
	root, def, err := loadTree(file)
	if err != nil {
		return aggregation{}, err
	}
	values, err := measure.Aggregate(ctx, root, def.Measures(), limit)
	if err != nil {
		return aggregation{}, fmt.Errorf("%s: %w", file, err)
	}
	tree, err := renderTree(ctx, root, values, limit)
	if err != nil {
		return aggregation{}, fmt.Errorf("%s: %w", file, err)
	}

	agg := aggregation{file: file, tree: tree, results: values}
	if results != nil {
		run := store.NewRun([]string{file}, limit.String())
		if err := results.Save(ctx, run, values); err != nil {
			return aggregation{}, err
		}
		agg.runID = run.ID
	}

	telemetry.LoggerWithTrace(ctx, a.log).DebugContext(ctx, "aggregated definition",
		slog.String("file", file),
		slog.Int("components", len(values)),
		slog.String("run_id", agg.runID),
	)
	return agg, nil
}

func (a *app) printAggregation(agg aggregation) {
	a.printer.Title(agg.file)
	a.printer.Tree(agg.tree)
	if agg.runID != "" {
		a.printer.Success("saved run " + agg.runID)
	}
}
