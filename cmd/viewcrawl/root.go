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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianViews/cmd/viewcrawl/config"
	"github.com/AleutianAI/AleutianViews/pkg/logging"
	"github.com/AleutianAI/AleutianViews/pkg/telemetry"
	"github.com/AleutianAI/AleutianViews/pkg/ux"
	"github.com/AleutianAI/AleutianViews/services/views/store"
)

// app holds the state shared by every subcommand of one invocation.
type app struct {
	// Flags.
	configPath  string
	logLevel    string
	metricsAddr string
	output      string
	storePath   string

	cfg     config.ViewcrawlConfig
	logger  *logging.Logger
	log     *slog.Logger
	printer *ux.Printer
	stderr  io.Writer

	closers []func(context.Context) error
}

// execute runs one CLI invocation. Resources acquired by the pre-run hook
// are released even when the command fails.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stderr: stderr}
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)

	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return errors.Join(err, a.close(closeCtx))
}

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "viewcrawl",
		Short:         "Walk and aggregate component trees",
		Long:          "viewcrawl traverses VIEW > SUBVIEW > PROJECT_VIEW and PROJECT > MODULE > DIRECTORY > FILE trees loaded from YAML definitions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.aleutian/viewcrawl.yaml)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9464")
	flags.StringVar(&a.output, "output", "", "output style: rich, plain, machine (default: detect)")
	flags.StringVar(&a.storePath, "store", "", "result database directory (default from config)")

	root.AddCommand(
		a.newWalkCmd(),
		a.newAggregateCmd(),
		a.newRunsCmd(),
		a.newShowCmd(),
	)
	return root
}

// setup loads configuration and starts logging, telemetry and the optional
// metrics server. Flags override config values.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	cfg, created, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg

	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	level, err := logging.ParseLevel(a.cfg.Logging.Level)
	if err != nil {
		return err
	}
	logCfg := logging.Config{
		Level:   level,
		LogDir:  a.cfg.Logging.Dir,
		Service: "viewcrawl",
		JSON:    a.cfg.Logging.JSON,
		Output:  a.stderr,
	}
	if a.cfg.Logging.SpanEvents {
		logCfg.Exporter = telemetry.NewSpanEventExporter()
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	a.logger = logger
	a.log = logger.Slog()
	a.closers = append(a.closers, func(context.Context) error { return logger.Close() })
	if created {
		a.log.Info("created default config", slog.String("path", path))
	}

	mode := ux.Mode("")
	outputName := a.output
	if outputName == "" {
		outputName = a.cfg.Logging.Output
	}
	if outputName != "" {
		m, ok := ux.ParseMode(outputName)
		if !ok {
			return fmt.Errorf("unknown output style %q", outputName)
		}
		mode = m
	}
	a.printer = ux.NewPrinter(cmd.OutOrStdout(), mode)

	a.cfg.Telemetry.Output = a.stderr
	shutdown, err := telemetry.Init(cmd.Context(), a.cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	a.closers = append(a.closers, shutdown)

	if a.metricsAddr != "" {
		if err := a.serveMetrics(); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) serveMetrics() error {
	handler := telemetry.MetricsHandler()
	if handler == nil {
		handler = promhttp.Handler()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	ln, err := net.Listen("tcp", a.metricsAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.metricsAddr, err)
	}
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server stopped", slog.String("error", err.Error()))
		}
	}()
	a.log.Info("serving metrics", slog.String("addr", ln.Addr().String()))
	a.closers = append(a.closers, srv.Shutdown)
	return nil
}

// openStore opens the result database named by --store or the config.
func (a *app) openStore() (*store.DB, error) {
	path := a.storePath
	if path == "" {
		path = a.cfg.StorePath()
	}
	cfg := store.DefaultConfig(path)
	cfg.SyncWrites = a.cfg.Store.SyncWrites
	cfg.Logger = a.log.With(slog.String("component", "badger"))
	db, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}
	return db, nil
}

// close releases resources in reverse order of acquisition.
func (a *app) close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i](ctx))
	}
	a.closers = nil
	return errors.Join(errs...)
}
