// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Level Tests
// =============================================================================

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.level.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: " INFO ", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: "Error", want: LevelError},
		{in: "loud", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_ZeroValueIsInfo(t *testing.T) {
	var cfg Config
	parsed, err := ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, LevelInfo, cfg.Level)
	assert.Equal(t, parsed, cfg.Level)

	var buf bytes.Buffer
	logger, err := New(Config{Output: &buf})
	require.NoError(t, err)
	defer logger.Close()

	logger.Slog().Debug("hidden")
	logger.Slog().Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

// =============================================================================
// Logger Tests
// =============================================================================

func TestNew_ConsoleText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Output: &buf, Service: "viewcrawl"})
	require.NoError(t, err)
	defer logger.Close()

	logger.Slog().Info("crawl finished", "visited", 11)
	logger.Slog().Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "crawl finished")
	assert.Contains(t, out, "visited=11")
	assert.Contains(t, out, "service=viewcrawl")
	assert.NotContains(t, out, "hidden")
}

func TestNew_ConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Output: &buf, JSON: true, Level: LevelDebug})
	require.NoError(t, err)
	defer logger.Close()

	logger.Slog().Debug("frame", "key", 111)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "frame", rec["msg"])
	assert.Equal(t, float64(111), rec["key"])
}

func TestNew_QuietWithoutDestinations(t *testing.T) {
	logger, err := New(Config{Quiet: true})
	require.NoError(t, err)
	defer logger.Close()

	assert.NotPanics(t, func() { logger.Slog().Error("dropped") })
}

func TestNew_WithLogDir(t *testing.T) {
	dir := t.TempDir()
	logger, err := New(Config{Quiet: true, LogDir: dir, Service: "walk"})
	require.NoError(t, err)

	logger.Slog().Warn("written to file", "root", 1)
	require.NoError(t, logger.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "walk_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"written to file"`)
	assert.Contains(t, string(data), `"service":"walk"`)
}

func TestNew_WithLogDir_InvalidPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0600))

	_, err := New(Config{LogDir: filepath.Join(file, "logs")})
	assert.Error(t, err)
}

func TestExporter_ReceivesEntries(t *testing.T) {
	exp := NewBufferedExporter()
	var buf bytes.Buffer
	logger, err := New(Config{Output: &buf, Service: "aggregate", Level: LevelInfo, Exporter: exp})
	require.NoError(t, err)
	defer logger.Close()

	log := logger.Slog().With("run_id", "r1").WithGroup("crawl")
	log.Info("done", "visited", 7, slog.Group("limit", "type", "SUBVIEW"))
	log.Debug("filtered")

	entries := exp.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "done", e.Message)
	assert.Equal(t, LevelInfo, e.Level)
	assert.Equal(t, "aggregate", e.Service)
	assert.Equal(t, "r1", e.Attrs["run_id"])
	assert.Equal(t, int64(7), e.Attrs["crawl.visited"])
	assert.Equal(t, "SUBVIEW", e.Attrs["crawl.limit.type"])
	assert.NotContains(t, e.Attrs, "service")

	assert.Contains(t, buf.String(), "done")
}

type failingExporter struct {
	BufferedExporter
}

func (f *failingExporter) Flush(context.Context) error { return errors.New("flush failed") }

func TestClose_ReportsExporterErrorOnce(t *testing.T) {
	logger, err := New(Config{Quiet: true, Exporter: &failingExporter{}})
	require.NoError(t, err)

	err = logger.Close()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "flush exporter"))
	assert.NoError(t, logger.Close())
}

func TestLogger_ConcurrentUse(t *testing.T) {
	exp := NewBufferedExporter()
	logger, err := New(Config{Quiet: true, Exporter: exp})
	require.NoError(t, err)
	defer logger.Close()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				logger.Slog().Info("tick", "worker", n)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, exp.Entries(), 200)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".aleutian/logs"), expandPath("~/.aleutian/logs"))
	assert.Equal(t, "/var/log", expandPath("/var/log"))
	assert.Equal(t, "relative", expandPath("relative"))
}
