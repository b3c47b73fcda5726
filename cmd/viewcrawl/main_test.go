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
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/AleutianViews/services/views/component"
	"github.com/AleutianAI/AleutianViews/services/views/crawler"
	"github.com/AleutianAI/AleutianViews/services/views/store"
)

// viewsYAML describes:
//
//	VIEW 1
//	├── SUBVIEW 11
//	│   ├── PROJECT_VIEW 111 (4)
//	│   └── PROJECT_VIEW 112 (6)
//	└── PROJECT_VIEW 12 (1.5)
const viewsYAML = `
flavor: views
root:
  type: VIEW
  key: 1
  children:
    - type: SUBVIEW
      key: 11
      children:
        - {type: PROJECT_VIEW, key: 111, measure: 4}
        - {type: PROJECT_VIEW, key: 112, measure: 6}
    - {type: PROJECT_VIEW, key: 12, measure: 1.5}
`

// reportYAML describes:
//
//	PROJECT 1 "shop"
//	└── FILE 2 (3)
const reportYAML = `
flavor: report
root:
  type: PROJECT
  key: 1
  name: shop
  children:
    - {type: FILE, key: 2, measure: 3}
`

type testEnv struct {
	dir    string
	config string
	store  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:    dir,
		config: filepath.Join(dir, "viewcrawl.yaml"),
		store:  filepath.Join(dir, "results"),
	}
	cfg := "telemetry:\n  service_name: viewcrawl-test\n  trace_exporter: none\n  metric_exporter: none\n" +
		"store:\n  path: " + env.store + "\n  sync_writes: false\n"
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o600))
	return env
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--config", e.config, "--output", "machine"}, args...)
	err := execute(context.Background(), full, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func TestWalk_PreOrder(t *testing.T) {
	env := newTestEnv(t)
	file := env.write(t, "views.yaml", viewsYAML)

	out, _, err := env.run(t, "walk", file)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "#\tHOOK\tKEY\tPARENT\tPATH", lines[0])
	assert.Equal(t, "1\tVisitAny\t1\t-\t1", lines[1])
	assert.Equal(t, "2\tVisitView\t1\t-\t1", lines[2])
	assert.Equal(t, "3\tVisitAny\t11\t1\t11 1", lines[3])
	assert.Equal(t, "6\tVisitProjectView\t111\t11\t111 11 1", lines[6])
}

func TestWalk_PostOrderWithDepth(t *testing.T) {
	env := newTestEnv(t)
	file := env.write(t, "views.yaml", viewsYAML)

	out, _, err := env.run(t, "walk", file, "--order", "post", "--depth", "SUBVIEW")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "1\tVisitAny\t11\t1\t11 1", lines[1])
	assert.Equal(t, "4\tVisitView\t1\t-\t1", lines[4])
}

func TestWalk_Tree(t *testing.T) {
	env := newTestEnv(t)
	file := env.write(t, "report.yaml", reportYAML)

	out, _, err := env.run(t, "walk", file, "--tree")
	require.NoError(t, err)
	assert.Equal(t, "1\tPROJECT:1 shop\t\n2\tFILE:2\t\n", out)
}

func TestWalk_Errors(t *testing.T) {
	env := newTestEnv(t)
	file := env.write(t, "report.yaml", reportYAML)

	_, _, err := env.run(t, "walk", file, "--depth", "SUBVIEW")
	assert.ErrorIs(t, err, crawler.ErrFlavorMismatch)

	_, _, err = env.run(t, "walk", file, "--order", "sideways")
	assert.ErrorIs(t, err, crawler.ErrUnknownOrder)

	_, _, err = env.run(t, "walk", filepath.Join(env.dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestAggregate_SaveRunsShow(t *testing.T) {
	env := newTestEnv(t)
	views := env.write(t, "views.yaml", viewsYAML)
	report := env.write(t, "report.yaml", reportYAML)

	out, _, err := env.run(t, "aggregate", views, report, "--save")
	require.NoError(t, err)

	assert.Contains(t, out, "1\tVIEW:1\t11.5\n")
	assert.Contains(t, out, "2\tSUBVIEW:11\t10\n")
	assert.Contains(t, out, "1\tPROJECT:1 shop\t3\n")

	var runIDs []string
	for _, line := range strings.Split(out, "\n") {
		if id, ok := strings.CutPrefix(line, "OK: saved run "); ok {
			runIDs = append(runIDs, id)
		}
	}
	require.Len(t, runIDs, 2)

	out, _, err = env.run(t, "runs")
	require.NoError(t, err)
	for _, id := range runIDs {
		assert.Contains(t, out, id)
	}

	out, _, err = env.run(t, "show", runIDs[0])
	require.NoError(t, err)
	assert.Equal(t, "KEY\tVALUE\n1\t11.5\n11\t10\n12\t1.5\n111\t4\n112\t6\n", out)

	out, _, err = env.run(t, "show", runIDs[1], "--key", "2")
	require.NoError(t, err)
	assert.Equal(t, "KEY\tVALUE\n2\t3\n", out)

	_, _, err = env.run(t, "show", runIDs[1], "--key", "99")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestAggregate_DepthLimit(t *testing.T) {
	env := newTestEnv(t)
	views := env.write(t, "views.yaml", viewsYAML)

	out, _, err := env.run(t, "aggregate", views, "--depth", "SUBVIEW")
	require.NoError(t, err)
	assert.Equal(t, "1\tVIEW:1\t0\n2\tSUBVIEW:11\t0\n", out)
}

func TestAggregate_OneBadFileFails(t *testing.T) {
	env := newTestEnv(t)
	views := env.write(t, "views.yaml", viewsYAML)
	bad := env.write(t, "bad.yaml", "flavor: views\nroot: {type: VIEW, key: 1, children: [{type: SUBVIEW, key: 2, children: [{type: VIEW, key: 3}]}]}")

	_, _, err := env.run(t, "aggregate", views, bad)
	assert.ErrorIs(t, err, component.ErrChildHigher)
}

func TestRuns_Empty(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := env.run(t, "runs")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "WARN: no stored runs"))
}

func TestRoot_LogLevelFlag(t *testing.T) {
	env := newTestEnv(t)
	file := env.write(t, "views.yaml", viewsYAML)

	_, stderr, err := env.run(t, "--log-level", "debug", "walk", file)
	require.NoError(t, err)
	assert.Contains(t, stderr, "walk finished")

	_, _, err = env.run(t, "--log-level", "loud", "walk", file)
	assert.Error(t, err)
}

func TestAggregate_LogsAsSpanEvents(t *testing.T) {
	env := newTestEnv(t)
	cfg := "telemetry:\n  service_name: viewcrawl-test\n  trace_exporter: stdout\n  metric_exporter: none\n" +
		"store:\n  path: " + env.store + "\n" +
		"logging:\n  level: debug\n  span_events: true\n"
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o600))
	views := env.write(t, "views.yaml", viewsYAML)

	_, stderr, err := env.run(t, "aggregate", views)
	require.NoError(t, err)
	assert.Contains(t, stderr, "viewcrawl.aggregateFile")
	assert.Contains(t, stderr, "log.message")
	assert.Contains(t, stderr, "aggregated definition")
}

func TestRoot_CreatesDefaultConfig(t *testing.T) {
	t.Setenv("OTEL_TRACES_EXPORTER", "none")
	t.Setenv("OTEL_METRICS_EXPORTER", "none")
	dir := t.TempDir()
	path := filepath.Join(dir, "conf", "viewcrawl.yaml")
	file := filepath.Join(dir, "views.yaml")
	require.NoError(t, os.WriteFile(file, []byte(viewsYAML), 0o600))

	var stdout, stderr bytes.Buffer
	err := execute(context.Background(), []string{"--config", path, "--output", "machine", "walk", file}, &stdout, &stderr)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, stderr.String(), "created default config")
}

func TestWatchFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "views.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(file, []byte(viewsYAML), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	changed := make(chan string, 4)
	done := make(chan error, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	go func() {
		done <- watchFiles(ctx, []string{file}, 20*time.Millisecond, logger, func(f string) { changed <- f })
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(file, []byte(viewsYAML+"\n"), 0o600))

	select {
	case f := <-changed:
		assert.Equal(t, file, f)
	case <-time.After(3 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
