// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearTelemetryEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OTEL_TRACES_EXPORTER", "")
	t.Setenv("OTEL_METRICS_EXPORTER", "")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
}

func TestDefaultConfig_IsValid(t *testing.T) {
	clearTelemetryEnv(t)
	assert.NoError(t, DefaultConfig().Validate())
}

func TestLoad_CreatesDefault(t *testing.T) {
	clearTelemetryEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "viewcrawl.yaml")

	cfg, created, err := Load(path)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(path)
	require.NoError(t, err)

	_, created, err = Load(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestLoad_MergesWithDefaults(t *testing.T) {
	clearTelemetryEnv(t)
	path := filepath.Join(t.TempDir(), "viewcrawl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawl:\n  order: post\n  max_depth: subview\nlogging:\n  level: debug\n"), 0o600))

	cfg, created, err := Load(path)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "post", cfg.Crawl.Order)
	assert.Equal(t, "subview", cfg.Crawl.MaxDepth)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, DefaultConfig().Store, cfg.Store)
	assert.Equal(t, "viewcrawl", cfg.Telemetry.ServiceName)
}

func TestLoad_Invalid(t *testing.T) {
	clearTelemetryEnv(t)
	tests := []struct {
		name string
		yaml string
	}{
		{"bad order", "crawl: {order: sideways}"},
		{"bad depth", "crawl: {max_depth: GALAXY}"},
		{"bad level", "logging: {level: loud}"},
		{"bad output", "logging: {output: neon}"},
		{"empty store path", "store: {path: \"\"}"},
		{"bad exporter", "telemetry: {trace_exporter: zipkin}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "viewcrawl.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o600))

			_, _, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewcrawl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("crawl: [unterminated"), 0o600))

	_, _, err := Load(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)
}

func TestStorePath_ExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(home, ".aleutian/viewcrawl/results"), cfg.StorePath())

	cfg.Store.Path = "/var/lib/viewcrawl"
	assert.Equal(t, "/var/lib/viewcrawl", cfg.StorePath())
}
