// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads viewcrawl defaults from ~/.aleutian/viewcrawl.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianViews/pkg/logging"
	"github.com/AleutianAI/AleutianViews/pkg/telemetry"
	"github.com/AleutianAI/AleutianViews/services/views/crawler"
)

// ErrInvalidConfig indicates the file parsed but failed validation.
var ErrInvalidConfig = errors.New("invalid viewcrawl config")

var validate = validator.New()

func init() {
	_ = validate.RegisterValidation("order", func(fl validator.FieldLevel) bool {
		_, err := crawler.ParseOrder(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("depthlimit", func(fl validator.FieldLevel) bool {
		_, err := crawler.ParseDepthLimit(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		_, err := logging.ParseLevel(fl.Field().String())
		return err == nil
	})
}

// ViewcrawlConfig is the on-disk configuration.
type ViewcrawlConfig struct {
	Crawl     CrawlConfig      `yaml:"crawl"`
	Store     StoreConfig      `yaml:"store"`
	Logging   LoggingConfig    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

// CrawlConfig holds traversal defaults.
type CrawlConfig struct {
	Order    string `yaml:"order" validate:"order"`
	MaxDepth string `yaml:"max_depth" validate:"depthlimit"`
}

// StoreConfig locates the result database.
type StoreConfig struct {
	Path       string `yaml:"path" validate:"required"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// LoggingConfig configures pkg/logging.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"loglevel"`
	Dir    string `yaml:"dir"`
	JSON   bool   `yaml:"json"`
	Output string `yaml:"output" validate:"omitempty,oneof=rich plain machine"`

	// SpanEvents attaches log records to the active trace span.
	SpanEvents bool `yaml:"span_events"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() ViewcrawlConfig {
	return ViewcrawlConfig{
		Crawl: CrawlConfig{
			Order:    crawler.PreOrder.String(),
			MaxDepth: crawler.Unlimited().String(),
		},
		Store: StoreConfig{
			Path:       "~/.aleutian/viewcrawl/results",
			SyncWrites: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// DefaultPath returns ~/.aleutian/viewcrawl.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not find the user's home directory: %w", err)
	}
	return filepath.Join(home, ".aleutian", "viewcrawl.yaml"), nil
}

// Load reads the config at path, creating it with defaults if it is missing.
//
// Description:
//
//	Fields absent from the file keep their default values. The result is
//	validated before it is returned.
//
// Outputs:
//
//	ViewcrawlConfig - The merged configuration.
//	bool - True if the file was created by this call.
//	error - Read, parse or ErrInvalidConfig failures.
func Load(path string) (ViewcrawlConfig, bool, error) {
	cfg := DefaultConfig()

	created := false
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, false, err
		}
		created = true
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, created, fmt.Errorf("failed to read the config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, created, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, created, err
	}
	return cfg, created, nil
}

// Validate checks every field.
func (c ViewcrawlConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// StorePath returns Store.Path with a leading ~ expanded.
func (c ViewcrawlConfig) StorePath() string {
	p := c.Store.Path
	if len(p) > 0 && p[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return p
}

func write(path string, cfg ViewcrawlConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create the config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
