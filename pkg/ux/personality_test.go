// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in     string
		want   Mode
		wantOK bool
	}{
		{"rich", ModeRich, true},
		{"FULL", ModeRich, true},
		{" plain ", ModePlain, true},
		{"min", ModePlain, true},
		{"machine", ModeMachine, true},
		{"q", ModeMachine, true},
		{"sparkly", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseMode(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDetectMode(t *testing.T) {
	var buf bytes.Buffer

	t.Run("non-terminal is machine", func(t *testing.T) {
		t.Setenv("VIEWCRAWL_OUTPUT", "")
		assert.Equal(t, ModeMachine, DetectMode(&buf))
	})

	t.Run("environment override", func(t *testing.T) {
		t.Setenv("VIEWCRAWL_OUTPUT", "rich")
		assert.Equal(t, ModeRich, DetectMode(&buf))
	})

	t.Run("invalid override is ignored", func(t *testing.T) {
		t.Setenv("VIEWCRAWL_OUTPUT", "sparkly")
		assert.Equal(t, ModeMachine, DetectMode(&buf))
	})
}
