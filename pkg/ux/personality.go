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
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Mode selects how much styling the output carries.
type Mode string

const (
	// ModeRich uses colors, icons and box-drawing characters.
	ModeRich Mode = "rich"

	// ModePlain keeps box-drawing but drops colors.
	ModePlain Mode = "plain"

	// ModeMachine prints tab-separated text for scripts.
	ModeMachine Mode = "machine"
)

// ParseMode converts a flag or environment value to a Mode. Unknown values
// return ok=false.
func ParseMode(s string) (mode Mode, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rich", "full", "color":
		return ModeRich, true
	case "plain", "minimal", "min":
		return ModePlain, true
	case "machine", "quiet", "q":
		return ModeMachine, true
	default:
		return "", false
	}
}

// DetectMode picks the mode for w.
//
// Description:
//
//	VIEWCRAWL_OUTPUT wins when it holds a valid mode. NO_COLOR selects
//	ModePlain. Otherwise terminals get ModeRich and everything else
//	(pipes, files, buffers) gets ModeMachine.
func DetectMode(w io.Writer) Mode {
	if mode, ok := ParseMode(os.Getenv("VIEWCRAWL_OUTPUT")); ok {
		return mode
	}
	if !isTerminal(w) {
		return ModeMachine
	}
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return ModePlain
	}
	return ModeRich
}

type fdWriter interface {
	Fd() uintptr
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(fdWriter)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
