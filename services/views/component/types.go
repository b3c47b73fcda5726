// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package component

import (
	"fmt"
	"strings"
)

// =============================================================================
// Flavors
// =============================================================================

// Flavor identifies which type hierarchy a tree is built from.
type Flavor int

const (
	// FlavorUnspecified is the zero value and never valid.
	FlavorUnspecified Flavor = iota

	// FlavorReport is the PROJECT > MODULE > DIRECTORY > FILE hierarchy.
	FlavorReport

	// FlavorViews is the VIEW > SUBVIEW > PROJECT_VIEW hierarchy.
	FlavorViews
)

// String returns "report", "views" or "unspecified".
func (f Flavor) String() string {
	switch f {
	case FlavorReport:
		return "report"
	case FlavorViews:
		return "views"
	default:
		return "unspecified"
	}
}

// ParseFlavor parses "report" or "views" (case-insensitive).
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "report":
		return FlavorReport, nil
	case "views":
		return FlavorViews, nil
	default:
		return FlavorUnspecified, fmt.Errorf("unknown flavor %q", s)
	}
}

// =============================================================================
// Types
// =============================================================================

// Type is the closed set of component types.
//
// Description:
//
//	Each Type belongs to exactly one Flavor and sits at a fixed depth of that
//	flavor's hierarchy (1 = root type). Ordering between types is only
//	defined inside one flavor; comparing across flavors is a programming
//	error and panics.
//
// The zero value, TypeUnspecified, is never valid.
type Type int

const (
	TypeUnspecified Type = iota

	// Report flavor.
	TypeProject
	TypeModule
	TypeDirectory
	TypeFile

	// Views flavor.
	TypeView
	TypeSubView
	TypeProjectView
)

type typeInfo struct {
	name   string
	flavor Flavor
	depth  int
}

var typeInfos = map[Type]typeInfo{
	TypeProject:     {"PROJECT", FlavorReport, 1},
	TypeModule:      {"MODULE", FlavorReport, 2},
	TypeDirectory:   {"DIRECTORY", FlavorReport, 3},
	TypeFile:        {"FILE", FlavorReport, 4},
	TypeView:        {"VIEW", FlavorViews, 1},
	TypeSubView:     {"SUBVIEW", FlavorViews, 2},
	TypeProjectView: {"PROJECT_VIEW", FlavorViews, 3},
}

// AllTypes lists every valid type, report flavor first, each flavor from
// root to leaf.
func AllTypes() []Type {
	return []Type{
		TypeProject, TypeModule, TypeDirectory, TypeFile,
		TypeView, TypeSubView, TypeProjectView,
	}
}

// String returns the upper-case type name, or "UNSPECIFIED".
func (t Type) String() string {
	if info, ok := typeInfos[t]; ok {
		return info.name
	}
	return "UNSPECIFIED"
}

// ParseType parses a type name such as "SUBVIEW" or "project_view".
//
// Outputs:
//
//	Type - The parsed type.
//	error - Wraps ErrUnknownType if the name does not match any type.
func ParseType(s string) (Type, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, t := range AllTypes() {
		if typeInfos[t].name == name {
			return t, nil
		}
	}
	return TypeUnspecified, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Type) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Type) UnmarshalText(b []byte) error {
	parsed, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Valid reports whether t is one of the declared types.
func (t Type) Valid() bool {
	_, ok := typeInfos[t]
	return ok
}

// Flavor returns the hierarchy t belongs to, or FlavorUnspecified.
func (t Type) Flavor() Flavor {
	return typeInfos[t].flavor
}

// Depth returns the level of t in its hierarchy; the root type is 1.
// Returns 0 for invalid types.
func (t Type) Depth() int {
	return typeInfos[t].depth
}

// IsLeaf reports whether t is the deepest type of its flavor.
func (t Type) IsLeaf() bool {
	return t.Valid() && t == LeafType(t.Flavor())
}

// IsDeeperThan reports whether t is strictly closer to the leaves than other.
//
// Panics if either type is invalid or the two types belong to different
// flavors.
func (t Type) IsDeeperThan(other Type) bool {
	mustBeComparable(t, other)
	return t.Depth() > other.Depth()
}

// IsHigherThan reports whether t is strictly closer to the root than other.
//
// Panics if either type is invalid or the two types belong to different
// flavors.
func (t Type) IsHigherThan(other Type) bool {
	mustBeComparable(t, other)
	return t.Depth() < other.Depth()
}

// RootType returns the shallowest type of f.
func RootType(f Flavor) Type {
	switch f {
	case FlavorReport:
		return TypeProject
	case FlavorViews:
		return TypeView
	default:
		return TypeUnspecified
	}
}

// LeafType returns the deepest type of f.
func LeafType(f Flavor) Type {
	switch f {
	case FlavorReport:
		return TypeFile
	case FlavorViews:
		return TypeProjectView
	default:
		return TypeUnspecified
	}
}

func mustBeComparable(a, b Type) {
	if !a.Valid() || !b.Valid() {
		panic(fmt.Errorf("%w: cannot order %s and %s", ErrUnknownType, a, b))
	}
	if a.Flavor() != b.Flavor() {
		panic(fmt.Errorf("%w: cannot order %s (%s) and %s (%s)",
			ErrMixedFlavors, a, a.Flavor(), b, b.Flavor()))
	}
}
