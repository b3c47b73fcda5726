// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package component provides the typed, keyed component tree consumed by the
// crawler.
//
// Two tree flavors exist, each with a fixed type hierarchy:
//
//	Report: PROJECT > MODULE > DIRECTORY > FILE
//	Views:  VIEW > SUBVIEW > PROJECT_VIEW
//
// # Ownership Model
//
// Components are immutable once built. A tree may be traversed any number of
// times, including by concurrent traversals, because nothing in this package
// or in the crawler writes to a Component after Build returns.
//
// # Lifecycle
//
//  1. Build leaves and sub-trees bottom-up with NewBuilder(...).Build()
//  2. Hand the root to a crawler
//  3. Discard or reuse the tree
package component

import "errors"

// Sentinel errors for component construction.
var (
	// ErrUnknownType is returned when a type name cannot be parsed or a
	// component is built with TypeUnspecified.
	ErrUnknownType = errors.New("unknown component type")

	// ErrLeafWithChildren is returned when a leaf type (FILE, PROJECT_VIEW)
	// is given children.
	ErrLeafWithChildren = errors.New("leaf component cannot have children")

	// ErrMixedFlavors is returned when a child belongs to a different tree
	// flavor than its parent.
	ErrMixedFlavors = errors.New("component types from different flavors")

	// ErrChildHigher is returned when a child's type is higher than its
	// parent's type. Children of the same type nest, e.g. SUBVIEW under
	// SUBVIEW.
	ErrChildHigher = errors.New("child type must not be higher than parent type")

	// ErrDuplicateKey is returned when two components of one tree share a key.
	ErrDuplicateKey = errors.New("duplicate component key")

	// ErrNilComponent is returned when a nil component is passed where a
	// component is required.
	ErrNilComponent = errors.New("nil component")
)
