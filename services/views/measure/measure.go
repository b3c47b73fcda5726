// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package measure provides visitors that compute measures over component
// trees using the crawler's per-frame accumulators.
//
// SumVisitor aggregates leaf values bottom-up: each frame owns a *Counter,
// leaves load their value from a Source, and every frame adds its total into
// its parent's counter after its children are done. PathNameVisitor is the
// top-down counterpart: each frame stores its qualified name derived from the
// parent's frame.
package measure

import (
	"context"
	"fmt"
	"sort"

	"github.com/AleutianAI/AleutianViews/services/views/component"
	"github.com/AleutianAI/AleutianViews/services/views/crawler"
)

// =============================================================================
// Sources and Results
// =============================================================================

// Source supplies leaf values.
type Source interface {
	// Value returns the measure of c. The boolean is false when c has none.
	Value(c *component.Component) (float64, bool)
}

// MapSource is a Source backed by a key -> value map.
type MapSource map[int]float64

// Value implements Source.
func (m MapSource) Value(c *component.Component) (float64, bool) {
	v, ok := m[c.Key()]
	return v, ok
}

// Results maps component keys to aggregated values.
type Results map[int]float64

// Keys returns the keys in ascending order.
func (r Results) Keys() []int {
	keys := make([]int, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// =============================================================================
// SumVisitor
// =============================================================================

// Counter is the accumulator of one frame.
type Counter struct {
	// Sum is the total of the subtree visited so far.
	Sum float64

	// Leaves is the number of leaves that contributed a value.
	Leaves int
}

func (c *Counter) add(other *Counter) {
	c.Sum += other.Sum
	c.Leaves += other.Leaves
}

// SumVisitor sums leaf values up to the root. Run it in post-order.
//
// Thread Safety: Not safe for concurrent traversals; use one per Visit.
type SumVisitor struct {
	crawler.BaseVisitor[*Counter]

	source  Source
	results Results
	leaves  map[int]int
}

// NewSumVisitor creates a SumVisitor reading leaf values from src.
func NewSumVisitor(src Source) *SumVisitor {
	return &SumVisitor{
		source:  src,
		results: make(Results),
		leaves:  make(map[int]int),
	}
}

// NewElement gives every frame its own counter.
func (v *SumVisitor) NewElement(*component.Component, *crawler.Path[*Counter]) *Counter {
	return &Counter{}
}

// VisitAny loads leaf values, records the frame total and adds it to the
// parent frame.
func (v *SumVisitor) VisitAny(c *component.Component, path *crawler.Path[*Counter]) error {
	current := path.CurrentValue()
	if c.Type().IsLeaf() {
		if value, ok := v.source.Value(c); ok {
			current.Sum = value
			current.Leaves = 1
		}
	}

	v.results[c.Key()] = current.Sum
	v.leaves[c.Key()] = current.Leaves

	if parent, ok := path.ParentValue(); ok {
		parent.add(current)
	}
	return nil
}

// Results returns the aggregated value of every visited component.
func (v *SumVisitor) Results() Results {
	out := make(Results, len(v.results))
	for k, val := range v.results {
		out[k] = val
	}
	return out
}

// LeafCount returns how many leaves contributed to the total of key.
func (v *SumVisitor) LeafCount(key int) int {
	return v.leaves[key]
}

// Aggregate sums the leaf values of src over the tree rooted at root.
//
// Description:
//
//	Runs a post-order SumVisitor. With a depth limit above the leaf type
//	no leaf is visited, so every total is zero.
//
// Outputs:
//
//	Results - Totals for every visited component.
//	error - Non-nil if the traversal fails.
func Aggregate(ctx context.Context, root *component.Component, src Source, limit crawler.DepthLimit) (Results, error) {
	v := NewSumVisitor(src)
	c, err := crawler.New[*Counter](v, crawler.Config{Order: crawler.PostOrder, MaxDepth: limit})
	if err != nil {
		return nil, fmt.Errorf("create crawler: %w", err)
	}
	if err := c.Visit(ctx, root); err != nil {
		return nil, fmt.Errorf("aggregate measures: %w", err)
	}
	return v.Results(), nil
}

// =============================================================================
// PathNameVisitor
// =============================================================================

// PathNameVisitor computes "root/child/grandchild" names top-down. Names are
// seeded when a frame is pushed, so it works in either order.
type PathNameVisitor struct {
	crawler.BaseVisitor[string]

	separator string
	names     map[int]string
}

// NewPathNameVisitor creates a PathNameVisitor joining names with sep.
func NewPathNameVisitor(sep string) *PathNameVisitor {
	return &PathNameVisitor{separator: sep, names: make(map[int]string)}
}

// NewElement seeds the frame with the qualified name of c.
func (v *PathNameVisitor) NewElement(c *component.Component, path *crawler.Path[string]) string {
	if parent, ok := path.ParentValue(); ok {
		return parent + v.separator + c.Name()
	}
	return c.Name()
}

// VisitAny records the qualified name of c.
func (v *PathNameVisitor) VisitAny(c *component.Component, path *crawler.Path[string]) error {
	v.names[c.Key()] = path.CurrentValue()
	return nil
}

// Names returns the qualified name of every visited component.
func (v *PathNameVisitor) Names() map[int]string {
	out := make(map[int]string, len(v.names))
	for k, n := range v.names {
		out[k] = n
	}
	return out
}

var (
	_ crawler.Visitor[*Counter]        = (*SumVisitor)(nil)
	_ crawler.ElementFactory[*Counter] = (*SumVisitor)(nil)
	_ crawler.Visitor[string]          = (*PathNameVisitor)(nil)
	_ crawler.ElementFactory[string]   = (*PathNameVisitor)(nil)
)
