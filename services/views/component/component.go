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
	"strconv"
)

// =============================================================================
// Component
// =============================================================================

// Component is one node of a component tree.
//
// Description:
//
//	A Component carries a type, a key that is unique within its tree, an
//	optional display name and an ordered list of children. Leaf types
//	never have children.
//
// Thread Safety:
//
//	Immutable after Build; safe for concurrent reads.
type Component struct {
	typ      Type
	key      int
	name     string
	children []*Component
}

// Type returns the component type.
func (c *Component) Type() Type {
	return c.typ
}

// Key returns the numeric identity of the component.
func (c *Component) Key() int {
	return c.key
}

// Name returns the display name, falling back to the decimal key.
func (c *Component) Name() string {
	if c.name == "" {
		return strconv.Itoa(c.key)
	}
	return c.name
}

// Children returns a copy of the ordered children.
func (c *Component) Children() []*Component {
	out := make([]*Component, len(c.children))
	copy(out, c.children)
	return out
}

// ChildCount returns the number of direct children.
func (c *Component) ChildCount() int {
	return len(c.children)
}

// Child returns the i-th child in attachment order.
//
// Panics if i is out of range, like a slice index.
func (c *Component) Child(i int) *Component {
	return c.children[i]
}

// String returns a short description such as "SUBVIEW:11".
func (c *Component) String() string {
	return fmt.Sprintf("%s:%d", c.typ, c.key)
}

// =============================================================================
// Builder
// =============================================================================

// Builder assembles a Component.
//
// Example:
//
//	root := component.NewBuilder(component.TypeView, 1).
//	    AddChildren(
//	        component.NewBuilder(component.TypeProjectView, 11).MustBuild(),
//	    ).
//	    MustBuild()
type Builder struct {
	typ      Type
	key      int
	name     string
	children []*Component
}

// NewBuilder starts a component of type t with the given key.
func NewBuilder(t Type, key int) *Builder {
	return &Builder{typ: t, key: key}
}

// WithName sets the display name.
func (b *Builder) WithName(name string) *Builder {
	b.name = name
	return b
}

// AddChildren appends children in order.
func (b *Builder) AddChildren(children ...*Component) *Builder {
	b.children = append(b.children, children...)
	return b
}

// Build validates and returns the component.
//
// Description:
//
//	Checks that the type is valid, that leaf types have no children, that
//	every child is of the same flavor and not higher, and that no key
//	appears twice in the resulting subtree.
//
// Outputs:
//
//	*Component - The immutable component. Nil on error.
//	error - One of the package sentinels, wrapped with context.
func (b *Builder) Build() (*Component, error) {
	if !b.typ.Valid() {
		return nil, fmt.Errorf("%w: component %d has type %d", ErrUnknownType, b.key, int(b.typ))
	}
	if b.typ.IsLeaf() && len(b.children) > 0 {
		return nil, fmt.Errorf("%w: %s:%d has %d children", ErrLeafWithChildren, b.typ, b.key, len(b.children))
	}

	seen := map[int]struct{}{b.key: {}}
	for _, child := range b.children {
		if child == nil {
			return nil, fmt.Errorf("%w: child of %s:%d", ErrNilComponent, b.typ, b.key)
		}
		if child.typ.Flavor() != b.typ.Flavor() {
			return nil, fmt.Errorf("%w: %s under %s:%d", ErrMixedFlavors, child, b.typ, b.key)
		}
		if b.typ.IsDeeperThan(child.typ) {
			return nil, fmt.Errorf("%w: %s under %s:%d", ErrChildHigher, child, b.typ, b.key)
		}
		if err := collectKeys(child, seen); err != nil {
			return nil, err
		}
	}

	children := make([]*Component, len(b.children))
	copy(children, b.children)
	return &Component{
		typ:      b.typ,
		key:      b.key,
		name:     b.name,
		children: children,
	}, nil
}

// MustBuild is Build that panics on error. Intended for fixtures.
func (b *Builder) MustBuild() *Component {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}

// collectKeys walks c iteratively and records every key in seen.
func collectKeys(c *Component, seen map[int]struct{}) error {
	stack := []*Component{c}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, dup := seen[n.key]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateKey, n.key)
		}
		seen[n.key] = struct{}{}
		stack = append(stack, n.children...)
	}
	return nil
}

// Count returns the number of components in the tree rooted at c.
func Count(c *Component) int {
	if c == nil {
		return 0
	}
	n := 1
	for _, child := range c.children {
		n += Count(child)
	}
	return n
}
