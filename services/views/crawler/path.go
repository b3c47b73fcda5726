// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package crawler

import (
	"fmt"

	"github.com/AleutianAI/AleutianViews/services/views/component"
)

// PathElement is one frame of a Path: a component on the root-to-current
// chain and the accumulator value owned by that frame.
type PathElement[T any] struct {
	Component *component.Component
	Value     T
}

// Path is the live root-to-current chain of a traversal.
//
// Description:
//
//	The crawler pushes a frame immediately before the first hook of a
//	component fires and pops it after the component's last hook. Hooks
//	may read every frame but may only write the value of the current
//	frame through SetCurrentValue. Values of pointer type can still be
//	mutated through the pointer; that is how bottom-up aggregation adds
//	into a parent's accumulator.
//
// Thread Safety:
//
//	Not safe for concurrent use. Each Crawler.Visit call owns its own Path.
type Path[T any] struct {
	// frames[0] is the root, frames[len-1] the current component.
	frames []PathElement[T]
}

func newPath[T any]() *Path[T] {
	return &Path[T]{frames: make([]PathElement[T], 0, 8)}
}

func (p *Path[T]) push(c *component.Component) {
	p.frames = append(p.frames, PathElement[T]{Component: c})
}

func (p *Path[T]) pop() {
	var zero PathElement[T]
	p.frames[len(p.frames)-1] = zero
	p.frames = p.frames[:len(p.frames)-1]
}

// Current returns the component whose visit is in progress.
func (p *Path[T]) Current() *component.Component {
	return p.frames[len(p.frames)-1].Component
}

// Parent returns the parent of the current component. The boolean is false
// when the current component is the root.
func (p *Path[T]) Parent() (*component.Component, bool) {
	if len(p.frames) < 2 {
		return nil, false
	}
	return p.frames[len(p.frames)-2].Component, true
}

// Root returns the root component of the traversal.
func (p *Path[T]) Root() *component.Component {
	return p.frames[0].Component
}

// IsRoot reports whether the current component is the root.
func (p *Path[T]) IsRoot() bool {
	return len(p.frames) == 1
}

// Depth returns the depth of the current component; the root is 1.
func (p *Path[T]) Depth() int {
	return len(p.frames)
}

// AncestorKeys returns the keys from the current component up to the root,
// current first.
func (p *Path[T]) AncestorKeys() []int {
	keys := make([]int, len(p.frames))
	for i := range p.frames {
		keys[i] = p.frames[len(p.frames)-1-i].Component.Key()
	}
	return keys
}

// Elements returns a copy of the frames, current first.
func (p *Path[T]) Elements() []PathElement[T] {
	out := make([]PathElement[T], len(p.frames))
	for i := range p.frames {
		out[i] = p.frames[len(p.frames)-1-i]
	}
	return out
}

// CurrentValue returns the accumulator of the current frame.
func (p *Path[T]) CurrentValue() T {
	return p.frames[len(p.frames)-1].Value
}

// SetCurrentValue replaces the accumulator of the current frame.
func (p *Path[T]) SetCurrentValue(v T) {
	p.frames[len(p.frames)-1].Value = v
}

// ParentValue returns the accumulator of the parent frame. The boolean is
// false at the root.
func (p *Path[T]) ParentValue() (T, bool) {
	if len(p.frames) < 2 {
		var zero T
		return zero, false
	}
	return p.frames[len(p.frames)-2].Value, true
}

// RootValue returns the accumulator of the root frame.
func (p *Path[T]) RootValue() T {
	return p.frames[0].Value
}

// ValueAt returns the accumulator of the frame at the given depth, counted
// from the root (root = 1, current = Depth()).
func (p *Path[T]) ValueAt(depth int) (T, error) {
	if depth < 1 || depth > len(p.frames) {
		var zero T
		return zero, fmt.Errorf("%w: %d not in [1, %d]", ErrDepthOutOfRange, depth, len(p.frames))
	}
	return p.frames[depth-1].Value, nil
}
