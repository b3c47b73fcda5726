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
	"github.com/AleutianAI/AleutianViews/services/views/component"
)

// Visitor receives the hooks of a path-aware traversal.
//
// Description:
//
//	For every visited component the crawler calls VisitAny first and then
//	exactly one hook matching the component type. Hooks return an error
//	only to report a failure; a non-nil error stops the traversal. Pruning
//	is controlled by Config.MaxDepth, never by hooks.
//
// Embed BaseVisitor to implement only the hooks you need.
type Visitor[T any] interface {
	VisitAny(c *component.Component, path *Path[T]) error

	VisitProject(c *component.Component, path *Path[T]) error
	VisitModule(c *component.Component, path *Path[T]) error
	VisitDirectory(c *component.Component, path *Path[T]) error
	VisitFile(c *component.Component, path *Path[T]) error

	VisitView(c *component.Component, path *Path[T]) error
	VisitSubView(c *component.Component, path *Path[T]) error
	VisitProjectView(c *component.Component, path *Path[T]) error
}

// ElementFactory is optionally implemented by a Visitor to seed the
// accumulator of each frame.
//
// NewElement is called right after the frame for c is pushed and before
// any hook fires for c, so path.Current() is c and ancestors are readable.
// Without a factory every frame starts with the zero value of T.
type ElementFactory[T any] interface {
	NewElement(c *component.Component, path *Path[T]) T
}

// BaseVisitor implements every Visitor hook as a no-op.
type BaseVisitor[T any] struct{}

func (BaseVisitor[T]) VisitAny(*component.Component, *Path[T]) error         { return nil }
func (BaseVisitor[T]) VisitProject(*component.Component, *Path[T]) error     { return nil }
func (BaseVisitor[T]) VisitModule(*component.Component, *Path[T]) error      { return nil }
func (BaseVisitor[T]) VisitDirectory(*component.Component, *Path[T]) error   { return nil }
func (BaseVisitor[T]) VisitFile(*component.Component, *Path[T]) error        { return nil }
func (BaseVisitor[T]) VisitView(*component.Component, *Path[T]) error        { return nil }
func (BaseVisitor[T]) VisitSubView(*component.Component, *Path[T]) error     { return nil }
func (BaseVisitor[T]) VisitProjectView(*component.Component, *Path[T]) error { return nil }

var _ Visitor[struct{}] = BaseVisitor[struct{}]{}
