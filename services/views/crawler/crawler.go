// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package crawler walks component trees while maintaining a path context.
//
// A Crawler visits a tree in pre-order or post-order, dispatches each
// component to the Visitor hook matching its type, and exposes the
// root-to-current chain (with one accumulator value per frame) to every
// hook. A DepthLimit restricts the traversal to the types at or above a
// cutoff type without changing the tree.
//
// # Usage
//
//	c, err := crawler.New[int](visitor, crawler.Config{
//	    Order:    crawler.PostOrder,
//	    MaxDepth: crawler.LimitTo(component.TypeSubView),
//	})
//	if err != nil {
//	    return err
//	}
//	if err := c.Visit(ctx, root); err != nil {
//	    return fmt.Errorf("crawl views: %w", err)
//	}
//
// # Failure Semantics
//
// Hook errors stop the traversal and are returned as *VisitError. A
// component of unknown type reaching dispatch is a programming error and
// panics.
//
// # Thread Safety
//
// A Crawler holds no per-traversal state, so Visit may be called from
// several goroutines if the Visitor itself is safe for that. Each call
// gets its own Path.
package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/AleutianAI/AleutianViews/services/views/component"
)

// Option configures a Crawler.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for debug output. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Crawler runs path-aware traversals of component trees.
type Crawler[T any] struct {
	visitor Visitor[T]
	factory ElementFactory[T]
	cfg     Config
	logger  *slog.Logger
}

// New creates a Crawler for the given visitor and configuration.
//
// Inputs:
//
//	v - The visitor. If it also implements ElementFactory[T], it seeds
//	    each frame's accumulator.
//	cfg - Order and optional depth limit. Not modified afterwards.
//
// Outputs:
//
//	*Crawler[T] - Ready to Visit any number of trees.
//	error - ErrNilVisitor or ErrUnknownOrder.
func New[T any](v Visitor[T], cfg Config, opts ...Option) (*Crawler[T], error) {
	if v == nil {
		return nil, ErrNilVisitor
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Crawler[T]{
		visitor: v,
		cfg:     cfg,
		logger:  o.logger,
	}
	if f, ok := v.(ElementFactory[T]); ok {
		c.factory = f
	}
	return c, nil
}

// Config returns the traversal configuration.
func (c *Crawler[T]) Config() Config {
	return c.cfg
}

// visitState is the per-call state of one traversal.
type visitState[T any] struct {
	path    *Path[T]
	visited int
}

// Visit traverses the tree rooted at root.
//
// Description:
//
//	The root's hooks always fire exactly once, whatever the order and
//	depth limit. Children are visited in attachment order. A child strictly
//	deeper than the cutoff is skipped along with its subtree; children of
//	the cutoff type or higher are visited and descended into.
//
// Inputs:
//
//	ctx - Carries tracing and metrics. Cancellation is not observed.
//	root - The tree root. Not modified.
//
// Outputs:
//
//	error - component.ErrNilComponent for a nil root, ErrFlavorMismatch
//	        when the depth limit is of another flavor than root, or the
//	        first hook failure as *VisitError.
func (c *Crawler[T]) Visit(ctx context.Context, root *component.Component) error {
	if root == nil {
		return component.ErrNilComponent
	}
	if !c.cfg.MaxDepth.IsUnlimited() && root.Type().Valid() &&
		c.cfg.MaxDepth.Type().Flavor() != root.Type().Flavor() {
		return fmt.Errorf("%w: limit %s, root %s", ErrFlavorMismatch, c.cfg.MaxDepth, root)
	}

	ctx, span := startVisitSpan(ctx, c.cfg, root)
	defer span.End()
	start := time.Now()

	state := &visitState[T]{path: newPath[T]()}
	err := c.visitNode(root, state)

	duration := time.Since(start)
	setVisitSpanResult(span, state.visited, err)
	recordVisitMetrics(ctx, c.cfg, duration, state.visited, err == nil)

	c.logger.DebugContext(ctx, "component tree crawled",
		slog.Int("root_key", root.Key()),
		slog.String("order", c.cfg.Order.String()),
		slog.String("max_depth", c.cfg.MaxDepth.String()),
		slog.Int("visited", state.visited),
		slog.Duration("duration", duration),
		slog.Bool("success", err == nil),
	)
	return err
}

// visitNode pushes n, fires its hooks around its children and pops it.
func (c *Crawler[T]) visitNode(n *component.Component, state *visitState[T]) error {
	state.path.push(n)
	defer state.path.pop()
	state.visited++

	if c.factory != nil {
		state.path.SetCurrentValue(c.factory.NewElement(n, state.path))
	}

	if c.cfg.Order == PreOrder {
		if err := c.dispatch(n, state.path); err != nil {
			return err
		}
	}

	for i := 0; i < n.ChildCount(); i++ {
		child := n.Child(i)
		if c.cfg.MaxDepth.Excludes(child.Type()) {
			continue
		}
		if err := c.visitNode(child, state); err != nil {
			return err
		}
	}

	if c.cfg.Order == PostOrder {
		if err := c.dispatch(n, state.path); err != nil {
			return err
		}
	}
	return nil
}

// dispatch calls VisitAny and then the hook matching the type of n.
func (c *Crawler[T]) dispatch(n *component.Component, path *Path[T]) error {
	if !n.Type().Valid() {
		panic(fmt.Errorf("%w: cannot dispatch component %d of type %d",
			component.ErrUnknownType, n.Key(), int(n.Type())))
	}

	if err := c.visitor.VisitAny(n, path); err != nil {
		return &VisitError{Hook: "VisitAny", Key: n.Key(), Type: n.Type(), Err: err}
	}

	var hook string
	var err error
	switch n.Type() {
	case component.TypeProject:
		hook, err = "VisitProject", c.visitor.VisitProject(n, path)
	case component.TypeModule:
		hook, err = "VisitModule", c.visitor.VisitModule(n, path)
	case component.TypeDirectory:
		hook, err = "VisitDirectory", c.visitor.VisitDirectory(n, path)
	case component.TypeFile:
		hook, err = "VisitFile", c.visitor.VisitFile(n, path)
	case component.TypeView:
		hook, err = "VisitView", c.visitor.VisitView(n, path)
	case component.TypeSubView:
		hook, err = "VisitSubView", c.visitor.VisitSubView(n, path)
	case component.TypeProjectView:
		hook, err = "VisitProjectView", c.visitor.VisitProjectView(n, path)
	default:
		panic(fmt.Errorf("%w: no hook for %s", component.ErrUnknownType, n.Type()))
	}
	if err != nil {
		return &VisitError{Hook: hook, Key: n.Key(), Type: n.Type(), Err: err}
	}
	return nil
}
