// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"strconv"

	"github.com/AleutianAI/AleutianViews/pkg/ux"
	"github.com/AleutianAI/AleutianViews/services/views/component"
	"github.com/AleutianAI/AleutianViews/services/views/crawler"
	"github.com/AleutianAI/AleutianViews/services/views/measure"
)

// treeRenderer builds a ux.TreeNode per frame and, in post-order, appends
// each finished node to its parent's frame.
type treeRenderer struct {
	crawler.BaseVisitor[*ux.TreeNode]

	results measure.Results
	root    ux.TreeNode
}

func (r *treeRenderer) NewElement(c *component.Component, _ *crawler.Path[*ux.TreeNode]) *ux.TreeNode {
	node := &ux.TreeNode{Label: c.String()}
	if c.Name() != strconv.Itoa(c.Key()) {
		node.Label += " " + c.Name()
	}
	if v, ok := r.results[c.Key()]; ok {
		node.Detail = formatValue(v)
	}
	return node
}

func (r *treeRenderer) VisitAny(_ *component.Component, path *crawler.Path[*ux.TreeNode]) error {
	current := path.CurrentValue()
	if parent, ok := path.ParentValue(); ok {
		parent.Children = append(parent.Children, *current)
		return nil
	}
	r.root = *current
	return nil
}

// renderTree converts the part of the tree visible under limit, with the
// value of every component found in results as its detail.
func renderTree(ctx context.Context, root *component.Component, results measure.Results, limit crawler.DepthLimit) (ux.TreeNode, error) {
	r := &treeRenderer{results: results}
	c, err := crawler.New[*ux.TreeNode](r, crawler.Config{Order: crawler.PostOrder, MaxDepth: limit})
	if err != nil {
		return ux.TreeNode{}, err
	}
	if err := c.Visit(ctx, root); err != nil {
		return ux.TreeNode{}, err
	}
	return r.root, nil
}
