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
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianViews/services/views/component"
	"github.com/AleutianAI/AleutianViews/services/views/crawler"
	"github.com/AleutianAI/AleutianViews/services/views/definition"
)

func (a *app) newWalkCmd() *cobra.Command {
	var (
		order string
		depth string
		tree  bool
	)
	cmd := &cobra.Command{
		Use:   "walk FILE",
		Short: "Print every visitor hook call of a traversal",
		Long: `Loads a view definition and traverses it with a recording visitor.
Each row is one hook call: VisitAny runs before the type-specific hook of the
same component, in pre-order or post-order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.crawlConfig(order, depth)
			if err != nil {
				return err
			}
			root, _, err := loadTree(args[0])
			if err != nil {
				return err
			}

			if tree {
				node, err := renderTree(cmd.Context(), root, nil, cfg.MaxDepth)
				if err != nil {
					return err
				}
				a.printer.Tree(node)
				return nil
			}

			rec := crawler.NewRecorder()
			c, err := crawler.New[struct{}](rec, cfg, crawler.WithLogger(a.log))
			if err != nil {
				return err
			}
			if err := c.Visit(cmd.Context(), root); err != nil {
				return err
			}

			records := rec.Records()
			rows := make([][]string, len(records))
			for i, r := range records {
				parent := "-"
				if r.ParentKey != nil {
					parent = strconv.Itoa(*r.ParentKey)
				}
				rows[i] = []string{strconv.Itoa(i + 1), r.Method, strconv.Itoa(r.Key), parent, joinKeys(r.Path)}
			}
			a.printer.Title(fmt.Sprintf("%s %s, depth %s", args[0], cfg.Order, cfg.MaxDepth))
			a.printer.Table([]string{"#", "HOOK", "KEY", "PARENT", "PATH"}, rows)
			a.log.Debug("walk finished", slog.String("file", args[0]), slog.Int("calls", len(records)))
			return nil
		},
	}
	cmd.Flags().StringVar(&order, "order", "", "traversal order: pre or post (default from config)")
	cmd.Flags().StringVar(&depth, "depth", "", "deepest component type to visit (default from config)")
	cmd.Flags().BoolVar(&tree, "tree", false, "print the tree down to the depth limit instead of the hook calls")
	return cmd
}

// crawlConfig resolves order and depth flags against the config file.
func (a *app) crawlConfig(order, depth string) (crawler.Config, error) {
	if order == "" {
		order = a.cfg.Crawl.Order
	}
	if depth == "" {
		depth = a.cfg.Crawl.MaxDepth
	}
	o, err := crawler.ParseOrder(order)
	if err != nil {
		return crawler.Config{}, err
	}
	limit, err := crawler.ParseDepthLimit(depth)
	if err != nil {
		return crawler.Config{}, fmt.Errorf("invalid --depth: %w", err)
	}
	return crawler.Config{Order: o, MaxDepth: limit}, nil
}

func loadTree(path string) (*component.Component, *definition.Definition, error) {
	def, err := definition.Load(path)
	if err != nil {
		return nil, nil, err
	}
	root, err := def.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return root, def, nil
}

func joinKeys(keys []int) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.Itoa(k)
	}
	return strings.Join(parts, " ")
}
