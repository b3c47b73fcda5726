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
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/AleutianViews/services/views/store"
)

func (a *app) newRunsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List stored aggregation runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := store.NewResultStore(db).Runs(cmd.Context())
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				a.printer.Warning("no stored runs in " + db.Path())
				return nil
			}

			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.ID,
					r.CreatedAt.Local().Format(time.DateTime),
					r.MaxDepth,
					strconv.Itoa(r.Components),
					strings.Join(r.Sources, ","),
				}
			}
			a.printer.Table([]string{"RUN", "CREATED", "DEPTH", "COMPONENTS", "SOURCES"}, rows)
			return nil
		},
	}
}

func (a *app) newShowCmd() *cobra.Command {
	var key int
	cmd := &cobra.Command{
		Use:   "show RUN_ID",
		Short: "Print the stored values of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			results := store.NewResultStore(db)

			if cmd.Flags().Changed("key") {
				v, err := results.Load(cmd.Context(), args[0], key)
				if err != nil {
					return err
				}
				a.printer.Table([]string{"KEY", "VALUE"}, [][]string{{strconv.Itoa(key), formatValue(v)}})
				return nil
			}

			values, err := results.LoadRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(values))
			for _, k := range values.Keys() {
				rows = append(rows, []string{strconv.Itoa(k), formatValue(values[k])})
			}
			a.printer.Table([]string{"KEY", "VALUE"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVar(&key, "key", 0, "print only this component")
	return cmd
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
