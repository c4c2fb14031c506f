/**
 * Copyright 2025 Adobe. All rights reserved.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License. You may obtain a copy
 * of the License at http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software distributed under
 * the License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR REPRESENTATIONS
 * OF ANY KIND, either express or implied. See the License for the specific language
 * governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/adobe/qa-starter-kit/lib/config"
	"github.com/adobe/qa-starter-kit/lib/history"
	"github.com/adobe/qa-starter-kit/lib/log"
	"github.com/adobe/qa-starter-kit/lib/report"
)

// failStreak is the number of failed runs in a row when the case is shown as unstable
const failStreak = 3

// recordHistory stores the run results and prints the unstable cases
func recordHistory(col *report.Collector, cfg *config.Config, out io.Writer) error {
	if cfg.Report.History == "" {
		return nil
	}
	store, err := history.Open(cfg.Report.History)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Record(uuid.NewString(), time.Now(), col.Packages()); err != nil {
		return err
	}
	unstable, err := store.Unstable(failStreak)
	if err != nil {
		return err
	}
	printUnstable(out, unstable)
	return nil
}

func printUnstable(out io.Writer, cases []history.Case) {
	if len(cases) == 0 {
		return
	}
	fmt.Fprintf(out, "\n🔁 Unstable tests (last %d runs, . pass, x fail, b broken, s skip):\n", history.MaxResults)
	for _, c := range cases {
		reason := "flaky"
		if streak := c.FailStreak(); streak >= failStreak {
			reason = fmt.Sprintf("failing %d runs in a row", streak)
		}
		fmt.Fprintf(out, "  %s:%s  %s  (%s)\n", c.Package, c.Name, c.Trend(), reason)
	}
}

func newHistoryCmd(cfgPath *string) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the unstable tests from the run history",
		RunE: func(cmd *cobra.Command, _ /*args*/ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if cfg.Report.History == "" {
				log.WithFunc("main", "history").Warn("Run history is disabled in config")
				return nil
			}
			store, err := history.Open(cfg.Report.History)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if !all {
				unstable, err := store.Unstable(failStreak)
				if err != nil {
					return err
				}
				if len(unstable) == 0 {
					fmt.Fprintln(out, "No unstable tests")
				}
				printUnstable(out, unstable)
				return nil
			}

			cases, err := store.List()
			if err != nil {
				return err
			}
			for _, c := range cases {
				fmt.Fprintf(out, "%s:%s  %s\n", c.Package, c.Name, c.Trend())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "list every recorded test")

	return cmd
}
