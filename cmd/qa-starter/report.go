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
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/adobe/qa-starter-kit/lib/config"
	"github.com/adobe/qa-starter-kit/lib/log"
	"github.com/adobe/qa-starter-kit/lib/report"
)

func newReportCmd(cfgPath *string) *cobra.Command {
	var input string
	var f runFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the reports from saved go test -json stream",
		RunE: func(cmd *cobra.Command, _ /*args*/ []string) error {
			logger := log.WithFunc("main", "report")

			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}
			// Rendering the saved stream again should not record the run twice
			if !cmd.Flags().Changed("history") {
				cfg.Report.History = ""
			}

			var in io.Reader = cmd.InOrStdin()
			if input != "-" {
				file, err := os.Open(input)
				if err != nil {
					logger.Error("Unable to open events file", "path", input, "err", err)
					return fmt.Errorf("unable to open events file: %w", err)
				}
				defer file.Close()
				in = file
			}

			out := cmd.OutOrStdout()
			useColor := isTerminal(out)
			col := report.NewCollector(report.Options{})
			if err := col.Consume(in, nil); err != nil {
				return err
			}
			if err := writeReports(col, cfg); err != nil {
				return err
			}
			col.PrintSummary(out, useColor)
			if err := recordHistory(col, cfg, out); err != nil {
				logger.Warn("Unable to record run history", "err", err)
			}

			if col.Failed() {
				return errTestsFailed
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&input, "input", "i", "reports/"+EventsFileName, "go test -json events file, - to read stdin")
	flags.StringVar(&f.html, "html", "", "HTML report file")
	flags.StringVar(&f.allure, "allure", "", "Allure results directory")
	flags.StringVar(&f.junit, "junit", "", "JUnit XML report file")
	flags.StringVar(&f.history, "history", "", "record the run into history database dir")

	return cmd
}

func newArchiveCmd(cfgPath *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "archive [reports dir]",
		Short: "Pack the reports and captures into tar.xz to upload from CI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			dir := reportsDir(cfg)
			if len(args) > 0 {
				dir = args[0]
			}
			if output == "" {
				output = filepath.Clean(dir) + ".tar.xz"
			}

			if err := report.WriteArchive(dir, output); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Archive written:", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path, default is <reports dir>.tar.xz")

	return cmd
}

func newConfigCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, _ /*args*/ []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			// Secrets are not printed
			if cfg.Password != "" {
				cfg.Password = "******"
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("unable to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
