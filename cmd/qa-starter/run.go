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
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/alessio/shellescape"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/adobe/qa-starter-kit/lib/config"
	"github.com/adobe/qa-starter-kit/lib/log"
	"github.com/adobe/qa-starter-kit/lib/report"
)

// EventsFileName is the raw go test -json stream stored next to the reports
const EventsFileName = "go-test.jsonl"

var errTestsFailed = errors.New("tests failed")

// runFlags are overriding the loaded configuration when set
type runFlags struct {
	browser string
	headful bool
	html    string
	allure  string
	junit   string
	tracing string
	history string
	live    bool
}

func newRunCmd(cfgPath *string) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run [-- go test flags]",
		Short: "Run the test suites and render the reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.WithFunc("main", "run")

			cfg, err := config.Load(*cfgPath)
			if err != nil {
				logger.Error("Unable to load config", "err", err)
				return err
			}
			if err := f.apply(cmd, cfg); err != nil {
				return err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("unable to get working directory: %w", err)
			}
			cfg.ResolvePaths(cwd)

			testArgs := goTestArgs(cfg, args)
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "+ "+shellescape.QuoteCommand(append([]string{"go"}, testArgs...)))

			useColor := isTerminal(out)
			col := report.NewCollector(report.Options{
				Stream:    out,
				Color:     useColor,
				Timestamp: true,
			})

			eventsPath := filepath.Join(reportsDir(cfg), EventsFileName)
			runErr := runGoTest(cfg, testArgs, col, eventsPath)
			if runErr != nil && !isExitError(runErr) {
				logger.Error("Unable to run go test", "err", runErr)
				return runErr
			}

			if err := writeReports(col, cfg); err != nil {
				logger.Error("Unable to write reports", "err", err)
				return err
			}
			col.PrintSummary(out, useColor)
			if err := recordHistory(col, cfg, out); err != nil {
				logger.Warn("Unable to record run history", "err", err)
			}

			// go test exits with error on build failures not visible in the events as well
			if col.Failed() || runErr != nil {
				return errTestsFailed
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.browser, "browser", "", "browser to run UI tests (chromium, firefox, webkit)")
	flags.BoolVar(&f.headful, "headful", false, "show the browser window")
	flags.StringVar(&f.html, "html", "", "HTML report file")
	flags.StringVar(&f.allure, "allure", "", "Allure results directory")
	flags.StringVar(&f.junit, "junit", "", "JUnit XML report file")
	flags.StringVar(&f.tracing, "tracing", "", "playwright tracing mode (on, off, retain-on-failure)")
	flags.StringVar(&f.history, "history", "", "run history database dir, empty to disable")
	flags.BoolVar(&f.live, "live", false, "run the suites against the real services")

	return cmd
}

// apply puts the changed flags into the config and validates the result
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	if f.browser != "" {
		cfg.Browser.Name = f.browser
	}
	if changed("headful") {
		cfg.Browser.Headful = f.headful
	}
	if changed("html") {
		cfg.Report.HTML = f.html
	}
	if changed("allure") {
		cfg.Report.AllureDir = f.allure
	}
	if changed("junit") {
		cfg.Report.JUnit = f.junit
	}
	if f.tracing != "" {
		cfg.Report.Tracing = f.tracing
	}
	if changed("history") {
		cfg.Report.History = f.history
	}
	if changed("live") {
		cfg.Run.Live = f.live
	}
	return cfg.Validate()
}

// goTestArgs builds the go test command line, extra args are passed as is
func goTestArgs(cfg *config.Config, extra []string) []string {
	args := []string{"test", "-json", "-count=1"}
	if cfg.Run.Parallel > 0 {
		args = append(args, "-parallel", strconv.Itoa(cfg.Run.Parallel))
	}
	if cfg.Run.Timeout > 0 {
		args = append(args, "-timeout", cfg.Run.Timeout.String())
	}
	if cfg.Run.Run != "" {
		args = append(args, "-run", cfg.Run.Run)
	}
	args = append(args, cfg.Run.Packages...)
	return append(args, extra...)
}

// runGoTest executes go test and feeds its output to the collector, raw stream is kept in
// eventsPath to render the reports again later
func runGoTest(cfg *config.Config, args []string, col *report.Collector, eventsPath string) error {
	if err := os.MkdirAll(filepath.Dir(eventsPath), 0o755); err != nil {
		return fmt.Errorf("unable to create reports dir: %w", err)
	}
	events, err := os.Create(eventsPath)
	if err != nil {
		return fmt.Errorf("unable to create events file: %w", err)
	}
	defer events.Close()

	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(), cfg.Environ()...)
	cmd.Stderr = os.Stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("unable to start go test: %w", err)
	}

	consumeErr := col.Consume(stdout, events)
	if consumeErr != nil {
		// Let go test finish, otherwise it will be blocked on the full pipe
		io.Copy(events, stdout)
	}
	waitErr := cmd.Wait()

	if consumeErr != nil {
		return consumeErr
	}
	return waitErr
}

func writeReports(col *report.Collector, cfg *config.Config) error {
	logger := log.WithFunc("main", "writeReports")

	if cfg.Report.HTML != "" {
		if err := col.WriteHTML(cfg.Report.HTML); err != nil {
			return err
		}
		logger.Info("HTML report written", "path", cfg.Report.HTML)
	}
	if cfg.Report.AllureDir != "" {
		if err := col.WriteAllure(cfg.Report.AllureDir, cfg.Report.CaptureDir); err != nil {
			return err
		}
		logger.Info("Allure results written", "dir", cfg.Report.AllureDir)
	}
	if cfg.Report.JUnit != "" {
		if err := col.WriteJUnit(cfg.Report.JUnit); err != nil {
			return err
		}
		logger.Info("JUnit report written", "path", cfg.Report.JUnit)
	}
	return nil
}

// reportsDir is the directory of the HTML report or the parent of allure results
func reportsDir(cfg *config.Config) string {
	switch {
	case cfg.Report.HTML != "":
		return filepath.Dir(cfg.Report.HTML)
	case cfg.Report.AllureDir != "":
		return filepath.Dir(cfg.Report.AllureDir)
	case cfg.Report.JUnit != "":
		return filepath.Dir(cfg.Report.JUnit)
	}
	return "reports"
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
