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

// Starting point for qa-starter cmd: runs the test suites and renders the reports
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/adobe/qa-starter-kit/lib/config"
	"github.com/adobe/qa-starter-kit/lib/log"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	var logVerbosity string
	var logTimestamp bool

	cmd := &cobra.Command{
		Use:   "qa-starter",
		Short: "QA starter kit",
		Long:  `Runs API and UI test suites with go test and renders HTML, Allure and JUnit reports`,
		PersistentPreRunE: func(_ /*cmd*/ *cobra.Command, _ /*args*/ []string) error {
			logCfg := log.DefaultConfig()
			logCfg.Level = logVerbosity
			logCfg.UseTimestamp = logTimestamp
			return log.Initialize(logCfg)
		},
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&cfgPath, "config", "c", "", "yaml configuration file, default from "+config.EnvConfigPath+" env")
	flags.StringVarP(&logVerbosity, "verbosity", "v", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&logTimestamp, "timestamp", true, "prepend timestamps for each log line")
	flags.Lookup("timestamp").NoOptDefVal = "false"

	cmd.AddCommand(
		newRunCmd(&cfgPath),
		newReportCmd(&cfgPath),
		newArchiveCmd(&cfgPath),
		newHistoryCmd(&cfgPath),
		newConfigCmd(&cfgPath),
	)
	return cmd
}
