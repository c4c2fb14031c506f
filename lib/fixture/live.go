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

package fixture

import (
	"testing"

	"github.com/adobe/qa-starter-kit/lib/config"
)

// RequireLive skips the test unless live mode is enabled, live suites need network and browser
func RequireLive(tb testing.TB, cfg *config.Config) {
	tb.Helper()

	if !cfg.Run.Live {
		tb.Skipf("SKIP: live suite is disabled, set %s=1 or run.live in config", config.EnvLive)
	}
}

// LoadConfig loads the configuration for the test process, fails the test on error
func LoadConfig(tb testing.TB) *config.Config {
	tb.Helper()

	cfg, err := config.Load("")
	if err != nil {
		tb.Fatalf("ERROR: Unable to load config: %v", err)
	}
	return cfg
}
