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
	"context"
	"testing"

	"github.com/adobe/qa-starter-kit/lib/api"
	"github.com/adobe/qa-starter-kit/lib/config"
)

// APIManager returns logged in manager for the test over a fresh HTTP client
func APIManager(tb testing.TB, cfg *config.Config) *api.Manager {
	tb.Helper()

	cli := api.NewHTTPClient(cfg)
	tb.Cleanup(cli.CloseIdleConnections)

	return loggedIn(tb, api.NewManager(cli, cfg), cfg)
}

// BrowserAPIManager returns logged in manager which sends the requests through playwright
// request context, so the calls are recorded in the traces like the browser ones
func BrowserAPIManager(tb testing.TB, rt *Runtime) *api.Manager {
	tb.Helper()

	return loggedIn(tb, api.NewManager(rt.NewRequestContext(tb), rt.Config()), rt.Config())
}

func loggedIn(tb testing.TB, m *api.Manager, cfg *config.Config) *api.Manager {
	tb.Helper()

	if _, err := m.Login(context.Background(), cfg.Username, cfg.Password); err != nil {
		tb.Fatalf("ERROR: API login failed: %v", err)
	}
	return m
}
