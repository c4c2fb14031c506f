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

// Package fixture prepares browser and API handles for the tests: one playwright runtime per
// test process, the shared login session and per-test pages and API managers.
//
// Ordering in TestMain: NewRuntime -> NewSession -> m.Run() -> Session.Close -> Runtime.Stop
package fixture

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sync"
	"testing"

	pw "github.com/playwright-community/playwright-go"

	"github.com/adobe/qa-starter-kit/lib/config"
	"github.com/adobe/qa-starter-kit/lib/log"
	"github.com/adobe/qa-starter-kit/lib/monitoring"
	"github.com/adobe/qa-starter-kit/lib/util"
)

// Runtime is the process-wide playwright driver with launched browser, it's started lazily
// on the first request of a browser so API-only runs are not paying for it
type Runtime struct {
	cfg *config.Config

	startOnce sync.Once
	startErr  error

	pw      *pw.Playwright
	browser pw.Browser

	// Automatic tests screenshoting
	stepMu sync.Mutex
	step   int
}

// NewRuntime creates not started runtime
func NewRuntime(cfg *config.Config) *Runtime {
	return &Runtime{cfg: cfg}
}

// Config returns the configuration used by the runtime
func (r *Runtime) Config() *config.Config {
	return r.cfg
}

func (r *Runtime) start() error {
	r.startOnce.Do(func() {
		logger := log.WithFunc("fixture", "Runtime.start")

		var err error
		if r.pw, err = pw.Run(); err != nil {
			r.startErr = fmt.Errorf("could not start Playwright: %w", err)
			return
		}

		var browserType pw.BrowserType
		switch r.cfg.Browser.Name {
		case "firefox":
			browserType = r.pw.Firefox
		case "webkit":
			browserType = r.pw.WebKit
		default:
			browserType = r.pw.Chromium
		}

		// By default tests are running headless, but there could be a need to run them with UI
		r.browser, err = browserType.Launch(pw.BrowserTypeLaunchOptions{
			Headless: pw.Bool(!r.cfg.Browser.Headful),
		})
		if err != nil {
			r.startErr = fmt.Errorf("could not launch %s: %w", r.cfg.Browser.Name, err)
			return
		}
		logger.Info("Browser launched", "browser", r.cfg.Browser.Name, "headful", r.cfg.Browser.Headful)
	})
	return r.startErr
}

// Browser returns the launched browser, starting the runtime if needed
func (r *Runtime) Browser() (pw.Browser, error) {
	if err := r.start(); err != nil {
		return nil, err
	}
	return r.browser, nil
}

// Stop closes the browser and the driver if they were started
func (r *Runtime) Stop() error {
	if r.browser != nil {
		if err := r.browser.Close(); err != nil {
			return fmt.Errorf("could not close browser: %w", err)
		}
		r.browser = nil
	}
	if r.pw != nil {
		if err := r.pw.Stop(); err != nil {
			return fmt.Errorf("could not stop Playwright: %w", err)
		}
		r.pw = nil
	}
	return nil
}

// ContextOptions returns default options for the new browser contexts
func (r *Runtime) ContextOptions() pw.BrowserNewContextOptions {
	return pw.BrowserNewContextOptions{
		BaseURL:           pw.String(r.cfg.BaseURL),
		IgnoreHttpsErrors: pw.Bool(true),
		Viewport: &pw.Size{
			Width:  r.cfg.Browser.ViewportWidth,
			Height: r.cfg.Browser.ViewportHeight,
		},
	}
}

// newContext creates the browser context with configured timeouts, not bound to a test
func (r *Runtime) newContext(options pw.BrowserNewContextOptions) (pw.BrowserContext, error) {
	browser, err := r.Browser()
	if err != nil {
		return nil, err
	}
	bctx, err := browser.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("could not create new context: %w", err)
	}
	monitoring.Current().RecordBrowserContext(context.Background(), r.cfg.Browser.Name)
	bctx.SetDefaultTimeout(r.cfg.Browser.ActionTimeout.Milliseconds())
	bctx.SetDefaultNavigationTimeout(r.cfg.Browser.NavigationTimeout.Milliseconds())
	return bctx, nil
}

// NewContext creates browser context for the test. Tracing is started according to the
// report configuration and the trace is kept in the capture dir when the mode asks for it.
func (r *Runtime) NewContext(tb testing.TB, options pw.BrowserNewContextOptions) pw.BrowserContext {
	tb.Helper()

	bctx, err := r.newContext(options)
	if err != nil {
		tb.Fatalf("ERROR: %v", err)
	}

	mode := r.cfg.Report.Tracing
	if mode != config.TracingOff {
		if err := bctx.Tracing().Start(pw.TracingStartOptions{
			Name:        pw.String(util.ArtifactName(tb.Name())),
			Screenshots: pw.Bool(true),
			Snapshots:   pw.Bool(true),
			Sources:     pw.Bool(true),
		}); err != nil {
			tb.Logf("WARNING: Could not start tracing: %v", err)
			mode = config.TracingOff
		}
	}

	tb.Cleanup(func() {
		if mode != config.TracingOff {
			keep := keepTrace(mode, tb.Failed())
			monitoring.Current().RecordTrace(context.Background(), mode, keep)
			if keep {
				tracePath := r.TracePath(tb.Name())
				if err := bctx.Tracing().Stop(tracePath); err != nil {
					tb.Logf("WARNING: Could not save trace: %v", err)
				} else {
					tb.Logf("INFO: Trace saved: %s", tracePath)
				}
			} else if err := bctx.Tracing().Stop(); err != nil {
				tb.Logf("WARNING: Could not stop tracing: %v", err)
			}
		}
		if err := bctx.Close(); err != nil {
			tb.Errorf("ERROR: Could not close context: %v", err)
		}
	})

	return bctx
}

// keepTrace decides if the trace file is needed after the test
func keepTrace(mode string, failed bool) bool {
	switch mode {
	case config.TracingOn:
		return true
	case config.TracingRetainOnFailure:
		return failed
	}
	return false
}

// NewPage opens a new page in the context
func (r *Runtime) NewPage(tb testing.TB, bctx pw.BrowserContext) pw.Page {
	tb.Helper()

	page, err := bctx.NewPage()
	if err != nil {
		tb.Fatalf("ERROR: Could not create page: %v", err)
	}
	return page
}

// Run executes subtest with screenshots at the beginning and at the end
func (r *Runtime) Run(t *testing.T, page pw.Page, name string, fn func(t *testing.T)) {
	t.Helper()

	t.Run(name, func(t *testing.T) {
		// Take screenshot at beginning of subtest
		r.Screenshot(t, page, "start")

		// Defer screenshot at end of subtest
		defer r.Screenshot(t, page, "end")

		fn(t)
	})
}

// Screenshot takes a screenshot with automatic naming
func (r *Runtime) Screenshot(tb testing.TB, page pw.Page, phase string) {
	r.stepMu.Lock()
	defer r.stepMu.Unlock()

	// Increment step counter for the process
	r.step++

	// Create filename: step-subtestName-phase.png
	filename := fmt.Sprintf("%02d-%s-%s.png", r.step, path.Base(tb.Name()), phase)

	if _, err := page.Screenshot(pw.PageScreenshotOptions{
		Path: pw.String(r.CaptureDir("screenshots", util.ArtifactName(tb.Name()), filename)),
	}); err != nil {
		tb.Logf("WARNING: Could not take screenshot %s: %v", filename, err)
		return
	}
	monitoring.Current().RecordScreenshot(context.Background(), phase)
}

// TracePath returns location of the trace zip for the test
func (r *Runtime) TracePath(testName string) string {
	return r.CaptureDir("traces", util.ArtifactName(testName)+".zip")
}

// CaptureDir returns path in the capture dir and makes sure parent directory exists
func (r *Runtime) CaptureDir(paths ...string) string {
	out := filepath.Join(append([]string{r.cfg.Report.CaptureDir}, paths...)...)
	os.MkdirAll(filepath.Dir(out), 0o755)
	return out
}
