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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pw "github.com/playwright-community/playwright-go"
	"go.opentelemetry.io/otel/codes"

	"github.com/adobe/qa-starter-kit/lib/config"
	"github.com/adobe/qa-starter-kit/lib/log"
	"github.com/adobe/qa-starter-kit/lib/monitoring"
	"github.com/adobe/qa-starter-kit/lib/pages"
)

// LoginFunc authenticates in the shop using the provided fresh page
type LoginFunc func(page pw.Page, cfg *config.Config) error

// UILogin is the default LoginFunc which fills the login form with configured credentials
func UILogin(page pw.Page, cfg *config.Config) error {
	return pages.NewLoginPage(page).
		Navigate(cfg.BaseURL).
		Login(cfg.Username, cfg.Password).
		WaitForSuccessfulLogin(cfg.Browser.NavigationTimeout.Std()).
		Err()
}

// Session shares one authentication across all the tests of the process. What is shared is
// the browser storage state (cookies and local storage) saved to file: every test gets its own
// context built from it, so the tests are not affecting each other's pages.
type Session struct {
	rt  *Runtime
	cfg *config.Config

	// prepare performs the login and returns path to the storage state
	prepare func() (string, error)

	once      sync.Once
	statePath string
	stateErr  error
	logins    atomic.Int32

	dir string
}

// NewSession creates session handle, login is not executed until the first State call
func NewSession(rt *Runtime, cfg *config.Config, login LoginFunc) (*Session, error) {
	dir, err := os.MkdirTemp("", "qa-starter-session-")
	if err != nil {
		return nil, fmt.Errorf("unable to create session dir: %w", err)
	}
	s := &Session{rt: rt, cfg: cfg, dir: dir}
	s.prepare = func() (string, error) {
		return s.browserLogin(login)
	}
	return s, nil
}

// closeContext is for contexts living outside of a test, there is nothing to fail
func closeContext(bctx pw.BrowserContext, purpose string) {
	if err := bctx.Close(); err != nil {
		log.WithFunc("fixture", "closeContext").Warn("Could not close browser context", "purpose", purpose, "err", err)
	}
}

func (s *Session) browserLogin(login LoginFunc) (string, error) {
	bctx, err := s.rt.newContext(s.rt.ContextOptions())
	if err != nil {
		return "", err
	}
	defer closeContext(bctx, "session login")

	page, err := bctx.NewPage()
	if err != nil {
		return "", fmt.Errorf("could not create login page: %w", err)
	}
	if err := login(page, s.cfg); err != nil {
		return "", fmt.Errorf("session login failed: %w", err)
	}

	statePath := filepath.Join(s.dir, "storage-state.json")
	if _, err := bctx.StorageState(statePath); err != nil {
		return "", fmt.Errorf("unable to store session state: %w", err)
	}
	return statePath, nil
}

// State returns path to the authenticated storage state. The login is executed once per
// process, concurrent callers are waiting for it and a failed login fails every caller.
func (s *Session) State(tb testing.TB) string {
	tb.Helper()

	s.once.Do(func() {
		s.logins.Add(1)
		log.WithFunc("fixture", "Session.State").Info("Performing session login", "user", s.cfg.Username)
		ctx, span := monitoring.StartSpan(context.Background(), "session.login")
		defer span.End()

		started := time.Now()
		s.statePath, s.stateErr = s.prepare()
		monitoring.Current().RecordSessionLogin(ctx, s.stateErr == nil, time.Since(started))
		if s.stateErr != nil {
			span.RecordError(s.stateErr)
			span.SetStatus(codes.Error, "login failed")
		}
	})
	if s.stateErr != nil {
		tb.Fatalf("ERROR: %v", s.stateErr)
	}
	return s.statePath
}

// Logins returns how many times the login was performed, it's 0 or 1
func (s *Session) Logins() int {
	return int(s.logins.Load())
}

// AuthenticatedPage opens the inventory page in a new context with the session state,
// the context is closed at the end of the test
func (s *Session) AuthenticatedPage(tb testing.TB) pw.Page {
	tb.Helper()

	opts := s.rt.ContextOptions()
	opts.StorageStatePath = pw.String(s.State(tb))
	page := s.rt.NewPage(tb, s.rt.NewContext(tb, opts))

	if _, err := page.Goto(s.cfg.InventoryURL()); err != nil {
		tb.Fatalf("ERROR: Could not open inventory page: %v", err)
	}
	return page
}

// Page opens a blank page in a fresh unauthenticated context
func (s *Session) Page(tb testing.TB) pw.Page {
	tb.Helper()

	return s.rt.NewPage(tb, s.rt.NewContext(tb, s.rt.ContextOptions()))
}

// Close removes the stored state, call it after all the tests are completed
func (s *Session) Close() error {
	if err := os.RemoveAll(s.dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("unable to cleanup session dir: %w", err)
	}
	return nil
}
