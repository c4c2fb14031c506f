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

// Package pages contains page objects of the SauceDemo shop. Action methods are chainable:
// they return the receiver or the next page object, and the first failed action is kept
// and reported by Err(), all the following actions are skipped.
package pages

import (
	"context"
	"fmt"
	"time"

	pw "github.com/playwright-community/playwright-go"

	"github.com/adobe/qa-starter-kit/lib/util"
)

// Defaults of ClickUntilVisible
const (
	DefaultClickRetries = 3
	DefaultClickTimeout = 2 * time.Second
)

// Navigable is a screen which could be opened by url
type Navigable interface {
	Goto(url string) error
	URL() string
}

// Interactable resolves selectors in its scope: the whole page for page objects and the
// root element for components
type Interactable interface {
	Locator(selector string) pw.Locator
}

// Base is embedded by every page object
type Base struct {
	page pw.Page
	err  error
}

// NewBase binds the page
func NewBase(page pw.Page) Base {
	return Base{page: page}
}

// Page returns the bound playwright page
func (b *Base) Page() pw.Page {
	return b.page
}

// Locator is page-scoped
func (b *Base) Locator(selector string) pw.Locator {
	return b.page.Locator(selector)
}

// URL of the current document
func (b *Base) URL() string {
	return b.page.URL()
}

// Goto opens the url in the page
func (b *Base) Goto(url string) error {
	if b.err != nil {
		return b.err
	}
	if _, err := b.page.Goto(url); err != nil {
		b.fail(fmt.Errorf("unable to navigate to %q: %w", url, err))
	}
	return b.err
}

// Err returns the first error of the chained actions
func (b *Base) Err() error {
	return b.err
}

// fail keeps only the first error, the later ones are consequences
func (b *Base) fail(err error) {
	if b.err == nil && err != nil {
		b.err = err
	}
}

// do runs the action unless the chain is already failed
func (b *Base) do(what string, action func() error) {
	if b.err != nil {
		return
	}
	if err := action(); err != nil {
		b.fail(fmt.Errorf("%s: %w", what, err))
	}
}

// ClickUntilVisible clicks the element until the target becomes visible, useful for
// dynamic elements like animated menus. After the retries one last click is made and its
// error is returned, so there are up to retries+1 clicks. Each wait is limited by timeout.
func (b *Base) ClickUntilVisible(click, wait pw.Locator, retries int, timeout time.Duration) error {
	if b.err != nil {
		return b.err
	}
	attempts := max(retries, 0) + 1
	err := util.Retry(context.Background(), attempts, 0, func() error {
		if err := click.Click(); err != nil {
			return err
		}
		return wait.WaitFor(pw.LocatorWaitForOptions{
			State:   pw.WaitForSelectorStateVisible,
			Timeout: pw.Float(float64(timeout.Milliseconds())),
		})
	})
	if err != nil {
		b.fail(fmt.Errorf("element is not visible after %d clicks: %w", attempts, err))
	}
	return b.err
}
