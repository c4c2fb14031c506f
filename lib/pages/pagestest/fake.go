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

// Package pagestest provides in-process fakes of playwright Page and Locator to unit test
// page objects without a browser. Locators are identified by the selector chain used to
// build them, like `.inventory_list >> .inventory_item >> nth=1 >> .inventory_item_price`.
//
// Only the methods used by the page objects are implemented, the rest will panic.
package pagestest

import (
	"fmt"
	"strings"
	"sync"

	pw "github.com/playwright-community/playwright-go"
)

// Separator joins selectors in the chain
const Separator = " >> "

// Page is a fake browser page which records every action
type Page struct {
	pw.Page

	mu       sync.Mutex
	url      string
	actions  []string
	texts    map[string]string
	lists    map[string][]string
	visible  map[string]bool
	counts   map[string]int
	failures map[string]int
	errs     map[string]error
}

// NewPage creates empty fake page
func NewPage() *Page {
	return &Page{
		url:      "about:blank",
		texts:    make(map[string]string),
		lists:    make(map[string][]string),
		visible:  make(map[string]bool),
		counts:   make(map[string]int),
		failures: make(map[string]int),
		errs:     make(map[string]error),
	}
}

// SetText sets the text content of the locator chain
func (p *Page) SetText(chain, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.texts[chain] = text
}

// SetTexts sets result of AllTextContents for the chain
func (p *Page) SetTexts(chain string, texts ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lists[chain] = texts
}

// SetVisible marks locator chain visible
func (p *Page) SetVisible(chain string, visible bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible[chain] = visible
}

// SetCount sets amount of elements returned by All for the chain
func (p *Page) SetCount(chain string, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[chain] = count
}

// Fail makes the action on the chain fail with err, action is the first word of the
// recorded entry (click, fill, wait, goto...). The first `times` calls fail, -1 is forever.
func (p *Page) Fail(action, chain string, times int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	key := action + " " + chain
	p.failures[key] = times
	p.errs[key] = err
}

// Actions returns the recorded actions in order
func (p *Page) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.actions...)
}

// Count returns how many times the exact action was recorded
func (p *Page) Count(action string) int {
	n := 0
	for _, a := range p.Actions() {
		if a == action {
			n++
		}
	}
	return n
}

// record stores the action and returns the configured error if it should fail
func (p *Page) record(action, chain, arg string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry := action + " " + chain
	if arg != "" {
		entry += " = " + arg
	}
	p.actions = append(p.actions, entry)

	key := action + " " + chain
	left, ok := p.failures[key]
	if !ok || left == 0 {
		return nil
	}
	if left > 0 {
		p.failures[key] = left - 1
	}
	return p.errs[key]
}

// URL returns last url passed to Goto
func (p *Page) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

// Goto changes the url
func (p *Page) Goto(url string, _ ...pw.PageGotoOptions) (pw.Response, error) {
	if err := p.record("goto", url, ""); err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.url = url
	p.mu.Unlock()
	return nil, nil
}

// WaitForURL only records the expected url
func (p *Page) WaitForURL(url interface{}, _ ...pw.PageWaitForURLOptions) error {
	return p.record("waitURL", fmt.Sprint(url), "")
}

// Locator returns page-level locator
func (p *Page) Locator(selector string, _ ...pw.PageLocatorOptions) pw.Locator {
	return &Locator{page: p, chain: selector}
}

// pwLocator lets the fake embed the interface while declaring its own Locator method
type pwLocator = pw.Locator

// Locator is a fake element handle identified by the chain
type Locator struct {
	pwLocator

	page  *Page
	chain string
}

// Chain returns the selector chain of the locator
func (l *Locator) Chain() string {
	return l.chain
}

// Locator returns nested locator, has-text filter is added to the chain
func (l *Locator) Locator(selectorOrLocator interface{}, options ...pw.LocatorLocatorOptions) pw.Locator {
	sel := fmt.Sprint(selectorOrLocator)
	if other, ok := selectorOrLocator.(*Locator); ok {
		sel = other.chain
	}
	chain := l.chain + Separator + sel
	for _, opt := range options {
		if opt.HasText != nil {
			chain += Separator + fmt.Sprintf("has-text=%q", fmt.Sprint(opt.HasText))
		}
	}
	return &Locator{page: l.page, chain: chain}
}

// All returns the configured amount of nth locators
func (l *Locator) All() ([]pw.Locator, error) {
	if err := l.page.record("all", l.chain, ""); err != nil {
		return nil, err
	}
	l.page.mu.Lock()
	n := l.page.counts[l.chain]
	l.page.mu.Unlock()

	out := make([]pw.Locator, n)
	for i := range out {
		out[i] = &Locator{page: l.page, chain: fmt.Sprintf("%s%snth=%d", l.chain, Separator, i)}
	}
	return out, nil
}

// Click records the click
func (l *Locator) Click(_ ...pw.LocatorClickOptions) error {
	return l.page.record("click", l.chain, "")
}

// Fill records the value
func (l *Locator) Fill(value string, _ ...pw.LocatorFillOptions) error {
	return l.page.record("fill", l.chain, value)
}

// SelectOption records the first value
func (l *Locator) SelectOption(values pw.SelectOptionValues, _ ...pw.LocatorSelectOptionOptions) ([]string, error) {
	var vals []string
	if values.Values != nil {
		vals = *values.Values
	}
	if err := l.page.record("select", l.chain, strings.Join(vals, ",")); err != nil {
		return nil, err
	}
	return vals, nil
}

// WaitFor records the wait, fails when configured
func (l *Locator) WaitFor(_ ...pw.LocatorWaitForOptions) error {
	return l.page.record("wait", l.chain, "")
}

// TextContent returns the configured text
func (l *Locator) TextContent(_ ...pw.LocatorTextContentOptions) (string, error) {
	if err := l.page.record("text", l.chain, ""); err != nil {
		return "", err
	}
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	text, ok := l.page.texts[l.chain]
	if !ok {
		return "", fmt.Errorf("pagestest: no text for %q", l.chain)
	}
	return text, nil
}

// AllTextContents returns the configured texts
func (l *Locator) AllTextContents() ([]string, error) {
	if err := l.page.record("texts", l.chain, ""); err != nil {
		return nil, err
	}
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	return l.page.lists[l.chain], nil
}

// IsVisible returns the configured visibility
func (l *Locator) IsVisible(_ ...pw.LocatorIsVisibleOptions) (bool, error) {
	if err := l.page.record("visible", l.chain, ""); err != nil {
		return false, err
	}
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	return l.page.visible[l.chain], nil
}
