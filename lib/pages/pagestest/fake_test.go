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

package pagestest

import (
	"errors"
	"testing"

	pw "github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ pw.Page    = (*Page)(nil)
	_ pw.Locator = (*Locator)(nil)
)

func Test_nested_locator_chain(t *testing.T) {
	page := NewPage()

	card := page.Locator(".inventory_item").Locator("button", pw.LocatorLocatorOptions{HasText: "Add"})
	require.NoError(t, card.Click())

	assert.Equal(t, `.inventory_item >> button >> has-text="Add"`, card.(*Locator).Chain())
	assert.Equal(t, []string{`click .inventory_item >> button >> has-text="Add"`}, page.Actions())
}

func Test_locator_failure_times(t *testing.T) {
	page := NewPage()
	errBoom := errors.New("boom")
	page.Fail("click", "#login", 1, errBoom)

	btn := page.Locator("#login")
	assert.ErrorIs(t, btn.Click(), errBoom)
	assert.NoError(t, btn.Click())
	assert.Equal(t, 2, page.Count("click #login"))
}
