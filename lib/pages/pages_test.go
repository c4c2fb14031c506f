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

package pages_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adobe/qa-starter-kit/lib/pages"
	"github.com/adobe/qa-starter-kit/lib/pages/components"
	"github.com/adobe/qa-starter-kit/lib/pages/pagestest"
)

const items = ".inventory_list >> .inventory_item"

// Pages and components are implementing the capability interfaces
var (
	_ pages.Navigable    = (*pages.LoginPage)(nil)
	_ pages.Navigable    = (*pages.InventoryPage)(nil)
	_ pages.Interactable = (*pages.CartPage)(nil)
	_ pages.Interactable = (*components.ProductCard)(nil)
)

func Test_login_flow(t *testing.T) {
	page := pagestest.NewPage()

	inventory := pages.NewLoginPage(page).
		Navigate("https://shop.test").
		Login("standard_user", "secret_sauce").
		WaitForSuccessfulLogin(5 * time.Second)
	require.NoError(t, inventory.Err())

	assert.Equal(t, []string{
		"goto https://shop.test",
		"fill [data-test='username'] = standard_user",
		"fill [data-test='password'] = secret_sauce",
		"click [data-test='login-button']",
		"waitURL " + pages.InventoryURLPattern,
	}, page.Actions())
	assert.Equal(t, "https://shop.test", inventory.URL())
}

func Test_login_error_is_sticky(t *testing.T) {
	page := pagestest.NewPage()
	errFill := errors.New("element is detached")
	page.Fail("fill", "[data-test='username']", -1, errFill)

	login := pages.NewLoginPage(page).Login("user", "pass")
	require.ErrorIs(t, login.Err(), errFill)

	inventory := login.WaitForSuccessfulLogin(time.Second)
	assert.ErrorIs(t, inventory.Err(), errFill)
	_, err := inventory.ProductCards()
	assert.ErrorIs(t, err, errFill)

	// Nothing is executed after the first failure
	assert.Equal(t, []string{"fill [data-test='username'] = user"}, page.Actions())

	_, err = login.ErrorText()
	assert.ErrorIs(t, err, errFill)
}

func Test_login_error_text(t *testing.T) {
	page := pagestest.NewPage()
	page.SetText("[data-test='error']", "Epic sadface: Username and password do not match")

	text, err := pages.NewLoginPage(page).Login("invalid_user", "wrong").ErrorText()
	require.NoError(t, err)
	assert.Contains(t, text, "Username and password do not match")
}

// Two cards from different roots never share the underlying elements
func Test_product_cards_disjoint_roots(t *testing.T) {
	page := pagestest.NewPage()
	page.SetCount(items, 2)

	cards, err := pages.NewInventoryPage(page).ProductCards()
	require.NoError(t, err)
	require.Len(t, cards, 2)

	cards[0].AddToCart()
	cards[1].AddToCart()
	require.NoError(t, cards[0].Err())
	require.NoError(t, cards[1].Err())

	var clicks []string
	for _, a := range page.Actions() {
		if strings.HasPrefix(a, "click ") {
			clicks = append(clicks, strings.TrimPrefix(a, "click "))
		}
	}
	require.Len(t, clicks, 2)
	assert.NotEqual(t, clicks[0], clicks[1])
	assert.True(t, strings.HasPrefix(clicks[0], items+" >> nth=0 >> "), clicks[0])
	assert.True(t, strings.HasPrefix(clicks[1], items+" >> nth=1 >> "), clicks[1])
	assert.Equal(t, items+" >> nth=0 >> "+components.ProductAddSelector, clicks[0])
}

func Test_product_by_name(t *testing.T) {
	page := pagestest.NewPage()
	card := pages.NewInventoryPage(page).ProductByName("Sauce Labs Backpack")

	root := items + ` >> has-text="Sauce Labs Backpack"`
	page.SetText(root+" >> "+components.ProductPriceSelector, "$29.99")
	page.SetVisible(root+" >> "+components.ProductRemoveSelector, true)

	price, err := card.Price()
	require.NoError(t, err)
	assert.InDelta(t, 29.99, price, 0.0001)
	assert.True(t, card.InCart())

	require.NoError(t, card.RemoveFromCart().Err())
	assert.Equal(t, 1, page.Count("click "+root+" >> "+components.ProductRemoveSelector))
}

func Test_sort(t *testing.T) {
	page := pagestest.NewPage()
	inv := pages.NewInventoryPage(page).Sort(pages.SortPriceLowHigh)
	require.NoError(t, inv.Err())
	assert.Equal(t, []string{"select [data-test='product-sort-container'] = lohi"}, page.Actions())
}

func Test_cart_count(t *testing.T) {
	page := pagestest.NewPage()
	inv := pages.NewInventoryPage(page)

	count, err := inv.CartCount()
	require.NoError(t, err)
	assert.Zero(t, count, "hidden badge means empty cart")

	page.SetVisible(".shopping_cart_badge", true)
	page.SetText(".shopping_cart_badge", " 3 ")
	count, err = inv.CartCount()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	page.SetText(".shopping_cart_badge", "many")
	_, err = inv.CartCount()
	assert.Error(t, err)
}

func Test_cart_items(t *testing.T) {
	page := pagestest.NewPage()
	page.SetTexts(".cart_item .inventory_item_name", "Sauce Labs Backpack", "Sauce Labs Bike Light")

	cart := pages.NewInventoryPage(page).OpenCart()
	names, err := cart.Items()
	require.NoError(t, err)
	assert.Equal(t, []string{"Sauce Labs Backpack", "Sauce Labs Bike Light"}, names)

	inv := cart.ContinueShopping()
	require.NoError(t, inv.Err())
	assert.Equal(t, 1, page.Count("click .shopping_cart_link"))
	assert.Equal(t, 1, page.Count("click [data-test='continue-shopping']"))
}

func Test_logout_retries_menu(t *testing.T) {
	page := pagestest.NewPage()
	page.Fail("wait", "#logout_sidebar_link", 2, errors.New("timeout 2000ms exceeded"))

	login := pages.NewInventoryPage(page).Logout()
	require.NoError(t, login.Err())

	assert.Equal(t, 3, page.Count("click #react-burger-menu-btn"))
	assert.Equal(t, 3, page.Count("wait #logout_sidebar_link"))
	assert.Equal(t, 1, page.Count("click #logout_sidebar_link"))
}

func Test_click_until_visible_without_retries(t *testing.T) {
	page := pagestest.NewPage()
	errTimeout := errors.New("timeout 2000ms exceeded")
	page.Fail("wait", "#target", -1, errTimeout)

	base := pages.NewBase(page)
	err := base.ClickUntilVisible(page.Locator("#open"), page.Locator("#target"), 0, time.Second)
	require.ErrorIs(t, err, errTimeout)
	assert.Contains(t, err.Error(), "after 1 clicks")
	assert.Equal(t, 1, page.Count("click #open"))
}

func Test_logout_menu_never_opens(t *testing.T) {
	page := pagestest.NewPage()
	errTimeout := errors.New("timeout 2000ms exceeded")
	page.Fail("wait", "#logout_sidebar_link", -1, errTimeout)

	login := pages.NewInventoryPage(page).Logout()
	require.ErrorIs(t, login.Err(), errTimeout)

	// The retries and the last click surfacing the error
	assert.Equal(t, pages.DefaultClickRetries+1, page.Count("click #react-burger-menu-btn"))
	assert.Zero(t, page.Count("click #logout_sidebar_link"))
}
