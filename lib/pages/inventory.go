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

package pages

import (
	"fmt"
	"strconv"
	"strings"

	pw "github.com/playwright-community/playwright-go"

	"github.com/adobe/qa-starter-kit/lib/pages/components"
)

// SortOption is a value of the products sort dropdown
type SortOption string

// Sort options available in the shop
const (
	SortNameAsc      SortOption = "az"
	SortNameDesc     SortOption = "za"
	SortPriceLowHigh SortOption = "lohi"
	SortPriceHighLow SortOption = "hilo"
)

// ProductItemSelector is the root of every product card
const ProductItemSelector = ".inventory_item"

// InventoryPage is the products list
type InventoryPage struct {
	Base

	Title             pw.Locator
	SortDropdown      pw.Locator
	ProductsContainer pw.Locator
	CartBadge         pw.Locator
	CartLink          pw.Locator
	MenuButton        pw.Locator
	LogoutLink        pw.Locator
}

// NewInventoryPage binds the inventory page object
func NewInventoryPage(page pw.Page) *InventoryPage {
	p := &InventoryPage{Base: NewBase(page)}
	p.Title = p.Locator(".title")
	p.SortDropdown = p.Locator("[data-test='product-sort-container']")
	p.ProductsContainer = p.Locator(".inventory_list")
	p.CartBadge = p.Locator(".shopping_cart_badge")
	p.CartLink = p.Locator(".shopping_cart_link")
	p.MenuButton = p.Locator("#react-burger-menu-btn")
	p.LogoutLink = p.Locator("#logout_sidebar_link")
	return p
}

// ProductCards returns card for every product currently listed
func (p *InventoryPage) ProductCards() ([]*components.ProductCard, error) {
	if p.err != nil {
		return nil, p.err
	}
	items, err := p.ProductsContainer.Locator(ProductItemSelector).All()
	if err != nil {
		return nil, fmt.Errorf("unable to list products: %w", err)
	}
	cards := make([]*components.ProductCard, len(items))
	for i, item := range items {
		cards[i] = components.NewProductCard(item)
	}
	return cards, nil
}

// ProductByName returns the card which contains the name
func (p *InventoryPage) ProductByName(name string) *components.ProductCard {
	return components.NewProductCard(p.ProductsContainer.Locator(ProductItemSelector, pw.LocatorLocatorOptions{
		HasText: name,
	}))
}

// Sort selects the order of the products
func (p *InventoryPage) Sort(option SortOption) *InventoryPage {
	values := []string{string(option)}
	p.do("sort products", func() error {
		_, err := p.SortDropdown.SelectOption(pw.SelectOptionValues{Values: &values})
		return err
	})
	return p
}

// CartCount returns the number on cart badge, 0 when badge is not shown
func (p *InventoryPage) CartCount() (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	visible, err := p.CartBadge.IsVisible()
	if err != nil {
		return 0, fmt.Errorf("unable to check cart badge: %w", err)
	}
	if !visible {
		return 0, nil
	}
	text, err := p.CartBadge.TextContent()
	if err != nil {
		return 0, fmt.Errorf("unable to read cart badge: %w", err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("invalid cart badge %q: %w", text, err)
	}
	return count, nil
}

// OpenCart clicks on the cart icon
func (p *InventoryPage) OpenCart() *CartPage {
	p.do("open cart", func() error { return p.CartLink.Click() })
	next := NewCartPage(p.page)
	next.fail(p.err)
	return next
}

// Logout uses the side menu, which is animated so the click is repeated until the link shows up
func (p *InventoryPage) Logout() *LoginPage {
	p.ClickUntilVisible(p.MenuButton, p.LogoutLink, DefaultClickRetries, DefaultClickTimeout)
	p.do("click logout", func() error { return p.LogoutLink.Click() })
	next := NewLoginPage(p.page)
	next.fail(p.err)
	return next
}
