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

	pw "github.com/playwright-community/playwright-go"
)

// CartPage lists the products added to the cart
type CartPage struct {
	Base

	ItemNames              pw.Locator
	ContinueShoppingButton pw.Locator
	CheckoutButton         pw.Locator
}

// NewCartPage binds the cart page object
func NewCartPage(page pw.Page) *CartPage {
	p := &CartPage{Base: NewBase(page)}
	p.ItemNames = p.Locator(".cart_item .inventory_item_name")
	p.ContinueShoppingButton = p.Locator("[data-test='continue-shopping']")
	p.CheckoutButton = p.Locator("[data-test='checkout']")
	return p
}

// Items returns names of the products in the cart
func (p *CartPage) Items() ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	names, err := p.ItemNames.AllTextContents()
	if err != nil {
		return nil, fmt.Errorf("unable to list cart items: %w", err)
	}
	return names, nil
}

// ContinueShopping returns back to the products
func (p *CartPage) ContinueShopping() *InventoryPage {
	p.do("continue shopping", func() error { return p.ContinueShoppingButton.Click() })
	next := NewInventoryPage(p.page)
	next.fail(p.err)
	return next
}
