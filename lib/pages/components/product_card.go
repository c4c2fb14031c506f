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

// Package components contains widgets repeated on the pages, all the lookups are scoped
// to the root element of the widget
package components

import (
	"fmt"
	"strconv"
	"strings"

	pw "github.com/playwright-community/playwright-go"
)

// Selectors of the product card internals
const (
	ProductNameSelector        = ".inventory_item_name"
	ProductDescriptionSelector = ".inventory_item_desc"
	ProductPriceSelector       = ".inventory_item_price"
	ProductImageSelector       = ".inventory_item_img img"
	ProductAddSelector         = "button[id^='add-to-cart']"
	ProductRemoveSelector      = "button[id^='remove']"
)

// ProductCard is one item of the inventory list
type ProductCard struct {
	root pw.Locator
	err  error

	NameLabel       pw.Locator
	Description     pw.Locator
	PriceLabel      pw.Locator
	Image           pw.Locator
	AddToCartButton pw.Locator
	RemoveButton    pw.Locator
}

// NewProductCard binds the card to the root locator
func NewProductCard(root pw.Locator) *ProductCard {
	c := &ProductCard{root: root}
	c.NameLabel = c.Locator(ProductNameSelector)
	c.Description = c.Locator(ProductDescriptionSelector)
	c.PriceLabel = c.Locator(ProductPriceSelector)
	c.Image = c.Locator(ProductImageSelector)
	c.AddToCartButton = c.Locator(ProductAddSelector)
	c.RemoveButton = c.Locator(ProductRemoveSelector)
	return c
}

// Root returns the card element
func (c *ProductCard) Root() pw.Locator {
	return c.root
}

// Locator is scoped to the card root
func (c *ProductCard) Locator(selector string) pw.Locator {
	return c.root.Locator(selector)
}

// Err returns the first failed action of the card
func (c *ProductCard) Err() error {
	return c.err
}

// Name of the product
func (c *ProductCard) Name() (string, error) {
	return c.NameLabel.TextContent()
}

// DescriptionText of the product
func (c *ProductCard) DescriptionText() (string, error) {
	return c.Description.TextContent()
}

// Price of the product without currency sign
func (c *ProductCard) Price() (float64, error) {
	text, err := c.PriceLabel.TextContent()
	if err != nil {
		return 0, err
	}
	return ParsePrice(text)
}

// AddToCart clicks the add button
func (c *ProductCard) AddToCart() *ProductCard {
	c.click("add to cart", c.AddToCartButton)
	return c
}

// RemoveFromCart clicks the remove button
func (c *ProductCard) RemoveFromCart() *ProductCard {
	c.click("remove from cart", c.RemoveButton)
	return c
}

// InCart is true when the remove button is shown instead of add
func (c *ProductCard) InCart() bool {
	visible, err := c.RemoveButton.IsVisible()
	return err == nil && visible
}

// OpenDetails clicks the product name which leads to the item page
func (c *ProductCard) OpenDetails() error {
	c.click("open details", c.NameLabel)
	return c.err
}

func (c *ProductCard) click(what string, l pw.Locator) {
	if c.err != nil {
		return
	}
	if err := l.Click(); err != nil {
		c.err = fmt.Errorf("product card %s: %w", what, err)
	}
}

// ParsePrice converts text like `$29.99` to number
func ParsePrice(text string) (float64, error) {
	val := strings.TrimPrefix(strings.TrimSpace(text), "$")
	price, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", text, err)
	}
	return price, nil
}
