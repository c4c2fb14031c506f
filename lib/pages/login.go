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
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// InventoryURLPattern matches the landing page after the successful login
const InventoryURLPattern = "**/inventory.html"

// LoginPage is the shop entry page
type LoginPage struct {
	Base

	UsernameInput pw.Locator
	PasswordInput pw.Locator
	LoginButton   pw.Locator
	ErrorMessage  pw.Locator
}

// NewLoginPage binds the login page object
func NewLoginPage(page pw.Page) *LoginPage {
	p := &LoginPage{Base: NewBase(page)}
	p.UsernameInput = p.Locator("[data-test='username']")
	p.PasswordInput = p.Locator("[data-test='password']")
	p.LoginButton = p.Locator("[data-test='login-button']")
	p.ErrorMessage = p.Locator("[data-test='error']")
	return p
}

// Navigate opens the login page, it's the root of the shop
func (p *LoginPage) Navigate(baseURL string) *LoginPage {
	p.Goto(baseURL)
	return p
}

// Login fills the credentials and submits the form
func (p *LoginPage) Login(username, password string) *LoginPage {
	p.do("fill username", func() error { return p.UsernameInput.Fill(username) })
	p.do("fill password", func() error { return p.PasswordInput.Fill(password) })
	p.do("click login", func() error { return p.LoginButton.Click() })
	return p
}

// WaitForSuccessfulLogin waits for the inventory page to be opened
func (p *LoginPage) WaitForSuccessfulLogin(timeout time.Duration) *InventoryPage {
	p.do("wait for inventory", func() error {
		return p.page.WaitForURL(InventoryURLPattern, pw.PageWaitForURLOptions{
			Timeout: pw.Float(float64(timeout.Milliseconds())),
		})
	})
	next := NewInventoryPage(p.page)
	next.fail(p.err)
	return next
}

// ErrorText returns the message shown on failed login
func (p *LoginPage) ErrorText() (string, error) {
	if p.err != nil {
		return "", p.err
	}
	text, err := p.ErrorMessage.TextContent()
	if err != nil {
		return "", fmt.Errorf("unable to get login error: %w", err)
	}
	return text, nil
}
