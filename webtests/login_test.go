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

package webtests

import (
	"strings"
	"testing"

	"github.com/adobe/qa-starter-kit/lib/fixture"
	"github.com/adobe/qa-starter-kit/lib/pages"
)

type loginScenario struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	ExpectedError string `json:"expected_error"`
}

// Test_login verifies the login form of the shop:
// 1. Valid user lands on the inventory page
// 2. Invalid credentials and locked out user are getting the error message
func Test_login(t *testing.T) {
	fixture.RequireLive(t, cfg)

	t.Run("Successful login with valid credentials", func(t *testing.T) {
		sc := scenario[loginScenario](t, "inventory", "valid_user")
		page := session.Page(t)

		inventory := pages.NewLoginPage(page).
			Navigate(cfg.BaseURL).
			Login(sc.Username, sc.Password).
			WaitForSuccessfulLogin(cfg.Browser.NavigationTimeout.Std())
		check(t, inventory.Err(), "Login should succeed")

		check(t, expect().Locator(inventory.Title).ToHaveText("Products"), "Inventory title should be shown")
		check(t, expect().Locator(inventory.ProductsContainer).ToBeVisible(), "Products should be listed")
		if !strings.HasSuffix(strings.TrimRight(page.URL(), "/"), "inventory.html") {
			t.Fatalf("ERROR: Should be redirected to inventory page: %s", page.URL())
		}
	})

	for _, name := range []string{"invalid_user", "locked_out_user"} {
		t.Run("Rejected login for "+name, func(t *testing.T) {
			sc := scenario[loginScenario](t, "inventory", name)
			login := pages.NewLoginPage(session.Page(t)).
				Navigate(cfg.BaseURL).
				Login(sc.Username, sc.Password)
			check(t, login.Err(), "Login form should be submitted")

			check(t, expect().Locator(login.ErrorMessage).ToBeVisible(), "Error should be shown")
			check(t, expect().Locator(login.ErrorMessage).ToContainText(sc.ExpectedError), "Error text should match")

			text, err := login.ErrorText()
			check(t, err, "Error text should be readable")
			t.Logf("INFO: Login error: %s", text)
		})
	}
}
