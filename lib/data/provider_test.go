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

package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDomain(t *testing.T, dir, domain, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain+".json"), []byte(content), 0o644))
}

func Test_get_scenario(t *testing.T) {
	dir := t.TempDir()
	writeDomain(t, dir, "posts", `{"get_single_post": {"post_id": 1, "expected_user_id": 1}}`)

	p := NewProvider(dir)
	sc, err := p.Get("posts", "get_single_post")
	require.NoError(t, err)
	assert.Equal(t, float64(1), sc["post_id"])
}

func Test_scenario_typed(t *testing.T) {
	dir := t.TempDir()
	writeDomain(t, dir, "posts", `{"create_post": {"title": "T", "body": "B", "user_id": 3}}`)

	var p = NewProvider(dir)
	sc, err := Scenario[struct {
		Title  string `json:"title"`
		UserID int    `json:"user_id"`
	}](p, "posts", "create_post")
	require.NoError(t, err)
	assert.Equal(t, "T", sc.Title)
	assert.Equal(t, 3, sc.UserID)
}

func Test_not_found(t *testing.T) {
	dir := t.TempDir()
	writeDomain(t, dir, "posts", `{"a": {}}`)
	p := NewProvider(dir)

	_, err := p.Get("posts", "b")
	assert.ErrorIs(t, err, ErrScenarioNotFound)

	_, err = p.Get("comments", "a")
	assert.ErrorIs(t, err, ErrScenarioNotFound)
}

func Test_yaml_domain(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checkout.yaml"), []byte(`
guest_checkout:
  first_name: Jane
  zip: "94110"
  items: [1, 2]
`), 0o644))

	sc, err := Scenario[struct {
		FirstName string `json:"first_name"`
		Zip       string `json:"zip"`
		Items     []int  `json:"items"`
	}](NewProvider(dir), "checkout", "guest_checkout")
	require.NoError(t, err)
	assert.Equal(t, "Jane", sc.FirstName)
	assert.Equal(t, "94110", sc.Zip)
	assert.Equal(t, []int{1, 2}, sc.Items)
}

func Test_json_preferred_over_yaml(t *testing.T) {
	dir := t.TempDir()
	writeDomain(t, dir, "posts", `{"a": {"from": "json"}}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "posts.yaml"), []byte("a:\n  from: yaml\n"), 0o644))

	sc, err := NewProvider(dir).Get("posts", "a")
	require.NoError(t, err)
	assert.Equal(t, "json", sc["from"])
}

func Test_broken_file(t *testing.T) {
	dir := t.TempDir()
	writeDomain(t, dir, "posts", `{"a": `)

	_, err := NewProvider(dir).Get("posts", "a")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrScenarioNotFound)
}

// The shipped data files should contain the scenarios used by the live suites
func Test_default_dir_scenarios(t *testing.T) {
	p, err := Default()
	require.NoError(t, err)

	for domain, scenarios := range map[string][]string{
		"posts":     {"get_single_post", "get_user_posts", "create_post", "update_post", "patch_post", "delete_post"},
		"users":     {"get_single_user", "list_users", "create_user", "delete_user"},
		"inventory": {"valid_user", "invalid_user", "locked_out_user", "add_to_cart", "price_display"},
	} {
		for _, sc := range scenarios {
			_, err := p.Get(domain, sc)
			assert.NoError(t, err, "%s/%s", domain, sc)
		}
	}
}
