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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnv = []string{
	EnvConfigPath, EnvDotenvPath, EnvBaseURL, EnvUsername, EnvPassword, EnvPostsURL, EnvUsersURL,
	EnvUsersKey, EnvAuthURL, EnvAPITimeout, EnvAPITrace, EnvBrowser, EnvHeadful, EnvTracing, EnvCaptureDir,
	EnvLive, EnvLogLevel,
}

// clearEnv makes sure the host environment is not affecting the test, values are restored
// by testing cleanup
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range allEnv {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	// No dotenv file by default
	t.Setenv(EnvDotenvPath, filepath.Join(t.TempDir(), "missing.env"))
}

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func Test_default_is_valid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "https://www.saucedemo.com/inventory.html", cfg.InventoryURL())
	assert.Equal(t, 10*time.Second, cfg.API.Timeout.Std())
	assert.Equal(t, TracingRetainOnFailure, cfg.Report.Tracing)
	assert.Empty(t, cfg.API.AuthURL)
}

func Test_load_yaml_then_env(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "starter.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
base_url: https://shop.example.com
api:
  timeout: 1m
browser:
  name: firefox
  viewport_width: 1280
  viewport_height: 720
report:
  tracing: "on"
run:
  packages: ["./tests/..."]
`), 0o644))

	t.Setenv(EnvConfigPath, cfgPath)
	t.Setenv(EnvBrowser, "webkit")
	t.Setenv(EnvHeadful, "yes")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, cfgPath, cfg.FilePath)
	assert.Equal(t, "https://shop.example.com", cfg.BaseURL)
	assert.Equal(t, time.Minute, cfg.API.Timeout.Std())
	assert.Equal(t, "webkit", cfg.Browser.Name, "env should win over yaml")
	assert.True(t, cfg.Browser.Headful)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, TracingOn, cfg.Report.Tracing)
	assert.Equal(t, []string{"./tests/..."}, cfg.Run.Packages)
	// Untouched values keep defaults
	assert.Equal(t, "standard_user", cfg.Username)
}

func Test_load_dotenv_does_not_override_env(t *testing.T) {
	clearEnv(t)

	envPath := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("USER_EMAIL=dotenv_user\nPASSWORD=dotenv_pass\n"), 0o644))
	t.Setenv(EnvDotenvPath, envPath)
	t.Setenv(EnvPassword, "from_env")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dotenv_user", cfg.Username)
	assert.Equal(t, "from_env", cfg.Password)
}

func Test_load_missing_config_file(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to read config file")
}

func Test_validate_errors(t *testing.T) {
	cases := map[string]func(*Config){
		"relative base url": func(c *Config) { c.BaseURL = "/shop" },
		"bad posts url":     func(c *Config) { c.API.PostsURL = "ftp://posts" },
		"bad auth url":      func(c *Config) { c.API.AuthURL = "auth" },
		"unknown browser":   func(c *Config) { c.Browser.Name = "netscape" },
		"unknown tracing":   func(c *Config) { c.Report.Tracing = "sometimes" },
		"zero viewport":     func(c *Config) { c.Browser.ViewportHeight = 0 },
		"negative timeout":  func(c *Config) { c.API.Timeout = -1 },
		"bad log level":     func(c *Config) { c.Log.Level = "loud" },
	}
	for name, mod := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mod(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func Test_apply_env(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(lookupMap(map[string]string{
		EnvAPITimeout: "1.5d",
		EnvAPITrace:   "true",
		EnvLive:       "1",
		EnvAuthURL:    "https://auth.example.com/login",
		EnvLogLevel:   "debug",
		EnvBaseURL:    "", // Empty values are ignored
	}))
	require.NoError(t, err)

	assert.Equal(t, 36*time.Hour, cfg.API.Timeout.Std())
	assert.True(t, cfg.API.Trace)
	assert.True(t, cfg.Run.Live)
	assert.Equal(t, "https://auth.example.com/login", cfg.API.AuthURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "https://www.saucedemo.com", cfg.BaseURL)
}

func Test_apply_env_invalid(t *testing.T) {
	cfg := Default()
	assert.ErrorIs(t, cfg.applyEnv(lookupMap(map[string]string{EnvLive: "maybe"})), ErrInvalid)
	assert.ErrorIs(t, cfg.applyEnv(lookupMap(map[string]string{EnvAPITimeout: "soon"})), ErrInvalid)
}

func Test_environ_roundtrip(t *testing.T) {
	src := Default()
	src.BaseURL = "https://shop.example.com"
	src.Browser.Headful = true
	src.Run.Live = true
	src.API.Timeout.StoreStringDuration("30s")
	src.Monitoring.Enabled = true
	src.Monitoring.OTLPEndpoint = "collector:4317"

	env := map[string]string{}
	for _, kv := range src.Environ() {
		for i := range kv {
			if kv[i] == '=' {
				env[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	assert.NotContains(t, env, EnvConfigPath, "no file was used")

	dst := Default()
	require.NoError(t, dst.applyEnv(lookupMap(env)))
	assert.Equal(t, src.BaseURL, dst.BaseURL)
	assert.True(t, dst.Browser.Headful)
	assert.True(t, dst.Run.Live)
	assert.Equal(t, 30*time.Second, dst.API.Timeout.Std())
	assert.True(t, dst.Monitoring.Enabled)
	assert.Equal(t, "collector:4317", dst.Monitoring.OTLPEndpoint)
}

func Test_validate_monitoring(t *testing.T) {
	cfg := Default()
	cfg.Monitoring.SampleRate = 5
	require.NoError(t, cfg.Validate(), "disabled monitoring is not checked")

	cfg.Monitoring.Enabled = true
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)

	cfg.Monitoring.SampleRate = 0.5
	require.NoError(t, cfg.Validate())

	cfg.Monitoring.OTLPEndpoint = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
}

func Test_resolve_paths(t *testing.T) {
	cfg := Default()
	cfg.Report.JUnit = "/abs/junit.xml"
	cfg.ResolvePaths("/work")

	assert.Equal(t, filepath.Join("/work", "reports", "report.html"), cfg.Report.HTML)
	assert.Equal(t, filepath.Join("/work", "reports", "history"), cfg.Report.History)
	assert.Equal(t, filepath.Join("/work", "reports", "captures"), cfg.Report.CaptureDir)
	assert.Equal(t, "/abs/junit.xml", cfg.Report.JUnit)
}
