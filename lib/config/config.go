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

// Package config loads the starter kit settings: built-in defaults, then the runner YAML
// file, then the .env file and finally the process environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/adobe/qa-starter-kit/lib/log"
	"github.com/adobe/qa-starter-kit/lib/util"
)

// ErrInvalid is matched by every validation failure of the configuration
var ErrInvalid = errors.New("invalid configuration")

// Tracing modes for browser contexts
const (
	TracingOff             = "off"
	TracingOn              = "on"
	TracingRetainOnFailure = "retain-on-failure"
)

var (
	browsers     = []string{"chromium", "firefox", "webkit"}
	tracingModes = []string{TracingOff, TracingOn, TracingRetainOnFailure}
)

// Config is the complete settings object shared by the CLI, fixtures and clients
type Config struct {
	// Path of the config file used, empty when defaults only
	FilePath string `yaml:"-"`
	// Dotenv file to load, relative to the working directory
	EnvFile string `yaml:"env_file"`

	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	API     APIConfig     `yaml:"api"`
	Browser BrowserConfig `yaml:"browser"`
	Report  ReportConfig  `yaml:"report"`
	Run     RunConfig     `yaml:"run"`
	Log     log.Config    `yaml:"log"`

	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// APIConfig contains REST backends used by the API clients
type APIConfig struct {
	PostsURL string        `yaml:"posts_url"`
	UsersURL string        `yaml:"users_url"`
	UsersKey string        `yaml:"users_key"` // Sent as x-api-key header to ReqRes
	AuthURL  string        `yaml:"auth_url"`  // Empty means stubbed login
	Timeout  util.Duration `yaml:"timeout"`
	Trace    bool          `yaml:"trace"` // Wrap HTTP transport with OpenTelemetry spans
}

// BrowserConfig drives playwright runtime
type BrowserConfig struct {
	Name              string        `yaml:"name"`
	Headful           bool          `yaml:"headful"`
	ActionTimeout     util.Duration `yaml:"action_timeout"`
	NavigationTimeout util.Duration `yaml:"navigation_timeout"`
	ViewportWidth     int           `yaml:"viewport_width"`
	ViewportHeight    int           `yaml:"viewport_height"`
}

// ReportConfig defines where artifacts are placed
type ReportConfig struct {
	HTML       string `yaml:"html"`
	AllureDir  string `yaml:"allure_dir"`
	JUnit      string `yaml:"junit"`
	Tracing    string `yaml:"tracing"`
	CaptureDir string `yaml:"capture_dir"`
	History    string `yaml:"history"` // Run history database dir, empty disables it
}

// RunConfig is used by the CLI to invoke go test
type RunConfig struct {
	Packages []string      `yaml:"packages"`
	Parallel int           `yaml:"parallel"`
	Timeout  util.Duration `yaml:"timeout"`
	Run      string        `yaml:"run"` // -run filter
	Live     bool          `yaml:"live"`
}

// MonitoringConfig enables OpenTelemetry export of the test process traces, metrics and logs
type MonitoringConfig struct {
	Enabled         bool          `yaml:"enabled"`
	OTLPEndpoint    string        `yaml:"otlp_endpoint"` // gRPC host:port of the collector
	SampleRate      float64       `yaml:"sample_rate"`
	MetricsInterval util.Duration `yaml:"metrics_interval"`
}

// Default returns configuration pointing to the public demo backends
func Default() *Config {
	return &Config{
		EnvFile:  ".env",
		BaseURL:  "https://www.saucedemo.com",
		Username: "standard_user",
		Password: "secret_sauce",
		API: APIConfig{
			PostsURL: "https://jsonplaceholder.typicode.com",
			UsersURL: "https://reqres.in/api",
			UsersKey: "reqres-free-v1",
			Timeout:  util.Duration(10 * time.Second),
		},
		Browser: BrowserConfig{
			Name:              "chromium",
			ActionTimeout:     util.Duration(5 * time.Second),
			NavigationTimeout: util.Duration(15 * time.Second),
			ViewportWidth:     1920,
			ViewportHeight:    1080,
		},
		Report: ReportConfig{
			HTML:       filepath.Join("reports", "report.html"),
			AllureDir:  filepath.Join("reports", "allure-results"),
			Tracing:    TracingRetainOnFailure,
			CaptureDir: filepath.Join("reports", "captures"),
			History:    filepath.Join("reports", "history"),
		},
		Run: RunConfig{
			Packages: []string{"./tests/...", "./webtests/..."},
			Timeout:  util.Duration(10 * time.Minute),
		},
		Log: *log.DefaultConfig(),
		Monitoring: MonitoringConfig{
			OTLPEndpoint:    "localhost:4317",
			SampleRate:      1.0,
			MetricsInterval: util.Duration(15 * time.Second),
		},
	}
}

// Load builds the configuration, cfgPath could be empty - then STARTER_CONFIG env is checked
func Load(cfgPath string) (*Config, error) {
	cfg := Default()

	if cfgPath == "" {
		cfgPath = os.Getenv(EnvConfigPath)
	}
	if cfgPath != "" {
		if err := cfg.ReadConfigFile(cfgPath); err != nil {
			return nil, err
		}
	}

	if envFile := os.Getenv(EnvDotenvPath); envFile != "" {
		cfg.EnvFile = envFile
	}
	if cfg.EnvFile != "" {
		if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("unable to load env file %q: %w", cfg.EnvFile, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.WithFunc("config", "Load").Info("Starting with configuration", "base_url", cfg.BaseURL, "file", cfg.FilePath)

	return cfg, nil
}

// ReadConfigFile merges YAML file on top of the current values
func (c *Config) ReadConfigFile(cfgPath string) error {
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("unable to read config file %q: %w", cfgPath, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("unable to parse config file %q: %w", cfgPath, err)
	}
	if abs, err := filepath.Abs(cfgPath); err == nil {
		cfgPath = abs
	}
	c.FilePath = cfgPath
	return nil
}

// Validate checks the values are usable
func (c *Config) Validate() error {
	for name, value := range map[string]string{
		"base_url":      c.BaseURL,
		"api.posts_url": c.API.PostsURL,
		"api.users_url": c.API.UsersURL,
	} {
		if err := checkURL(value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
		}
	}
	if c.API.AuthURL != "" {
		if err := checkURL(c.API.AuthURL); err != nil {
			return fmt.Errorf("%w: api.auth_url: %v", ErrInvalid, err)
		}
	}
	if !slices.Contains(browsers, c.Browser.Name) {
		return fmt.Errorf("%w: browser.name %q is not one of %v", ErrInvalid, c.Browser.Name, browsers)
	}
	if !slices.Contains(tracingModes, c.Report.Tracing) {
		return fmt.Errorf("%w: report.tracing %q is not one of %v", ErrInvalid, c.Report.Tracing, tracingModes)
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("%w: browser viewport should be positive: %dx%d", ErrInvalid, c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	if c.API.Timeout < 0 || c.Browser.ActionTimeout < 0 || c.Browser.NavigationTimeout < 0 {
		return fmt.Errorf("%w: timeouts can't be negative", ErrInvalid)
	}
	if c.Monitoring.Enabled {
		if c.Monitoring.OTLPEndpoint == "" {
			return fmt.Errorf("%w: monitoring.otlp_endpoint is required when monitoring is enabled", ErrInvalid)
		}
		if c.Monitoring.SampleRate < 0 || c.Monitoring.SampleRate > 1 {
			return fmt.Errorf("%w: monitoring.sample_rate %v should be in [0, 1]", ErrInvalid, c.Monitoring.SampleRate)
		}
		if c.Monitoring.MetricsInterval <= 0 {
			return fmt.Errorf("%w: monitoring.metrics_interval should be positive", ErrInvalid)
		}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalid, err)
	}
	return nil
}

// ResolvePaths turns relative artifact paths absolute against dir, so child test processes
// running in package directories write into the same place
func (c *Config) ResolvePaths(dir string) {
	for _, p := range []*string{&c.Report.HTML, &c.Report.AllureDir, &c.Report.JUnit, &c.Report.CaptureDir, &c.Report.History, &c.EnvFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// InventoryURL is the landing page after the login
func (c *Config) InventoryURL() string {
	return joinURL(c.BaseURL, "inventory.html")
}

func checkURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q should be absolute http(s) url", value)
	}
	return nil
}

func joinURL(base, path string) string {
	out, err := url.JoinPath(base, path)
	if err != nil {
		return base + "/" + path
	}
	return out
}
