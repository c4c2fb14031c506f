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
	"fmt"
	"strconv"
)

// Environment variables understood by the loader
const (
	EnvConfigPath = "STARTER_CONFIG"
	EnvDotenvPath = "STARTER_ENV_FILE"

	EnvBaseURL    = "BASE_URL"
	EnvUsername   = "USER_EMAIL"
	EnvPassword   = "PASSWORD"
	EnvPostsURL   = "POSTS_API_URL"
	EnvUsersURL   = "USERS_API_URL"
	EnvUsersKey   = "USERS_API_KEY"
	EnvAuthURL    = "AUTH_URL"
	EnvAPITimeout = "API_TIMEOUT"
	EnvAPITrace   = "API_TRACE"
	EnvBrowser    = "BROWSER"
	EnvHeadful    = "HEADFUL"
	EnvTracing    = "TRACING"
	EnvCaptureDir = "CAPTURE_DIR"
	EnvLive       = "QA_LIVE"
	EnvLogLevel   = "LOG_LEVEL"

	EnvMonitoring   = "MONITORING_ENABLED"
	EnvOTLPEndpoint = "OTLP_ENDPOINT"
)

// applyEnv overrides the values from the environment, lookup is os.LookupEnv outside of tests
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvBaseURL:    &c.BaseURL,
		EnvUsername:   &c.Username,
		EnvPassword:   &c.Password,
		EnvPostsURL:   &c.API.PostsURL,
		EnvUsersURL:   &c.API.UsersURL,
		EnvUsersKey:   &c.API.UsersKey,
		EnvAuthURL:    &c.API.AuthURL,
		EnvBrowser:    &c.Browser.Name,
		EnvTracing:    &c.Report.Tracing,
		EnvCaptureDir: &c.Report.CaptureDir,
		EnvLogLevel:   &c.Log.Level,

		EnvOTLPEndpoint: &c.Monitoring.OTLPEndpoint,
	}
	for name, p := range strs {
		if val, ok := lookup(name); ok && val != "" {
			*p = val
		}
	}

	// Headful mode is enabled by any non-empty value, like it was done in web tests helper
	if val, ok := lookup(EnvHeadful); ok && val != "" {
		c.Browser.Headful = true
	}

	bools := map[string]*bool{
		EnvAPITrace: &c.API.Trace,
		EnvLive:     &c.Run.Live,

		EnvMonitoring: &c.Monitoring.Enabled,
	}
	for name, p := range bools {
		val, ok := lookup(name)
		if !ok || val == "" {
			continue
		}
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("%w: env %s=%q is not a boolean", ErrInvalid, name, val)
		}
		*p = b
	}

	if val, ok := lookup(EnvAPITimeout); ok && val != "" {
		if err := c.API.Timeout.StoreStringDuration(val); err != nil {
			return fmt.Errorf("%w: env %s: %v", ErrInvalid, EnvAPITimeout, err)
		}
	}

	return nil
}

// Environ exports the resolved settings as KEY=VALUE pairs, used to pass the configuration
// to the go test child process where it's loaded again by the fixtures
func (c *Config) Environ() []string {
	out := []string{
		EnvBaseURL + "=" + c.BaseURL,
		EnvUsername + "=" + c.Username,
		EnvPassword + "=" + c.Password,
		EnvPostsURL + "=" + c.API.PostsURL,
		EnvUsersURL + "=" + c.API.UsersURL,
		EnvUsersKey + "=" + c.API.UsersKey,
		EnvAuthURL + "=" + c.API.AuthURL,
		EnvAPITimeout + "=" + c.API.Timeout.String(),
		EnvAPITrace + "=" + strconv.FormatBool(c.API.Trace),
		EnvBrowser + "=" + c.Browser.Name,
		EnvTracing + "=" + c.Report.Tracing,
		EnvCaptureDir + "=" + c.Report.CaptureDir,
		EnvLive + "=" + strconv.FormatBool(c.Run.Live),
		EnvLogLevel + "=" + c.Log.Level,
		EnvMonitoring + "=" + strconv.FormatBool(c.Monitoring.Enabled),
		EnvOTLPEndpoint + "=" + c.Monitoring.OTLPEndpoint,
	}
	// Any non-empty value turns headful on, so the variable is set only when needed
	if c.Browser.Headful {
		out = append(out, EnvHeadful+"=1")
	}
	if c.FilePath != "" {
		out = append(out, EnvConfigPath+"="+c.FilePath)
	}
	return out
}
