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

// Package api contains thin REST clients for the example backends and the Manager which
// hands them out with the login token
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/adobe/qa-starter-kit/lib/config"
	"github.com/adobe/qa-starter-kit/lib/log"
)

var (
	// ErrUnexpectedStatus is matched by *StatusError
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrDecode is returned when response body is not the expected JSON
	ErrDecode = errors.New("unable to decode response body")
)

// Object is a decoded JSON object, numbers are kept as json.Number
type Object = map[string]any

// Doer executes the HTTP request, *http.Client and fixture.RequestContext are implementing it
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AuthenticatedClient is implemented by every resource client
type AuthenticatedClient interface {
	Name() string
	BaseURL() string
	Token() string
}

// StatusError is returned when the server responded with not expected status
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s %s: got %d: %s", ErrUnexpectedStatus, e.Method, e.URL, e.Status, bytes.TrimSpace(e.Body))
}

// Is allows to use errors.Is(err, ErrUnexpectedStatus)
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// NewHTTPClient prepares transport for the clients according to the API configuration
func NewHTTPClient(cfg *config.Config) *http.Client {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.API.Trace {
		transport = otelhttp.NewTransport(transport)
	}
	return &http.Client{
		Timeout:   cfg.API.Timeout.Std(),
		Transport: transport,
	}
}

// Client is the base of all the resource clients. It's immutable: the token is set on
// creation and WithToken returns a new client.
type Client struct {
	name    string
	baseURL string
	token   string
	headers map[string]string
	doer    Doer
	logger  *slog.Logger
}

// NewClient creates base client, empty token means no Authorization header will be sent
func NewClient(name, baseURL, token string, doer Doer) *Client {
	return &Client{
		name:    name,
		baseURL: baseURL,
		token:   token,
		doer:    doer,
		logger:  log.WithFunc("api", name),
	}
}

// Name of the client used in logs
func (c *Client) Name() string {
	return c.name
}

// BaseURL of the backend
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Token returns value of the Authorization header
func (c *Client) Token() string {
	return c.token
}

// WithToken returns a copy of the client which is using the provided token
func (c *Client) WithToken(token string) *Client {
	out := *c
	out.token = token
	return &out
}

// WithHeader returns a copy of the client which adds static header to each request
func (c *Client) WithHeader(key, value string) *Client {
	out := *c
	out.headers = maps.Clone(c.headers)
	if out.headers == nil {
		out.headers = make(map[string]string)
	}
	out.headers[key] = value
	return &out
}

// Call executes one request and returns the raw body when the status is expected
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body any, expect int) ([]byte, error) {
	// Empty path targets the base url as is, JoinPath would drop its trailing slash
	target := c.baseURL
	if path != "" {
		var err error
		if target, err = url.JoinPath(c.baseURL, path); err != nil {
			return nil, fmt.Errorf("api %s: invalid path %q: %w", c.name, path, err)
		}
	}
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api %s: unable to encode request body: %w", c.name, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("api %s: unable to create request: %w", c.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}
	reqID := uuid.NewString()
	req.Header.Set("X-Request-ID", reqID)

	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Error("Request failed", "method", method, "url", target, "request_id", reqID, "err", err)
		return nil, fmt.Errorf("api %s: %s %s: %w", c.name, method, target, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)

	level := slog.LevelInfo
	switch {
	case resp.StatusCode >= 400:
		level = slog.LevelError
	case resp.StatusCode >= 300:
		level = slog.LevelWarn
	}
	c.logger.Log(ctx, level, "Request done", "method", method, "url", target, "status", resp.StatusCode, "request_id", reqID)

	if err != nil {
		return nil, fmt.Errorf("api %s: unable to read response body: %w", c.name, err)
	}
	if resp.StatusCode != expect {
		return nil, &StatusError{Method: method, URL: target, Status: resp.StatusCode, Body: data}
	}

	return data, nil
}

// Object executes request and decodes the JSON object, empty body gives empty object
func (c *Client) Object(ctx context.Context, method, path string, query url.Values, body any, expect int) (Object, error) {
	data, err := c.Call(ctx, method, path, query, body, expect)
	if err != nil {
		return nil, err
	}
	out := Object{}
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	if err := decode(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return out, nil
}

// List executes request and decodes the JSON array of objects
func (c *Client) List(ctx context.Context, method, path string, query url.Values, expect int) ([]Object, error) {
	data, err := c.Call(ctx, method, path, query, nil, expect)
	if err != nil {
		return nil, err
	}
	var out []Object
	if err := decode(data, &out); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return out, nil
}

func decode(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}
