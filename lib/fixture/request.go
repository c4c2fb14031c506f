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

package fixture

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	pw "github.com/playwright-community/playwright-go"
)

// RequestContext sends http requests with playwright APIRequestContext, implements api.Doer
type RequestContext struct {
	rctx pw.APIRequestContext
}

// NewRequestContext wraps the playwright request context
func NewRequestContext(rctx pw.APIRequestContext) *RequestContext {
	return &RequestContext{rctx: rctx}
}

// Do executes the request with the playwright driver, the response body is read completely
func (r *RequestContext) Do(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	headers := make(map[string]string, len(req.Header))
	for k := range req.Header {
		headers[k] = req.Header.Get(k)
	}

	opts := pw.APIRequestContextFetchOptions{
		Method:  pw.String(req.Method),
		Headers: headers,
	}
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("unable to read request body: %w", err)
		}
		opts.Data = data
	}
	if deadline, ok := req.Context().Deadline(); ok {
		// Playwright treats 0 as no timeout
		opts.Timeout = pw.Float(float64(max(time.Until(deadline).Milliseconds(), 1)))
	}

	resp, err := r.rctx.Fetch(req.URL.String(), opts)
	if err != nil {
		return nil, err
	}
	body, err := resp.Body()
	if err != nil {
		return nil, fmt.Errorf("unable to read response body: %w", err)
	}

	header := make(http.Header)
	for k, v := range resp.Headers() {
		header.Set(k, v)
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", resp.Status(), resp.StatusText()),
		StatusCode:    resp.Status(),
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

// NewRequestContext creates playwright request context for the test, disposed on cleanup
func (r *Runtime) NewRequestContext(tb testing.TB) *RequestContext {
	tb.Helper()

	if err := r.start(); err != nil {
		tb.Fatalf("ERROR: %v", err)
	}
	rctx, err := r.pw.Request.NewContext(pw.APIRequestNewContextOptions{
		IgnoreHttpsErrors: pw.Bool(true),
		Timeout:           pw.Float(r.cfg.API.Timeout.Milliseconds()),
	})
	if err != nil {
		tb.Fatalf("ERROR: Could not create request context: %v", err)
	}
	tb.Cleanup(func() {
		if err := rctx.Dispose(); err != nil {
			tb.Logf("WARNING: Could not dispose request context: %v", err)
		}
	})
	return NewRequestContext(rctx)
}
