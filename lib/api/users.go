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

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// UsersAPIKeyHeader is required by ReqRes for the free tier
const UsersAPIKeyHeader = "x-api-key"

// UsersClient works with ReqRes users resource
type UsersClient struct {
	*Client
}

// NewUsersClient creates users client, apiKey could be empty
func NewUsersClient(doer Doer, baseURL, apiKey, token string) *UsersClient {
	c := NewClient("Users", baseURL, token, doer)
	if apiKey != "" {
		c = c.WithHeader(UsersAPIKeyHeader, apiKey)
	}
	return &UsersClient{c}
}

func userPath(id int) string {
	return "users/" + strconv.Itoa(id)
}

// Get returns the user object from the `data` envelope
func (u *UsersClient) Get(ctx context.Context, id int) (Object, error) {
	env, err := u.Object(ctx, http.MethodGet, userPath(id), nil, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}
	data, ok := env["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: GET %s: no data object in the envelope", ErrDecode, userPath(id))
	}
	return data, nil
}

// List returns the page envelope with `data` list and pagination fields
func (u *UsersClient) List(ctx context.Context, page int) (Object, error) {
	var query url.Values
	if page > 0 {
		query = url.Values{"page": {strconv.Itoa(page)}}
	}
	return u.Object(ctx, http.MethodGet, "users", query, nil, http.StatusOK)
}

// Create adds a user with the job, ReqRes responds 201 with generated id
func (u *UsersClient) Create(ctx context.Context, name, job string) (Object, error) {
	return u.Object(ctx, http.MethodPost, "users", nil, map[string]string{"name": name, "job": job}, http.StatusCreated)
}

// Delete removes the user, no content is expected
func (u *UsersClient) Delete(ctx context.Context, id int) error {
	_, err := u.Call(ctx, http.MethodDelete, userPath(id), nil, nil, http.StatusNoContent)
	return err
}
