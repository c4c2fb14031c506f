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
	"net/http"
	"net/url"
	"strconv"

	"github.com/adobe/qa-starter-kit/lib/api/types"
)

// PostsClient works with JSONPlaceholder posts resource
type PostsClient struct {
	*Client
}

// NewPostsClient creates posts client
func NewPostsClient(doer Doer, baseURL, token string) *PostsClient {
	return &PostsClient{NewClient("Posts", baseURL, token, doer)}
}

func postPath(id int) string {
	return "posts/" + strconv.Itoa(id)
}

// Get returns post by id
func (p *PostsClient) Get(ctx context.Context, id int) (Object, error) {
	return p.Object(ctx, http.MethodGet, postPath(id), nil, nil, http.StatusOK)
}

// List returns all the posts, or only posts of the user if userID is not 0
func (p *PostsClient) List(ctx context.Context, userID int) ([]Object, error) {
	var query url.Values
	if userID != 0 {
		query = url.Values{"userId": {strconv.Itoa(userID)}}
	}
	return p.Client.List(ctx, http.MethodGet, "posts", query, http.StatusOK)
}

// Create posts the new entry and expects 201
func (p *PostsClient) Create(ctx context.Context, in types.PostInput) (Object, error) {
	return p.Object(ctx, http.MethodPost, "posts", nil, in, http.StatusCreated)
}

// Update replaces the post completely
func (p *PostsClient) Update(ctx context.Context, id int, in types.PostInput) (Object, error) {
	body := map[string]any{
		"id":     id,
		"userId": in.UserID,
		"title":  in.Title,
		"body":   in.Body,
	}
	return p.Object(ctx, http.MethodPut, postPath(id), nil, body, http.StatusOK)
}

// Patch changes only the provided fields of the post
func (p *PostsClient) Patch(ctx context.Context, id int, fields map[string]any) (Object, error) {
	return p.Object(ctx, http.MethodPatch, postPath(id), nil, fields, http.StatusOK)
}

// Delete removes the post, JSONPlaceholder responds with empty object
func (p *PostsClient) Delete(ctx context.Context, id int) (Object, error) {
	return p.Object(ctx, http.MethodDelete, postPath(id), nil, nil, http.StatusOK)
}
