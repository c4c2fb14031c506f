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

// Package types declares the response shapes of the example backends, the values are
// built with schema.Parse
package types

// Post is JSONPlaceholder post resource
type Post struct {
	UserID int    `json:"userId" validate:"min=1"`
	ID     int    `json:"id" validate:"min=1"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// PostCreated is returned on post creation, JSONPlaceholder echoes the input with a new id
type PostCreated struct {
	UserID int    `json:"userId"`
	ID     int    `json:"id" validate:"min=1"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// PostInput is a request body for create and update
type PostInput struct {
	UserID int    `json:"userId"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

// User is ReqRes user resource
type User struct {
	ID        int    `json:"id" validate:"min=1"`
	Email     string `json:"email" validate:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// UserPage is ReqRes list envelope
type UserPage struct {
	Page       int    `json:"page" validate:"min=1"`
	PerPage    int    `json:"per_page"`
	Total      int    `json:"total"`
	TotalPages int    `json:"total_pages"`
	Data       []User `json:"data" validate:"dive"`
}

// UserCreated is ReqRes creation response, the id is a string there
type UserCreated struct {
	ID        string `json:"id" validate:"min=1"`
	Name      string `json:"name"`
	Job       string `json:"job"`
	CreatedAt string `json:"createdAt"`
}

// LoginResponse is returned by the credential exchange endpoint
type LoginResponse struct {
	Token string `json:"token" validate:"min=1"`
}
