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

	"github.com/adobe/qa-starter-kit/lib/api/types"
	"github.com/adobe/qa-starter-kit/lib/schema"
)

// TokenPrefix is added to the token received from the login endpoint
const TokenPrefix = "Token "

// AuthClient exchanges credentials to the token
type AuthClient struct {
	*Client
}

// NewAuthClient creates client for the login endpoint, loginURL is used as is
func NewAuthClient(doer Doer, loginURL string) *AuthClient {
	return &AuthClient{NewClient("Auth", loginURL, "", doer)}
}

// Login posts credentials and returns value for the Authorization header
func (a *AuthClient) Login(ctx context.Context, username, password string) (string, error) {
	a.logger.Info("Attempting login", "user", username)

	creds := map[string]string{
		"username":      username,
		"password":      password,
		"response_user": "true",
	}
	obj, err := a.Object(ctx, http.MethodPost, "", nil, creds, http.StatusOK)
	if err != nil {
		a.logger.Error("Login failed", "user", username, "err", err)
		return "", err
	}
	resp, err := schema.Parse[types.LoginResponse](obj)
	if err != nil {
		return "", err
	}

	a.logger.Info("Login successful", "user", username)
	return TokenPrefix + resp.Token, nil
}
