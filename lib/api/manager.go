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

	"github.com/adobe/qa-starter-kit/lib/config"
	"github.com/adobe/qa-starter-kit/lib/log"
	"github.com/adobe/qa-starter-kit/lib/monitoring"
)

// NoAuthToken is used when no login endpoint is configured, the example backends are public
const NoAuthToken = "no-auth-required"

// Manager owns one client per backend resource. The clients are created without token and
// re-issued with the token by Login, so the values obtained before Login stay anonymous.
// Manager is not safe for concurrent use, each test creates its own.
type Manager struct {
	Posts *PostsClient
	Users *UsersClient

	auth  *AuthClient
	token string
}

// NewManager creates the clients from the API configuration
func NewManager(doer Doer, cfg *config.Config) *Manager {
	m := &Manager{
		Posts: NewPostsClient(doer, cfg.API.PostsURL, ""),
		Users: NewUsersClient(doer, cfg.API.UsersURL, cfg.API.UsersKey, ""),
	}
	if cfg.API.AuthURL != "" {
		m.auth = NewAuthClient(doer, cfg.API.AuthURL)
	}
	return m
}

// Login performs the credential exchange (or stubs it when auth url is not set) and re-issues
// every client with the received token before returning it
func (m *Manager) Login(ctx context.Context, username, password string) (string, error) {
	token := NoAuthToken
	if m.auth != nil {
		var err error
		if token, err = m.auth.Login(ctx, username, password); err != nil {
			monitoring.Current().RecordAPILogin(ctx, false, false)
			return "", err
		}
	} else {
		log.WithFunc("api", "Login").Debug("No auth url configured, using stub token", "user", username)
	}

	monitoring.Current().RecordAPILogin(ctx, m.auth == nil, true)

	m.token = token
	m.Posts = &PostsClient{m.Posts.WithToken(token)}
	m.Users = &UsersClient{m.Users.WithToken(token)}

	return token, nil
}

// Token returns the token of the last successful Login
func (m *Manager) Token() string {
	return m.token
}

// Clients lists all the resource clients currently issued by the manager
func (m *Manager) Clients() []AuthenticatedClient {
	return []AuthenticatedClient{m.Posts, m.Users}
}
