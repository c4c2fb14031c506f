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

package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/steinfletcher/apitest"

	"github.com/adobe/qa-starter-kit/lib/api"
	"github.com/adobe/qa-starter-kit/lib/api/types"
	"github.com/adobe/qa-starter-kit/lib/fixture"
	"github.com/adobe/qa-starter-kit/lib/schema"
	"github.com/adobe/qa-starter-kit/lib/util"
)

type postScenario struct {
	PostID         int    `json:"post_id"`
	UserID         int    `json:"user_id"`
	ExpectedUserID int    `json:"expected_user_id"`
	ExpectedMin    int    `json:"expected_min_posts"`
	Title          string `json:"title"`
	Body           string `json:"body"`
}

// Test_posts verifies the posts resource of JSONPlaceholder:
// 1. Single post and the posts of the user are matching the schema
// 2. Created, updated and patched post is returned with the sent fields
// 3. Delete is accepted
func Test_posts(t *testing.T) {
	fixture.RequireLive(t, cfg)
	ctx := context.Background()

	t.Run("Get single post", func(t *testing.T) {
		m := fixture.APIManager(t, cfg)
		sc := scenario[postScenario](t, "posts", "get_single_post")

		obj, err := m.Posts.Get(ctx, sc.PostID)
		if err != nil {
			t.Fatalf("ERROR: Unable to get post %d: %v", sc.PostID, err)
		}
		post, err := schema.Parse[types.Post](obj)
		if err != nil {
			t.Fatalf("ERROR: API response schema validation failed: %v", err)
		}

		if post.ID != sc.PostID {
			t.Errorf("ERROR: Post ID should match requested ID: %d != %d", post.ID, sc.PostID)
		}
		if post.UserID != sc.ExpectedUserID {
			t.Errorf("ERROR: User ID should match expected value: %d != %d", post.UserID, sc.ExpectedUserID)
		}
		if post.Title == "" || post.Body == "" {
			t.Errorf("ERROR: Title and body should not be empty: %+v", post)
		}
	})

	t.Run("Get user posts", func(t *testing.T) {
		m := fixture.APIManager(t, cfg)
		sc := scenario[postScenario](t, "posts", "get_user_posts")

		var list []api.Object
		fixture.Eventually(t, cfg.API.Timeout.Std(), func() (err error) {
			if list, err = m.Posts.List(ctx, sc.UserID); err != nil {
				return fmt.Errorf("unable to list posts: %w", err)
			}
			if len(list) < sc.ExpectedMin {
				return fmt.Errorf("should return at least %d post(s), got %d", sc.ExpectedMin, len(list))
			}
			return nil
		})
		posts, err := schema.ParseList[types.Post](list)
		if err != nil {
			t.Fatalf("ERROR: API response schema validation failed: %v", err)
		}
		for _, post := range posts {
			if post.UserID != sc.UserID {
				t.Errorf("ERROR: Post %d should belong to user %d, got %d", post.ID, sc.UserID, post.UserID)
			}
		}
	})

	t.Run("Create post", func(t *testing.T) {
		m := fixture.APIManager(t, cfg)
		sc := scenario[postScenario](t, "posts", "create_post")
		in := types.PostInput{
			UserID: sc.UserID,
			Title:  sc.Title + " " + util.UniqueName(time.Now()),
			Body:   sc.Body,
		}

		obj, err := m.Posts.Create(ctx, in)
		if err != nil {
			t.Fatalf("ERROR: Unable to create post: %v", err)
		}
		created, err := schema.Parse[types.PostCreated](obj)
		if err != nil {
			t.Fatalf("ERROR: API response schema validation failed: %v", err)
		}

		if created.Title != in.Title || created.Body != in.Body || created.UserID != in.UserID {
			t.Errorf("ERROR: Created post should match request: %+v != %+v", created, in)
		}
		t.Logf("INFO: Created post %d", created.ID)
	})

	t.Run("Update post", func(t *testing.T) {
		m := fixture.APIManager(t, cfg)
		sc := scenario[postScenario](t, "posts", "update_post")

		obj, err := m.Posts.Update(ctx, sc.PostID, types.PostInput{UserID: sc.UserID, Title: sc.Title, Body: sc.Body})
		if err != nil {
			t.Fatalf("ERROR: Unable to update post: %v", err)
		}
		post, err := schema.Parse[types.Post](obj)
		if err != nil {
			t.Fatalf("ERROR: API response schema validation failed: %v", err)
		}
		if post.ID != sc.PostID || post.Title != sc.Title || post.Body != sc.Body || post.UserID != sc.UserID {
			t.Errorf("ERROR: Post should be updated: %+v", post)
		}
	})

	t.Run("Patch post", func(t *testing.T) {
		m := fixture.APIManager(t, cfg)
		sc := scenario[postScenario](t, "posts", "patch_post")

		obj, err := m.Posts.Patch(ctx, sc.PostID, map[string]any{"title": sc.Title})
		if err != nil {
			t.Fatalf("ERROR: Unable to patch post: %v", err)
		}
		post, err := schema.Parse[types.Post](obj)
		if err != nil {
			t.Fatalf("ERROR: API response schema validation failed: %v", err)
		}
		if post.Title != sc.Title {
			t.Errorf("ERROR: Title should be patched: %q != %q", post.Title, sc.Title)
		}
	})

	t.Run("Delete post", func(t *testing.T) {
		m := fixture.APIManager(t, cfg)
		sc := scenario[postScenario](t, "posts", "delete_post")

		// JSONPlaceholder simulates the deletion, the post is still there after it
		if _, err := m.Posts.Delete(ctx, sc.PostID); err != nil {
			t.Fatalf("ERROR: Unable to delete post: %v", err)
		}
	})
}

// Test_posts_contract checks the raw HTTP contract of the posts endpoint
func Test_posts_contract(t *testing.T) {
	fixture.RequireLive(t, cfg)
	cli := api.NewHTTPClient(cfg)

	var posts []map[string]any
	apitest.New().
		EnableNetworking(cli).
		Get(cfg.API.PostsURL+"/posts").
		Query("userId", "1").
		Expect(t).
		Status(http.StatusOK).
		Header("Content-Type", "application/json; charset=utf-8").
		End().
		JSON(&posts)

	if len(posts) == 0 {
		t.Fatalf("ERROR: Posts list should not be empty")
	}
}
