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

package util

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/adobe/qa-starter-kit/lib/log"
)

// Retry calls fn up to attempts times with the constant wait between the calls and returns
// the last error. Errors wrapped with backoff.Permanent are stopping it right away.
func Retry(ctx context.Context, attempts int, wait time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	logger := log.WithFunc("util", "Retry")

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(wait)),
		backoff.WithMaxTries(uint(attempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("Attempt failed", "err", err, "next", next)
		}),
	)
	return err
}

// RetryFor is like Retry, but limited by time instead of attempts
func RetryFor(ctx context.Context, timeout, wait time.Duration, fn func() error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(wait)),
		backoff.WithMaxElapsedTime(timeout),
	)
	return err
}
