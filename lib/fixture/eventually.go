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
	"context"
	"testing"
	"time"

	"github.com/adobe/qa-starter-kit/lib/util"
)

// EventuallyWait is the pause between the checks of Eventually
const EventuallyWait = 250 * time.Millisecond

// Eventually repeats check until it returns nil or timeout passes, then fails the test with
// the last error. Used for state of the remote services which is not updated right away.
func Eventually(tb testing.TB, timeout time.Duration, check func() error) {
	tb.Helper()

	if err := util.RetryFor(context.Background(), timeout, EventuallyWait, check); err != nil {
		tb.Fatalf("ERROR: Condition is not met in %s: %v", timeout, err)
	}
}
