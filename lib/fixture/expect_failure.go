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
	"fmt"
	"runtime"
	"strings"
	"sync"
	"testing"
)

// failureRecorder stands in for the test inside ExpectFailure: failures are kept instead of
// failing the real test, everything else goes to the real one
type failureRecorder struct {
	testing.TB

	mu       sync.Mutex
	failed   bool
	messages []string
}

func (r *failureRecorder) record(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
	r.messages = append(r.messages, strings.TrimSuffix(msg, "\n"))
}

func (r *failureRecorder) Fail() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = true
}

func (r *failureRecorder) Failed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failed
}

func (r *failureRecorder) FailNow() {
	r.Fail()
	runtime.Goexit()
}

func (r *failureRecorder) Error(args ...any) {
	r.record(fmt.Sprintln(args...))
}

func (r *failureRecorder) Errorf(format string, args ...any) {
	r.record(fmt.Sprintf(format, args...))
}

func (r *failureRecorder) Fatal(args ...any) {
	r.Error(args...)
	runtime.Goexit()
}

func (r *failureRecorder) Fatalf(format string, args ...any) {
	r.Errorf(format, args...)
	runtime.Goexit()
}

// ExpectFailure runs f in a separate goroutine, so FailNow could stop it, and fails t when
// f passed. Returns the recorded failure messages.
func ExpectFailure(t testing.TB, f func(tb testing.TB)) []string {
	t.Helper()

	r := &failureRecorder{TB: t}
	done := make(chan struct{})
	go func() {
		defer close(done)
		f(r)
	}()
	<-done

	if !r.Failed() {
		t.Fatalf("ERROR: Expected the function to fail")
	}
	return r.messages
}
