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

package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adobe/qa-starter-kit/lib/report"
)

func run(statuses map[string]report.Status) []*report.Package {
	pkg := &report.Package{Name: "github.com/adobe/qa-starter-kit/webtests"}
	root := &report.Case{Package: pkg.Name, Name: "Test_inventory", Status: report.StatusPassed}
	for name, status := range statuses {
		sub := &report.Case{Package: pkg.Name, Name: "Test_inventory/" + name, Status: status, Parent: root}
		root.Subtests = append(root.Subtests, sub)
		if sub.Failed() {
			root.Status = report.StatusFailed
		}
	}
	pkg.Tests = []*report.Case{root}
	return []*report.Package{pkg}
}

func Test_case_helpers(t *testing.T) {
	c := Case{Results: []Result{
		{Status: report.StatusPassed},
		{Status: report.StatusFailed},
		{Status: report.StatusSkipped},
		{Status: report.StatusBroken},
	}}
	assert.True(t, c.Flaky())
	assert.Equal(t, 2, c.FailStreak(), "skip is not breaking the streak")
	assert.Equal(t, ".xsb", c.Trend())

	c = Case{Results: []Result{{Status: report.StatusSkipped}, {Status: report.StatusPassed}}}
	assert.False(t, c.Flaky())
	assert.Equal(t, 0, c.FailStreak())
}

func Test_store_record(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	at := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record("run-1", at, run(map[string]report.Status{
		"add": report.StatusPassed, "sort": report.StatusFailed,
	})))
	require.NoError(t, s.Record("run-2", at.Add(time.Hour), run(map[string]report.Status{
		"add": report.StatusFailed, "sort": report.StatusFailed,
	})))

	pkg := "github.com/adobe/qa-starter-kit/webtests"
	add, err := s.Get(pkg, "Test_inventory/add")
	require.NoError(t, err)
	require.Len(t, add.Results, 2)
	assert.Equal(t, "run-1", add.Results[0].Run)
	assert.Equal(t, ".x", add.Trend())

	_, err = s.Get(pkg, "Test_login")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.List()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Test_inventory", all[0].Name)

	unstable, err := s.Unstable(2)
	require.NoError(t, err)
	names := []string{}
	for _, c := range unstable {
		names = append(names, c.Name)
	}
	// Root and sort failed twice in a row, add is flaky
	assert.ElementsMatch(t, []string{"Test_inventory", "Test_inventory/add", "Test_inventory/sort"}, names)

	unstable, err = s.Unstable(0)
	require.NoError(t, err)
	require.Len(t, unstable, 1, "streak is not checked")
	assert.Equal(t, "Test_inventory/add", unstable[0].Name)
}

func Test_store_keeps_last_results(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	for i := 0; i < MaxResults+5; i++ {
		require.NoError(t, s.Record("run", time.Now(), run(nil)))
	}
	require.NoError(t, s.Close())

	// Data survives reopening
	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	c, err := s.Get("github.com/adobe/qa-starter-kit/webtests", "Test_inventory")
	require.NoError(t, err)
	assert.Len(t, c.Results, MaxResults)
}
