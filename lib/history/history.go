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

// Package history keeps the statuses of the test cases between the runs in local database,
// which allows to spot flaky tests and the cases failing for several runs in a row
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.mills.io/bitcask/v2"

	"github.com/adobe/qa-starter-kit/lib/log"
	"github.com/adobe/qa-starter-kit/lib/report"
)

// MaxResults is how many last results are kept per case
const MaxResults = 20

const collectionCases = "case"

// ErrNotFound is returned when the case was never recorded
var ErrNotFound = bitcask.ErrObjectNotFound

// Result is outcome of the case in one run
type Result struct {
	Run     string        `json:"run"`
	Time    time.Time     `json:"time"`
	Status  report.Status `json:"status"`
	Elapsed float64       `json:"elapsed"`
}

// Case is the stored history of one test case, results are ordered from old to new
type Case struct {
	ID      string   `json:"id"`
	Package string   `json:"package"`
	Name    string   `json:"name"`
	Results []Result `json:"results"`
}

// Flaky is true when the kept results are containing both passes and failures
func (c *Case) Flaky() bool {
	var passed, failed bool
	for _, r := range c.Results {
		switch r.Status {
		case report.StatusPassed:
			passed = true
		case report.StatusFailed, report.StatusBroken:
			failed = true
		}
	}
	return passed && failed
}

// FailStreak returns the number of the latest runs failed in a row, skips are not breaking it
func (c *Case) FailStreak() (streak int) {
	for i := len(c.Results) - 1; i >= 0; i-- {
		switch c.Results[i].Status {
		case report.StatusFailed, report.StatusBroken:
			streak++
		case report.StatusPassed:
			return streak
		}
	}
	return streak
}

// Trend is a compact string of the statuses, like "..xx." from old to new
func (c *Case) Trend() string {
	out := make([]byte, len(c.Results))
	for i, r := range c.Results {
		switch r.Status {
		case report.StatusPassed:
			out[i] = '.'
		case report.StatusSkipped:
			out[i] = 's'
		case report.StatusBroken:
			out[i] = 'b'
		default:
			out[i] = 'x'
		}
	}
	return string(out)
}

// Store is the history database
type Store struct {
	be *bitcask.Bitcask
	// Merge is not safe with the other operations, so it takes the write lock
	beMu sync.RWMutex
}

// Open creates or opens the database in the directory
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("history: can't create directory %s: %w", dir, err)
	}
	be, err := bitcask.Open(filepath.Join(dir, "bitcask.db"))
	if err != nil {
		return nil, fmt.Errorf("history: unable to open database: %w", err)
	}
	return &Store{be: be}, nil
}

// Record appends the results of all the cases and subtests of the run
func (s *Store) Record(run string, at time.Time, pkgs []*report.Package) error {
	s.beMu.RLock()
	defer s.beMu.RUnlock()

	cases := s.be.Collection(collectionCases)
	count := 0
	for _, pkg := range pkgs {
		for _, root := range pkg.Tests {
			for _, test := range root.All() {
				id := test.HistoryID()
				var c Case
				if err := cases.Get(id, &c); err != nil {
					if !errors.Is(err, ErrNotFound) {
						return fmt.Errorf("history: unable to get %s: %w", test.Name, err)
					}
					c = Case{ID: id, Package: test.Package, Name: test.Name}
				}
				c.Results = append(c.Results, Result{Run: run, Time: at, Status: test.Status, Elapsed: test.Elapsed})
				if len(c.Results) > MaxResults {
					c.Results = c.Results[len(c.Results)-MaxResults:]
				}
				if err := cases.Add(id, c); err != nil {
					return fmt.Errorf("history: unable to store %s: %w", test.Name, err)
				}
				count++
			}
		}
	}
	log.WithFunc("history", "Record").Debug("Recorded run", "run", run, "cases", count)
	return nil
}

// Get returns the history of the case
func (s *Store) Get(pkg, name string) (*Case, error) {
	s.beMu.RLock()
	defer s.beMu.RUnlock()

	var c Case
	if err := s.be.Collection(collectionCases).Get((&report.Case{Package: pkg, Name: name}).HistoryID(), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all the stored cases sorted by package and name
func (s *Store) List() ([]Case, error) {
	s.beMu.RLock()
	defer s.beMu.RUnlock()

	var out []Case
	if err := s.be.Collection(collectionCases).List(&out); err != nil {
		return nil, fmt.Errorf("history: unable to list cases: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Package != out[j].Package {
			return out[i].Package < out[j].Package
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Unstable returns flaky cases and cases failing at least minStreak runs in a row
func (s *Store) Unstable(minStreak int) ([]Case, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}
	var out []Case
	for _, c := range all {
		if c.Flaky() || (minStreak > 0 && c.FailStreak() >= minStreak) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Close compacts the database and closes it
func (s *Store) Close() error {
	s.beMu.Lock()
	defer s.beMu.Unlock()

	if err := s.be.Merge(); err != nil {
		log.WithFunc("history", "Close").Warn("Unable to compact database", "err", err)
	}
	if err := s.be.Close(); err != nil {
		return fmt.Errorf("history: unable to close database: %w", err)
	}
	return nil
}
