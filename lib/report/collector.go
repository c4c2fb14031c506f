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

// Package report collects `go test -json` event stream and renders it as structured console
// output, JUnit XML, self-contained HTML page and Allure results directory.
//
// Usage:
// go test -json -count=1 ./tests/... | qa-starter report --input - --junit report.xml
package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Max size of the single event line, test output could contain huge lines
const maxLineSize = 4 * 1024 * 1024

// Status of the test case, values are matching Allure statuses
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
	// Broken case was started but never completed: panic, timeout or killed test binary
	StatusBroken Status = "broken"
)

// Event represents a single test event from go test -json
type Event struct {
	Time    string  `json:"Time"`
	Action  string  `json:"Action"`
	Package string  `json:"Package"`
	Test    string  `json:"Test"`
	Output  string  `json:"Output"`
	Elapsed float64 `json:"Elapsed"`
}

// Line contains time and text output
type Line struct {
	Time time.Time
	Text string
}

// Case represents a test or subtest with all its output
type Case struct {
	Package string
	Name    string
	Status  Status
	Start   time.Time
	Stop    time.Time
	Elapsed float64
	Output  []Line

	Parent   *Case
	Subtests []*Case
}

// ShortName returns the last segment of the subtest name
func (c *Case) ShortName() string {
	if c.Parent == nil {
		return c.Name
	}
	return strings.TrimPrefix(c.Name, c.Parent.Name+"/")
}

// Failed is true for failed and broken cases
func (c *Case) Failed() bool {
	return c.Status == StatusFailed || c.Status == StatusBroken
}

// HistoryID is the same between the runs, so the trends of the case could be tracked
func (c *Case) HistoryID() string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(c.Package+"#"+c.Name)).String()
}

// All returns the case and all its subtests in run order
func (c *Case) All() []*Case {
	out := []*Case{c}
	for _, sub := range c.Subtests {
		out = append(out, sub.All()...)
	}
	return out
}

// Package represents all tests in a package
type Package struct {
	Name    string
	Status  Status
	Start   time.Time
	Stop    time.Time
	Elapsed float64
	// Output not related to any test: build failures, panics, final FAIL line
	Output []Line
	// Top-level tests in run order
	Tests []*Case

	cases map[string]*Case
}

// Options configures collector behavior
type Options struct {
	// Stream receives human-readable result block of each completed top-level test
	Stream       io.Writer
	StreamFilter string
	Color        bool
	Timestamp    bool

	// Truncate case output in the reports to N lines, 0 is unlimited
	Truncate    int
	JUnitFilter string
}

// Collector holds the parsed state of the event stream
type Collector struct {
	opts     Options
	packages map[string]*Package
}

// NewCollector creates empty collector
func NewCollector(opts Options) *Collector {
	return &Collector{
		opts:     opts,
		packages: make(map[string]*Package),
	}
}

// Consume reads the event stream line by line, tee receives the raw stream when not nil
func (c *Collector) Consume(r io.Reader, tee io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if tee != nil {
			if _, err := fmt.Fprintf(tee, "%s\n", line); err != nil {
				return fmt.Errorf("failed to write event stream copy: %w", err)
			}
		}
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var event Event
		if err := json.Unmarshal(line, &event); err != nil {
			return fmt.Errorf("failed to parse JSON event at line %d: %w", lineNum, err)
		}
		c.Process(&event)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	c.Finish()
	return nil
}

// Process applies one event to the state
func (c *Collector) Process(event *Event) {
	switch event.Action {
	case "start":
		c.getOrCreatePackage(event.Package).Start = parseTime(event.Time)
	case "run":
		c.runTest(event)
	case "output":
		c.addOutput(event)
	case "pass", "fail", "skip":
		if event.Test == "" {
			c.completePackage(event)
		} else {
			c.completeTest(event)
		}
	}
}

// Finish marks the cases which never completed as broken, stream could end abruptly when
// go test is killed
func (c *Collector) Finish() {
	for _, pkg := range c.packages {
		markBroken(pkg)
	}
}

// Packages returns collected packages sorted by name
func (c *Collector) Packages() []*Package {
	out := make([]*Package, 0, len(c.packages))
	for _, pkg := range c.packages {
		out = append(out, pkg)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Failed is true when any case or package failed
func (c *Collector) Failed() bool {
	for _, pkg := range c.packages {
		if pkg.Status == StatusFailed {
			return true
		}
		for _, test := range pkg.Tests {
			for _, sub := range test.All() {
				if sub.Failed() {
					return true
				}
			}
		}
	}
	return false
}

func (c *Collector) runTest(event *Event) {
	if event.Test == "" {
		return
	}

	pkg := c.getOrCreatePackage(event.Package)
	if _, exists := pkg.cases[event.Test]; exists {
		return
	}

	test := &Case{
		Package: event.Package,
		Name:    event.Test,
		Start:   parseTime(event.Time),
	}
	pkg.cases[event.Test] = test

	if parent := findParent(pkg, event.Test); parent != nil {
		test.Parent = parent
		parent.Subtests = append(parent.Subtests, test)
	} else {
		pkg.Tests = append(pkg.Tests, test)
	}
}

func (c *Collector) addOutput(event *Event) {
	pkg := c.getOrCreatePackage(event.Package)
	line := Line{Time: parseTime(event.Time), Text: event.Output}

	if event.Test == "" {
		pkg.Output = append(pkg.Output, line)
		return
	}

	// Skip PAUSE and CONT due to not needed in structured output
	if strings.HasPrefix(event.Output, "=== PAUSE ") || strings.HasPrefix(event.Output, "=== CONT ") {
		return
	}

	// Remove RUN and PASS/FAIL/SKIP lines, the result is shown by the case itself
	trimmed := strings.TrimLeft(event.Output, " ")
	if strings.HasPrefix(event.Output, "=== RUN ") ||
		strings.HasPrefix(trimmed, "--- PASS: ") ||
		strings.HasPrefix(trimmed, "--- FAIL: ") ||
		strings.HasPrefix(trimmed, "--- SKIP: ") {
		return
	}

	test := pkg.cases[event.Test]
	if test == nil {
		return
	}
	test.Output = append(test.Output, line)
}

func (c *Collector) completeTest(event *Event) {
	pkg := c.packages[event.Package]
	if pkg == nil {
		return
	}
	test := pkg.cases[event.Test]
	if test == nil {
		return
	}

	test.Stop = parseTime(event.Time)
	test.Elapsed = event.Elapsed
	switch event.Action {
	case "pass":
		test.Status = StatusPassed
	case "skip":
		test.Status = StatusSkipped
	case "fail":
		test.Status = StatusFailed
		// Mark parents as failed, go test will report them later anyway
		for parent := test.Parent; parent != nil; parent = parent.Parent {
			parent.Status = StatusFailed
		}
	}

	// Print test result immediately (only for top-level tests)
	if test.Parent == nil && c.opts.Stream != nil && shouldInclude(test, c.opts.StreamFilter) {
		c.printCase(c.opts.Stream, pkg, test)
	}
}

func (c *Collector) completePackage(event *Event) {
	pkg := c.getOrCreatePackage(event.Package)
	pkg.Stop = parseTime(event.Time)
	pkg.Elapsed = event.Elapsed
	switch event.Action {
	case "pass":
		pkg.Status = StatusPassed
	case "skip":
		pkg.Status = StatusSkipped
	case "fail":
		pkg.Status = StatusFailed
	}
	markBroken(pkg)
}

func (c *Collector) getOrCreatePackage(name string) *Package {
	if pkg, exists := c.packages[name]; exists {
		return pkg
	}

	pkg := &Package{
		Name:  name,
		cases: make(map[string]*Case),
	}
	c.packages[name] = pkg
	return pkg
}

// findParent looks for the longest existing prefix of the subtest name
func findParent(pkg *Package, name string) *Case {
	for i := strings.LastIndex(name, "/"); i > 0; i = strings.LastIndex(name[:i], "/") {
		if parent, ok := pkg.cases[name[:i]]; ok {
			return parent
		}
	}
	return nil
}

func markBroken(pkg *Package) {
	for _, test := range pkg.cases {
		if test.Status != "" {
			continue
		}
		test.Status = StatusBroken
		if test.Stop.IsZero() {
			test.Stop = pkg.Stop
		}
	}
}

func parseTime(timeStr string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, timeStr); err == nil {
		return t
	}
	return time.Now()
}

func shouldInclude(test *Case, filter string) bool {
	switch filter {
	case "non-failed":
		return !test.Failed()
	case "non-passed":
		return test.Status != StatusPassed
	case "failed":
		return test.Failed()
	case "passed":
		return test.Status == StatusPassed
	default:
		return true
	}
}

// formatOutput joins the case output, keeping beginning and end of it when truncated
func formatOutput(test *Case, truncate int, addTimestamp bool) string {
	if len(test.Output) == 0 {
		return ""
	}

	var b strings.Builder
	for _, line := range test.Output {
		if addTimestamp {
			fmt.Fprintf(&b, "[%s] %s", line.Time.Format("15:04:05.000"), line.Text)
		} else {
			b.WriteString(line.Text)
		}
	}
	output := b.String()

	if truncate > 0 {
		lines := strings.Split(output, "\n")
		if len(lines) > truncate {
			begin := lines[:truncate/2]
			end := lines[len(lines)-truncate/2:]
			output = strings.Join(begin, "\n") + "\n\n... (truncated) ...\n\n" + strings.Join(end, "\n")
		}
	}

	return output
}

// failureMessage finds the first error line of the failed case
func failureMessage(test *Case) string {
	for _, line := range test.Output {
		text := strings.TrimSpace(line.Text)
		if strings.Contains(text, "ERROR") || strings.Contains(text, "Error:") || strings.HasPrefix(text, "panic:") {
			return text
		}
	}
	if test.Status == StatusBroken {
		return "Test did not complete"
	}
	return "Test failed"
}
