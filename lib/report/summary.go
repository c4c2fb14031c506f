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

package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Stats contains counters of the top-level tests
type Stats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int

	// Seconds spent in the tests
	TotalTime float64
	MinTime   float64
	MaxTime   float64

	// Package and subtest names of the failed cases
	FailedTests []string
}

// AvgTime returns average time per test
func (s Stats) AvgTime() float64 {
	if s.Total == 0 {
		return 0
	}
	return s.TotalTime / float64(s.Total)
}

// Stats calculates counters of the collected tests
func (c *Collector) Stats() Stats {
	var s Stats
	for _, pkg := range c.Packages() {
		// Package failed without any test, usually it's a build failure
		if pkg.Status == StatusFailed && len(pkg.Tests) == 0 {
			s.FailedTests = append(s.FailedTests, pkg.Name)
		}
		for _, test := range pkg.Tests {
			s.Total++
			switch {
			case test.Status == StatusPassed:
				s.Passed++
			case test.Failed():
				s.Failed++
			default:
				s.Skipped++
			}

			if s.Total == 1 || test.Elapsed < s.MinTime {
				s.MinTime = test.Elapsed
			}
			if test.Elapsed > s.MaxTime {
				s.MaxTime = test.Elapsed
			}
			s.TotalTime += test.Elapsed

			for _, sub := range test.All() {
				if sub.Failed() {
					s.FailedTests = append(s.FailedTests, pkg.Name+":"+sub.Name)
				}
			}
		}
	}
	return s
}

type palette struct {
	green, red, yellow, blue, bold *color.Color
}

func newPalette(useColor bool) palette {
	p := palette{
		green:  color.New(color.FgGreen),
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),
		blue:   color.New(color.FgBlue),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.green, p.red, p.yellow, p.blue, p.bold} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) status(s Status) (string, string) {
	switch s {
	case StatusPassed:
		return "✅", p.green.Sprint("PASS")
	case StatusFailed:
		return "❌", p.red.Sprint("FAIL")
	case StatusBroken:
		return "💥", p.red.Sprint("BROKEN")
	default:
		return "⏭️", p.yellow.Sprint("SKIP")
	}
}

// PrintSummary prints totals and the list of failed tests
func (c *Collector) PrintSummary(w io.Writer, useColor bool) {
	p := newPalette(useColor)
	s := c.Stats()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "📊 Summary: %d tests total", s.Total)
	fmt.Fprintf(w, ", %s", p.green.Sprintf("%d passed", s.Passed))
	fmt.Fprintf(w, ", %s", p.red.Sprintf("%d failed", s.Failed))
	fmt.Fprintf(w, ", %s\n", p.yellow.Sprintf("%d skipped", s.Skipped))

	fmt.Fprintf(w, "📈 Statistics:\n")
	fmt.Fprintf(w, "  Time per test: avg %.3fs, min %.3fs, max %.3fs, total %.3fs\n", s.AvgTime(), s.MinTime, s.MaxTime, s.TotalTime)

	if len(s.FailedTests) > 0 {
		fmt.Fprintf(w, "❌ Failed tests:\n")
		for _, name := range s.FailedTests {
			fmt.Fprintf(w, "  %s\n", p.red.Sprint(name))
		}
	}
}

// printCase writes the result block of the top-level test with nested subtests
func (c *Collector) printCase(w io.Writer, pkg *Package, test *Case) {
	p := newPalette(c.opts.Color)
	icon, status := p.status(test.Status)

	c.printStamped(w, test.Start, fmt.Sprintf("╒━ %s %s (%s) - %.3fs (%s %s)\n", icon, test.Name, status, test.Elapsed, p.blue.Sprint("📦"), p.bold.Sprint(pkg.Name)))
	c.printOutput(w, p, test, 1)
	c.printStamped(w, test.Stop, fmt.Sprintf("╘━ %s %s (%s) - %.3fs\n\n", icon, test.Name, status, test.Elapsed))
}

// printOutput prints output lines, inserting subtest blocks at the time they were started
func (c *Collector) printOutput(w io.Writer, p palette, test *Case, indent int) {
	indentStr := strings.Repeat(" │", indent)

	subIndex := 0
	printSub := func(sub *Case) {
		icon, status := p.status(sub.Status)
		c.printStamped(w, sub.Start, fmt.Sprintf("%s┍━ RUN   %s\n", indentStr, sub.Name))
		c.printOutput(w, p, sub, indent+1)
		c.printStamped(w, sub.Stop, fmt.Sprintf("%s┕━ %s %s: %s (%.3fs)\n", indentStr, icon, status, sub.ShortName(), sub.Elapsed))
	}

	for _, line := range test.Output {
		for subIndex < len(test.Subtests) && test.Subtests[subIndex].Start.Before(line.Time) {
			printSub(test.Subtests[subIndex])
			subIndex++
		}
		c.printStamped(w, line.Time, indentStr+" "+line.Text)
	}
	for ; subIndex < len(test.Subtests); subIndex++ {
		printSub(test.Subtests[subIndex])
	}
}

func (c *Collector) printStamped(w io.Writer, t time.Time, text string) {
	if c.opts.Timestamp {
		fmt.Fprintf(w, "[%s] %s", t.Format("15:04:05.000"), text)
		return
	}
	fmt.Fprint(w, text)
}
