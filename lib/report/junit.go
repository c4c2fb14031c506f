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
	"bufio"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// JUnitTestSuites is the root element of the report
type JUnitTestSuites struct {
	XMLName xml.Name          `xml:"testsuites"`
	Suites  []*JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents a JUnit XML test suite
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
	SystemOut string          `xml:"system-out,omitempty"`
}

// JUnitTestCase represents a JUnit XML test case
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Classname string        `xml:"classname,attr"`
	Name      string        `xml:"name,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitFailure `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a JUnit XML failure or error
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// JUnitSkipped marks skipped test case
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnit builds the report structure, one suite per package
func (c *Collector) JUnit() *JUnitTestSuites {
	out := &JUnitTestSuites{}

	for _, pkg := range c.Packages() {
		suite := &JUnitTestSuite{
			Name:      pkg.Name,
			Timestamp: pkg.Start.Format(time.RFC3339),
		}
		if pkg.Start.IsZero() {
			suite.Timestamp = time.Now().Format(time.RFC3339)
		}

		for _, test := range pkg.Tests {
			for _, sub := range test.All() {
				if !shouldInclude(sub, c.opts.JUnitFilter) {
					continue
				}
				suite.TestCases = append(suite.TestCases, c.junitCase(suite, sub))
				suite.Tests++
				suite.Time += sub.Elapsed
			}
		}

		// Failed package without the tests is a build or init failure, it should be visible
		if pkg.Status == StatusFailed && len(pkg.Tests) == 0 {
			suite.Errors++
			suite.Tests++
			suite.TestCases = append(suite.TestCases, JUnitTestCase{
				Classname: pkg.Name,
				Name:      "[setup]",
				Error: &JUnitFailure{
					Message: "Package failed",
					Type:    "error",
					Content: formatOutput(&Case{Output: pkg.Output}, c.opts.Truncate, false),
				},
			})
		}

		if len(suite.TestCases) > 0 {
			out.Suites = append(out.Suites, suite)
		}
	}

	return out
}

func (c *Collector) junitCase(suite *JUnitTestSuite, test *Case) JUnitTestCase {
	tc := JUnitTestCase{
		Classname: test.Package,
		Name:      test.Name,
		Time:      test.Elapsed,
		SystemOut: formatOutput(test, c.opts.Truncate, c.opts.Timestamp),
	}

	switch test.Status {
	case StatusFailed:
		suite.Failures++
		tc.Failure = &JUnitFailure{
			Message: failureMessage(test),
			Type:    "failure",
			Content: tc.SystemOut,
		}
	case StatusBroken:
		suite.Errors++
		tc.Error = &JUnitFailure{
			Message: failureMessage(test),
			Type:    "error",
			Content: tc.SystemOut,
		}
	case StatusSkipped:
		suite.Skipped++
		tc.Skipped = &JUnitSkipped{}
	}
	return tc
}

// WriteJUnit stores the JUnit XML report in the file
func (c *Collector) WriteJUnit(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("unable to create report dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create JUnit report: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	// Write XML header
	if _, err := writer.WriteString(xml.Header); err != nil {
		return err
	}
	data, err := xml.MarshalIndent(c.JUnit(), "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal JUnit report: %w", err)
	}
	if _, err := writer.Write(append(data, '\n')); err != nil {
		return err
	}
	return writer.Flush()
}
