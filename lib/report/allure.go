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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/adobe/qa-starter-kit/lib/util"
)

// AllureResult is the Allure 2 `*-result.json` file
type AllureResult struct {
	UUID          string              `json:"uuid"`
	HistoryID     string              `json:"historyId"`
	TestCaseID    string              `json:"testCaseId"`
	Name          string              `json:"name"`
	FullName      string              `json:"fullName"`
	Status        Status              `json:"status"`
	StatusDetails *AllureDetails      `json:"statusDetails,omitempty"`
	Stage         string              `json:"stage"`
	Start         int64               `json:"start"`
	Stop          int64               `json:"stop"`
	Labels        []AllureLabel       `json:"labels"`
	Attachments   []AllureAttachment  `json:"attachments"`
	Parameters    []map[string]string `json:"parameters"`
}

// AllureDetails contains the failure message and the output
type AllureDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
}

// AllureLabel is used by Allure to group the results
type AllureLabel struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// AllureAttachment points to the file stored in the results dir
type AllureAttachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type"`
}

// WriteAllure stores Allure result per case in dir. When captureDir is set the trace and
// screenshots recorded by the fixtures for the case are attached.
func (c *Collector) WriteAllure(dir, captureDir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create allure results dir: %w", err)
	}

	for _, pkg := range c.Packages() {
		for _, test := range pkg.Tests {
			for _, sub := range test.All() {
				if err := c.writeAllureCase(dir, captureDir, sub); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *Collector) writeAllureCase(dir, captureDir string, test *Case) error {
	id := uuid.New().String()
	history := test.HistoryID()

	res := AllureResult{
		UUID:        id,
		HistoryID:   history,
		TestCaseID:  history,
		Name:        test.ShortName(),
		FullName:    test.Package + "/" + test.Name,
		Status:      test.Status,
		Stage:       "finished",
		Start:       test.Start.UnixMilli(),
		Stop:        test.Stop.UnixMilli(),
		Labels:      allureLabels(test),
		Attachments: []AllureAttachment{},
		Parameters:  []map[string]string{},
	}
	if test.Stop.IsZero() {
		res.Stop = res.Start + int64(test.Elapsed*1000)
	}
	if test.Failed() || test.Status == StatusSkipped {
		res.StatusDetails = &AllureDetails{
			Trace: formatOutput(test, c.opts.Truncate, false),
		}
		if test.Failed() {
			res.StatusDetails.Message = failureMessage(test)
		}
	}

	if captureDir != "" {
		attachments, err := attachCaptures(dir, captureDir, test.Name)
		if err != nil {
			return err
		}
		res.Attachments = append(res.Attachments, attachments...)
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal allure result: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, id+"-result.json"), data, 0o644); err != nil {
		return fmt.Errorf("unable to write allure result: %w", err)
	}
	return nil
}

func allureLabels(test *Case) []AllureLabel {
	root := test
	for root.Parent != nil {
		root = root.Parent
	}
	labels := []AllureLabel{
		{Name: "framework", Value: "go test"},
		{Name: "language", Value: "go"},
		{Name: "package", Value: test.Package},
		{Name: "parentSuite", Value: test.Package},
		{Name: "suite", Value: root.Name},
	}
	if test.Parent != nil && test.Parent != root {
		labels = append(labels, AllureLabel{Name: "subSuite", Value: strings.TrimPrefix(test.Parent.Name, root.Name+"/")})
	}
	return labels
}

// attachCaptures copies the trace zip and screenshots of the test into results dir
func attachCaptures(dir, captureDir, testName string) ([]AllureAttachment, error) {
	name := util.ArtifactName(testName)
	var out []AllureAttachment

	trace := filepath.Join(captureDir, "traces", name+".zip")
	if _, err := os.Stat(trace); err == nil {
		att, err := copyAttachment(dir, trace, "trace", "application/zip")
		if err != nil {
			return nil, err
		}
		out = append(out, att)
	}

	shots, _ := filepath.Glob(filepath.Join(captureDir, "screenshots", name, "*.png"))
	sort.Strings(shots)
	for _, shot := range shots {
		att, err := copyAttachment(dir, shot, filepath.Base(shot), "image/png")
		if err != nil {
			return nil, err
		}
		out = append(out, att)
	}

	return out, nil
}

func copyAttachment(dir, src, name, mime string) (AllureAttachment, error) {
	source := uuid.New().String() + "-attachment" + filepath.Ext(src)

	in, err := os.Open(src)
	if err != nil {
		return AllureAttachment{}, fmt.Errorf("unable to open attachment: %w", err)
	}
	defer in.Close()

	out, err := os.Create(filepath.Join(dir, source))
	if err != nil {
		return AllureAttachment{}, fmt.Errorf("unable to create attachment: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return AllureAttachment{}, fmt.Errorf("unable to copy attachment %s: %w", src, err)
	}
	return AllureAttachment{Name: name, Source: source, Type: mime}, nil
}
