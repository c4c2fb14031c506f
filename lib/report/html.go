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
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"
)

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"output": func(c *Case) string { return formatOutput(c, 0, true) },
	"indent": func(c *Case) int {
		depth := 0
		for p := c.Parent; p != nil; p = p.Parent {
			depth++
		}
		return depth * 24
	},
	"seconds": func(v float64) string { return fmt.Sprintf("%.3fs", v) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; color: #222; }
.summary span { margin-right: 1.5em; font-weight: bold; }
table { border-collapse: collapse; width: 100%; margin-bottom: 2em; }
td, th { border-bottom: 1px solid #ddd; padding: 4px 8px; text-align: left; vertical-align: top; }
.passed { color: #2e7d32; }
.failed, .broken { color: #c62828; }
.skipped { color: #f9a825; }
pre { background: #f5f5f5; padding: 8px; overflow-x: auto; font-size: 12px; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.Generated.Format "2006-01-02 15:04:05 MST"}}</p>
<div class="summary">
<span>Total: {{.Stats.Total}}</span>
<span class="passed">Passed: {{.Stats.Passed}}</span>
<span class="failed">Failed: {{.Stats.Failed}}</span>
<span class="skipped">Skipped: {{.Stats.Skipped}}</span>
<span>Time: {{seconds .Stats.TotalTime}}</span>
</div>
{{range .Packages}}
<h2 class="{{.Status}}">{{.Name}}</h2>
<table>
<tr><th>Test</th><th>Status</th><th>Time</th></tr>
{{range .Tests}}{{range .All}}
<tr>
<td style="padding-left: {{indent .}}px">{{.ShortName}}{{with output .}}<details><summary>output</summary><pre>{{.}}</pre></details>{{end}}</td>
<td class="{{.Status}}">{{.Status}}</td>
<td>{{seconds .Elapsed}}</td>
</tr>
{{end}}{{end}}
</table>
{{end}}
</body>
</html>
`))

type htmlData struct {
	Title     string
	Generated time.Time
	Stats     Stats
	Packages  []*Package
}

// RenderHTML writes self-contained HTML report
func (c *Collector) RenderHTML(w io.Writer) error {
	return htmlTemplate.Execute(w, htmlData{
		Title:     "QA Starter Kit test report",
		Generated: time.Now(),
		Stats:     c.Stats(),
		Packages:  c.Packages(),
	})
}

// WriteHTML stores HTML report in the file
func (c *Collector) WriteHTML(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("unable to create report dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create HTML report: %w", err)
	}
	defer f.Close()

	if err := c.RenderHTML(f); err != nil {
		return fmt.Errorf("unable to render HTML report: %w", err)
	}
	return nil
}
