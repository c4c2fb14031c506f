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

// Package data loads test data scenarios from `<dir>/<domain>.json` files, YAML variant
// `<dir>/<domain>.yaml` is used when there is no json one
package data

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
)

// ErrScenarioNotFound is returned when domain file or scenario in it doesn't exist
var ErrScenarioNotFound = errors.New("test data scenario not found")

// DirName is the directory in the module root where the data files are placed
const DirName = "data"

// Provider reads the scenarios from the directory, files are read on every call
type Provider struct {
	dir string
}

// NewProvider creates provider for the directory
func NewProvider(dir string) *Provider {
	return &Provider{dir: dir}
}

// Default locates the `data` directory in the module root, walking up from working directory
// because go test runs each package in its own directory
func Default() (*Provider, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("data: unable to get working directory: %w", err)
	}
	for dir := wd; ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return NewProvider(filepath.Join(dir, DirName)), nil
		}
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}
	return nil, fmt.Errorf("data: unable to find module root from %q", wd)
}

// Dir returns the directory used by the provider
func (p *Provider) Dir() string {
	return p.dir
}

// Get returns the scenario object from the domain file
func (p *Provider) Get(domain, scenario string) (map[string]any, error) {
	raw, err := p.raw(domain, scenario)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("data: scenario %s/%s is not an object: %w", domain, scenario, err)
	}
	return out, nil
}

// Scenario decodes the scenario into T using json tags
func Scenario[T any](p *Provider, domain, scenario string) (T, error) {
	var out T
	raw, err := p.raw(domain, scenario)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("data: unable to decode scenario %s/%s: %w", domain, scenario, err)
	}
	return out, nil
}

// domainFile reads the domain file and returns its content as json
func (p *Provider) domainFile(domain string) (string, []byte, error) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(p.dir, domain+ext)
		content, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return path, nil, fmt.Errorf("data: unable to read %q: %w", path, err)
		}
		if ext != ".json" {
			if content, err = yaml.YAMLToJSON(content); err != nil {
				return path, nil, fmt.Errorf("data: unable to convert %q: %w", path, err)
			}
		}
		return path, content, nil
	}
	return "", nil, fmt.Errorf("%w: no domain file for %q in %q", ErrScenarioNotFound, domain, p.dir)
}

func (p *Provider) raw(domain, scenario string) (json.RawMessage, error) {
	path, content, err := p.domainFile(domain)
	if err != nil {
		return nil, err
	}

	var scenarios map[string]json.RawMessage
	if err := json.Unmarshal(content, &scenarios); err != nil {
		return nil, fmt.Errorf("data: unable to parse %q: %w", path, err)
	}
	raw, ok := scenarios[scenario]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrScenarioNotFound, domain, scenario)
	}
	return raw, nil
}
