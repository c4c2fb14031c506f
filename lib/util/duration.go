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

package util

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a simple wrapper to add serialization functions
type Duration time.Duration

// Extra units on top of time.ParseDuration, value is amount of hours
var unitMap = map[string]time.Duration{
	"d": 24,
	"D": 24,
	"w": 7 * 24,
	"W": 7 * 24,
	"M": 30 * 24,
	"y": 365 * 24,
	"Y": 365 * 24,
}

var durationChunk = regexp.MustCompile(`(\d*\.\d+|\d+)[^\d.]*`)

// Std returns the value as time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Milliseconds is handy for playwright options which take float milliseconds
func (d Duration) Milliseconds() float64 {
	return float64(time.Duration(d).Milliseconds())
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalJSON represents Duration as JSON string
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses JSON string or number of nanoseconds as Duration
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		return d.StoreStringDuration(value)
	default:
		return fmt.Errorf("incorrect duration type %T", v)
	}
}

// MarshalYAML represents Duration as YAML string
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalYAML parses YAML scalar as Duration
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("incorrect duration node at line %d", node.Line)
	}
	return d.StoreStringDuration(node.Value)
}

// StoreStringDuration parses a duration string into a duration
// Example: "10d", "-1.5w" or "3Y4M5d"
// Added time units: d(D), w(W), M, y(Y)
func (d *Duration) StoreStringDuration(s string) error {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	chunks := durationChunk.FindAllString(s, -1)
	if len(chunks) == 0 {
		return fmt.Errorf("invalid duration %q", s)
	}

	var sum time.Duration
	for _, chunk := range chunks {
		hours := time.Duration(1)
		for unit, h := range unitMap {
			if strings.HasSuffix(chunk, unit) {
				chunk = strings.TrimSuffix(chunk, unit) + "h"
				hours = h
				break
			}
		}
		dur, err := time.ParseDuration(chunk)
		if err != nil {
			return err
		}
		sum += dur * hours
	}

	if neg {
		sum = -sum
	}
	*d = Duration(sum)

	return nil
}
