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

package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation is matched by any *ValidationError
var ErrValidation = errors.New("schema validation failed")

// Violation messages
const (
	MsgRequired = "field required"
	MsgNotNull  = "must not be null"
)

// FieldError describes one violated field, Field is a json path like `data[0].email`
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// ValidationError contains all the violations found in one payload
type ValidationError struct {
	Schema string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Schema, strings.Join(parts, "; "))
}

// Is allows to use errors.Is(err, ErrValidation)
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Field returns the violation for the given json path if it's present
func (e *ValidationError) Field(path string) (FieldError, bool) {
	for _, f := range e.Fields {
		if f.Field == path {
			return f, true
		}
	}
	return FieldError{}, false
}
