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

// Package schema builds typed snapshots of API payloads. A snapshot is either complete or
// the parse fails with every violated field listed.
//
// The shape is declared with struct tags:
//   - `json:"name"` is the payload key, the field is required unless it's a pointer or has
//     `omitempty` in the tag
//   - `validate:"..."` adds go-playground/validator constraints checked after the shape
//
// Extra keys in the payload are ignored. Values are never coerced: a number is not accepted
// for a string field and a string is not accepted for a number field.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	validate = newValidator()

	unmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report constraint violations with payload keys instead of go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Parse validates the raw payload against struct T and returns the filled value
func Parse[T any](raw map[string]any) (T, error) {
	var zero T
	t, err := schemaType[T]()
	if err != nil {
		return zero, err
	}
	w := &walker{}
	out, ok := parseInto[T](w, t, raw, "")
	if !ok {
		return zero, w.error(t)
	}
	return out, nil
}

// ParseJSON decodes the body and validates it as an object of struct T
func ParseJSON[T any](data []byte) (T, error) {
	var zero T
	t, err := schemaType[T]()
	if err != nil {
		return zero, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return zero, &ValidationError{Schema: t.Name(), Fields: []FieldError{{Field: "$", Message: "invalid json: " + err.Error()}}}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return zero, &ValidationError{Schema: t.Name(), Fields: []FieldError{{Field: "$", Message: "expected object, got " + jsonKind(raw)}}}
	}
	return Parse[T](obj)
}

// ParseList validates every item of the list, violations are reported with `[index].` prefix
func ParseList[T any](items []map[string]any) ([]T, error) {
	t, err := schemaType[T]()
	if err != nil {
		return nil, err
	}
	w := &walker{}
	out := make([]T, 0, len(items))
	for i, raw := range items {
		if v, ok := parseInto[T](w, t, raw, fmt.Sprintf("[%d]", i)); ok {
			out = append(out, v)
		}
	}
	if len(w.errs) > 0 {
		return nil, w.error(t)
	}
	return out, nil
}

func schemaType[T any]() (reflect.Type, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t)
	}
	return t, nil
}

// parseInto checks the shape first and only when it's correct runs the validator constraints
func parseInto[T any](w *walker, t reflect.Type, raw map[string]any, prefix string) (T, bool) {
	var zero T
	before := len(w.errs)
	v := w.object(t, raw, prefix)
	if len(w.errs) > before {
		return zero, false
	}

	if err := validate.Struct(v.Interface()); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			w.fail(prefix, err.Error())
			return zero, false
		}
		for _, fe := range verrs {
			// Namespace starts with the struct type name which is not a part of the payload
			path := fe.Namespace()
			if i := strings.IndexByte(path, '.'); i >= 0 {
				path = path[i+1:]
			}
			msg := "must satisfy " + fe.Tag()
			if fe.Param() != "" {
				msg += "=" + fe.Param()
			}
			w.fail(joinPath(prefix, path), msg)
		}
		return zero, false
	}

	return v.Interface().(T), true
}

type walker struct {
	errs []FieldError
}

func (w *walker) fail(path, msg string) {
	w.errs = append(w.errs, FieldError{Field: path, Message: msg})
}

func (w *walker) mismatch(t reflect.Type, val any, path string) {
	w.fail(path, fmt.Sprintf("expected %s, got %s", t, jsonKind(val)))
}

func (w *walker) error(t reflect.Type) error {
	return &ValidationError{Schema: t.Name(), Fields: w.errs}
}

// object fills struct of type t from the raw map, the returned value is addressable
func (w *walker) object(t reflect.Type, raw map[string]any, prefix string) reflect.Value {
	out := reflect.New(t).Elem()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, optional, skip := fieldKey(f)
		if skip {
			continue
		}
		path := joinPath(prefix, name)

		val, ok := raw[name]
		switch {
		case !ok:
			if !optional {
				w.fail(path, MsgRequired)
			}
		case val == nil:
			if !optional {
				w.fail(path, MsgNotNull)
			}
		default:
			if v, ok := w.value(f.Type, val, path); ok {
				out.Field(i).Set(v)
			}
		}
	}
	return out
}

func (w *walker) value(t reflect.Type, val any, path string) (reflect.Value, bool) {
	switch {
	case t.Kind() == reflect.Pointer:
		v, ok := w.value(t.Elem(), val, path)
		if !ok {
			return reflect.Value{}, false
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(v)
		return p, true

	case isSchemaStruct(t):
		m, ok := val.(map[string]any)
		if !ok {
			w.mismatch(t, val, path)
			return reflect.Value{}, false
		}
		before := len(w.errs)
		v := w.object(t, m, path)
		return v, len(w.errs) == before

	case t.Kind() == reflect.Slice && isSchemaStruct(deref(t.Elem())):
		items := reflect.ValueOf(val)
		if items.Kind() != reflect.Slice {
			w.mismatch(t, val, path)
			return reflect.Value{}, false
		}
		out := reflect.MakeSlice(t, items.Len(), items.Len())
		good := true
		for i := 0; i < items.Len(); i++ {
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			item := items.Index(i).Interface()
			if item == nil {
				if t.Elem().Kind() != reflect.Pointer {
					w.fail(itemPath, MsgNotNull)
					good = false
				}
				continue
			}
			v, ok := w.value(t.Elem(), item, itemPath)
			if !ok {
				good = false
				continue
			}
			out.Index(i).Set(v)
		}
		return out, good
	}

	// Scalars and free-form containers are decoded by encoding/json which is strict about kinds
	data, err := json.Marshal(val)
	if err != nil {
		w.mismatch(t, val, path)
		return reflect.Value{}, false
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		w.mismatch(t, val, path)
		return reflect.Value{}, false
	}
	return ptr.Elem(), true
}

// fieldKey returns payload key of the field and if it could be absent
func fieldKey(f reflect.StructField) (name string, optional, skip bool) {
	tag := f.Tag.Get("json")
	if tag == "-" {
		return "", false, true
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = f.Name
	}
	optional = f.Type.Kind() == reflect.Pointer || slices.Contains(parts[1:], "omitempty")
	return name, optional, false
}

func isSchemaStruct(t reflect.Type) bool {
	return t.Kind() == reflect.Struct && !reflect.PointerTo(t).Implements(unmarshalerType)
}

func deref(t reflect.Type) reflect.Type {
	if t.Kind() == reflect.Pointer {
		return t.Elem()
	}
	return t
}

func joinPath(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	}
	return prefix + "." + name
}

// jsonKind names the json type of the decoded value
func jsonKind(val any) string {
	switch val.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number, float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return "number"
	case map[string]any:
		return "object"
	}
	switch reflect.ValueOf(val).Kind() {
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Map, reflect.Struct:
		return "object"
	}
	return fmt.Sprintf("%T", val)
}
