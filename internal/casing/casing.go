// Package casing converts JSON keys between the console's camelCase
// convention and the backend's snake_case convention.
package casing

import (
	"github.com/ettle/strcase"
)

// ToBackend converts a single camelCase key to snake_case.
func ToBackend(key string) string {
	if key == "" {
		return key
	}
	return strcase.ToSnake(key)
}

// ToInternal converts a single snake_case key to camelCase.
func ToInternal(key string) string {
	if key == "" {
		return key
	}
	return strcase.ToCamel(key)
}

// KeysToBackend rewrites every object key in v to snake_case, descending into
// nested objects and arrays. Scalars are returned unchanged.
func KeysToBackend(v any) any {
	return convert(v, ToBackend)
}

// KeysToInternal rewrites every object key in v to camelCase, descending into
// nested objects and arrays. Scalars are returned unchanged.
func KeysToInternal(v any) any {
	return convert(v, ToInternal)
}

func convert(v any, fn func(string) string) any {
	switch typed := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, value := range typed {
			out[fn(key)] = convert(value, fn)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, value := range typed {
			out[i] = convert(value, fn)
		}
		return out
	default:
		return v
	}
}
