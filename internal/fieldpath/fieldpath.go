// Package fieldpath reads values out of worksheet payloads by dotted path.
//
// A payload is an untyped tree of scalars, lists and nested records as
// produced by decoding JSON or YAML into map[string]any. Traversal is total:
// a path that does not resolve yields ok == false, never a panic or error.
package fieldpath

import "strings"

// Get resolves path against record, one dot-separated segment at a time.
// Only nested map[string]any values are descended into; lists are leaves and
// are never indexed. A stored JSON null is returned as (nil, true).
func Get(record map[string]any, path string) (any, bool) {
	if record == nil {
		return nil, false
	}

	current := record
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		value, ok := current[segment]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return value, true
		}
		next, ok := value.(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

// Set stores value at path, creating intermediate records as needed. It
// reports false and leaves record untouched when a segment on the way is a
// non-record value.
func Set(record map[string]any, path string, value any) bool {
	if record == nil || path == "" {
		return false
	}

	segments := strings.Split(path, ".")
	current := record
	for _, segment := range segments[:len(segments)-1] {
		existing, ok := current[segment]
		if !ok {
			break
		}
		next, ok := existing.(map[string]any)
		if !ok {
			return false
		}
		current = next
	}

	current = record
	for _, segment := range segments[:len(segments)-1] {
		next, ok := current[segment].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[segment] = next
		}
		current = next
	}
	current[segments[len(segments)-1]] = value
	return true
}

// Leaf returns the last segment of path.
func Leaf(path string) string {
	if idx := strings.LastIndex(path, "."); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// Clone deep-copies a payload value so the copy shares no lists or records
// with the original.
func Clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = Clone(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Clone(item)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return v
	}
}
