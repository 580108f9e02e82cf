package implication

import "worldsheet/internal/fieldpath"

// Condition holds when the field at Field carries one of Values.
type Condition struct {
	Field  string   `yaml:"field" json:"field"`
	Values []string `yaml:"values" json:"values"`
}

// Matches evaluates c against record. A list value matches when any of its
// elements is allowed; a scalar matches only when it is itself allowed.
// Values are compared as strings without coercion, so numbers, booleans and
// missing fields never match.
func Matches(record map[string]any, c Condition) bool {
	value, ok := fieldpath.Get(record, c.Field)
	if !ok {
		return false
	}

	switch v := value.(type) {
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && allowed(c.Values, s) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range v {
			if allowed(c.Values, item) {
				return true
			}
		}
		return false
	case string:
		return allowed(c.Values, v)
	default:
		return false
	}
}

func allowed(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
