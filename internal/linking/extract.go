package linking

import "worldsheet/internal/fieldpath"

// TitleField is the snapshot key under which the target's title is stamped.
const TitleField = "title"

// Extract copies every resolvable field of data into a snapshot keyed by the
// full field path. Unresolvable fields are left out; values are deep copies.
func Extract(data map[string]any, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		value, ok := fieldpath.Get(data, field)
		if !ok {
			continue
		}
		out[field] = fieldpath.Clone(value)
	}
	return out
}
