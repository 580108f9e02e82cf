package linking

import "worldsheet/internal/fieldpath"

// Overlay returns a copy of data with the synced fields of every linked
// slot in configs filled in at their field paths. Values the worksheet sets
// itself win over synced ones; malformed or unlinked slots contribute
// nothing.
func Overlay(data map[string]any, configs []LinkConfig) map[string]any {
	out, _ := fieldpath.Clone(data).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}

	for _, cfg := range configs {
		ref, err := LoadRef(data, cfg.Key)
		if err != nil || ref == nil {
			continue
		}
		for _, field := range cfg.SyncFields {
			value, ok := ref.SyncedData[field]
			if !ok {
				continue
			}
			if _, present := fieldpath.Get(out, field); present {
				continue
			}
			fieldpath.Set(out, field, fieldpath.Clone(value))
		}
	}
	return out
}
