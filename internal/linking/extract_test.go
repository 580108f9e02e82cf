package linking

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtract(t *testing.T) {
	data := map[string]any{
		"stellarEnvironment": map[string]any{"starType": "K-type", "name": "Tau"},
		"moons":              map[string]any{"name": "Selene"},
		"planetaryConditions": map[string]any{
			"dayNightCycle": "regular",
		},
		"tags":    []any{"ocean"},
		"pending": nil,
	}

	tests := []struct {
		name   string
		fields []string
		want   map[string]any
	}{
		{
			name:   "keys are full paths",
			fields: []string{"stellarEnvironment.name", "moons.name"},
			want:   map[string]any{"stellarEnvironment.name": "Tau", "moons.name": "Selene"},
		},
		{
			name:   "missing fields omitted",
			fields: []string{"planetaryConditions.dayNightCycle", "planetaryConditions.axialTilt", "hydrosphere.waterCoverage"},
			want:   map[string]any{"planetaryConditions.dayNightCycle": "regular"},
		},
		{
			name:   "lists copied whole",
			fields: []string{"tags", "tags.0"},
			want:   map[string]any{"tags": []any{"ocean"}},
		},
		{
			name:   "stored null is a value",
			fields: []string{"pending"},
			want:   map[string]any{"pending": nil},
		},
		{
			name:   "no fields",
			fields: nil,
			want:   map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(data, tt.fields)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Extract mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractKeysAreDrawnFromFields(t *testing.T) {
	records := []map[string]any{
		nil,
		{},
		{"a": 1},
		{"a": map[string]any{"b": map[string]any{"c": "deep"}}, "x": []any{1, 2}},
		{"a": "scalar", "b": map[string]any{}},
	}
	fieldSets := [][]string{
		{"a"},
		{"a.b", "a.b.c", "x", "x.0"},
		{"", ".", "a..b", "b.c"},
	}

	for _, record := range records {
		for _, fields := range fieldSets {
			allowed := make(map[string]struct{}, len(fields))
			for _, field := range fields {
				allowed[field] = struct{}{}
			}
			for key := range Extract(record, fields) {
				if _, ok := allowed[key]; !ok {
					t.Fatalf("Extract(%v, %v) produced key %q outside fields", record, fields, key)
				}
			}
		}
	}
}

func TestExtractCopiesValues(t *testing.T) {
	data := map[string]any{"atmosphere": map[string]any{"composition": []any{"nitrogen"}}}

	got := Extract(data, []string{"atmosphere.composition"})
	data["atmosphere"].(map[string]any)["composition"].([]any)[0] = "methane"

	if got["atmosphere.composition"].([]any)[0] != "nitrogen" {
		t.Fatalf("snapshot aliases the source payload")
	}
}
