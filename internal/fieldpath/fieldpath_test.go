package fieldpath

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestGet(t *testing.T) {
	record := map[string]any{
		"name": "Kepler-442b",
		"stellarEnvironment": map[string]any{
			"starType": "K-type",
			"companions": []any{
				map[string]any{"name": "inner"},
			},
		},
		"tags":    []any{"rocky", "temperate"},
		"nothing": nil,
		"depth":   3.5,
	}

	tests := []struct {
		name   string
		record map[string]any
		path   string
		want   any
		wantOK bool
	}{
		{name: "top level", record: record, path: "name", want: "Kepler-442b", wantOK: true},
		{name: "nested", record: record, path: "stellarEnvironment.starType", want: "K-type", wantOK: true},
		{name: "list leaf", record: record, path: "tags", want: []any{"rocky", "temperate"}, wantOK: true},
		{name: "explicit null", record: record, path: "nothing", want: nil, wantOK: true},
		{name: "missing segment", record: record, path: "stellarEnvironment.luminosity", wantOK: false},
		{name: "path into list", record: record, path: "tags.0", wantOK: false},
		{name: "path into list of records", record: record, path: "stellarEnvironment.companions.name", wantOK: false},
		{name: "path through scalar", record: record, path: "name.length", wantOK: false},
		{name: "path through null", record: record, path: "nothing.value", wantOK: false},
		{name: "path through number", record: record, path: "depth.unit", wantOK: false},
		{name: "longer than depth", record: record, path: "stellarEnvironment.starType.class.sub", wantOK: false},
		{name: "empty record", record: map[string]any{}, path: "a.b", wantOK: false},
		{name: "nil record", record: nil, path: "a", wantOK: false},
		{name: "empty path", record: record, path: "", wantOK: false},
		{name: "trailing dot", record: record, path: "stellarEnvironment.", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Get(tt.record, tt.path)
			if ok != tt.wantOK {
				t.Fatalf("Get(%q) ok = %v, want %v", tt.path, ok, tt.wantOK)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("Get(%q) mismatch (-want +got):\n%s", tt.path, diff)
			}
		})
	}
}

func TestLeaf(t *testing.T) {
	tests := map[string]string{
		"sensoryArchitecture.primaryModalities": "primaryModalities",
		"dayNightCycle":                         "dayNightCycle",
		"a.b.c":                                 "c",
		"":                                      "",
	}
	for path, want := range tests {
		if got := Leaf(path); got != want {
			t.Errorf("Leaf(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestClone(t *testing.T) {
	original := map[string]any{
		"list":   []any{"a", map[string]any{"b": 1}},
		"nested": map[string]any{"c": "d"},
		"names":  []string{"x"},
	}

	copied := Clone(original).(map[string]any)
	if diff := cmp.Diff(original, copied); diff != "" {
		t.Fatalf("clone differs (-want +got):\n%s", diff)
	}

	copied["list"].([]any)[1].(map[string]any)["b"] = 2
	copied["nested"].(map[string]any)["c"] = "changed"
	copied["names"].([]string)[0] = "y"

	if original["list"].([]any)[1].(map[string]any)["b"] != 1 {
		t.Fatalf("clone shares nested list record with original")
	}
	if original["nested"].(map[string]any)["c"] != "d" {
		t.Fatalf("clone shares nested record with original")
	}
	if original["names"].([]string)[0] != "x" {
		t.Fatalf("clone shares string slice with original")
	}
}

func TestSet(t *testing.T) {
	t.Run("creates intermediate records", func(t *testing.T) {
		record := map[string]any{"atmosphere": map[string]any{"pressure": 1.0}}
		if !Set(record, "atmosphere.composition", []any{"nitrogen"}) {
			t.Fatalf("expected set to succeed")
		}
		if !Set(record, "planetaryConditions.dayNightCycle", "regular") {
			t.Fatalf("expected set to succeed")
		}
		want := map[string]any{
			"atmosphere":          map[string]any{"pressure": 1.0, "composition": []any{"nitrogen"}},
			"planetaryConditions": map[string]any{"dayNightCycle": "regular"},
		}
		if diff := cmp.Diff(want, record); diff != "" {
			t.Fatalf("record mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("scalar in the way", func(t *testing.T) {
		record := map[string]any{"surface": "rocky"}
		if Set(record, "surface.gravity", 1.1) {
			t.Fatalf("expected set to fail")
		}
		if diff := cmp.Diff(map[string]any{"surface": "rocky"}, record); diff != "" {
			t.Fatalf("record must be untouched (-want +got):\n%s", diff)
		}
	})

	t.Run("nil record", func(t *testing.T) {
		if Set(nil, "a", 1) {
			t.Fatalf("expected set to fail")
		}
	})
}
