package schemas

import "testing"

func TestValidateLinkRef(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{
			name: "well formed",
			value: map[string]any{
				"worksheetId": "8d7c",
				"syncedAt":    "2026-03-01T12:00:00Z",
				"syncedData":  map[string]any{"title": "Thessaly", "surface.gravity": 0.9},
			},
		},
		{
			name: "empty snapshot",
			value: map[string]any{
				"worksheetId": "8d7c",
				"syncedAt":    "2026-03-01T12:00:00Z",
				"syncedData":  map[string]any{},
			},
		},
		{
			name:    "missing worksheet id",
			value:   map[string]any{"syncedAt": "2026-03-01T12:00:00Z", "syncedData": map[string]any{}},
			wantErr: true,
		},
		{
			name:    "empty worksheet id",
			value:   map[string]any{"worksheetId": "", "syncedAt": "x", "syncedData": map[string]any{}},
			wantErr: true,
		},
		{
			name:    "snapshot is a list",
			value:   map[string]any{"worksheetId": "a", "syncedAt": "x", "syncedData": []any{}},
			wantErr: true,
		},
		{
			name:    "not an object",
			value:   "8d7c",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(LinkRef, tt.value)
			if tt.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateUnknownSchema(t *testing.T) {
	if err := Validate("nope", map[string]any{}); err == nil {
		t.Fatalf("expected error")
	}
}
