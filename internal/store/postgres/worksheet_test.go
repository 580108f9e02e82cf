package postgres

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeData(t *testing.T) {
	t.Run("nil data encodes as empty object", func(t *testing.T) {
		payload, err := encodeData(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(payload) != "{}" {
			t.Fatalf("expected {}, got %s", payload)
		}
	})

	t.Run("unencodable value", func(t *testing.T) {
		if _, err := encodeData(map[string]any{"bad": make(chan int)}); err == nil {
			t.Fatalf("expected error")
		}
	})
}

func TestDecodeData(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    map[string]any
		wantErr bool
	}{
		{name: "empty", payload: "", want: map[string]any{}},
		{name: "json null", payload: "null", want: map[string]any{}},
		{name: "nested", payload: `{"a":{"b":["x"]}}`, want: map[string]any{"a": map[string]any{"b": []any{"x"}}}},
		{name: "not an object", payload: `[1]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeData([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("decodeData mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
