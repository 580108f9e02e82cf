package linking

import (
	"encoding/json"
	"fmt"
	"time"

	"worldsheet/internal/fieldpath"
	"worldsheet/internal/schemas"
)

// Ref is the point-in-time snapshot a source worksheet stores for one slot,
// persisted in its payload under the slot key.
type Ref struct {
	WorksheetID string         `json:"worksheetId"`
	SyncedAt    time.Time      `json:"syncedAt"`
	SyncedData  map[string]any `json:"syncedData"`
}

func (r *Ref) clone() *Ref {
	if r == nil {
		return nil
	}
	data, _ := fieldpath.Clone(r.SyncedData).(map[string]any)
	return &Ref{WorksheetID: r.WorksheetID, SyncedAt: r.SyncedAt, SyncedData: data}
}

// LoadRef reads the ref stored under key. An absent or null entry is the
// Unlinked state and yields (nil, nil).
func LoadRef(data map[string]any, key string) (*Ref, error) {
	raw, ok := data[key]
	if !ok || raw == nil {
		return nil, nil
	}
	if err := schemas.Validate(schemas.LinkRef, raw); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMalformedRef, key, err)
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMalformedRef, key, err)
	}
	var ref Ref
	if err := json.Unmarshal(encoded, &ref); err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrMalformedRef, key, err)
	}
	if ref.SyncedData == nil {
		ref.SyncedData = map[string]any{}
	}
	return &ref, nil
}

// PutRef stores ref under key in its JSON shape, or removes the entry when
// ref is nil.
func PutRef(data map[string]any, key string, ref *Ref) error {
	if ref == nil {
		delete(data, key)
		return nil
	}

	encoded, err := json.Marshal(ref)
	if err != nil {
		return fmt.Errorf("encoding link %q: %w", key, err)
	}
	var payload map[string]any
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return fmt.Errorf("encoding link %q: %w", key, err)
	}
	data[key] = payload
	return nil
}
