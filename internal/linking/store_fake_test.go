package linking

import (
	"context"
	"errors"
	"sync"
	"time"

	"worldsheet/internal/fieldpath"
	"worldsheet/internal/store"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	mu         sync.Mutex
	worksheets map[string]*store.Worksheet
	gates      map[string]chan struct{}
	failures   map[string]error
	started    chan string
	updates    int
}

func newFakeStore(items ...*store.Worksheet) *fakeStore {
	f := &fakeStore{
		worksheets: make(map[string]*store.Worksheet),
		gates:      make(map[string]chan struct{}),
		failures:   make(map[string]error),
		started:    make(chan string, 16),
	}
	for _, item := range items {
		f.put(item)
	}
	return f
}

func (f *fakeStore) put(ws *store.Worksheet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.worksheets[ws.ID] = copyWorksheet(ws)
}

func (f *fakeStore) remove(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.worksheets, id)
}

// gate makes the next fetches of id block until the returned channel closes.
func (f *fakeStore) gate(id string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[id] = ch
	return ch
}

func (f *fakeStore) fail(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[id] = err
}

func (f *fakeStore) GetWorksheet(ctx context.Context, id string) (*store.Worksheet, error) {
	f.mu.Lock()
	gate := f.gates[id]
	f.mu.Unlock()

	if gate != nil {
		f.started <- id
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[id]; err != nil {
		return nil, err
	}
	ws, ok := f.worksheets[id]
	if !ok {
		return nil, nil
	}
	return copyWorksheet(ws), nil
}

func (f *fakeStore) ListWorksheets(ctx context.Context, worldID, toolType string) ([]store.Worksheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []store.Worksheet{}
	for _, ws := range f.worksheets {
		if worldID != "" && ws.WorldID != worldID {
			continue
		}
		if toolType != "" && ws.ToolType != toolType {
			continue
		}
		out = append(out, *copyWorksheet(ws))
	}
	return out, nil
}

func (f *fakeStore) UpdateWorksheetData(ctx context.Context, id string, data map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.worksheets[id]
	if !ok {
		return store.ErrNotFound
	}
	ws.Data = fieldpath.Clone(data).(map[string]any)
	f.updates++
	return nil
}

func (f *fakeStore) data(id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	ws, ok := f.worksheets[id]
	if !ok {
		return nil
	}
	return fieldpath.Clone(ws.Data).(map[string]any)
}

func copyWorksheet(ws *store.Worksheet) *store.Worksheet {
	out := *ws
	if ws.Data != nil {
		out.Data = fieldpath.Clone(ws.Data).(map[string]any)
	}
	return &out
}

var errUnavailable = errors.New("store unavailable")

func homeworldConfig() LinkConfig {
	return LinkConfig{
		Key:        "homeworld",
		TargetTool: "planetary-profile",
		Label:      "Homeworld",
		SyncFields: []string{
			"planetaryConditions.dayNightCycle",
			"atmosphere.composition",
			"surface.gravity",
		},
	}
}

func planet(id, world, title string, cycle string) *store.Worksheet {
	return &store.Worksheet{
		ID:       id,
		WorldID:  world,
		ToolType: "planetary-profile",
		Title:    title,
		Data: map[string]any{
			"planetaryConditions": map[string]any{"dayNightCycle": cycle},
			"atmosphere":          map[string]any{"composition": []any{"nitrogen", "oxygen"}},
		},
	}
}
