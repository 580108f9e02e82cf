package ingest

import (
	"context"

	"worldsheet/internal/store"
)

type Store interface {
	EnsureSchema(ctx context.Context) error
	CreateWorksheet(ctx context.Context, in store.WorksheetInput) (*store.Worksheet, error)
	GetWorksheet(ctx context.Context, id string) (*store.Worksheet, error)
	ListWorksheets(ctx context.Context, worldID, toolType string) ([]store.Worksheet, error)
	UpdateWorksheetData(ctx context.Context, id string, data map[string]any) error
	UpdateWorksheetTitle(ctx context.Context, id, title string) error
}
