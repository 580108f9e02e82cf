package validate

import (
	"context"

	"worldsheet/internal/store"
)

type WorksheetReader interface {
	ListWorksheets(ctx context.Context, worldID, toolType string) ([]store.Worksheet, error)
	GetWorksheet(ctx context.Context, id string) (*store.Worksheet, error)
}
