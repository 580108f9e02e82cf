package store

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("worksheet not found")

type Store interface {
	Close(ctx context.Context) error
	EnsureSchema(ctx context.Context) error

	CreateWorksheet(ctx context.Context, in WorksheetInput) (*Worksheet, error)
	GetWorksheet(ctx context.Context, id string) (*Worksheet, error)
	ListWorksheets(ctx context.Context, worldID, toolType string) ([]Worksheet, error)
	UpdateWorksheetData(ctx context.Context, id string, data map[string]any) error
	UpdateWorksheetTitle(ctx context.Context, id, title string) error
	DeleteWorksheet(ctx context.Context, id string) error
}
