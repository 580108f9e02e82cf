package store

import (
	"time"

	"github.com/google/uuid"
)

// Worksheet is one saved instance of a tool's form, scoped to a world.
type Worksheet struct {
	ID        string
	WorldID   string
	ToolType  string
	Title     string
	Data      map[string]any
	UpdatedAt time.Time
}

type WorksheetInput struct {
	ID       string
	WorldID  string
	ToolType string
	Title    string
	Data     map[string]any
}

// NewID returns the id a store assigns when the input carries none.
func (in WorksheetInput) NewID() string {
	if in.ID != "" {
		return in.ID
	}
	return uuid.NewString()
}
