package postgres

import (
	"context"
	"fmt"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	// All statements run in one implicit transaction; IF NOT EXISTS keeps
	// repeated runs idempotent.
	ddl := `
CREATE TABLE IF NOT EXISTS worksheets (
    id         TEXT PRIMARY KEY,
    world_id   TEXT NOT NULL,
    tool_type  TEXT NOT NULL,
    title      TEXT NOT NULL DEFAULT '',
    data       JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_worksheets_world ON worksheets (world_id);
CREATE INDEX IF NOT EXISTS idx_worksheets_world_tool ON worksheets (world_id, tool_type);
`
	_, err := c.pool.Exec(ctx, ddl)
	if err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}
