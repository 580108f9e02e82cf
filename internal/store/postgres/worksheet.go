package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"worldsheet/internal/store"
)

func (c *Client) CreateWorksheet(ctx context.Context, in store.WorksheetInput) (*store.Worksheet, error) {
	payload, err := encodeData(in.Data)
	if err != nil {
		return nil, err
	}

	query := `
INSERT INTO worksheets (id, world_id, tool_type, title, data)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, world_id, tool_type, title, data, updated_at
`

	row := c.pool.QueryRow(ctx, query, in.NewID(), in.WorldID, in.ToolType, in.Title, payload)
	ws, err := scanWorksheet(row)
	if err != nil {
		return nil, fmt.Errorf("creating worksheet: %w", err)
	}
	return ws, nil
}

func (c *Client) GetWorksheet(ctx context.Context, id string) (*store.Worksheet, error) {
	query := `
SELECT id, world_id, tool_type, title, data, updated_at
FROM worksheets
WHERE id = $1
`

	ws, err := scanWorksheet(c.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting worksheet: %w", err)
	}
	return ws, nil
}

func (c *Client) ListWorksheets(ctx context.Context, worldID, toolType string) ([]store.Worksheet, error) {
	query := `
SELECT id, world_id, tool_type, title, data, updated_at
FROM worksheets
WHERE ($1 = '' OR world_id = $1)
  AND ($2 = '' OR tool_type = $2)
ORDER BY title, id
`

	rows, err := c.pool.Query(ctx, query, worldID, toolType)
	if err != nil {
		return nil, fmt.Errorf("listing worksheets: %w", err)
	}
	defer rows.Close()

	worksheets := []store.Worksheet{}
	for rows.Next() {
		ws, err := scanWorksheet(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning worksheet: %w", err)
		}
		worksheets = append(worksheets, *ws)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating worksheets: %w", err)
	}

	return worksheets, nil
}

func (c *Client) UpdateWorksheetData(ctx context.Context, id string, data map[string]any) error {
	payload, err := encodeData(data)
	if err != nil {
		return err
	}

	tag, err := c.pool.Exec(ctx, `UPDATE worksheets SET data = $2, updated_at = now() WHERE id = $1`, id, payload)
	if err != nil {
		return fmt.Errorf("updating worksheet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *Client) UpdateWorksheetTitle(ctx context.Context, id, title string) error {
	tag, err := c.pool.Exec(ctx, `UPDATE worksheets SET title = $2, updated_at = now() WHERE id = $1`, id, title)
	if err != nil {
		return fmt.Errorf("renaming worksheet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (c *Client) DeleteWorksheet(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM worksheets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting worksheet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanWorksheet(row pgx.Row) (*store.Worksheet, error) {
	var ws store.Worksheet
	var dataBytes []byte
	if err := row.Scan(&ws.ID, &ws.WorldID, &ws.ToolType, &ws.Title, &dataBytes, &ws.UpdatedAt); err != nil {
		return nil, err
	}
	data, err := decodeData(dataBytes)
	if err != nil {
		return nil, err
	}
	ws.Data = data
	return &ws, nil
}

func encodeData(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshaling worksheet data: %w", err)
	}
	return payload, nil
}

func decodeData(payload []byte) (map[string]any, error) {
	data := map[string]any{}
	if len(payload) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("unmarshaling worksheet data: %w", err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
