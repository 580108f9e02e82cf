package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"worldsheet/internal/store"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func (c *Client) CreateWorksheet(ctx context.Context, in store.WorksheetInput) (*store.Worksheet, error) {
	payload, err := encodeData(in.Data)
	if err != nil {
		return nil, err
	}

	id := in.NewID()
	stamp := c.now().UTC().Format(time.RFC3339Nano)

	query := `
	INSERT INTO worksheets (id, world_id, tool_type, title, data, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := c.db.ExecContext(ctx, query, id, in.WorldID, in.ToolType, in.Title, payload, stamp, stamp); err != nil {
		return nil, fmt.Errorf("creating worksheet: %w", err)
	}

	ws, err := c.GetWorksheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, fmt.Errorf("creating worksheet: row %s not readable after insert", id)
	}
	return ws, nil
}

func (c *Client) GetWorksheet(ctx context.Context, id string) (*store.Worksheet, error) {
	query := `
	SELECT id, world_id, tool_type, title, data, updated_at
	FROM worksheets
	WHERE id = ?
	`

	ws, err := scanWorksheet(c.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
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
	WHERE (? = '' OR world_id = ?)
	  AND (? = '' OR tool_type = ?)
	ORDER BY title, id
	`

	rows, err := c.db.QueryContext(ctx, query, worldID, worldID, toolType, toolType)
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

	stamp := c.now().UTC().Format(time.RFC3339Nano)
	res, err := c.db.ExecContext(ctx, `UPDATE worksheets SET data = ?, updated_at = ? WHERE id = ?`, payload, stamp, id)
	if err != nil {
		return fmt.Errorf("updating worksheet: %w", err)
	}
	return requireAffected(res)
}

func (c *Client) UpdateWorksheetTitle(ctx context.Context, id, title string) error {
	stamp := c.now().UTC().Format(time.RFC3339Nano)
	res, err := c.db.ExecContext(ctx, `UPDATE worksheets SET title = ?, updated_at = ? WHERE id = ?`, title, stamp, id)
	if err != nil {
		return fmt.Errorf("renaming worksheet: %w", err)
	}
	return requireAffected(res)
}

func (c *Client) DeleteWorksheet(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx, `DELETE FROM worksheets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting worksheet: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanWorksheet(row rowScanner) (*store.Worksheet, error) {
	var ws store.Worksheet
	var payload string
	var updatedAt string
	if err := row.Scan(&ws.ID, &ws.WorldID, &ws.ToolType, &ws.Title, &payload, &updatedAt); err != nil {
		return nil, err
	}

	ws.Data = map[string]any{}
	if payload != "" {
		if err := json.Unmarshal([]byte(payload), &ws.Data); err != nil {
			return nil, fmt.Errorf("unmarshaling worksheet data: %w", err)
		}
		if ws.Data == nil {
			ws.Data = map[string]any{}
		}
	}

	stamp, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	ws.UpdatedAt = stamp
	return &ws, nil
}

func encodeData(data map[string]any) (string, error) {
	if data == nil {
		data = map[string]any{}
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshaling worksheet data: %w", err)
	}
	return string(payload), nil
}
