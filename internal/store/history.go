// Package store persists the resolution history across the same
// backend matrix the rest of the configuration exposes: a JSONL file
// by default, or sqlite, mysql, postgres, mongodb.
package store

import (
	"context"
	"time"
)

// ResolutionRow is one history entry: a delivered resolution and the
// caption it shipped with.
type ResolutionRow struct {
	Platform  string    `json:"platform"`
	ContentID string    `json:"content_id"`
	SourceURL string    `json:"source_url"`
	Type      string    `json:"type"`
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveResolution appends a history row to the configured backend.
func SaveResolution(ctx context.Context, row ResolutionRow) error {
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	switch backendKind() {
	case backendSQLite:
		return sqliteSaveResolution(ctx, row)
	case backendMySQL:
		return mysqlSaveResolution(ctx, row)
	case backendPostgres:
		return postgresSaveResolution(ctx, row)
	case backendMongoDB:
		return mongoSaveResolution(ctx, row)
	default:
		return fileSaveResolution(row)
	}
}

// ListResolutions returns the most recent rows, newest first.
func ListResolutions(ctx context.Context, limit int) ([]ResolutionRow, error) {
	if limit <= 0 {
		limit = 100
	}
	switch backendKind() {
	case backendSQLite:
		return sqliteListResolutions(ctx, limit)
	case backendMySQL:
		return mysqlListResolutions(ctx, limit)
	case backendPostgres:
		return postgresListResolutions(ctx, limit)
	case backendMongoDB:
		return mongoListResolutions(ctx, limit)
	default:
		return fileListResolutions(limit)
	}
}
