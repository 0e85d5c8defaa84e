package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"video-relay-go/internal/config"
)

var (
	pgOnce sync.Once
	pgInst *sql.DB
	pgErr  error
)

func postgresDB() (*sql.DB, error) {
	if backendKind() != backendPostgres {
		return nil, errors.New("postgres backend disabled")
	}
	pgOnce.Do(func() {
		dsn := strings.TrimSpace(config.AppConfig.PostgresDSN)
		if dsn == "" {
			pgErr = errors.New("POSTGRES_DSN is empty")
			return
		}
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			pgErr = err
			return
		}
		setDBPoolDefaults(db, 8)
		db.SetConnMaxIdleTime(2 * time.Minute)

		if err := initPostgresSchema(db); err != nil {
			_ = db.Close()
			pgErr = err
			return
		}
		pgInst = db
	})
	return pgInst, pgErr
}

func initPostgresSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS resolutions (
			id BIGSERIAL PRIMARY KEY,
			platform TEXT NOT NULL,
			content_id TEXT NOT NULL,
			source_url TEXT NOT NULL,
			type TEXT NOT NULL,
			caption TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_resolutions_content ON resolutions(platform, content_id);`,
		`CREATE INDEX IF NOT EXISTS idx_resolutions_created ON resolutions(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func postgresSaveResolution(ctx context.Context, row ResolutionRow) error {
	db, err := postgresDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO resolutions(platform, content_id, source_url, type, caption, created_at)
		 VALUES($1, $2, $3, $4, $5, $6);`,
		row.Platform, row.ContentID, row.SourceURL, row.Type, row.Caption, row.CreatedAt.Unix(),
	)
	return err
}

func postgresListResolutions(ctx context.Context, limit int) ([]ResolutionRow, error) {
	db, err := postgresDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT platform, content_id, source_url, type, caption, created_at
		 FROM resolutions ORDER BY id DESC LIMIT $1;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResolutions(rows)
}
