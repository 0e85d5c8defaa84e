package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"video-relay-go/internal/config"
)

var (
	sqliteOnce sync.Once
	sqliteInst *sql.DB
	sqliteErr  error
)

func sqlitePath() string {
	p := strings.TrimSpace(config.AppConfig.SQLitePath)
	if p == "" {
		p = "data/video_relay.db"
	}
	return p
}

func sqliteDB() (*sql.DB, error) {
	if backendKind() != backendSQLite {
		return nil, errors.New("sqlite backend disabled")
	}
	sqliteOnce.Do(func() {
		p := sqlitePath()
		if dir := filepath.Dir(p); dir != "" && dir != "." {
			_ = os.MkdirAll(dir, 0755)
		}
		db, err := sql.Open("sqlite", p)
		if err != nil {
			sqliteErr = err
			return
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)

		if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
			_ = db.Close()
			sqliteErr = err
			return
		}
		if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			sqliteErr = err
			return
		}

		stmts := []string{
			`CREATE TABLE IF NOT EXISTS resolutions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				platform TEXT NOT NULL,
				content_id TEXT NOT NULL,
				source_url TEXT NOT NULL,
				type TEXT NOT NULL,
				caption TEXT NOT NULL,
				created_at INTEGER NOT NULL
			);`,
			`CREATE INDEX IF NOT EXISTS idx_resolutions_content ON resolutions(platform, content_id);`,
			`CREATE INDEX IF NOT EXISTS idx_resolutions_created ON resolutions(created_at);`,
		}
		for _, stmt := range stmts {
			if _, err := db.Exec(stmt); err != nil {
				_ = db.Close()
				sqliteErr = err
				return
			}
		}
		sqliteInst = db
	})
	return sqliteInst, sqliteErr
}

func sqliteSaveResolution(ctx context.Context, row ResolutionRow) error {
	db, err := sqliteDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO resolutions(platform, content_id, source_url, type, caption, created_at)
		 VALUES(?, ?, ?, ?, ?, ?);`,
		row.Platform, row.ContentID, row.SourceURL, row.Type, row.Caption, row.CreatedAt.Unix(),
	)
	return err
}

func sqliteListResolutions(ctx context.Context, limit int) ([]ResolutionRow, error) {
	db, err := sqliteDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx,
		`SELECT platform, content_id, source_url, type, caption, created_at
		 FROM resolutions ORDER BY id DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResolutions(rows)
}

func scanResolutions(rows *sql.Rows) ([]ResolutionRow, error) {
	var out []ResolutionRow
	for rows.Next() {
		var r ResolutionRow
		var ts int64
		if err := rows.Scan(&r.Platform, &r.ContentID, &r.SourceURL, &r.Type, &r.Caption, &ts); err != nil {
			return nil, err
		}
		r.CreatedAt = timeFromUnix(ts)
		out = append(out, r)
	}
	return out, rows.Err()
}
