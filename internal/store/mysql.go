package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"video-relay-go/internal/config"
)

var (
	mysqlOnce sync.Once
	mysqlInst *sql.DB
	mysqlErr  error
)

func mysqlDB() (*sql.DB, error) {
	if backendKind() != backendMySQL {
		return nil, errors.New("mysql backend disabled")
	}
	mysqlOnce.Do(func() {
		dsn := strings.TrimSpace(config.AppConfig.MySQLDSN)
		if dsn == "" {
			mysqlErr = errors.New("MYSQL_DSN is empty")
			return
		}
		db, err := sql.Open("mysql", dsn)
		if err != nil {
			mysqlErr = err
			return
		}
		setDBPoolDefaults(db, 8)
		db.SetConnMaxIdleTime(2 * time.Minute)

		if err := initMySQLSchema(db); err != nil {
			_ = db.Close()
			mysqlErr = err
			return
		}
		mysqlInst = db
	})
	return mysqlInst, mysqlErr
}

func initMySQLSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS resolutions (
			id BIGINT NOT NULL AUTO_INCREMENT,
			platform VARCHAR(32) NOT NULL,
			content_id VARCHAR(191) NOT NULL,
			source_url VARCHAR(1024) NOT NULL,
			type VARCHAR(16) NOT NULL,
			caption TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			PRIMARY KEY (id),
			KEY idx_resolutions_content (platform, content_id),
			KEY idx_resolutions_created (created_at)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func mysqlSaveResolution(ctx context.Context, row ResolutionRow) error {
	db, err := mysqlDB()
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

func mysqlListResolutions(ctx context.Context, limit int) ([]ResolutionRow, error) {
	db, err := mysqlDB()
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
