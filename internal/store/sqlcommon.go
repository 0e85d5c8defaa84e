package store

import (
	"database/sql"
	"strings"
	"time"

	"video-relay-go/internal/config"
)

type sqlBackendKind string

const (
	backendFile     sqlBackendKind = "file"
	backendSQLite   sqlBackendKind = "sqlite"
	backendMySQL    sqlBackendKind = "mysql"
	backendPostgres sqlBackendKind = "postgres"
	backendMongoDB  sqlBackendKind = "mongodb"
)

func backendKind() sqlBackendKind {
	v := strings.ToLower(strings.TrimSpace(config.AppConfig.StoreBackend))
	switch v {
	case "sqlite":
		return backendSQLite
	case "mysql":
		return backendMySQL
	case "postgres", "postgresql":
		return backendPostgres
	case "mongodb", "mongo":
		return backendMongoDB
	default:
		return backendFile
	}
}

func timeFromUnix(ts int64) time.Time {
	return time.Unix(ts, 0).UTC()
}

func setDBPoolDefaults(db *sql.DB, maxOpen int) {
	if db == nil {
		return
	}
	if maxOpen <= 0 {
		maxOpen = 4
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(0)
}
