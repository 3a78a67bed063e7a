package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL flavour behind a *sql.DB.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// DialectFor picks postgres for postgres:// URIs and sqlite for anything else.
func DialectFor(location string) Dialect {
	l := strings.ToLower(strings.TrimSpace(location))
	if strings.HasPrefix(l, "postgres://") || strings.HasPrefix(l, "postgresql://") {
		return Postgres
	}
	return SQLite
}

// Open connects to the store at location and verifies the connection.
func Open(location string) (*sql.DB, Dialect, error) {
	dialect := DialectFor(location)

	switch dialect {
	case Postgres:
		db, err := sql.Open("pgx", location)
		if err != nil {
			return nil, "", fmt.Errorf("openDB: open postgres database: %w", err)
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, "", fmt.Errorf("openDB: verify postgres connection: %w", err)
		}
		return db, Postgres, nil

	default:
		if dir := filepath.Dir(location); dir != "." && !strings.HasPrefix(location, "file:") && location != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, "", fmt.Errorf("openDB: create directory %q: %w", dir, err)
			}
		}

		db, err := sql.Open("sqlite", location)
		if err != nil {
			return nil, "", fmt.Errorf("openDB: open sqlite database %q: %w", location, err)
		}

		// A single connection serialises writers; sqlite allows only one at a time.
		db.SetMaxOpenConns(1)

		if err := db.Ping(); err != nil {
			db.Close()
			return nil, "", fmt.Errorf("openDB: verify sqlite connection to %q: %w", location, err)
		}
		return db, SQLite, nil
	}
}

// Rebind rewrites '?' placeholders to the dialect's positional form.
func Rebind(d Dialect, query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
