// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/quickly-grade/db"
)

// dialect hides the differences between PostgreSQL and SQLite.
// Queries are written with $n placeholders.
type dialect interface {
	rebind(query string) string
	// array wraps a []string or []int64 for use as a query argument
	array(v any) driver.Valuer
	// scanArray wraps a *[]string or *[]int64 as a scan destination
	scanArray(dst any) sql.Scanner
	forUpdate() string
	isUniqueViolation(err error) bool
	isForeignKeyViolation(err error) bool
}

func dialectFor(dbType string) (dialect, error) {
	switch dbType {
	case db.TypePostgres:
		return postgres{}, nil
	case db.TypeSQLite:
		return sqliteDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported database type %q", dbType)
}

type postgres struct{}

func (postgres) rebind(query string) string { return query }

func (postgres) array(v any) driver.Valuer {
	return pq.Array(v)
}

func (postgres) scanArray(dst any) sql.Scanner {
	return pq.Array(dst)
}

func (postgres) forUpdate() string { return " FOR UPDATE" }

func (postgres) isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func (postgres) isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

type sqliteDialect struct{}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// SQLite reads ?NNN as the NNN-th argument.
func (sqliteDialect) rebind(query string) string {
	return placeholder.ReplaceAllString(query, "?$1")
}

func (sqliteDialect) array(v any) driver.Valuer {
	return jsonArray{v: v}
}

func (sqliteDialect) scanArray(dst any) sql.Scanner {
	return jsonArray{v: dst}
}

// Writers are serialized by SQLite itself.
func (sqliteDialect) forUpdate() string { return "" }

func (sqliteDialect) isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		// extended result codes off
		return strings.Contains(sqliteErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

func (sqliteDialect) isForeignKeyViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(sqliteErr.Error(), "FOREIGN KEY constraint failed")
	}
	return false
}

// jsonArray stores a slice as a JSON array in a TEXT column.
type jsonArray struct {
	v any
}

func (a jsonArray) Value() (driver.Value, error) {
	b, err := json.Marshal(a.v)
	if err != nil {
		return nil, fmt.Errorf("encode array: %w", err)
	}
	return string(b), nil
}

func (a jsonArray) Scan(src any) error {
	var b []byte
	switch s := src.(type) {
	case string:
		b = []byte(s)
	case []byte:
		b = s
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into array", src)
	}
	if err := json.Unmarshal(b, a.v); err != nil {
		return fmt.Errorf("decode array: %w", err)
	}
	return nil
}
