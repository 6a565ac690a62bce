package engine

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Engine is the embedded in-process SQL engine. Every connection it opens
// is backed by a private in-memory database, so datasets materialized on
// one connection are invisible to every other connection.
type Engine struct{}

// New creates an Engine
func New() *Engine {
	return &Engine{}
}

// Connection is one exclusive handle onto a private in-memory database.
// It is pinned to a single underlying connection; closing it destroys the
// database and everything in it.
type Connection struct {
	db   *sql.DB
	name string
}

// ExecError reports that a statement or query failed to execute. A failed
// learner query is an expected outcome, so callers inspect for ExecError
// rather than treating it as a system fault.
type ExecError struct {
	Query string
	Err   error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("execute %q: %v", e.Query, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// OpenConnection opens a fresh, empty in-memory database and returns its
// exclusive connection.
func (e *Engine) OpenConnection() (*Connection, error) {
	name := uuid.New().String()
	dsn := "file:" + name + "?mode=memory&cache=shared"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open engine connection: %w", err)
	}

	// Pin a single connection so the in-memory database survives between
	// calls. A second pooled connection would see a different database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to establish engine connection: %w", err)
	}

	return &Connection{db: db, name: name}, nil
}

// Execute runs a single statement that returns no rows
func (c *Connection) Execute(ctx context.Context, stmt string) error {
	if _, err := c.db.ExecContext(ctx, stmt); err != nil {
		return &ExecError{Query: stmt, Err: err}
	}
	return nil
}

// Query runs sqlText and decodes the full result into a RowSet
func (c *Connection) Query(ctx context.Context, sqlText string) (*RowSet, error) {
	rows, err := c.db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, &ExecError{Query: sqlText, Err: err}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &ExecError{Query: sqlText, Err: err}
	}

	rs := &RowSet{Columns: cols}
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &ExecError{Query: sqlText, Err: err}
		}

		row := make([]Value, len(cols))
		for i, v := range raw {
			row[i] = decodeValue(v)
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExecError{Query: sqlText, Err: err}
	}

	return rs, nil
}

// Close destroys the connection's in-memory database
func (c *Connection) Close() error {
	return c.db.Close()
}
