package engine

import (
	"context"
	"fmt"
	"sync"
)

// SetupError reports that an exercise's setup statement failed while
// materializing a scratch dataset. It is a content fault, never a learner
// fault; nothing is recorded against the learner when it occurs.
type SetupError struct {
	Statement string
	Err       error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("dataset setup failed on %q: %v", e.Statement, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// ScratchDataset is the isolated, disposable data materialized for one
// exercise. It owns its engine connection exclusively; it is never shared
// across exercises or with any other query surface.
type ScratchDataset struct {
	conn *Connection

	mu       sync.Mutex
	disposed bool
}

// Materialize opens a fresh connection and runs the exercise's setup
// statements against it in order. Any statement failure aborts the whole
// load: the connection is closed and no partial dataset is ever returned.
func Materialize(ctx context.Context, eng *Engine, statements []string) (*ScratchDataset, error) {
	conn, err := eng.OpenConnection()
	if err != nil {
		return nil, err
	}

	for _, stmt := range statements {
		if err := conn.Execute(ctx, stmt); err != nil {
			conn.Close()
			return nil, &SetupError{Statement: stmt, Err: err}
		}
	}

	return &ScratchDataset{conn: conn}, nil
}

// Query runs a query against the dataset
func (d *ScratchDataset) Query(ctx context.Context, sqlText string) (*RowSet, error) {
	return d.conn.Query(ctx, sqlText)
}

// Dispose destroys the dataset. Safe to call more than once.
func (d *ScratchDataset) Dispose() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.disposed {
		return nil
	}
	d.disposed = true
	return d.conn.Close()
}
