package graph

import (
	"context"
	"database/sql"
	"strings"
)

// DB exposes the internal *sql.DB for test helpers in graph_test.
// This file only compiles during `go test`.
func (s *Store) DB() *sql.DB {
	return s.db
}

// FailExec makes the nth exec (1-based) whose query contains substr return
// err instead of running.
func (s *Store) FailExec(substr string, nth int, err error) {
	seen := 0
	s.hooks.exec = func(ctx context.Context, db execer, query string, args ...any) (sql.Result, error) {
		if strings.Contains(query, substr) {
			seen++
			if seen == nth {
				return nil, err
			}
		}
		return db.ExecContext(ctx, query, args...)
	}
}

// FailCommit makes every commit return err after rolling back.
func (s *Store) FailCommit(err error) {
	s.hooks.commit = func(tx *sql.Tx) error {
		_ = tx.Rollback()
		return err
	}
}

// LikePattern exposes likePattern.
var LikePattern = likePattern

// FailBegin makes every BeginTx return err.
func (s *Store) FailBegin(err error) {
	s.hooks.beginTx = func(ctx context.Context, db *sql.DB) (*sql.Tx, error) {
		return nil, err
	}
}
