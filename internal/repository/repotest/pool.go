// Package repotest provides in-memory implementations of the repository
// interfaces for unit tests above the storage layer.
package repotest

import (
	"context"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var errNoSQL = errors.New("repotest: raw SQL is not supported")

// Pool stands in for *pgxpool.Pool. Begin hands out Tx values that only
// track commit and rollback; the in-memory repositories ignore the handle.
type Pool struct {
	mu        sync.Mutex
	BeginErr  error
	CommitErr error
	commits   int
	rollbacks int
}

func (p *Pool) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errNoSQL
}

func (p *Pool) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errNoSQL
}

func (p *Pool) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return errRow{}
}

func (p *Pool) Begin(context.Context) (pgx.Tx, error) {
	if p.BeginErr != nil {
		return nil, p.BeginErr
	}
	return &Tx{pool: p}, nil
}

// Commits returns the number of committed transactions.
func (p *Pool) Commits() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.commits
}

// Rollbacks returns the number of transactions rolled back before commit.
func (p *Pool) Rollbacks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rollbacks
}

// Tx is a pgx.Tx whose only working methods are Commit and Rollback.
// Calling anything else panics on the nil embedded interface.
type Tx struct {
	pgx.Tx
	pool *Pool
	done bool
}

func (t *Tx) Commit(context.Context) error {
	t.pool.mu.Lock()
	defer t.pool.mu.Unlock()
	if t.pool.CommitErr != nil {
		return t.pool.CommitErr
	}
	t.done = true
	t.pool.commits++
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	t.pool.mu.Lock()
	defer t.pool.mu.Unlock()
	if t.done {
		return pgx.ErrTxClosed
	}
	t.done = true
	t.pool.rollbacks++
	return nil
}

func (t *Tx) Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, errNoSQL
}

func (t *Tx) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errNoSQL
}

func (t *Tx) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return errRow{}
}

type errRow struct{}

func (errRow) Scan(...interface{}) error { return errNoSQL }
