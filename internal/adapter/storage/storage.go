package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"sync"
)

var (
	ErrInternal = errors.New("internal storage error")
)

// Tx is the part of a transaction a unit of work needs to finish it.
type Tx interface {
	Commit() error
	Rollback() error
}

type DBContext interface {
	Tx
	Begin(ctx context.Context) (DBContext, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type DB struct {
	*sql.DB
}

func (D *DB) Commit() error {
	return nil
}

func (D *DB) Rollback() error {
	return nil
}

func (D *DB) Begin(ctx context.Context) (DBContext, error) {
	tx, err := D.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, InternalError(err)
	}
	return &SQLTx{tx}, nil
}

type SQLTx struct {
	*sql.Tx
}

func (t *SQLTx) Begin(ctx context.Context) (DBContext, error) {
	return t, nil
}

func InternalError(err error) error {
	return errors.Join(fmt.Errorf("internal storage error: %w", err), ErrInternal)
}

// IsTxDone reports whether err only says the transaction was already finished.
func IsTxDone(err error) bool {
	return errors.Is(err, sql.ErrTxDone)
}

// Tracker remembers aggregates loaded or written during a unit of work
// so their events can be published once it succeeds.
type Tracker struct {
	mu   sync.Mutex
	seen []domain.EventSource
}

func (t *Tracker) MarkSeen(src domain.EventSource) {
	t.mu.Lock()
	t.seen = append(t.seen, src)
	t.mu.Unlock()
}

func (t *Tracker) CollectEvents() []domain.Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	var events []domain.Event
	for _, src := range t.seen {
		events = append(events, src.PopEvents()...)
	}
	t.seen = nil
	return events
}

func (t *Tracker) Reset() {
	t.mu.Lock()
	t.seen = nil
	t.mu.Unlock()
}
