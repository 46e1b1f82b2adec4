package memory

import (
	"context"
	"database/sql"
	"fmt"
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	"sync"
)

// ErrTxDone matches sql.ErrTxDone, so callers treat both stores alike.
var ErrTxDone = fmt.Errorf("memory store: %w", sql.ErrTxDone)

// DB keeps classes in process memory. Only one transaction is open at a time,
// which gives the same per-class ordering a row lock gives in postgres.
type DB struct {
	sem     chan struct{}
	classes map[class.ClassID]*class.Class
	order   []class.ClassID
}

func New() *DB {
	return &DB{
		sem:     make(chan struct{}, 1),
		classes: make(map[class.ClassID]*class.Class),
	}
}

// Begin waits until no other transaction is open or ctx is done.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	select {
	case db.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Tx{
		db:      db,
		writes:  make(map[class.ClassID]*class.Class),
		deletes: make(map[class.ClassID]struct{}),
	}, nil
}

type Tx struct {
	mu      sync.Mutex
	db      *DB
	writes  map[class.ClassID]*class.Class
	added   []class.ClassID
	deletes map[class.ClassID]struct{}
	done    bool
}

func (tx *Tx) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.done {
		return ErrTxDone
	}

	for id := range tx.deletes {
		delete(tx.db.classes, id)
	}
	if len(tx.deletes) != 0 {
		kept := tx.db.order[:0]
		for _, id := range tx.db.order {
			if _, ok := tx.deletes[id]; !ok {
				kept = append(kept, id)
			}
		}
		tx.db.order = kept
	}

	for _, id := range tx.added {
		if _, ok := tx.writes[id]; ok {
			tx.db.order = append(tx.db.order, id)
		}
	}
	for id, c := range tx.writes {
		tx.db.classes[id] = c
	}

	tx.finish()
	return nil
}

func (tx *Tx) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.done {
		return ErrTxDone
	}
	tx.finish()
	return nil
}

func (tx *Tx) finish() {
	tx.done = true
	tx.writes = nil
	tx.deletes = nil
	tx.added = nil
	<-tx.db.sem
}

// lookup sees staged writes first, so a class deleted and created again in the
// same transaction is visible.
func (tx *Tx) lookup(id class.ClassID) (*class.Class, bool) {
	if c, ok := tx.writes[id]; ok {
		return c, true
	}
	if _, ok := tx.deletes[id]; ok {
		return nil, false
	}
	c, ok := tx.db.classes[id]
	return c, ok
}

func (tx *Tx) ids() []class.ClassID {
	ids := make([]class.ClassID, 0, len(tx.db.order)+len(tx.added))
	for _, id := range tx.db.order {
		if _, ok := tx.deletes[id]; !ok {
			ids = append(ids, id)
		}
	}
	for _, id := range tx.added {
		if _, ok := tx.writes[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids
}
