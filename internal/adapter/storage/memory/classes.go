package memory

import (
	"context"
	"fmt"
	"github.com/burenotti/go_classes_backend/internal/adapter/storage"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	"github.com/samber/lo"
)

// ClassStorage works on top of a single memory transaction. It hands out
// copies, so callers never share state with the committed snapshot.
type ClassStorage struct {
	tx      *Tx
	tracker storage.Tracker
}

func NewClassStorage(tx *Tx) *ClassStorage {
	return &ClassStorage{tx: tx}
}

func (s *ClassStorage) Add(ctx context.Context, c *class.Class) error {
	s.tx.mu.Lock()
	defer s.tx.mu.Unlock()

	if s.tx.done {
		return ErrTxDone
	}
	if _, ok := s.tx.lookup(c.ClassID); ok {
		return fmt.Errorf("%w: %s", class.ErrClassExists, c.ClassID)
	}

	s.tx.writes[c.ClassID] = c.Clone()
	if !lo.Contains(s.tx.added, c.ClassID) {
		s.tx.added = append(s.tx.added, c.ClassID)
	}

	s.tracker.MarkSeen(c)
	return nil
}

func (s *ClassStorage) Exists(ctx context.Context, classID class.ClassID) (bool, error) {
	s.tx.mu.Lock()
	defer s.tx.mu.Unlock()

	if s.tx.done {
		return false, ErrTxDone
	}
	_, ok := s.tx.lookup(classID)
	return ok, nil
}

func (s *ClassStorage) GetByID(ctx context.Context, classID class.ClassID) (*class.Class, error) {
	s.tx.mu.Lock()
	defer s.tx.mu.Unlock()

	if s.tx.done {
		return nil, ErrTxDone
	}
	c, ok := s.tx.lookup(classID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", class.ErrClassNotFound, classID)
	}

	cp := c.Clone()
	s.tracker.MarkSeen(cp)
	return cp, nil
}

// GetForUpdate is GetByID: the transaction already holds the store exclusively.
func (s *ClassStorage) GetForUpdate(ctx context.Context, classID class.ClassID) (*class.Class, error) {
	return s.GetByID(ctx, classID)
}

func (s *ClassStorage) List(ctx context.Context) ([]*class.Class, error) {
	s.tx.mu.Lock()
	defer s.tx.mu.Unlock()

	if s.tx.done {
		return nil, ErrTxDone
	}

	ids := s.tx.ids()
	classes := make([]*class.Class, 0, len(ids))
	for _, id := range ids {
		if c, ok := s.tx.lookup(id); ok {
			classes = append(classes, c.Clone())
		}
	}
	return classes, nil
}

func (s *ClassStorage) Persist(ctx context.Context, c *class.Class) error {
	s.tx.mu.Lock()
	defer s.tx.mu.Unlock()

	if s.tx.done {
		return ErrTxDone
	}
	if _, ok := s.tx.lookup(c.ClassID); !ok {
		return fmt.Errorf("%w: %s", class.ErrClassNotFound, c.ClassID)
	}
	s.tx.writes[c.ClassID] = c.Clone()

	s.tracker.MarkSeen(c)
	return nil
}

func (s *ClassStorage) Delete(ctx context.Context, c *class.Class) error {
	s.tx.mu.Lock()
	defer s.tx.mu.Unlock()

	if s.tx.done {
		return ErrTxDone
	}
	if _, ok := s.tx.lookup(c.ClassID); !ok {
		return fmt.Errorf("%w: %s", class.ErrClassNotFound, c.ClassID)
	}
	delete(s.tx.writes, c.ClassID)
	s.tx.deletes[c.ClassID] = struct{}{}

	s.tracker.MarkSeen(c)
	return nil
}

func (s *ClassStorage) CollectEvents() []domain.Event {
	return s.tracker.CollectEvents()
}

func (s *ClassStorage) Close() error {
	s.tracker.Reset()
	return nil
}
