package classservice

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/go_classes_backend/internal/adapter/storage"
	classstorage "github.com/burenotti/go_classes_backend/internal/adapter/storage/classes"
	"github.com/burenotti/go_classes_backend/internal/adapter/storage/memory"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	"log/slog"
)

type ClassStorage interface {
	Add(ctx context.Context, c *class.Class) error
	Exists(ctx context.Context, classID class.ClassID) (bool, error)
	GetByID(ctx context.Context, classID class.ClassID) (*class.Class, error)
	GetForUpdate(ctx context.Context, classID class.ClassID) (*class.Class, error)
	List(ctx context.Context) ([]*class.Class, error)
	Persist(ctx context.Context, c *class.Class) error
	Delete(ctx context.Context, c *class.Class) error

	Close() error
	CollectEvents() []domain.Event
}

type AtomicContext struct {
	ctx          context.Context
	tx           storage.Tx
	ClassStorage ClassStorage
}

func (a *AtomicContext) Context() context.Context {
	return a.ctx
}

func (a *AtomicContext) Commit() error {
	return a.tx.Commit()
}

func (a *AtomicContext) Close() (err error) {
	if closeErr := a.ClassStorage.Close(); closeErr != nil {
		err = errors.Join(fmt.Errorf("failed to close storage"), closeErr)
	}
	return err
}

func (a *AtomicContext) CollectEvents() []domain.Event {
	return a.ClassStorage.CollectEvents()
}

// UnitOfWork runs fn in one transaction over the class store.
type UnitOfWork interface {
	Atomic(ctx context.Context, fn func(*AtomicContext) error) error
}

func NewPostgresAtomicContext(logger *slog.Logger) func(context.Context, storage.DBContext) (*AtomicContext, error) {
	return func(ctx context.Context, dbContext storage.DBContext) (*AtomicContext, error) {
		return &AtomicContext{
			ctx:          ctx,
			tx:           dbContext,
			ClassStorage: classstorage.NewPostgresStorage(dbContext, logger),
		}, nil
	}
}

func NewMemoryAtomicContext(ctx context.Context, tx *memory.Tx) (*AtomicContext, error) {
	return &AtomicContext{
		ctx:          ctx,
		tx:           tx,
		ClassStorage: memory.NewClassStorage(tx),
	}, nil
}
