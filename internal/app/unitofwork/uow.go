package unitofwork

import (
	"context"
	"errors"
	"github.com/burenotti/go_classes_backend/internal/adapter/storage"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"log/slog"
)

var (
	ErrRollback = errors.New("rollback")
)

type AtomicContext interface {
	Context() context.Context
	Commit() error
	Close() error
	CollectEvents() []domain.Event
}

type MessageBus interface {
	PublishEvents(events ...domain.Event) error
}

// TxBeginner opens the transaction a unit of work runs in.
type TxBeginner[Tx storage.Tx] interface {
	Begin(ctx context.Context) (Tx, error)
}

type UnitOfWork[T AtomicContext, Tx storage.Tx] struct {
	db         TxBeginner[Tx]
	newContext func(context.Context, Tx) (T, error)
	msgBus     MessageBus
	logger     *slog.Logger
}

func New[T AtomicContext, Tx storage.Tx](
	db TxBeginner[Tx],
	newCtx func(context.Context, Tx) (T, error),
	msgBus MessageBus,
	logger *slog.Logger,
) *UnitOfWork[T, Tx] {
	return &UnitOfWork[T, Tx]{
		db:         db,
		newContext: newCtx,
		msgBus:     msgBus,
		logger:     logger,
	}
}

// Atomic runs do inside a transaction. do must commit through the atomic
// context; whatever is left uncommitted is rolled back. Events collected from
// the context are published only when do succeeds. A failed publish is logged
// and not returned, since the changes are already durable by then.
func (uow *UnitOfWork[T, Tx]) Atomic(
	ctx context.Context,
	do func(T) error,
) (err error) {
	tx, err := uow.db.Begin(ctx)
	if err != nil {
		return &RollbackError{Err: err}
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !storage.IsTxDone(err) {
			uow.logger.Error("failed to rollback transaction", "error", err)
		}
	}()

	txCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	atomicCtx, err := uow.newContext(txCtx, tx)
	if err != nil {
		return &RollbackError{Err: err}
	}
	defer func() {
		if err := atomicCtx.Close(); err != nil {
			uow.logger.Error("failed to close atomic context", "error", err)
		}
	}()

	if err := do(atomicCtx); err != nil {
		return &RollbackError{Err: err}
	}

	events := atomicCtx.CollectEvents()
	if len(events) == 0 {
		return nil
	}

	if err := uow.msgBus.PublishEvents(events...); err != nil {
		uow.logger.Error("failed to publish events", "error", err, "count", len(events))
	}

	return nil
}

// RollbackError reports a unit of work whose changes were discarded. It keeps
// the message of the cause so callers can show it as is.
type RollbackError struct {
	Err error
}

func (e *RollbackError) Error() string {
	return e.Err.Error()
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}

func (e *RollbackError) Is(target error) bool {
	return target == ErrRollback
}
