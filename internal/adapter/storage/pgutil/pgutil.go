package pgutil

import (
	"database/sql"
	"errors"
	"github.com/burenotti/go_classes_backend/internal/adapter/storage"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
)

type BasePostgresStorage struct {
	DB      storage.DBContext
	tracker storage.Tracker
}

func NewBasePostgresStorage(db storage.DBContext) *BasePostgresStorage {
	return &BasePostgresStorage{
		DB: db,
	}
}

func (s *BasePostgresStorage) CollectEvents() []domain.Event {
	return s.tracker.CollectEvents()
}

func (s *BasePostgresStorage) Close() {
	s.tracker.Reset()
}

func (s *BasePostgresStorage) MarkSeen(src domain.EventSource) {
	s.tracker.MarkSeen(src)
}

func ViolatesConstraint(err error, constraintName string) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) &&
		pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) &&
		pgErr.ConstraintName == constraintName
}

// MakeUpdateQuery turns a flat changelog into SET clauses. A removed value
// (nil pointer) becomes NULL.
func MakeUpdateQuery(stmt *sqlf.Stmt, updates diff.Changelog) *sqlf.Stmt {

	for _, upd := range updates {
		if len(upd.Path) > 1 {
			panic("cannot process updates in nested structures")
		}

		switch upd.Type {
		case diff.CREATE, diff.UPDATE:
			stmt = stmt.Set(upd.Path[0], upd.To)
		case diff.DELETE:
			stmt = stmt.Set(upd.Path[0], nil)
		default:
			panic("invalid update type " + upd.Type)
		}
	}
	return stmt
}

func AssertUpdated(res sql.Result, err error, notUpdatedError error) error {
	if err != nil {
		return storage.InternalError(err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return storage.InternalError(err)
	}

	if affected == 0 {
		return notUpdatedError
	}
	return nil
}
