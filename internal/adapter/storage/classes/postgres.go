package classstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/burenotti/go_classes_backend/internal/adapter/storage"
	"github.com/burenotti/go_classes_backend/internal/adapter/storage/pgutil"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	"github.com/leporo/sqlf"
	"github.com/r3labs/diff"
	"github.com/samber/lo"
	"log/slog"
	"time"
)

type PostgresStorage struct {
	base   *pgutil.BasePostgresStorage
	logger *slog.Logger
}

func NewPostgresStorage(db storage.DBContext, logger *slog.Logger) *PostgresStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStorage{
		base:   pgutil.NewBasePostgresStorage(db),
		logger: logger,
	}
}

func (s *PostgresStorage) Add(ctx context.Context, c *class.Class) error {
	q := sqlf.InsertInto("classes").
		Set("class_id", c.ClassID).
		Set("name", c.Name).
		Set("scheduled_at", c.Schedule).
		Set("capacity", c.Capacity).
		Set("trainer_id", trainerColumn(c.TrainerID)).
		Set("created_at", c.CreatedAt).
		Set("updated_at", c.UpdatedAt)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "classes_pkey") {
			return fmt.Errorf("%w: %s", class.ErrClassExists, c.ClassID)
		}
		return storage.InternalError(err)
	}

	for _, teamID := range c.Teams {
		if err := s.addTeam(ctx, c.ClassID, teamID); err != nil {
			return err
		}
	}

	for _, memberID := range c.Members {
		if err := s.addMember(ctx, c.ClassID, memberID); err != nil {
			return err
		}
	}

	s.base.MarkSeen(c)
	return nil
}

// Rows are appended after the current tail, so positions only grow and
// never collide with rows that survived earlier removals.
const (
	nextTeamPosition   = "(SELECT COALESCE(MAX(position), -1) + 1 FROM class_teams WHERE class_id = ?)"
	nextMemberPosition = "(SELECT COALESCE(MAX(position), -1) + 1 FROM class_members WHERE class_id = ?)"
)

func (s *PostgresStorage) addTeam(ctx context.Context, classID class.ClassID, teamID class.TeamID) error {
	q := sqlf.InsertInto("class_teams").
		Set("class_id", classID).
		Set("team_id", teamID).
		SetExpr("position", nextTeamPosition, classID)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "class_teams_pkey") {
			return fmt.Errorf("%w: %s", class.ErrTeamAlreadyAssigned, teamID)
		}
		return storage.InternalError(err)
	}
	return nil
}

func (s *PostgresStorage) addMember(ctx context.Context, classID class.ClassID, memberID class.MemberID) error {
	q := sqlf.InsertInto("class_members").
		Set("class_id", classID).
		Set("member_id", memberID).
		SetExpr("position", nextMemberPosition, classID)

	if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
		if pgutil.ViolatesConstraint(err, "class_members_pkey") {
			return fmt.Errorf("%w: %s", class.ErrMemberAlreadyEnrolled, memberID)
		}
		return storage.InternalError(err)
	}
	return nil
}

func (s *PostgresStorage) get(
	ctx context.Context,
	modify func(stmt *sqlf.Stmt) *sqlf.Stmt,
) ([]*class.Class, error) {
	var tmp struct {
		ClassID     string
		Name        string
		ScheduledAt time.Time
		Capacity    int
		TrainerID   *string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	q := sqlf.From("classes c").
		Select("c.class_id").To(&tmp.ClassID).
		Select("c.name").To(&tmp.Name).
		Select("c.scheduled_at").To(&tmp.ScheduledAt).
		Select("c.capacity").To(&tmp.Capacity).
		Select("c.trainer_id").To(&tmp.TrainerID).
		Select("c.created_at").To(&tmp.CreatedAt).
		Select("c.updated_at").To(&tmp.UpdatedAt)

	q = modify(q)

	var classes []*class.Class
	byID := make(map[class.ClassID]*class.Class)

	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		c := &class.Class{
			ClassID:   class.ClassID(tmp.ClassID),
			Name:      tmp.Name,
			Schedule:  tmp.ScheduledAt.UTC(),
			Capacity:  tmp.Capacity,
			TrainerID: trainerFromColumn(tmp.TrainerID),
			Teams:     make([]class.TeamID, 0),
			Members:   make([]class.MemberID, 0),
			CreatedAt: tmp.CreatedAt.UTC(),
			UpdatedAt: tmp.UpdatedAt.UTC(),
		}
		classes = append(classes, c)
		byID[c.ClassID] = c
	})

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, storage.InternalError(err)
	}

	if len(classes) == 0 {
		return classes, nil
	}

	if err := s.loadTeams(ctx, byID); err != nil {
		return nil, err
	}

	if err := s.loadMembers(ctx, byID); err != nil {
		return nil, err
	}

	return classes, nil
}

func (s *PostgresStorage) loadTeams(ctx context.Context, byID map[class.ClassID]*class.Class) error {
	var tmp struct {
		ClassID string
		TeamID  string
	}

	q := sqlf.From("class_teams t").
		Select("t.class_id").To(&tmp.ClassID).
		Select("t.team_id").To(&tmp.TeamID).
		Where("t.class_id").In(lo.ToAnySlice(lo.Keys(byID))...).
		OrderBy("t.class_id", "t.position")

	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		if c, ok := byID[class.ClassID(tmp.ClassID)]; ok {
			c.Teams = append(c.Teams, class.TeamID(tmp.TeamID))
		}
	})

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return storage.InternalError(err)
	}
	return nil
}

func (s *PostgresStorage) loadMembers(ctx context.Context, byID map[class.ClassID]*class.Class) error {
	var tmp struct {
		ClassID  string
		MemberID string
	}

	q := sqlf.From("class_members m").
		Select("m.class_id").To(&tmp.ClassID).
		Select("m.member_id").To(&tmp.MemberID).
		Where("m.class_id").In(lo.ToAnySlice(lo.Keys(byID))...).
		OrderBy("m.class_id", "m.position")

	err := q.QueryAndClose(ctx, s.base.DB, func(rows *sql.Rows) {
		if c, ok := byID[class.ClassID(tmp.ClassID)]; ok {
			c.Members = append(c.Members, class.MemberID(tmp.MemberID))
		}
	})

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return storage.InternalError(err)
	}
	return nil
}

func (s *PostgresStorage) GetByID(ctx context.Context, classID class.ClassID) (*class.Class, error) {
	return s.getOne(ctx, classID, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("c.class_id = ?", classID)
	})
}

// GetForUpdate loads the class and locks its row until the transaction ends,
// so concurrent changes to the same class are applied one after another.
func (s *PostgresStorage) GetForUpdate(ctx context.Context, classID class.ClassID) (*class.Class, error) {
	return s.getOne(ctx, classID, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.Where("c.class_id = ?", classID).Clause("FOR UPDATE")
	})
}

func (s *PostgresStorage) getOne(
	ctx context.Context,
	classID class.ClassID,
	modify func(stmt *sqlf.Stmt) *sqlf.Stmt,
) (*class.Class, error) {
	classes, err := s.get(ctx, modify)
	if err != nil {
		return nil, err
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("%w: %s", class.ErrClassNotFound, classID)
	}

	s.base.MarkSeen(classes[0])
	return classes[0], nil
}

func (s *PostgresStorage) Exists(ctx context.Context, classID class.ClassID) (bool, error) {
	var count int
	q := sqlf.From("classes").
		Select("count(*)").To(&count).
		Where("class_id = ?", classID)

	if err := q.QueryRowAndClose(ctx, s.base.DB); err != nil {
		return false, storage.InternalError(err)
	}
	return count > 0, nil
}

func (s *PostgresStorage) List(ctx context.Context) ([]*class.Class, error) {
	return s.get(ctx, func(stmt *sqlf.Stmt) *sqlf.Stmt {
		return stmt.OrderBy("c.created_at", "c.class_id")
	})
}

// Persist writes the difference between the stored row and c.
func (s *PostgresStorage) Persist(ctx context.Context, c *class.Class) error {
	dbState, err := s.GetByID(ctx, c.ClassID)
	if err != nil {
		return err
	}

	log, err := diff.Diff(rowOf(dbState), rowOf(c))
	if err != nil {
		panic(err) // should never happen
	}

	if len(log) != 0 {
		q := sqlf.Update("classes").Where("class_id = ?", c.ClassID)
		q = pgutil.MakeUpdateQuery(q, log)

		res, err := q.ExecAndClose(ctx, s.base.DB)
		if err := pgutil.AssertUpdated(res, err, fmt.Errorf("%w: %s", class.ErrClassNotFound, c.ClassID)); err != nil {
			return err
		}
	}

	removedTeams, addedTeams := lo.Difference(dbState.Teams, c.Teams)
	if len(removedTeams) != 0 {
		q := sqlf.DeleteFrom("class_teams").
			Where("class_id = ?", c.ClassID).
			Where("team_id").In(lo.ToAnySlice(removedTeams)...)
		if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
			return storage.InternalError(err)
		}
	}
	for _, teamID := range addedTeams {
		if err := s.addTeam(ctx, c.ClassID, teamID); err != nil {
			return err
		}
	}

	removedMembers, addedMembers := lo.Difference(dbState.Members, c.Members)
	if len(removedMembers) != 0 {
		q := sqlf.DeleteFrom("class_members").
			Where("class_id = ?", c.ClassID).
			Where("member_id").In(lo.ToAnySlice(removedMembers)...)
		if _, err := q.ExecAndClose(ctx, s.base.DB); err != nil {
			return storage.InternalError(err)
		}
	}
	for _, memberID := range addedMembers {
		if err := s.addMember(ctx, c.ClassID, memberID); err != nil {
			return err
		}
	}

	s.base.MarkSeen(c)
	return nil
}

func (s *PostgresStorage) Delete(ctx context.Context, c *class.Class) error {
	q := sqlf.DeleteFrom("classes").Where("class_id = ?", c.ClassID)

	res, err := q.ExecAndClose(ctx, s.base.DB)
	if err := pgutil.AssertUpdated(res, err, fmt.Errorf("%w: %s", class.ErrClassNotFound, c.ClassID)); err != nil {
		return err
	}

	s.base.MarkSeen(c)
	return nil
}

func (s *PostgresStorage) CollectEvents() []domain.Event {
	return s.base.CollectEvents()
}

func (s *PostgresStorage) Close() error {
	s.base.Close()
	return nil
}

// row is the flat column set of the classes table compared on Persist.
type row struct {
	Name        string    `diff:"name"`
	ScheduledAt time.Time `diff:"scheduled_at"`
	Capacity    int       `diff:"capacity"`
	TrainerID   *string   `diff:"trainer_id"`
	UpdatedAt   time.Time `diff:"updated_at"`
}

func rowOf(c *class.Class) row {
	return row{
		Name:        c.Name,
		ScheduledAt: c.Schedule,
		Capacity:    c.Capacity,
		TrainerID:   trainerColumn(c.TrainerID),
		UpdatedAt:   c.UpdatedAt,
	}
}

func trainerColumn(id *class.TrainerID) *string {
	if id == nil {
		return nil
	}
	v := string(*id)
	return &v
}

func trainerFromColumn(v *string) *class.TrainerID {
	if v == nil {
		return nil
	}
	id := class.TrainerID(*v)
	return &id
}
