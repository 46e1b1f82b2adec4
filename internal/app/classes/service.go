package classservice

import (
	"context"
	"fmt"
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	"log/slog"
	"time"
)

// ExistenceChecker answers whether an entity owned by another service exists.
type ExistenceChecker interface {
	TrainerExists(ctx context.Context, trainerID string) (bool, error)
	TeamExists(ctx context.Context, teamID string) (bool, error)
	MemberExists(ctx context.Context, memberID string) (bool, error)
}

// Draft is a class as requested by a caller, before it is scheduled.
type Draft struct {
	ClassID   class.ClassID
	Name      string
	Schedule  time.Time
	Capacity  int
	TrainerID *class.TrainerID
	Teams     []class.TeamID
	Members   []class.MemberID
}

type Service struct {
	logger  *slog.Logger
	uow     UnitOfWork
	checker ExistenceChecker
}

func New(logger *slog.Logger, uow UnitOfWork, checker ExistenceChecker) *Service {
	return &Service{
		logger:  logger,
		uow:     uow,
		checker: checker,
	}
}

// Schedule validates every referenced trainer, team and member remotely, in that
// order, and stores the class only when all of them exist.
func (s *Service) Schedule(ctx context.Context, d Draft) (c *class.Class, err error) {
	err = s.uow.Atomic(ctx, func(actx *AtomicContext) error {
		exists, err := actx.ClassStorage.Exists(actx.Context(), d.ClassID)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", class.ErrClassExists, d.ClassID)
		}

		c, err = class.New(d.ClassID, d.Name, d.Schedule, d.Capacity, d.TrainerID, d.Teams, d.Members)
		if err != nil {
			return err
		}

		if c.TrainerID != nil {
			if err := s.ensureTrainer(actx.Context(), *c.TrainerID); err != nil {
				return err
			}
		}
		for _, teamID := range c.Teams {
			if err := s.ensureTeam(actx.Context(), teamID); err != nil {
				return err
			}
		}
		for _, memberID := range c.Members {
			if err := s.ensureMember(actx.Context(), memberID); err != nil {
				return err
			}
		}

		if err := actx.ClassStorage.Add(actx.Context(), c); err != nil {
			return err
		}
		return actx.Commit()
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("class scheduled", "class_id", c.ClassID)
	return c, nil
}

func (s *Service) AssignTrainer(ctx context.Context, classID class.ClassID, trainerID class.TrainerID) (*class.Class, error) {
	return s.mutate(ctx, classID, func(ctx context.Context, c *class.Class) error {
		if err := s.ensureTrainer(ctx, trainerID); err != nil {
			return err
		}
		c.AssignTrainer(trainerID)
		return nil
	})
}

func (s *Service) RemoveTrainer(ctx context.Context, classID class.ClassID) (*class.Class, error) {
	return s.mutate(ctx, classID, func(ctx context.Context, c *class.Class) error {
		return c.RemoveTrainer()
	})
}

func (s *Service) AddTeam(ctx context.Context, classID class.ClassID, teamID class.TeamID) (*class.Class, error) {
	return s.mutate(ctx, classID, func(ctx context.Context, c *class.Class) error {
		if err := s.ensureTeam(ctx, teamID); err != nil {
			return err
		}
		return c.AddTeam(teamID)
	})
}

func (s *Service) RemoveTeam(ctx context.Context, classID class.ClassID, teamID class.TeamID) (*class.Class, error) {
	return s.mutate(ctx, classID, func(ctx context.Context, c *class.Class) error {
		return c.RemoveTeam(teamID)
	})
}

// AddMember rejects a full class before asking the member service anything.
func (s *Service) AddMember(ctx context.Context, classID class.ClassID, memberID class.MemberID) (*class.Class, error) {
	return s.mutate(ctx, classID, func(ctx context.Context, c *class.Class) error {
		if err := c.EnsureSeat(); err != nil {
			return err
		}
		if err := s.ensureMember(ctx, memberID); err != nil {
			return err
		}
		return c.AddMember(memberID)
	})
}

func (s *Service) RemoveMember(ctx context.Context, classID class.ClassID, memberID class.MemberID) (*class.Class, error) {
	return s.mutate(ctx, classID, func(ctx context.Context, c *class.Class) error {
		return c.RemoveMember(memberID)
	})
}

func (s *Service) Delete(ctx context.Context, classID class.ClassID) error {
	return s.uow.Atomic(ctx, func(actx *AtomicContext) error {
		c, err := actx.ClassStorage.GetForUpdate(actx.Context(), classID)
		if err != nil {
			return err
		}

		c.MarkDeleted()
		if err := actx.ClassStorage.Delete(actx.Context(), c); err != nil {
			return err
		}
		return actx.Commit()
	})
}

func (s *Service) Get(ctx context.Context, classID class.ClassID) (c *class.Class, err error) {
	err = s.uow.Atomic(ctx, func(actx *AtomicContext) error {
		var err error
		c, err = actx.ClassStorage.GetByID(actx.Context(), classID)
		return err
	})
	return
}

func (s *Service) List(ctx context.Context) (classes []*class.Class, err error) {
	err = s.uow.Atomic(ctx, func(actx *AtomicContext) error {
		var err error
		classes, err = actx.ClassStorage.List(actx.Context())
		return err
	})
	return
}

// mutate loads the class locked for update, applies fn and persists the result
// once. Nothing is written when fn fails.
func (s *Service) mutate(
	ctx context.Context,
	classID class.ClassID,
	fn func(ctx context.Context, c *class.Class) error,
) (c *class.Class, err error) {
	err = s.uow.Atomic(ctx, func(actx *AtomicContext) error {
		var err error
		c, err = actx.ClassStorage.GetForUpdate(actx.Context(), classID)
		if err != nil {
			return err
		}

		if err := fn(actx.Context(), c); err != nil {
			return err
		}

		if err := actx.ClassStorage.Persist(actx.Context(), c); err != nil {
			return err
		}
		return actx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ensureTrainer(ctx context.Context, trainerID class.TrainerID) error {
	return ensureExists(ctx, s.checker.TrainerExists, trainerID, class.ErrTrainerNotFound)
}

func (s *Service) ensureTeam(ctx context.Context, teamID class.TeamID) error {
	return ensureExists(ctx, s.checker.TeamExists, teamID, class.ErrTeamNotFound)
}

func (s *Service) ensureMember(ctx context.Context, memberID class.MemberID) error {
	return ensureExists(ctx, s.checker.MemberExists, memberID, class.ErrMemberNotFound)
}

func ensureExists[ID ~string](
	ctx context.Context,
	check func(context.Context, string) (bool, error),
	id ID,
	notFound error,
) error {
	ok, err := check(ctx, string(id))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return nil
}
