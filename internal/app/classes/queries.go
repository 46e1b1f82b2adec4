package classservice

import (
	"context"
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	"github.com/samber/lo"
)

// QueryService answers whether other services may delete one of their
// entities. It only reads the local store.
type QueryService struct {
	uow UnitOfWork
}

func NewQueryService(uow UnitOfWork) *QueryService {
	return &QueryService{uow: uow}
}

func (q *QueryService) IsTrainerReferenced(ctx context.Context, trainerID class.TrainerID) (bool, error) {
	return q.any(ctx, func(c *class.Class) bool {
		return c.IsTrainedBy(trainerID)
	})
}

func (q *QueryService) IsTeamReferenced(ctx context.Context, teamID class.TeamID) (bool, error) {
	return q.any(ctx, func(c *class.Class) bool {
		return c.HasTeam(teamID)
	})
}

func (q *QueryService) IsMemberReferenced(ctx context.Context, memberID class.MemberID) (bool, error) {
	return q.any(ctx, func(c *class.Class) bool {
		return c.HasMember(memberID)
	})
}

func (q *QueryService) any(ctx context.Context, predicate func(c *class.Class) bool) (found bool, err error) {
	err = q.uow.Atomic(ctx, func(actx *AtomicContext) error {
		classes, err := actx.ClassStorage.List(actx.Context())
		if err != nil {
			return err
		}
		found = lo.SomeBy(classes, predicate)
		return nil
	})
	return
}
