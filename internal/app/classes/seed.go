package classservice

import (
	"context"
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	"time"
)

type demoClass struct {
	id       class.ClassID
	name     string
	days     int
	hour     int
	capacity int
	trainer  class.TrainerID
}

var demoClasses = []demoClass{
	{id: "1", name: "Yoga Matutino", days: 1, hour: 8, capacity: 20, trainer: "1"},
	{id: "2", name: "Spinning Vespertino", days: 1, hour: 18, capacity: 15, trainer: "2"},
	{id: "3", name: "Pilates", days: 2, hour: 10, capacity: 12},
}

// SeedDemo stores a few sample classes relative to now. Ids that already exist
// are left alone, and referenced trainers are not checked remotely.
func (s *Service) SeedDemo(ctx context.Context, now time.Time) (seeded int, err error) {
	err = s.uow.Atomic(ctx, func(actx *AtomicContext) error {
		for _, d := range demoClasses {
			exists, err := actx.ClassStorage.Exists(actx.Context(), d.id)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			var trainerID *class.TrainerID
			if d.trainer != "" {
				id := d.trainer
				trainerID = &id
			}

			day := now.AddDate(0, 0, d.days)
			schedule := time.Date(day.Year(), day.Month(), day.Day(), d.hour, 0, 0, 0, now.Location())

			c, err := class.New(d.id, d.name, schedule, d.capacity, trainerID, nil, nil)
			if err != nil {
				return err
			}
			if err := actx.ClassStorage.Add(actx.Context(), c); err != nil {
				return err
			}
			seeded++
		}
		return actx.Commit()
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("demo classes seeded", "count", seeded)
	return seeded, nil
}
