package classservice

import (
	"context"
	"github.com/burenotti/go_classes_backend/internal/domain/class"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestSeedDemo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Date(2030, 3, 10, 15, 30, 0, 0, time.UTC)

	seeded, err := f.service.SeedDemo(ctx, now)
	require.NoError(t, err)
	require.Equal(t, 3, seeded)

	classes, err := f.service.List(ctx)
	require.NoError(t, err)
	require.Len(t, classes, 3)

	yoga := classes[0]
	require.Equal(t, class.ClassID("1"), yoga.ClassID)
	require.Equal(t, "Yoga Matutino", yoga.Name)
	require.Equal(t, 20, yoga.Capacity)
	require.True(t, yoga.IsTrainedBy("1"))
	require.True(t, yoga.Schedule.Equal(time.Date(2030, 3, 11, 8, 0, 0, 0, time.UTC)))

	spinning := classes[1]
	require.Equal(t, "Spinning Vespertino", spinning.Name)
	require.Equal(t, 15, spinning.Capacity)
	require.True(t, spinning.IsTrainedBy("2"))
	require.True(t, spinning.Schedule.Equal(time.Date(2030, 3, 11, 18, 0, 0, 0, time.UTC)))

	pilates := classes[2]
	require.Equal(t, "Pilates", pilates.Name)
	require.Equal(t, 12, pilates.Capacity)
	require.False(t, pilates.HasTrainer())
	require.True(t, pilates.Schedule.Equal(time.Date(2030, 3, 12, 10, 0, 0, 0, time.UTC)))

	f.checker.AssertNotCalled(t, "TrainerExists", mock.Anything, mock.Anything)
}

func TestSeedDemoSkipsExisting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	d := yoga(5)
	d.ClassID = "2"
	d.Name = "Boxing"
	_, err := f.service.Schedule(ctx, d)
	require.NoError(t, err)

	seeded, err := f.service.SeedDemo(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, seeded)

	got, err := f.service.Get(ctx, "2")
	require.NoError(t, err)
	require.Equal(t, "Boxing", got.Name)

	seeded, err = f.service.SeedDemo(ctx, time.Now())
	require.NoError(t, err)
	require.Zero(t, seeded)
}
