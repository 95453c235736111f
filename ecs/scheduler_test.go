package ecs_test

import (
	"context"
	"testing"
	"time"

	"github.com/plus3/tickloop/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MovementSystem struct {
	Entities ecs.Query[struct {
		*Pos
		*Vel
	}]
	ExecuteCount int
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	for item := range s.Entities.Values() {
		item.Pos.X += item.Vel.X * frame.DeltaTime
		item.Pos.Y += item.Vel.Y * frame.DeltaTime
	}
}

type HealthSystem struct {
	Entities ecs.Query[struct {
		*HitPoints
	}]
	Total        ecs.Singleton[Points]
	ExecuteCount int
}

func (s *HealthSystem) Execute(frame *ecs.UpdateFrame) {
	s.ExecuteCount++
	total := 0
	for item := range s.Entities.Values() {
		total += item.HitPoints.Current
	}
	s.Total.Set(Points(total))
}

type SpawnerSystem struct {
	Seen ecs.Query[struct{ *Team }]
	Lens []int
}

func (s *SpawnerSystem) Execute(frame *ecs.UpdateFrame) {
	s.Lens = append(s.Lens, s.Seen.Len())
	frame.Commands.Spawn(Team("spawned"))
}

type orderSystem struct {
	name string
	log  *[]string
}

func (s *orderSystem) Execute(frame *ecs.UpdateFrame) {
	*s.log = append(*s.log, s.name)
}

func TestScheduler(t *testing.T) {
	registry := fixtureRegistry()

	t.Run("queries and singletons are initialized", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		movement := &MovementSystem{}
		health := &HealthSystem{}
		scheduler.Register(movement)
		scheduler.Register(health)

		id := storage.Spawn(Pos{X: 0, Y: 0}, Vel{X: 1, Y: 2})
		storage.Spawn(HitPoints{Current: 100, Max: 100})
		storage.Spawn(HitPoints{Current: 50, Max: 100})

		scheduler.Once(0.5)

		assert.Equal(t, 1, movement.ExecuteCount)
		assert.Equal(t, 1, health.ExecuteCount)
		assert.Equal(t, Pos{X: 0.5, Y: 1}, *ecs.ReadComponent[Pos](storage, id))
		assert.Equal(t, Points(150), *health.Total.Get())
	})

	t.Run("systems run in registration order", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)

		var log []string
		scheduler.Register(&orderSystem{name: "a", log: &log})
		scheduler.Register(&orderSystem{name: "b", log: &log})
		scheduler.Register(&orderSystem{name: "c", log: &log})

		scheduler.Once(0)
		scheduler.Once(0)
		assert.Equal(t, []string{"a", "b", "c", "a", "b", "c"}, log)
		assert.Equal(t, uint64(2), scheduler.Frame())
	})

	t.Run("queries see spawns of previous frames", func(t *testing.T) {
		storage := ecs.NewStorage(registry)
		scheduler := ecs.NewScheduler(storage)
		spawner := &SpawnerSystem{}
		scheduler.Register(spawner)

		var flushedFrames []uint64
		scheduler.AfterFlush(func(frame *ecs.UpdateFrame) {
			flushedFrames = append(flushedFrames, frame.Frame)
		})

		for i := 0; i < 3; i++ {
			scheduler.Once(1.0 / 60)
		}

		assert.Equal(t, []int{0, 1, 2}, spawner.Lens)
		assert.Equal(t, []uint64{1, 2, 3}, flushedFrames)
	})
}

func TestSchedulerStats(t *testing.T) {
	storage := ecs.NewStorage(fixtureRegistry())
	scheduler := ecs.NewScheduler(storage)
	scheduler.Register(&MovementSystem{})
	scheduler.Register(&HealthSystem{})

	stats := scheduler.GetStats()
	assert.Equal(t, 2, stats.SystemCount)
	assert.Equal(t, time.Duration(0), stats.Systems[0].MinDuration)

	for i := 0; i < 4; i++ {
		scheduler.Once(0.1)
	}

	stats = scheduler.GetStats()
	require.Len(t, stats.Systems, 2)
	assert.Equal(t, "MovementSystem", stats.Systems[0].Name)
	assert.Equal(t, "HealthSystem", stats.Systems[1].Name)
	assert.Equal(t, int64(8), stats.TotalExecutions)
	assert.Equal(t, uint64(4), stats.Frames)

	for _, sys := range stats.Systems {
		assert.Equal(t, int64(4), sys.ExecutionCount)
		assert.LessOrEqual(t, sys.MinDuration, sys.MaxDuration)
		assert.GreaterOrEqual(t, sys.TotalDuration, sys.MaxDuration)
	}
}

func TestSchedulerRun(t *testing.T) {
	storage := ecs.NewStorage(fixtureRegistry())
	scheduler := ecs.NewScheduler(storage)
	movement := &MovementSystem{}
	scheduler.Register(movement)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	scheduler.Run(ctx, 5*time.Millisecond)

	assert.Greater(t, movement.ExecuteCount, 0)
}
