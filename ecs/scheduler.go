package ecs

import (
	"context"
	"reflect"
	"time"
)

// SchedulerStats provides statistics about scheduler execution.
type SchedulerStats struct {
	SystemCount     int
	TotalExecutions int64
	Frames          uint64
	Systems         []SystemStats
}

// SystemStats provides execution statistics for a single system.
type SystemStats struct {
	Name           string
	ExecutionCount int64
	MinDuration    time.Duration
	MaxDuration    time.Duration
	AvgDuration    time.Duration
	LastDuration   time.Duration
	TotalDuration  time.Duration
}

type systemStatsInternal struct {
	name           string
	executionCount int64
	minDuration    time.Duration
	maxDuration    time.Duration
	totalDuration  time.Duration
	lastDuration   time.Duration
}

// storageBound is implemented by Query and Singleton fields of a system.
type storageBound interface {
	Init(storage *Storage)
}

// refreshable is implemented by Query fields of a system.
type refreshable interface {
	Execute()
}

type registeredSystem struct {
	system  System
	queries []refreshable
	stats   *systemStatsInternal
}

// Scheduler manages and executes systems in order.
type Scheduler struct {
	storage *Storage
	systems []*registeredSystem
	frame   uint64
	flushed func(frame *UpdateFrame)
}

// NewScheduler creates a new scheduler for the given storage.
func NewScheduler(storage *Storage) *Scheduler {
	return &Scheduler{
		storage: storage,
	}
}

// Register adds a system to the scheduler and initializes its Query and Singleton fields.
func (s *Scheduler) Register(system System) {
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}

	s.systems = append(s.systems, &registeredSystem{
		system:  system,
		queries: s.initializeFields(system),
		stats: &systemStatsInternal{
			name:        systemType.Name(),
			minDuration: time.Duration(1<<63 - 1),
		},
	})
}

// AfterFlush installs a hook that runs once per frame after the commands were applied.
func (s *Scheduler) AfterFlush(fn func(frame *UpdateFrame)) {
	s.flushed = fn
}

func (s *Scheduler) initializeFields(system System) []refreshable {
	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() != reflect.Ptr {
		return nil
	}
	systemValue = systemValue.Elem()
	if systemValue.Kind() != reflect.Struct {
		return nil
	}

	var queries []refreshable
	for i := 0; i < systemValue.NumField(); i++ {
		field := systemValue.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Struct {
			continue
		}

		bound, ok := field.Addr().Interface().(storageBound)
		if !ok {
			continue
		}
		bound.Init(s.storage)

		if q, ok := bound.(refreshable); ok {
			queries = append(queries, q)
		}
	}
	return queries
}

// Frame returns the number of frames executed so far.
func (s *Scheduler) Frame() uint64 {
	return s.frame
}

// Once executes all registered systems once with the given delta time (seconds),
// then applies the frame's commands.
func (s *Scheduler) Once(dt float64) {
	s.frame++
	frame := newUpdateFrame(dt, s.frame, s.storage)

	for _, rs := range s.systems {
		for _, q := range rs.queries {
			q.Execute()
		}

		start := time.Now()
		rs.system.Execute(frame)
		duration := time.Since(start)

		stats := rs.stats
		stats.executionCount++
		stats.lastDuration = duration
		stats.totalDuration += duration

		if duration < stats.minDuration {
			stats.minDuration = duration
		}
		if duration > stats.maxDuration {
			stats.maxDuration = duration
		}
	}

	frame.Commands.Flush(s.storage)
	if s.flushed != nil {
		s.flushed(frame)
	}
}

// Run executes all systems repeatedly at the given interval until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastTime := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(lastTime).Seconds()
			lastTime = now
			s.Once(dt)
		}
	}
}

// GetStats returns statistics about system execution.
func (s *Scheduler) GetStats() *SchedulerStats {
	stats := &SchedulerStats{
		SystemCount: len(s.systems),
		Frames:      s.frame,
		Systems:     make([]SystemStats, len(s.systems)),
	}

	var totalExecs int64
	for i, rs := range s.systems {
		internal := rs.stats
		avgDuration := time.Duration(0)
		minDuration := time.Duration(0)
		if internal.executionCount > 0 {
			avgDuration = internal.totalDuration / time.Duration(internal.executionCount)
			minDuration = internal.minDuration
		}

		stats.Systems[i] = SystemStats{
			Name:           internal.name,
			ExecutionCount: internal.executionCount,
			MinDuration:    minDuration,
			MaxDuration:    internal.maxDuration,
			AvgDuration:    avgDuration,
			LastDuration:   internal.lastDuration,
			TotalDuration:  internal.totalDuration,
		}
		totalExecs += internal.executionCount
	}

	stats.TotalExecutions = totalExecs
	return stats
}
