package ecs

import "iter"

// Query wraps a View with a per-frame cache of matching entities.
// The Scheduler refreshes every Query field of a system right before the
// system executes, so pointers in the cache are valid for that system's run.
type Query[T any] struct {
	view    *View[T]
	storage *Storage

	cachedEntities   []EntityId
	cachedComponents []T
	cacheValid       bool
}

// NewQuery creates a new Query bound to storage.
func NewQuery[T any](storage *Storage) *Query[T] {
	q := &Query[T]{}
	q.Init(storage)
	return q
}

// Init initializes or re-initializes the Query with a storage.
// Called by the Scheduler during system registration.
func (q *Query[T]) Init(storage *Storage) {
	q.view = NewView[T](storage)
	q.storage = storage
	q.cacheValid = false
}

// Execute rebuilds the entity and component caches.
func (q *Query[T]) Execute() {
	q.cachedEntities = q.cachedEntities[:0]
	q.cachedComponents = q.cachedComponents[:0]

	for id, item := range q.view.Iter() {
		q.cachedEntities = append(q.cachedEntities, id)
		q.cachedComponents = append(q.cachedComponents, item)
	}

	q.cacheValid = true
}

// Invalidate forces the next read to rebuild the cache.
func (q *Query[T]) Invalidate() {
	q.cacheValid = false
}

func (q *Query[T]) ensure() {
	if q.view == nil {
		panic("Query used before Init")
	}
	if !q.cacheValid {
		q.Execute()
	}
}

// Iter returns an iterator over entity IDs and component data, in spawn order.
func (q *Query[T]) Iter() iter.Seq2[EntityId, T] {
	q.ensure()

	return func(yield func(EntityId, T) bool) {
		for i := range q.cachedEntities {
			if !yield(q.cachedEntities[i], q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Values returns an iterator over component data only.
func (q *Query[T]) Values() iter.Seq[T] {
	q.ensure()

	return func(yield func(T) bool) {
		for i := range q.cachedComponents {
			if !yield(q.cachedComponents[i]) {
				return
			}
		}
	}
}

// Len returns the number of cached matches.
func (q *Query[T]) Len() int {
	q.ensure()
	return len(q.cachedEntities)
}

// First returns the earliest spawned match.
func (q *Query[T]) First() (EntityId, T, bool) {
	q.ensure()
	if len(q.cachedEntities) == 0 {
		var zero T
		return 0, zero, false
	}
	return q.cachedEntities[0], q.cachedComponents[0], true
}
