package ecs

// EntityId identifies an entity inside a Storage. Ids are handed out in increasing
// order and never reused, so an id that outlived its entity resolves to nothing.
type EntityId uint64

// IsZero reports whether the id is the zero id, which never names an entity.
func (e EntityId) IsZero() bool {
	return e == 0
}
