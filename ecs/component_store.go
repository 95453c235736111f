package ecs

import (
	"reflect"
	"slices"

	"github.com/kamstrup/intmap"
)

// iComponentStorage is a type-erased store holding one component type for many entities.
type iComponentStorage interface {
	Append(id EntityId, item any) bool
	Set(id EntityId, item any) bool
	Delete(id EntityId) bool
	Get(id EntityId) any
	Has(id EntityId) bool
	Len() int
	Ids() []EntityId
	Clear()
	Type() reflect.Type
}

// ComponentRegistry manages component type registration for an ECS instance.
// Each Storage has its own ComponentRegistry, allowing multiple independent
// simulations to coexist without interference.
type ComponentRegistry struct {
	factories map[reflect.Type]func() iComponentStorage
}

// NewComponentRegistry creates a new component registry.
func NewComponentRegistry() *ComponentRegistry {
	return &ComponentRegistry{
		factories: make(map[reflect.Type]func() iComponentStorage),
	}
}

// RegisterComponent registers a component type with the given registry.
// This must be called for each component type before it can be spawned.
func RegisterComponent[T any](r *ComponentRegistry) {
	t := reflect.TypeFor[T]()
	r.factories[t] = func() iComponentStorage {
		return newComponentStore[T]()
	}
}

// Registered reports whether the type has been registered.
func (r *ComponentRegistry) Registered(t reflect.Type) bool {
	_, ok := r.factories[t]
	return ok
}

func (r *ComponentRegistry) getFactory(t reflect.Type) func() iComponentStorage {
	return r.factories[t]
}

// componentStore keeps components of type T densely packed in spawn order.
// Deleting an entry shifts the tail down so iteration order never changes
// for the survivors.
type componentStore[T any] struct {
	ids   []EntityId
	items []T
	index *intmap.Map[EntityId, int]
}

func newComponentStore[T any]() *componentStore[T] {
	return &componentStore[T]{
		index: intmap.New[EntityId, int](64),
	}
}

func unwrapComponent[T any](item any) (T, bool) {
	if ptr, ok := item.(*T); ok {
		return *ptr, true
	}
	val, ok := item.(T)
	return val, ok
}

func (cs *componentStore[T]) Append(id EntityId, item any) bool {
	value, ok := unwrapComponent[T](item)
	if !ok {
		return false
	}
	if _, exists := cs.index.Get(id); exists {
		return false
	}

	cs.index.Put(id, len(cs.items))
	cs.ids = append(cs.ids, id)
	cs.items = append(cs.items, value)
	return true
}

// Set overwrites the component of an entity that already has one.
func (cs *componentStore[T]) Set(id EntityId, item any) bool {
	value, ok := unwrapComponent[T](item)
	if !ok {
		return false
	}
	slot, exists := cs.index.Get(id)
	if !exists {
		return false
	}
	cs.items[slot] = value
	return true
}

func (cs *componentStore[T]) Delete(id EntityId) bool {
	slot, ok := cs.index.Get(id)
	if !ok {
		return false
	}

	cs.index.Del(id)
	cs.ids = slices.Delete(cs.ids, slot, slot+1)
	cs.items = slices.Delete(cs.items, slot, slot+1)

	for i := slot; i < len(cs.ids); i++ {
		cs.index.Put(cs.ids[i], i)
	}
	return true
}

// Get returns a pointer to the component, or nil.
func (cs *componentStore[T]) Get(id EntityId) any {
	slot, ok := cs.index.Get(id)
	if !ok {
		return nil
	}
	return &cs.items[slot]
}

func (cs *componentStore[T]) Has(id EntityId) bool {
	_, ok := cs.index.Get(id)
	return ok
}

func (cs *componentStore[T]) Len() int {
	return len(cs.ids)
}

func (cs *componentStore[T]) Ids() []EntityId {
	return cs.ids
}

func (cs *componentStore[T]) Clear() {
	clear(cs.items)
	cs.ids = cs.ids[:0]
	cs.items = cs.items[:0]
	cs.index.Clear()
}

func (cs *componentStore[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}
