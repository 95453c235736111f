package ecs

import (
	"iter"
	"reflect"
	"slices"
	"sort"
	"unsafe"

	"github.com/kamstrup/intmap"
)

// Storage is the main ECS storage interface
type Storage struct {
	registry   *ComponentRegistry
	stores     map[reflect.Type]iComponentStorage
	members    *intmap.Map[EntityId, []reflect.Type]
	order      []EntityId
	nextId     EntityId
	singletons map[reflect.Type]*singletonEntry
}

type singletonEntry struct {
	typ     reflect.Type
	dataPtr unsafe.Pointer
}

// NewStorage creates a new ECS storage with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:   registry,
		stores:     make(map[reflect.Type]iComponentStorage),
		members:    intmap.New[EntityId, []reflect.Type](256),
		singletons: make(map[reflect.Type]*singletonEntry),
	}
}

func (s *Storage) store(t reflect.Type) iComponentStorage {
	if st, ok := s.stores[t]; ok {
		return st
	}
	factory := s.registry.getFactory(t)
	if factory == nil {
		panic("component type " + t.String() + " not registered")
	}
	st := factory()
	s.stores[t] = st
	return st
}

// Spawn creates a new entity with the provided components
func (s *Storage) Spawn(components ...any) EntityId {
	if len(components) == 0 {
		panic("cannot spawn entity without components")
	}

	types := extractComponentTypes(components)
	stores := make([]iComponentStorage, len(types))
	for i, t := range types {
		stores[i] = s.store(t)
	}

	s.nextId++
	id := s.nextId

	for i, comp := range components {
		stores[i].Append(id, comp)
	}

	sorted := slices.Clone(types)
	sort.Sort(byTypeName(sorted))
	s.members.Put(id, sorted)
	s.order = append(s.order, id)
	return id
}

// Exists reports whether the entity is alive in this storage.
func (s *Storage) Exists(id EntityId) bool {
	_, ok := s.members.Get(id)
	return ok
}

// Delete removes all data related to the entity ID. Deleting a missing entity
// is a no-op and reports false.
func (s *Storage) Delete(id EntityId) bool {
	types, ok := s.members.Get(id)
	if !ok {
		return false
	}

	for _, t := range types {
		s.stores[t].Delete(id)
	}
	s.members.Del(id)

	if idx := slices.Index(s.order, id); idx >= 0 {
		s.order = slices.Delete(s.order, idx, idx+1)
	}
	return true
}

// AddComponent attaches a component to a live entity, replacing any existing
// component of the same type.
func (s *Storage) AddComponent(id EntityId, component any) bool {
	types, ok := s.members.Get(id)
	if !ok {
		return false
	}

	compType := componentType(component)
	st := s.store(compType)
	if st.Has(id) {
		return st.Set(id, component)
	}
	if !st.Append(id, component) {
		return false
	}

	types = append(slices.Clone(types), compType)
	sort.Sort(byTypeName(types))
	s.members.Put(id, types)
	return true
}

// RemoveComponent detaches a component type from an entity. An entity left
// without components is deleted.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) bool {
	types, ok := s.members.Get(id)
	if !ok {
		return false
	}

	idx := slices.Index(types, compType)
	if idx < 0 {
		return false
	}

	if len(types) == 1 {
		return s.Delete(id)
	}

	s.stores[compType].Delete(id)
	s.members.Put(id, slices.Delete(slices.Clone(types), idx, idx+1))
	return true
}

// GetComponent returns a pointer to the component for the given entity ID and
// component type, or nil.
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	st, ok := s.stores[compType]
	if !ok {
		return nil
	}
	return st.Get(id)
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	st, ok := s.stores[compType]
	if !ok {
		return false
	}
	return st.Has(id)
}

// ComponentTypes returns the sorted component types attached to an entity.
func (s *Storage) ComponentTypes(id EntityId) []reflect.Type {
	types, _ := s.members.Get(id)
	return types
}

// Entities iterates live entity ids in spawn order.
func (s *Storage) Entities() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for _, id := range s.order {
			if !yield(id) {
				return
			}
		}
	}
}

// Len returns the number of live entities.
func (s *Storage) Len() int {
	return len(s.order)
}

// Count returns the number of live entities carrying the component type.
func (s *Storage) Count(compType reflect.Type) int {
	st, ok := s.stores[compType]
	if !ok {
		return 0
	}
	return st.Len()
}

// Clear deletes every entity. Singletons are kept and ids keep increasing.
func (s *Storage) Clear() {
	for _, st := range s.stores {
		st.Clear()
	}
	s.members.Clear()
	s.order = s.order[:0]
}

// AddSingleton stores a value that is not attached to any entity, replacing a
// previous singleton of the same type.
func (s *Storage) AddSingleton(value any) {
	t := componentType(value)
	ptr := reflect.New(t)

	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	ptr.Elem().Set(rv)

	s.singletons[t] = &singletonEntry{
		typ:     t,
		dataPtr: ptr.UnsafePointer(),
	}
}

// ReadSingleton points out (a **T) at the stored singleton of type T and reports
// whether one exists.
func (s *Storage) ReadSingleton(out any) bool {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton expects a pointer to a pointer")
	}

	t := rv.Elem().Type().Elem()
	entry := s.getSingletonEntry(t)
	if entry == nil {
		return false
	}

	rv.Elem().Set(reflect.NewAt(t, entry.dataPtr))
	return true
}

// RemoveSingleton drops the singleton of the given type.
func (s *Storage) RemoveSingleton(t reflect.Type) {
	delete(s.singletons, t)
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}
	return compType
}

// extractComponentTypes returns the component type of each value, in argument order
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		compType := componentType(comp)

		// Components can be structs or primitives (int, string, etc.)
		// But not pointers, maps, channels, or functions (those aren't value types)
		if compType.Kind() == reflect.Ptr || compType.Kind() == reflect.Map ||
			compType.Kind() == reflect.Chan || compType.Kind() == reflect.Func {
			panic("components cannot be pointers, maps, channels, or functions")
		}
		if slices.Contains(types, compType) {
			panic("duplicate component type " + compType.String())
		}

		types = append(types, compType)
	}
	return types
}

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns the entity's component of type T, or nil.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	comp, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return comp
}
