package ecs

import "reflect"

// Commands provides a buffer for deferred ECS operations that are executed at the end of a frame.
// This prevents structural changes to the ECS storage during system execution.
type Commands struct {
	spawns  []spawnCommand
	deletes []EntityId
	deleted map[EntityId]struct{}
	adds    []addComponentCommand
	removes []removeComponentCommand
	defers  []deferCommand
}

func newCommands() *Commands {
	return &Commands{
		deleted: make(map[EntityId]struct{}),
	}
}

type deferCommand struct {
	fn func()
}

type spawnCommand struct {
	components []any
}

type addComponentCommand struct {
	entity    EntityId
	component any
}

type removeComponentCommand struct {
	entity   EntityId
	compType reflect.Type
}

// Defer queues a function to run after all structural changes of the frame.
func (c *Commands) Defer(fn func()) {
	c.defers = append(c.defers, deferCommand{fn: fn})
}

// Spawn queues an entity spawn operation with the given components.
func (c *Commands) Spawn(components ...any) {
	c.spawns = append(c.spawns, spawnCommand{components: components})
}

// Delete queues an entity deletion. It reports false when the entity is already
// queued for deletion this frame, in which case nothing is queued.
func (c *Commands) Delete(entity EntityId) bool {
	if _, ok := c.deleted[entity]; ok {
		return false
	}
	c.deleted[entity] = struct{}{}
	c.deletes = append(c.deletes, entity)
	return true
}

// Deleting reports whether the entity is queued for deletion this frame.
func (c *Commands) Deleting(entity EntityId) bool {
	_, ok := c.deleted[entity]
	return ok
}

// AddComponent queues a component addition operation.
func (c *Commands) AddComponent(entity EntityId, component any) {
	c.adds = append(c.adds, addComponentCommand{
		entity:    entity,
		component: component,
	})
}

// RemoveComponent queues a component removal operation.
func (c *Commands) RemoveComponent(entity EntityId, compType reflect.Type) {
	c.removes = append(c.removes, removeComponentCommand{
		entity:   entity,
		compType: compType,
	})
}

// PendingSpawns returns the number of spawns queued so far.
func (c *Commands) PendingSpawns() int {
	return len(c.spawns)
}

// Flush applies all commands to the provided storage in the order deletes,
// removes, adds, spawns, defers, and resets the buffer.
func (c *Commands) Flush(storage *Storage) {
	for _, id := range c.deletes {
		storage.Delete(id)
	}

	for _, cmd := range c.removes {
		if !c.Deleting(cmd.entity) {
			storage.RemoveComponent(cmd.entity, cmd.compType)
		}
	}

	for _, cmd := range c.adds {
		if !c.Deleting(cmd.entity) {
			storage.AddComponent(cmd.entity, cmd.component)
		}
	}

	for _, cmd := range c.spawns {
		storage.Spawn(cmd.components...)
	}

	for _, df := range c.defers {
		df.fn()
	}

	c.spawns = c.spawns[:0]
	c.deletes = c.deletes[:0]
	clear(c.deleted)
	c.adds = c.adds[:0]
	c.removes = c.removes[:0]
	c.defers = c.defers[:0]
}
