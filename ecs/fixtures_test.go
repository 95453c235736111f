package ecs_test

import "github.com/plus3/tickloop/ecs"

type Pos struct {
	X, Y float64
}

type Vel struct {
	X, Y float64
}

type Label struct {
	Text string
}

type HitPoints struct {
	Current, Max int
}

// non-struct components
type (
	Points int
	Team   string
)

type Loadout struct {
	Weapons []string
}

func fixtureRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Pos](registry)
	ecs.RegisterComponent[Vel](registry)
	ecs.RegisterComponent[Label](registry)
	ecs.RegisterComponent[HitPoints](registry)
	ecs.RegisterComponent[Points](registry)
	ecs.RegisterComponent[Team](registry)
	ecs.RegisterComponent[Loadout](registry)
	ecs.RegisterComponent[float64](registry)
	ecs.RegisterComponent[string](registry)
	return registry
}
