package sim

import "github.com/plus3/tickloop/ecs"

type playerView struct {
	ecs.EntityId
	*Transform
	*Motion
	*Body
	*Health
	*PlayerState
	Arsenal *Arsenal `ecs:"optional"`
}

type enemyView struct {
	ecs.EntityId
	*Transform
	*Motion
	*Body
	*Health
	*EnemyState
}

type projectileView struct {
	ecs.EntityId
	*Side
	*Transform
	*Motion
	*Body
	*Lifetime
	*Projectile
}

type particleView struct {
	ecs.EntityId
	*Transform
	*Motion
	*Lifetime
	*Particle
	Visual *Visual `ecs:"optional"`
}

type powerUpView struct {
	ecs.EntityId
	*Transform
	*Motion
	*Body
	*Lifetime
	*PowerUp
}

// sceneView matches every drawable entity.
type sceneView struct {
	ecs.EntityId
	*Kind
	*Transform
	*Visual
	Body       *Body        `ecs:"optional"`
	Health     *Health      `ecs:"optional"`
	Life       *Lifetime    `ecs:"optional"`
	Enemy      *EnemyState  `ecs:"optional"`
	Player     *PlayerState `ecs:"optional"`
	Projectile *Projectile  `ecs:"optional"`
	Particle   *Particle    `ecs:"optional"`
	PowerUp    *PowerUp     `ecs:"optional"`
}
