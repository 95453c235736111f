package sim

import (
	"image/color"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/geom"
)

// Kind tags the variant of an entity.
type Kind uint8

const (
	KindPlayer Kind = iota + 1
	KindEnemy
	KindProjectile
	KindParticle
	KindPowerUp
)

func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindProjectile:
		return "projectile"
	case KindParticle:
		return "particle"
	case KindPowerUp:
		return "powerup"
	}
	return "unknown"
}

// Side decides who a projectile may hurt.
type Side uint8

const (
	SideNeutral Side = iota
	SidePlayer
	SideHostile
)

type Transform struct {
	Pos geom.Vec3
}

type Motion struct {
	Vel geom.Vec3
}

// Body is the collision circle (or sphere) of an entity.
type Body struct {
	Radius float64
}

// Lifetime counts down in seconds. The entity is retired when it reaches zero.
type Lifetime struct {
	Remaining float64
	Total     float64
}

type Health struct {
	Current int
	Max     int
}

// Dead reports whether the health is used up.
func (h Health) Dead() bool { return h.Current <= 0 }

type PlayerState struct {
	Invincible   float64 // seconds left
	Shielded     bool
	FireCooldown float64
	Facing       geom.Vec3
}

// Arsenal is the arena player's weapon rack.
type Arsenal struct {
	Current   int
	Magazine  []int
	Reserve   []int
	Reloading float64 // seconds left, 0 when not reloading
}

// Pattern is the kinematic path of a swamp enemy.
type Pattern uint8

const (
	PatternStraight Pattern = iota
	PatternZigzag
	PatternCircle
)

func ParsePattern(s string) (Pattern, bool) {
	switch s {
	case "straight":
		return PatternStraight, true
	case "zigzag":
		return PatternZigzag, true
	case "circle":
		return PatternCircle, true
	}
	return PatternStraight, false
}

// AIState is the arena enemy state machine.
type AIState uint8

const (
	AIIdle AIState = iota
	AIChasing
	AIAttacking
)

func (s AIState) String() string {
	switch s {
	case AIChasing:
		return "chasing"
	case AIAttacking:
		return "attacking"
	}
	return "idle"
}

type EnemyState struct {
	Type       string
	Damage     int
	Speed      float64
	Projectile string

	// swamp kinematics
	Pattern   Pattern
	OriginX   float64
	Phase     float64
	Amplitude float64
	ShootRate float64
	ShootIn   float64

	// arena behaviour
	AI             AIState
	Detection      float64
	AttackRange    float64
	AttackCooldown float64
	AttackIn       float64
	Hover          float64
	Strike         bool // melee strike pending for the contact pass
}

type Projectile struct {
	Type   string
	Damage int
	Splash float64
	Sway   float64
	Spread float64
}

type Particle struct {
	Type     string
	Size     float64
	Gravity  float64
	Friction float64
	Growth   float64
	Jitter   float64
}

type PowerUp struct {
	Type     string
	Effect   EffectKind
	Duration float64
	Value    float64
}

// Shape is how the render collaborator should draw an entity.
type Shape uint8

const (
	ShapeCircle Shape = iota
	ShapeRect
	ShapeDiamond
	ShapeCross
)

// Visual is the render descriptor carried by every drawable entity.
type Visual struct {
	Shape  Shape
	Color  color.RGBA
	Width  float64
	Height float64
	Label  string
}

func registerComponents(r *ecs.ComponentRegistry) {
	ecs.RegisterComponent[Kind](r)
	ecs.RegisterComponent[Side](r)
	ecs.RegisterComponent[Transform](r)
	ecs.RegisterComponent[Motion](r)
	ecs.RegisterComponent[Body](r)
	ecs.RegisterComponent[Lifetime](r)
	ecs.RegisterComponent[Health](r)
	ecs.RegisterComponent[PlayerState](r)
	ecs.RegisterComponent[Arsenal](r)
	ecs.RegisterComponent[EnemyState](r)
	ecs.RegisterComponent[Projectile](r)
	ecs.RegisterComponent[Particle](r)
	ecs.RegisterComponent[PowerUp](r)
	ecs.RegisterComponent[Visual](r)
}
