package sim

import (
	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/geom"
	"go.uber.org/zap"
)

// enemySystem moves enemies along their swamp pattern or through the arena
// state machine, and lets them shoot or strike.
type enemySystem struct {
	*world
	Enemies ecs.Query[enemyView]
	Players ecs.Query[playerView]
}

func (s *enemySystem) Execute(frame *ecs.UpdateFrame) {
	switch s.mode {
	case ModeSwamp:
		for e := range s.Enemies.Values() {
			if !frame.Commands.Deleting(e.EntityId) {
				s.drift(frame, e)
			}
		}
	case ModeArena:
		target, ok := s.target(frame)
		idled := 0
		for e := range s.Enemies.Values() {
			if frame.Commands.Deleting(e.EntityId) {
				continue
			}
			if !ok {
				e.AI = AIIdle
				e.Vel = geom.Vec3{}
				idled++
				continue
			}
			s.hunt(frame, e, target)
		}
		if idled > 0 {
			s.log.Debug("enemy hunt skipped: no player", zap.Int("enemies", idled))
		}
	}
}

func (s *enemySystem) target(frame *ecs.UpdateFrame) (geom.Vec3, bool) {
	for p := range s.Players.Values() {
		if !frame.Commands.Deleting(p.EntityId) {
			return p.Pos, true
		}
	}
	return geom.Vec3{}, false
}

// drift advances a swamp enemy down the screen and fires venom inside the shooting band.
func (s *enemySystem) drift(frame *ecs.UpdateFrame, e enemyView) {
	dt := frame.DeltaTime
	if dt <= 0 {
		return
	}

	descent := e.Speed
	if e.Pattern == PatternCircle {
		descent *= circleDescent
	}
	e.Phase += phaseRate * dt
	e.Pos.Y += descent * dt
	e.Pos.X = s.patternX(e.EnemyState, e.Radius)
	e.Vel = geom.V2(0, descent)

	e.ShootIn -= dt
	band := s.game.Spawn
	if e.ShootIn > 0 || e.Pos.Y <= band.ShootBandTop || e.Pos.Y >= band.ShootBandBottom {
		return
	}

	e.ShootIn = e.ShootRate
	proj, _ := s.game.Projectile(e.Projectile)
	frame.Commands.Spawn(s.projectileComponents(shot{
		typ:  e.Projectile,
		side: SideHostile,
		pos:  e.Pos.Add(geom.V2(0, venomDrop)),
		vel:  geom.V2(0, proj.Speed),
	})...)
}

// hunt runs the idle, chasing and attacking states of an arena enemy. The
// detection and attack ranges are measured in three dimensions. Nothing
// changes on a zero step.
func (s *enemySystem) hunt(frame *ecs.UpdateFrame, e enemyView, target geom.Vec3) {
	dt := frame.DeltaTime
	if dt <= 0 {
		return
	}
	dist := e.Pos.Dist(target)
	if e.AttackIn > 0 {
		e.AttackIn -= dt
	}

	prev := e.AI
	switch e.AI {
	case AIIdle:
		if dist <= e.Detection {
			e.AI = AIChasing
		}
	case AIChasing:
		switch {
		case dist <= e.AttackRange:
			e.AI = AIAttacking
		case dist > e.Detection*1.5:
			e.AI = AIIdle
		}
	case AIAttacking:
		if dist > e.AttackRange {
			e.AI = AIChasing
		}
	}
	if prev != e.AI {
		s.log.Debug("enemy state",
			zap.Uint64("entity", uint64(e.EntityId)),
			zap.Stringer("from", prev),
			zap.Stringer("to", e.AI),
		)
	}

	e.Vel = geom.Vec3{}
	switch e.AI {
	case AIChasing:
		e.Vel = target.Sub(e.Pos).Flat().Normalize().Scale(e.Speed)
		e.Pos = e.Pos.Add(e.Vel.Scale(dt))
		e.Pos.Z = e.Hover
	case AIAttacking:
		if e.AttackIn > 0 {
			return
		}
		e.AttackIn = e.AttackCooldown
		if e.Projectile == "" {
			e.Strike = true
			return
		}

		dir := target.Sub(e.Pos).Normalize()
		proj, _ := s.game.Projectile(e.Projectile)
		frame.Commands.Spawn(s.projectileComponents(shot{
			typ:    e.Projectile,
			side:   SideHostile,
			pos:    e.Pos.Add(dir.Scale(e.Radius)),
			vel:    dir.Scale(proj.Speed),
			damage: e.Damage,
		})...)
	}
}
