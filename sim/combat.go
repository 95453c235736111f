package sim

import (
	"math"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/geom"
	"go.uber.org/zap"
)

// reach is the distance a player shot must close to touch an enemy. Arena
// enemies hover, so shots are resolved on the ground plane there.
func (w *world) reach(a, b geom.Vec3) float64 {
	if w.mode == ModeArena {
		return a.Flat().Dist(b.Flat())
	}
	return a.Dist(b)
}

func (w *world) bursts(cmds *ecs.Commands, specs []burstSpec, at geom.Vec3) {
	for _, b := range specs {
		w.burst(cmds.Spawn, b.typ, at, b.n)
	}
}

// collisionSystem resolves player shots against enemies. A shot hits the
// earliest spawned enemy it overlaps and is removed.
type collisionSystem struct {
	*world
	Projectiles ecs.Query[projectileView]
	Enemies     ecs.Query[enemyView]
	Effects     ecs.Singleton[SessionEffects]
	Progress    ecs.Singleton[Progress]
}

func (s *collisionSystem) Execute(frame *ecs.UpdateFrame) {
	cmds := frame.Commands
	for p := range s.Projectiles.Values() {
		if *p.Side != SidePlayer || cmds.Deleting(p.EntityId) {
			continue
		}

		for e := range s.Enemies.Values() {
			if cmds.Deleting(e.EntityId) || e.Health.Dead() {
				continue
			}
			if s.reach(p.Pos, e.Pos) >= p.Radius+e.Radius {
				continue
			}

			cmds.Delete(p.EntityId)
			s.bursts(cmds, modeRules[s.mode].impact, p.Pos)
			if p.Splash > 0 {
				s.splash(cmds, p.Pos, p.Damage, p.Splash)
			} else {
				s.damage(cmds, e, p.Damage)
			}
			break
		}
	}
}

// splash damages every enemy within radius of the impact, falling off
// linearly with distance.
func (s *collisionSystem) splash(cmds *ecs.Commands, at geom.Vec3, damage int, radius float64) {
	for e := range s.Enemies.Values() {
		if cmds.Deleting(e.EntityId) || e.Health.Dead() {
			continue
		}
		d := s.reach(at, e.Pos)
		if d > radius {
			continue
		}
		s.damage(cmds, e, int(math.Round(float64(damage)*(1-d/radius))))
	}
}

func (s *collisionSystem) damage(cmds *ecs.Commands, e enemyView, amount int) {
	s.cue(CueEnemyHit)
	if !ApplyDamage(e.Health, amount) {
		return
	}

	cmds.Delete(e.EntityId)
	progress := s.Progress.Get()
	progress.Kills++
	progress.Score += int(float64(s.game.Score.Kill) * s.Effects.Get().Multiplier())

	s.bursts(cmds, modeRules[s.mode].kill, e.Pos)
	s.cue(CueExplosion)
	s.log.Debug("enemy killed",
		zap.String("type", e.Type),
		zap.Int("score", progress.Score),
		zap.Int("kills", progress.Kills),
	)
}

// contactSystem resolves everything that touches the player: hostile shots,
// enemy bodies and strikes, and power-up pickups.
type contactSystem struct {
	*world
	Players     ecs.Query[playerView]
	Enemies     ecs.Query[enemyView]
	Projectiles ecs.Query[projectileView]
	PowerUps    ecs.Query[powerUpView]
	Effects     ecs.Singleton[SessionEffects]
}

func (s *contactSystem) Execute(frame *ecs.UpdateFrame) {
	cmds := frame.Commands
	id, p, ok := s.Players.First()
	if !ok || cmds.Deleting(id) {
		for e := range s.Enemies.Values() {
			e.Strike = false
		}
		s.log.Debug("contact skipped: no player")
		return
	}
	rules := modeRules[s.mode]

	for h := range s.Projectiles.Values() {
		if *h.Side != SideHostile || cmds.Deleting(h.EntityId) {
			continue
		}
		if geom.Overlap(h.Pos, h.Radius, p.Pos, p.Radius) {
			cmds.Delete(h.EntityId)
			s.hit(cmds, p, h.Damage)
		}
	}

	for e := range s.Enemies.Values() {
		if cmds.Deleting(e.EntityId) {
			continue
		}
		if e.Strike {
			e.Strike = false
			s.hit(cmds, p, e.Damage)
			continue
		}
		if rules.contactDamage && p.Invincible <= 0 && geom.Overlap(e.Pos, e.Radius, p.Pos, p.Radius) {
			cmds.Delete(e.EntityId)
			s.hit(cmds, p, e.Damage)
		}
	}

	for u := range s.PowerUps.Values() {
		if cmds.Deleting(u.EntityId) || !geom.Overlap(u.Pos, u.Radius, p.Pos, p.Radius) {
			continue
		}
		cmds.Delete(u.EntityId)
		s.applyEffect(s.Effects.Get(), *u.PowerUp, p.Health, p.PlayerState)
		s.bursts(cmds, rules.pickup, u.Pos)
		s.cue(CuePowerUp)
	}
}

// hit applies one hostile hit to the player. A shield blocks it and
// invincibility ignores it.
func (s *contactSystem) hit(cmds *ecs.Commands, p playerView, damage int) {
	rules := modeRules[s.mode]
	if p.Health.Dead() {
		return
	}
	if p.Shielded {
		s.bursts(cmds, rules.block, p.Pos)
		s.cue(CueShieldBlock)
		return
	}
	if p.Invincible > 0 {
		return
	}

	died := ApplyDamage(p.Health, damage)
	p.Invincible = s.game.Player.Invincibility.Seconds()
	s.cue(CuePlayerHit)
	s.shake(float64(damage) * rules.shakeScale)
	s.bursts(cmds, rules.hurt, p.Pos)

	if died {
		cmds.Delete(p.EntityId)
		s.log.Info("player died")
	}
}

// applyEffect collects a power-up: health is applied at once, everything else
// starts or refreshes a timed effect.
func (w *world) applyEffect(effects *SessionEffects, u PowerUp, health *Health, state *PlayerState) {
	if u.Effect == EffectHealth {
		if health == nil {
			w.log.Debug("health skipped: no player", zap.Float64("value", u.Value))
			return
		}
		Heal(health, int(u.Value))
		w.log.Debug("health collected", zap.Float64("value", u.Value))
		return
	}

	refreshed := effects.Apply(u.Effect, u.Duration, u.Value)
	if state != nil {
		state.Shielded = effects.Shield
	}
	w.log.Debug("effect started",
		zap.Stringer("effect", u.Effect),
		zap.Float64("duration", u.Duration),
		zap.Bool("refreshed", refreshed),
	)
}

// effectSystem counts the timed effects down and drops the expired ones.
type effectSystem struct {
	*world
	Effects ecs.Singleton[SessionEffects]
	Players ecs.Query[playerView]
}

func (s *effectSystem) Execute(frame *ecs.UpdateFrame) {
	effects := s.Effects.Get()
	for _, kind := range effects.Advance(frame.DeltaTime) {
		s.log.Debug("effect expired", zap.Stringer("effect", kind))
	}
	for p := range s.Players.Values() {
		p.Shielded = effects.Shield
	}
}
