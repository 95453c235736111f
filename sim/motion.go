package sim

import (
	"math"

	"github.com/plus3/tickloop/ecs"
)

// motionSystem integrates projectiles, particles and power-ups, counts down
// their lifetimes and retires whatever left the playfield.
type motionSystem struct {
	*world
	Projectiles ecs.Query[projectileView]
	Particles   ecs.Query[particleView]
	PowerUps    ecs.Query[powerUpView]
	Enemies     ecs.Query[enemyView]
	Progress    ecs.Singleton[Progress]
}

func (s *motionSystem) Execute(frame *ecs.UpdateFrame) {
	dt := frame.DeltaTime
	if dt <= 0 {
		return
	}
	cmds := frame.Commands
	elapsed := s.Progress.Get().Elapsed

	for p := range s.Projectiles.Values() {
		if p.Spread > 0 {
			p.Vel.X *= math.Pow(p.Spread, dt*frameRate)
		}
		if p.Sway != 0 {
			p.Vel.X += math.Sin(elapsed*swayRate) * p.Sway * dt
		}
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))

		if countdown(&p.Remaining, dt) || s.outside(p.Pos) {
			cmds.Delete(p.EntityId)
		}
	}

	for p := range s.Particles.Values() {
		p.Vel.Y += p.Gravity * dt
		if p.Friction > 0 {
			p.Vel = p.Vel.Scale(math.Pow(p.Friction, dt*frameRate))
		}
		if p.Jitter > 0 {
			p.Vel.X += s.uniform(-p.Jitter, p.Jitter) * dt * frameRate
		}
		p.Pos = p.Pos.Add(p.Vel.Scale(dt))

		p.Size = max(0, p.Size+p.Growth*dt)
		if p.Visual != nil {
			p.Visual.Width, p.Visual.Height = p.Size, p.Size
		}

		if countdown(&p.Remaining, dt) {
			cmds.Delete(p.EntityId)
		}
	}

	for u := range s.PowerUps.Values() {
		u.Pos = u.Pos.Add(u.Vel.Scale(dt))
		if countdown(&u.Remaining, dt) || s.outside(u.Pos) {
			cmds.Delete(u.EntityId)
		}
	}

	for e := range s.Enemies.Values() {
		if s.outside(e.Pos) {
			cmds.Delete(e.EntityId)
		}
	}
}
