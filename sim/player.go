package sim

import (
	"math"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/geom"
	"go.uber.org/zap"
)

// playerSystem applies the sampled input: movement, firing and the arsenal.
type playerSystem struct {
	*world
	Players ecs.Query[playerView]
	Effects ecs.Singleton[SessionEffects]
}

func (s *playerSystem) Execute(frame *ecs.UpdateFrame) {
	dt := frame.DeltaTime
	for p := range s.Players.Values() {
		if frame.Commands.Deleting(p.EntityId) {
			continue
		}

		s.steer(p, dt)
		if countdown(&p.Invincible, dt) {
			p.Invincible = 0
		}
		if countdown(&p.FireCooldown, dt) {
			p.FireCooldown = 0
		}
		if dt <= 0 {
			continue
		}

		if p.Arsenal != nil {
			s.operate(frame, p)
		} else {
			s.fire(frame, p)
		}
	}
}

func (s *playerSystem) steer(p playerView, dt float64) {
	prof := s.game.Player
	move := geom.V2(s.input.MoveX, s.input.MoveY)
	if move.Len() > 1 {
		move = move.Normalize()
	}
	if move.Len() > 0 {
		p.Facing = move.Normalize()
	}

	speed := prof.Speed
	if s.input.Sprint && prof.Sprint > 0 {
		speed *= prof.Sprint
	}
	p.Vel = move.Scale(speed)
	if dt <= 0 {
		return
	}

	b := s.game.Bounds
	next := p.Pos.Add(p.Vel.Scale(dt))
	p.Pos.X = geom.Clamp(next.X, b.MinX+p.Radius, b.MaxX-p.Radius)
	p.Pos.Y = geom.Clamp(next.Y, b.MinY+p.Radius, b.MaxY-p.Radius)
}

// fire shoots the swamp tongue upwards, fanned out while multi shot runs.
func (s *playerSystem) fire(frame *ecs.UpdateFrame, p playerView) {
	if !s.input.Fire || p.FireCooldown > 0 {
		return
	}

	prof := s.game.Player
	effects := s.Effects.Get()
	cooldown := prof.FireCooldown.Seconds()
	if effects.RapidFire {
		cooldown = prof.RapidCooldown.Seconds()
	}
	n := 1
	if effects.MultiShot && effects.MultiShotCount > 1 {
		n = effects.MultiShotCount
	}

	proj, _ := s.game.Projectile(prof.Projectile)
	for i := 0; i < n; i++ {
		off := float64(i) - float64(n-1)/2
		frame.Commands.Spawn(s.projectileComponents(shot{
			typ:  prof.Projectile,
			side: SidePlayer,
			pos:  p.Pos.Add(geom.V2(off*prof.MultiShotSpread, -prof.MuzzleOffset)),
			vel:  geom.V2(off*prof.MultiShotDrift, -proj.Speed),
		})...)
	}

	p.FireCooldown = cooldown
	s.cue(CueShoot)
}

// operate handles weapon switching, reloading and firing in the arena.
func (s *playerSystem) operate(frame *ecs.UpdateFrame, p playerView) {
	weapons := s.game.Weapons
	a := p.Arsenal

	if step := switchStep(s.input); step != 0 && len(weapons) > 1 {
		a.Current = (a.Current + step + len(weapons)) % len(weapons)
		a.Reloading = 0
		p.FireCooldown = 0
		s.cue(CueWeaponSwitch)
		s.log.Debug("weapon switched", zap.String("weapon", weapons[a.Current].Name))
	}

	if a.Reloading > 0 {
		if !countdown(&a.Reloading, frame.DeltaTime) {
			return
		}
		s.finishReload(a)
	}

	if s.input.Reload {
		s.startReload(a)
		if a.Reloading > 0 {
			return
		}
	}

	if !s.input.Fire || p.FireCooldown > 0 {
		return
	}

	wp := weapons[a.Current]
	if a.Magazine[a.Current] == 0 {
		if a.Reserve[a.Current] > 0 {
			s.startReload(a)
		} else {
			s.cue(CueEmpty)
		}
		return
	}

	aim := s.input.Aim.Flat()
	if aim.Len() == 0 {
		aim = p.Facing
	} else {
		aim = aim.Normalize()
	}

	proj, _ := s.game.Projectile(wp.Projectile)
	life := 0.0
	if proj.Speed > 0 {
		life = wp.Range / proj.Speed
	}

	for i := 0; i < max(1, wp.Pellets); i++ {
		dir := rotate(aim, s.uniform(-wp.Spread, wp.Spread))
		frame.Commands.Spawn(s.projectileComponents(shot{
			typ:    wp.Projectile,
			side:   SidePlayer,
			pos:    p.Pos.Add(dir.Scale(s.game.Player.MuzzleOffset)),
			vel:    dir.Scale(proj.Speed),
			damage: wp.Damage,
			splash: wp.Splash,
			life:   life,
		})...)
	}

	a.Magazine[a.Current]--
	p.FireCooldown = wp.FireInterval().Seconds()
	s.cue(CueShoot)

	if a.Magazine[a.Current] == 0 {
		s.startReload(a)
	}
}

func (s *playerSystem) startReload(a *Arsenal) {
	wp := s.game.Weapons[a.Current]
	if a.Reloading > 0 || a.Magazine[a.Current] >= wp.Magazine || a.Reserve[a.Current] <= 0 {
		return
	}

	s.cue(CueReload)
	a.Reloading = wp.Reload.Seconds()
	if a.Reloading <= 0 {
		s.finishReload(a)
	}
}

func (s *playerSystem) finishReload(a *Arsenal) {
	wp := s.game.Weapons[a.Current]
	take := min(wp.Magazine-a.Magazine[a.Current], a.Reserve[a.Current])
	a.Magazine[a.Current] += take
	a.Reserve[a.Current] -= take
	a.Reloading = 0
}

func switchStep(in Input) int {
	switch {
	case in.NextWeapon && !in.PrevWeapon:
		return 1
	case in.PrevWeapon && !in.NextWeapon:
		return -1
	}
	return 0
}

// rotate turns a direction around the vertical axis.
func rotate(v geom.Vec3, angle float64) geom.Vec3 {
	sin, cos := math.Sincos(angle)
	return geom.Vec3{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos, Z: v.Z}
}
