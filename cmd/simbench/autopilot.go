package main

import (
	"math"

	"github.com/plus3/tickloop/geom"
	"github.com/plus3/tickloop/sim"
)

// autopilot plays a session well enough to exercise every system. It reads
// the scene once per tick like a render collaborator would.
type autopilot struct {
	mode  sim.Mode
	frame int
}

func newAutopilot(mode sim.Mode) *autopilot {
	return &autopilot{mode: mode}
}

// Input picks the controls for the next tick.
func (a *autopilot) Input(s *sim.Session) sim.Input {
	a.frame++

	var player *sim.Sprite
	var enemies, pickups []sim.Sprite
	s.Scene(func(sp sim.Sprite) {
		switch sp.Kind {
		case sim.KindPlayer:
			p := sp
			player = &p
		case sim.KindEnemy:
			enemies = append(enemies, sp)
		case sim.KindPowerUp:
			pickups = append(pickups, sp)
		}
	})
	if player == nil {
		return sim.Input{}
	}

	if a.mode == sim.ModeArena {
		return a.arena(s.HUD(), player.Pos, enemies)
	}
	return a.swamp(player.Pos, enemies, pickups)
}

// swamp lines up under the lowest bug, or a falling power-up when no bug is
// in reach, and keeps the tongue going.
func (a *autopilot) swamp(pos geom.Vec3, enemies, pickups []sim.Sprite) sim.Input {
	in := sim.Input{Fire: true}

	target, ok := lowest(enemies)
	if !ok {
		target, ok = lowest(pickups)
	}
	if ok {
		in.MoveX = steer(target.Pos.X - pos.X)
	}
	return in
}

// arena aims at the nearest enemy, circles it at attack distance and
// reloads between fights.
func (a *autopilot) arena(hud sim.HUD, pos geom.Vec3, enemies []sim.Sprite) sim.Input {
	var in sim.Input

	target, ok := nearest(pos, enemies)
	if !ok {
		in.Reload = hud.Ammo == 0 && hud.Reserve > 0
		return in
	}

	to := target.Pos.Sub(pos).Flat()
	in.Aim = to
	in.Fire = hud.Ammo > 0 && !hud.Reloading

	// Orbit clockwise, stepping in or out to hold the ring.
	dir := to.Normalize()
	tangent := geom.V2(-dir.Y, dir.X)
	radial := geom.Clamp((to.Len()-8)/8, -1, 1)
	move := tangent.Add(dir.Scale(radial)).Normalize()
	in.MoveX, in.MoveY = move.X, move.Y
	in.Sprint = to.Len() < 4

	// Cycle weapons now and then so every arsenal slot sees use.
	in.NextWeapon = a.frame%600 == 0
	return in
}

func lowest(sprites []sim.Sprite) (sim.Sprite, bool) {
	var best sim.Sprite
	found := false
	for _, sp := range sprites {
		if !found || sp.Pos.Y > best.Pos.Y {
			best, found = sp, true
		}
	}
	return best, found
}

func nearest(from geom.Vec3, sprites []sim.Sprite) (sim.Sprite, bool) {
	var best sim.Sprite
	bestDist := math.Inf(1)
	for _, sp := range sprites {
		if d := from.Sub(sp.Pos).Flat().Len(); d < bestDist {
			best, bestDist = sp, d
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// steer maps a horizontal offset onto the -1..1 stick range, easing off
// inside a few pixels so the frog does not jitter.
func steer(dx float64) float64 {
	return geom.Clamp(dx/10, -1, 1)
}
