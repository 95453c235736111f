package sim

import (
	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/geom"
	"go.uber.org/zap"
)

// spawnSystem runs the enemy and power-up timers and the difficulty ramp.
type spawnSystem struct {
	*world
	Enemies  ecs.Query[enemyView]
	Progress ecs.Singleton[Progress]
}

func (s *spawnSystem) Execute(frame *ecs.UpdateFrame) {
	dt := frame.DeltaTime
	if dt <= 0 {
		return
	}
	cmds := frame.Commands
	spawn := s.game.Spawn
	progress := s.Progress.Get()
	progress.Elapsed += dt

	if step := spawn.DifficultyStep.Seconds(); step > 0 {
		for level := int(progress.Elapsed/step) + 1; progress.Level < level; {
			progress.Level++
			progress.EnemyInterval = max(spawn.MinInterval.Seconds(), progress.EnemyInterval-spawn.IntervalDecrease.Seconds())
			s.log.Info("level up",
				zap.Int("level", progress.Level),
				zap.Float64("enemy_interval", progress.EnemyInterval),
			)
		}
	}

	if progress.EnemyInterval > 0 {
		progress.EnemyTimer += dt
		if progress.EnemyTimer >= progress.EnemyInterval {
			progress.EnemyTimer = 0
			if s.room(frame, progress) {
				cmds.Spawn(s.nextEnemy()...)
			}
		}
	}

	if interval := spawn.PowerUpInterval.Seconds(); interval > 0 {
		progress.PowerUpTimer += dt
		if progress.PowerUpTimer >= interval {
			progress.PowerUpTimer = 0
			cmds.Spawn(s.nextPowerUp()...)
		}
	}
}

// room reports whether another enemy may enter: the alive cap is not reached
// and the kill quota, when set, is still open.
func (s *spawnSystem) room(frame *ecs.UpdateFrame, progress *Progress) bool {
	if quota := s.game.Score.KillQuota; quota > 0 && progress.Kills >= quota {
		return false
	}
	if limit := s.game.Spawn.MaxAlive; limit > 0 {
		alive := 0
		for e := range s.Enemies.Values() {
			if !frame.Commands.Deleting(e.EntityId) {
				alive++
			}
		}
		return alive < limit
	}
	return true
}

// nextEnemy rolls an enemy type and an entry point.
func (w *world) nextEnemy() []any {
	typ := w.pick(w.game.EnemyNames(), func(name string) float64 {
		prof, _ := w.game.Enemy(name)
		return prof.Weight
	})
	return w.enemyComponents(typ, w.entryPoint())
}

func (w *world) nextPowerUp() []any {
	typ := w.pick(w.game.PowerUpNames(), func(name string) float64 {
		prof, _ := w.game.PowerUp(name)
		return prof.Weight
	})
	spawn := w.game.Spawn
	return w.powerUpComponents(typ, geom.V2(w.uniform(spawn.XMin, spawn.XMax), spawn.Y))
}

// entryPoint is a random spawn point in the arena, or a random spot along the
// top edge in the swamp.
func (w *world) entryPoint() geom.Vec3 {
	spawn := w.game.Spawn
	if len(spawn.Points) > 0 {
		pt := spawn.Points[w.rng.IntN(len(spawn.Points))]
		return geom.V2(pt[0], pt[1])
	}
	if spawn.XMax > spawn.XMin {
		return geom.V2(w.uniform(spawn.XMin, spawn.XMax), spawn.Y)
	}
	b := w.game.Bounds
	return geom.V2(w.uniform(b.MinX, b.MaxX), w.uniform(b.MinY, b.MaxY))
}
