package sim_test

import (
	"testing"
	"time"

	"github.com/plus3/tickloop/config"
	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/geom"
	"github.com/plus3/tickloop/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type recorder struct {
	cues     []sim.Cue
	feedback []sim.Feedback
	huds     []sim.HUD
}

func (r *recorder) Cue(c sim.Cue)           { r.cues = append(r.cues, c) }
func (r *recorder) Feedback(f sim.Feedback) { r.feedback = append(r.feedback, f) }
func (r *recorder) UpdateHUD(h sim.HUD)     { r.huds = append(r.huds, h) }

func (r *recorder) count(c sim.Cue) (n int) {
	for _, got := range r.cues {
		if got == c {
			n++
		}
	}
	return n
}

// quiet turns off every timer driven spawn so a test controls what exists,
// and keeps swamp enemies where they were placed.
func quiet(t *config.Tuning) {
	for _, g := range []*config.Game{&t.Swamp, &t.Arena} {
		g.Spawn.EnemyInterval = config.Duration{}
		g.Spawn.PowerUpInterval = config.Duration{}
		g.Spawn.DifficultyStep = config.Duration{}
		g.Spawn.Initial = 0
	}
	for name, e := range t.Swamp.Enemies {
		e.Patterns = []string{"straight"}
		t.Swamp.Enemies[name] = e
	}
}

func withDummy(t *config.Tuning) {
	t.Swamp.Enemies["dummy"] = config.Enemy{
		Health:     10,
		Damage:     1,
		Radius:     10,
		Projectile: "venom",
		Patterns:   []string{"straight"},
	}
}

func newSession(t *testing.T, mode sim.Mode, tune ...func(*config.Tuning)) (*sim.Session, *recorder) {
	t.Helper()

	tuning := config.Default()
	quiet(tuning)
	for _, fn := range tune {
		fn(tuning)
	}

	rec := &recorder{}
	s, err := sim.NewSession(mode, tuning,
		sim.WithSeed(1),
		sim.WithLogger(zaptest.NewLogger(t)),
		sim.WithCues(rec),
		sim.WithFeedback(rec),
		sim.WithHUD(rec),
	)
	require.NoError(t, err)
	s.Start()
	return s, rec
}

func health(s *sim.Session, id ecs.EntityId) *sim.Health {
	return ecs.ReadComponent[sim.Health](s.Storage(), id)
}

func playerHealth(t *testing.T, s *sim.Session) int {
	t.Helper()
	h := health(s, s.Player())
	require.NotNil(t, h, "player should exist")
	return h.Current
}

func snapshot(s *sim.Session) []sim.Sprite {
	var out []sim.Sprite
	s.Scene(func(sp sim.Sprite) { out = append(out, sp) })
	return out
}

func sprite(s *sim.Session, typ string) (sim.Sprite, bool) {
	for _, sp := range snapshot(s) {
		if sp.Type == typ {
			return sp, true
		}
	}
	return sim.Sprite{}, false
}

func venomOnPlayer(s *sim.Session) ecs.EntityId {
	p := s.Game().Player
	return s.SpawnProjectile("venom", sim.SideHostile, geom.V2(p.X, p.Y), geom.Vec3{}, 0)
}

func TestNewSession(t *testing.T) {
	t.Run("unknown mode", func(t *testing.T) {
		_, err := sim.NewSession("pinball", nil)
		assert.Error(t, err)
	})

	t.Run("ready until started", func(t *testing.T) {
		s, err := sim.NewSession(sim.ModeSwamp, nil)
		require.NoError(t, err)
		assert.Equal(t, sim.StateReady, s.State())
		assert.Zero(t, s.Storage().Len())

		s.Tick(time.Second, sim.Input{})
		assert.Zero(t, s.Storage().Len(), "a ready session does not tick")
	})

	t.Run("start spawns the player", func(t *testing.T) {
		s, rec := newSession(t, sim.ModeSwamp)
		assert.Equal(t, sim.StateRunning, s.State())
		assert.Equal(t, 1, s.Count(sim.KindPlayer))
		assert.Equal(t, 3, playerHealth(t, s))
		assert.Equal(t, 1, rec.count(sim.CueGameStart))
		require.NotEmpty(t, rec.huds)
		assert.Equal(t, 3, rec.huds[len(rec.huds)-1].Health)
	})

	t.Run("arena initial wave", func(t *testing.T) {
		s, _ := newSession(t, sim.ModeArena, func(t *config.Tuning) { t.Arena.Spawn.Initial = 3 })
		assert.Equal(t, 3, s.Count(sim.KindEnemy))
		assert.Equal(t, "Holy Pistol", s.HUD().Weapon)
		assert.Equal(t, 12, s.HUD().Ammo)
	})
}

func TestTickZeroIsIdempotent(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp, withDummy)

	s.SpawnEnemy("dummy", geom.V2(200, 200))
	s.SpawnEnemy("dummy", geom.V2(600, 100))
	s.SpawnProjectile("venom", sim.SideHostile, geom.V2(100, 100), geom.V2(0, 180), 0)
	s.SpawnPowerUp("shield", geom.V2(700, 50))
	s.ApplyPowerUp("rapid_fire")

	// a kill leaves particles behind
	s.SpawnEnemy("mosquito", geom.V2(300, 300))
	s.SpawnProjectile("tongue", sim.SidePlayer, geom.V2(300, 300), geom.Vec3{}, 0)
	s.Tick(0, sim.Input{})
	require.NotZero(t, s.Count(sim.KindParticle))

	before := snapshot(s)
	remaining := s.Effects().Remaining(sim.EffectRapidFire)

	for range 3 {
		s.Tick(0, sim.Input{})
	}

	assert.Equal(t, before, snapshot(s))
	assert.Equal(t, remaining, s.Effects().Remaining(sim.EffectRapidFire))
	assert.True(t, s.Effects().RapidFire)
}

func TestZeroStepNeitherFiresNorThinks(t *testing.T) {
	t.Run("swamp tongue", func(t *testing.T) {
		s, rec := newSession(t, sim.ModeSwamp)
		s.Tick(0, sim.Input{Fire: true})

		assert.Zero(t, s.Count(sim.KindProjectile))
		assert.Zero(t, rec.count(sim.CueShoot))
	})

	t.Run("arena arsenal and enemies", func(t *testing.T) {
		s, rec := newSession(t, sim.ModeArena)
		s.SpawnEnemy("dark_spirit", geom.V2(5, 0))
		hud := s.HUD()

		for range 3 {
			s.Tick(0, sim.Input{Fire: true, Reload: true, NextWeapon: true, Aim: geom.V2(1, 0)})
		}

		assert.Zero(t, s.Count(sim.KindProjectile))
		assert.Zero(t, rec.count(sim.CueShoot))
		assert.Zero(t, rec.count(sim.CueWeaponSwitch))
		assert.Equal(t, hud.Weapon, s.HUD().Weapon)
		assert.Equal(t, hud.Ammo, s.HUD().Ammo)

		e, ok := sprite(s, "dark_spirit")
		require.True(t, ok)
		assert.Equal(t, sim.AIIdle, e.AI)
	})
}

func TestShotExpiresWithoutHit(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp, withDummy)

	enemy := s.SpawnEnemy("dummy", geom.V2(200, 200))
	stray := s.SpawnProjectile("tongue", sim.SidePlayer, geom.V2(100, 100), geom.Vec3{}, 0)
	// hostile shots pass through enemies, so this one only ever expires
	over := s.SpawnProjectile("tongue", sim.SideHostile, geom.V2(200, 200), geom.Vec3{}, 0)

	s.Tick(999*time.Millisecond, sim.Input{})
	assert.True(t, s.Storage().Exists(stray))
	assert.True(t, s.Storage().Exists(over))

	s.Tick(2*time.Millisecond, sim.Input{})
	assert.False(t, s.Storage().Exists(stray))
	assert.False(t, s.Storage().Exists(over))
	require.True(t, s.Storage().Exists(enemy))
	assert.Equal(t, 10, health(s, enemy).Current)
	assert.Zero(t, s.Progress().Kills)
}

func TestProjectileLeavingBoundsIsRemoved(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp)

	// swamp bounds are 800x600 with a 50px margin
	inside := s.SpawnProjectile("tongue", sim.SidePlayer, geom.V2(840, 300), geom.Vec3{}, 0)
	beyond := s.SpawnProjectile("tongue", sim.SidePlayer, geom.V2(900, 300), geom.Vec3{}, 0)
	above := s.SpawnProjectile("venom", sim.SideHostile, geom.V2(400, -80), geom.Vec3{}, 0)

	s.Tick(time.Millisecond, sim.Input{})

	assert.True(t, s.Storage().Exists(inside))
	assert.False(t, s.Storage().Exists(beyond))
	assert.False(t, s.Storage().Exists(above))
}

func TestProjectileKillsEnemy(t *testing.T) {
	s, rec := newSession(t, sim.ModeSwamp, withDummy)

	enemy := s.SpawnEnemy("dummy", geom.V2(200, 200))
	shot := s.SpawnProjectile("tongue", sim.SidePlayer, geom.V2(200, 200), geom.Vec3{}, 10)

	s.Tick(0, sim.Input{})

	assert.False(t, s.Storage().Exists(enemy))
	assert.False(t, s.Storage().Exists(shot))
	assert.Equal(t, 10, s.Progress().Score)
	assert.Equal(t, 1, s.Progress().Kills)
	assert.Equal(t, 1, rec.count(sim.CueExplosion))
	assert.NotZero(t, s.Count(sim.KindParticle))
	assert.Equal(t, 10, s.HUD().Score)
}

func TestProjectileWoundsEnemy(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp, withDummy)

	enemy := s.SpawnEnemy("dummy", geom.V2(200, 200))
	shot := s.SpawnProjectile("tongue", sim.SidePlayer, geom.V2(200, 200), geom.Vec3{}, 4)

	s.Tick(0, sim.Input{})

	require.True(t, s.Storage().Exists(enemy))
	assert.Equal(t, 6, health(s, enemy).Current)
	assert.False(t, s.Storage().Exists(shot))
	assert.Zero(t, s.Progress().Score)
}

func TestSecondShotOnDeadEnemyIsSkipped(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp)

	enemy := s.SpawnEnemy("mosquito", geom.V2(200, 200))
	first := s.SpawnProjectile("tongue", sim.SidePlayer, geom.V2(200, 200), geom.Vec3{}, 0)
	second := s.SpawnProjectile("tongue", sim.SidePlayer, geom.V2(200, 200), geom.Vec3{}, 0)

	s.Tick(0, sim.Input{})

	assert.False(t, s.Storage().Exists(enemy))
	assert.False(t, s.Storage().Exists(first), "first match wins")
	assert.True(t, s.Storage().Exists(second), "nothing left to hit")
	assert.Equal(t, 1, s.Progress().Kills)
}

func TestScoreBoostMultipliesKills(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp)
	s.ApplyPowerUp("score_boost")

	s.SpawnEnemy("mosquito", geom.V2(200, 200))
	s.SpawnProjectile("tongue", sim.SidePlayer, geom.V2(200, 200), geom.Vec3{}, 0)
	s.Tick(0, sim.Input{})

	assert.Equal(t, 20, s.Progress().Score)
}

func TestTwoHitsLeaveOneLife(t *testing.T) {
	s, rec := newSession(t, sim.ModeSwamp)
	require.Equal(t, 3, playerHealth(t, s))

	venomOnPlayer(s)
	s.Tick(time.Millisecond, sim.Input{})
	assert.Equal(t, 2, playerHealth(t, s))
	assert.Equal(t, 1, rec.count(sim.CuePlayerHit))
	require.NotEmpty(t, rec.feedback)
	assert.Equal(t, sim.FeedbackShake, rec.feedback[0].Kind)

	// still invincible: the venom is spent without damage
	spent := venomOnPlayer(s)
	s.Tick(time.Millisecond, sim.Input{})
	assert.Equal(t, 2, playerHealth(t, s))
	assert.False(t, s.Storage().Exists(spent))

	s.Tick(time.Second, sim.Input{})
	venomOnPlayer(s)
	s.Tick(time.Millisecond, sim.Input{})

	assert.Equal(t, 1, playerHealth(t, s))
	assert.Equal(t, sim.StateRunning, s.State())
	assert.Equal(t, 1, s.HUD().Health)
}

func TestShieldHoldsUntilExpiry(t *testing.T) {
	s, rec := newSession(t, sim.ModeSwamp)
	s.ApplyPowerUp("shield")
	require.True(t, s.Effects().Shield)

	for range 3 {
		venomOnPlayer(s)
		s.Tick(time.Millisecond, sim.Input{})
	}
	assert.Equal(t, 3, playerHealth(t, s))
	assert.Equal(t, 3, rec.count(sim.CueShieldBlock))
	assert.True(t, s.Effects().Shield, "blocking does not use the shield up")

	s.Tick(8*time.Second, sim.Input{})
	assert.False(t, s.Effects().Shield)

	venomOnPlayer(s)
	s.Tick(time.Millisecond, sim.Input{})
	assert.Equal(t, 2, playerHealth(t, s))
}

func TestBugContactRemovesBug(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp)
	p := s.Game().Player

	bug := s.SpawnEnemy("mosquito", geom.V2(p.X, p.Y))
	s.Tick(0, sim.Input{})

	assert.False(t, s.Storage().Exists(bug))
	assert.Equal(t, 2, playerHealth(t, s))
	assert.Zero(t, s.Progress().Kills, "contact is not a kill")
}

func TestRapidFireExpiresOnce(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp)
	s.ApplyPowerUp("rapid_fire")

	s.Tick(4999*time.Millisecond, sim.Input{})
	assert.True(t, s.Effects().RapidFire)

	s.Tick(2*time.Millisecond, sim.Input{})
	effects := s.Effects()
	assert.False(t, effects.RapidFire)
	assert.Empty(t, effects.Active)

	s.Tick(time.Second, sim.Input{})
	assert.False(t, s.Effects().RapidFire)
}

func TestPowerUpRefreshes(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp)
	s.ApplyPowerUp("rapid_fire")
	s.Tick(3*time.Second, sim.Input{})
	s.ApplyPowerUp("rapid_fire")

	assert.InDelta(t, 5.0, s.Effects().Remaining(sim.EffectRapidFire), 1e-9)
	assert.Len(t, s.Effects().Active, 1)
}

func TestHealthPickupIsCapped(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp)
	for range 5 {
		s.ApplyPowerUp("health")
	}
	assert.Equal(t, 5, playerHealth(t, s))
	assert.Empty(t, s.Effects().Active)
}

func TestPowerUpPickup(t *testing.T) {
	s, rec := newSession(t, sim.ModeSwamp)
	p := s.Game().Player

	pickup := s.SpawnPowerUp("shield", geom.V2(p.X, p.Y))
	s.Tick(time.Millisecond, sim.Input{})

	assert.False(t, s.Storage().Exists(pickup))
	assert.True(t, s.Effects().Shield)
	assert.True(t, s.HUD().Effects.Has(sim.EffectShield))
	assert.Equal(t, 1, rec.count(sim.CuePowerUp))

	player, ok := sprite(s, "player")
	require.True(t, ok)
	assert.True(t, player.Shielded)
}

func TestTongueFire(t *testing.T) {
	fire := sim.Input{Fire: true}

	t.Run("single shot with cooldown", func(t *testing.T) {
		s, rec := newSession(t, sim.ModeSwamp)
		s.Tick(time.Millisecond, fire)
		assert.Equal(t, 1, s.Count(sim.KindProjectile))

		s.Tick(100*time.Millisecond, fire)
		assert.Equal(t, 1, s.Count(sim.KindProjectile), "cooling down")

		s.Tick(200*time.Millisecond, fire)
		assert.Equal(t, 2, s.Count(sim.KindProjectile))
		assert.Equal(t, 2, rec.count(sim.CueShoot))
	})

	t.Run("rapid fire", func(t *testing.T) {
		s, _ := newSession(t, sim.ModeSwamp)
		s.ApplyPowerUp("rapid_fire")
		s.Tick(time.Millisecond, fire)
		s.Tick(100*time.Millisecond, fire)
		assert.Equal(t, 2, s.Count(sim.KindProjectile))
	})

	t.Run("multi shot fans out", func(t *testing.T) {
		s, _ := newSession(t, sim.ModeSwamp)
		s.ApplyPowerUp("multi_shot")
		s.Tick(time.Millisecond, fire)
		require.Equal(t, 3, s.Count(sim.KindProjectile))

		var xs []float64
		s.Scene(func(sp sim.Sprite) {
			if sp.Kind == sim.KindProjectile {
				xs = append(xs, sp.Pos.X)
			}
		})
		p := s.Game().Player
		assert.InDeltaSlice(t, []float64{p.X - 15, p.X, p.X + 15}, xs, 1e-9)
	})
}

func TestPlayerStaysInBounds(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp)
	for range 10 {
		s.Tick(time.Second, sim.Input{MoveX: -1, MoveY: 1})
	}
	p, ok := sprite(s, "player")
	require.True(t, ok)
	assert.Equal(t, geom.V2(30, 570), p.Pos)
}

func TestPlayerDeathEndsSession(t *testing.T) {
	s, rec := newSession(t, sim.ModeSwamp)
	p := s.Game().Player

	s.SpawnProjectile("venom", sim.SideHostile, geom.V2(p.X, p.Y), geom.Vec3{}, 5)
	s.Tick(time.Millisecond, sim.Input{})

	assert.Equal(t, sim.StateOver, s.State())
	assert.Equal(t, sim.OutcomeLose, s.Outcome())
	assert.Zero(t, s.Storage().Len())
	assert.Equal(t, 1, rec.count(sim.CueGameOver))

	last := rec.huds[len(rec.huds)-1]
	assert.Equal(t, sim.StateOver, last.State)
	assert.Zero(t, last.Health)

	// a finished session ignores ticks until restarted
	s.Tick(time.Second, sim.Input{})
	assert.Zero(t, s.Storage().Len())

	s.Start()
	assert.Equal(t, sim.StateRunning, s.State())
	assert.Equal(t, 3, playerHealth(t, s))
	assert.Zero(t, s.Progress().Score)
}

func TestScoreTargetWins(t *testing.T) {
	s, rec := newSession(t, sim.ModeSwamp, func(t *config.Tuning) { t.Swamp.Score.Target = 10 })

	s.SpawnEnemy("mosquito", geom.V2(200, 200))
	s.SpawnProjectile("tongue", sim.SidePlayer, geom.V2(200, 200), geom.Vec3{}, 0)
	s.Tick(0, sim.Input{})

	assert.Equal(t, sim.OutcomeWin, s.Outcome())
	assert.Equal(t, 1, rec.count(sim.CueVictory))
}

func TestResetAndEnd(t *testing.T) {
	s, rec := newSession(t, sim.ModeSwamp)
	s.SpawnEnemy("wasp", geom.V2(100, 100))

	s.Reset()
	assert.Equal(t, sim.StateReady, s.State())
	assert.Zero(t, s.Storage().Len())

	s.End(sim.OutcomeWin)
	assert.Equal(t, sim.OutcomeNone, s.Outcome(), "only a running session can end")

	s.Start()
	s.ApplyPowerUp("shield")
	s.End(sim.OutcomeWin)
	assert.Equal(t, sim.OutcomeWin, s.Outcome())
	assert.False(t, s.Effects().Shield, "effects never cross sessions")
	assert.Equal(t, 1, rec.count(sim.CueVictory))
}

func TestPauseHoldsTheSession(t *testing.T) {
	s, _ := newSession(t, sim.ModeSwamp)
	s.ApplyPowerUp("rapid_fire")

	s.Tick(10*time.Second, sim.Input{Pause: true, MoveX: 1})
	assert.True(t, s.Effects().RapidFire)
	p, _ := sprite(s, "player")
	assert.Equal(t, s.Game().Player.X, p.Pos.X)
}

func TestHUDOnlyPushedOnChange(t *testing.T) {
	s, rec := newSession(t, sim.ModeSwamp)
	pushed := len(rec.huds)

	s.Tick(0, sim.Input{})
	s.Tick(time.Millisecond, sim.Input{})
	assert.Len(t, rec.huds, pushed)

	venomOnPlayer(s)
	s.Tick(time.Millisecond, sim.Input{})
	assert.Len(t, rec.huds, pushed+1)
}

func TestSwampSpawnTimers(t *testing.T) {
	tune := func(t *config.Tuning) {
		d := config.Default().Swamp.Spawn
		t.Swamp.Spawn.EnemyInterval = d.EnemyInterval
		t.Swamp.Spawn.PowerUpInterval = d.PowerUpInterval
		t.Swamp.Spawn.DifficultyStep = d.DifficultyStep
	}

	t.Run("enemy interval", func(t *testing.T) {
		s, _ := newSession(t, sim.ModeSwamp, tune)
		s.Tick(1999*time.Millisecond, sim.Input{})
		assert.Zero(t, s.Count(sim.KindEnemy))

		s.Tick(2*time.Millisecond, sim.Input{})
		assert.Equal(t, 1, s.Count(sim.KindEnemy))
		assert.Zero(t, s.Progress().EnemyTimer)
	})

	t.Run("difficulty ramps to a floor", func(t *testing.T) {
		s, _ := newSession(t, sim.ModeSwamp, tune)
		s.Tick(31*time.Second, sim.Input{})
		assert.Equal(t, 2, s.Progress().Level)
		assert.InDelta(t, 1.8, s.Progress().EnemyInterval, 1e-9)
		assert.Equal(t, 1, s.Count(sim.KindPowerUp))

		s.Reset()
		s.Start()
		s.Tick(10*time.Minute, sim.Input{})
		assert.InDelta(t, 0.5, s.Progress().EnemyInterval, 1e-9)
	})
}

func TestUnknownTypeFallsBack(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	s, err := sim.NewSession(sim.ModeSwamp, nil, sim.WithSeed(7), sim.WithLogger(zap.New(core)))
	require.NoError(t, err)
	s.Start()

	a := s.SpawnEnemy("dragonfly", geom.V2(100, 100))
	b := s.SpawnEnemy("dragonfly", geom.V2(300, 100))

	assert.Equal(t, 1, health(s, a).Current)
	assert.True(t, s.Storage().Exists(b))
	assert.Equal(t, 1, logs.FilterMessage("unknown type, using default profile").Len(), "warned once per name")
}

func TestMissingPlayerIsLoggedAndSkipped(t *testing.T) {
	t.Run("power-up before start", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		s, err := sim.NewSession(sim.ModeSwamp, nil, sim.WithSeed(1), sim.WithLogger(zap.New(core)))
		require.NoError(t, err)

		s.ApplyPowerUp("health")

		assert.Equal(t, 1, logs.FilterMessage("power-up target skipped: no player").Len())
		assert.Equal(t, 1, logs.FilterMessage("health skipped: no player").Len())
		assert.Zero(t, logs.FilterMessage("health collected").Len())
	})

	t.Run("timed effect still starts", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		s, err := sim.NewSession(sim.ModeSwamp, nil, sim.WithSeed(1), sim.WithLogger(zap.New(core)))
		require.NoError(t, err)

		s.ApplyPowerUp("shield")

		assert.True(t, s.Effects().Has(sim.EffectShield))
		assert.Equal(t, 1, logs.FilterMessage("effect started").Len())
	})

	t.Run("systems without a player", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		s, err := sim.NewSession(sim.ModeArena, nil, sim.WithSeed(1), sim.WithLogger(zap.New(core)))
		require.NoError(t, err)
		s.Start()

		s.SpawnEnemy("dark_spirit", geom.V2(5, 0))
		require.True(t, s.Storage().Delete(s.Player()))
		s.Tick(100*time.Millisecond, sim.Input{})

		assert.Equal(t, 1, logs.FilterMessage("contact skipped: no player").Len())
		assert.Equal(t, 1, logs.FilterMessage("enemy hunt skipped: no player").Len())
		assert.Zero(t, logs.FilterMessage("enemy state").Len(), "nobody to chase")
		assert.Equal(t, sim.OutcomeLose, s.Outcome())
	})
}

func TestArenaWeapons(t *testing.T) {
	t.Run("magazine empties and reloads", func(t *testing.T) {
		s, rec := newSession(t, sim.ModeArena)
		fire := sim.Input{Fire: true, Aim: geom.V2(1, 0)}

		for range 12 {
			s.Tick(200*time.Millisecond, fire)
		}
		hud := s.HUD()
		assert.Zero(t, hud.Ammo)
		assert.Equal(t, 60, hud.Reserve)
		assert.True(t, hud.Reloading)
		assert.Equal(t, 12, rec.count(sim.CueShoot))
		assert.Equal(t, 1, rec.count(sim.CueReload))

		s.Tick(1500*time.Millisecond, sim.Input{})
		hud = s.HUD()
		assert.Equal(t, 12, hud.Ammo)
		assert.Equal(t, 48, hud.Reserve)
		assert.False(t, hud.Reloading)
	})

	t.Run("switching cycles the rack", func(t *testing.T) {
		s, rec := newSession(t, sim.ModeArena)
		s.Tick(time.Millisecond, sim.Input{NextWeapon: true})
		assert.Equal(t, "Celestial Rifle", s.HUD().Weapon)

		s.Tick(time.Millisecond, sim.Input{PrevWeapon: true})
		s.Tick(time.Millisecond, sim.Input{PrevWeapon: true})
		assert.Equal(t, "Archangel Cannon", s.HUD().Weapon)
		assert.Equal(t, 3, rec.count(sim.CueWeaponSwitch))
	})

	t.Run("shotgun fires pellets", func(t *testing.T) {
		s, _ := newSession(t, sim.ModeArena)
		s.Tick(time.Millisecond, sim.Input{NextWeapon: true})
		s.Tick(time.Millisecond, sim.Input{NextWeapon: true})
		s.Tick(time.Millisecond, sim.Input{Fire: true, Aim: geom.V2(0, 1)})
		assert.Equal(t, 8, s.Count(sim.KindProjectile))
		assert.Equal(t, 7, s.HUD().Ammo)
	})

	t.Run("cannon splash falls off", func(t *testing.T) {
		s, _ := newSession(t, sim.ModeArena)
		for range 3 {
			s.Tick(time.Millisecond, sim.Input{NextWeapon: true})
		}
		require.Equal(t, "Archangel Cannon", s.HUD().Weapon)

		near := s.SpawnEnemy("corrupted_guardian", geom.V2(8, 0))
		far := s.SpawnEnemy("corrupted_guardian", geom.V2(10, 0))

		s.Tick(10*time.Millisecond, sim.Input{Fire: true, Aim: geom.V2(1, 0)})
		for range 100 {
			if s.Count(sim.KindProjectile) == 0 {
				break
			}
			s.Tick(10*time.Millisecond, sim.Input{})
		}

		nearHP, farHP := health(s, near), health(s, far)
		require.NotNil(t, nearHP)
		require.NotNil(t, farHP)
		assert.Less(t, nearHP.Current, farHP.Current)
		assert.Less(t, farHP.Current, 150)
		assert.GreaterOrEqual(t, nearHP.Current, 100, "splash never exceeds the weapon damage")
	})
}

func TestArenaEnemyBehaviour(t *testing.T) {
	t.Run("idle beyond detection", func(t *testing.T) {
		s, _ := newSession(t, sim.ModeArena)
		s.SpawnEnemy("dark_spirit", geom.V2(30, 0))
		s.Tick(100*time.Millisecond, sim.Input{})

		e, ok := sprite(s, "dark_spirit")
		require.True(t, ok)
		assert.Equal(t, sim.AIIdle, e.AI)
		assert.Equal(t, geom.V2(30, 0), e.Pos)
	})

	t.Run("chases and strikes", func(t *testing.T) {
		s, rec := newSession(t, sim.ModeArena)
		s.SpawnEnemy("dark_spirit", geom.V2(10, 0))

		s.Tick(10*time.Millisecond, sim.Input{})
		e, _ := sprite(s, "dark_spirit")
		assert.Equal(t, sim.AIChasing, e.AI)

		for range 40 {
			if playerHealth(t, s) < 100 {
				break
			}
			s.Tick(100*time.Millisecond, sim.Input{})
		}
		assert.Equal(t, 80, playerHealth(t, s))
		assert.Equal(t, 1, rec.count(sim.CuePlayerHit))

		e, _ = sprite(s, "dark_spirit")
		assert.Equal(t, sim.AIAttacking, e.AI)
	})

	t.Run("ranged enemies shoot", func(t *testing.T) {
		s, _ := newSession(t, sim.ModeArena)
		s.SpawnEnemy("fallen_angel", geom.V2(5, 0))

		// idle to chasing, chasing to attacking, then the first bolt
		for range 3 {
			s.Tick(10*time.Millisecond, sim.Input{})
		}
		bolt, ok := sprite(s, "dark_energy")
		require.True(t, ok)
		assert.Less(t, bolt.Pos.X, 5.0)
	})
}

func TestArenaVictory(t *testing.T) {
	s, rec := newSession(t, sim.ModeArena, func(t *config.Tuning) { t.Arena.Score.KillQuota = 1 })

	s.SpawnEnemy("dark_spirit", geom.V2(20, 20))
	s.SpawnProjectile("bullet", sim.SidePlayer, geom.V2(20, 20), geom.Vec3{}, 100)
	s.Tick(0, sim.Input{})

	assert.Equal(t, sim.StateOver, s.State())
	assert.Equal(t, sim.OutcomeWin, s.Outcome())
	assert.Equal(t, 100, rec.huds[len(rec.huds)-1].Score)
}
