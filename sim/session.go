// Package sim is the simulation loop shared by the swamp and arena games.
//
// A Session owns every live entity of one playthrough in an ecs.Storage and
// advances them once per Tick: entity updates, shot collisions, contact with
// the player, timed effects, purge of the dead, spawns, then the outcome check.
// Rendering, audio and the HUD are collaborators the session pushes to.
package sim

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/plus3/tickloop/config"
	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/geom"
	"go.uber.org/zap"
)

// State is the lifecycle position of a session.
type State uint8

const (
	StateReady State = iota
	StateRunning
	StateOver
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateOver:
		return "over"
	}
	return "ready"
}

// Outcome is how a session ended.
type Outcome uint8

const (
	OutcomeNone Outcome = iota
	OutcomeWin
	OutcomeLose
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLose:
		return "lose"
	}
	return "none"
}

// Option configures a Session.
type Option func(*Session)

func WithLogger(log *zap.Logger) Option {
	return func(s *Session) { s.base = log }
}

// WithRand makes every random roll come from r.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) { s.w.rng = r }
}

// WithSeed is WithRand with a PCG source seeded from seed.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

func WithCues(c CueSink) Option {
	return func(s *Session) { s.w.cues = c }
}

func WithFeedback(f FeedbackSink) Option {
	return func(s *Session) { s.w.feedback = f }
}

func WithHUD(h HUDSink) Option {
	return func(s *Session) { s.hud = h }
}

// Session is one playthrough of a game mode.
type Session struct {
	w         *world
	id        uuid.UUID
	base      *zap.Logger
	storage   *ecs.Storage
	scheduler *ecs.Scheduler

	effects  *ecs.Singleton[SessionEffects]
	progress *ecs.Singleton[Progress]
	players  *ecs.View[playerView]
	scene    *ecs.View[sceneView]

	state   State
	outcome Outcome

	hud     HUDSink
	lastHUD HUD
	hudSent bool
}

// NewSession builds every subsystem of a session for mode. A nil tuning uses
// the built-in defaults. The session starts in StateReady.
func NewSession(mode Mode, tuning *config.Tuning, opts ...Option) (*Session, error) {
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}
	if tuning == nil {
		tuning = config.Default()
	}
	if err := tuning.Validate(); err != nil {
		return nil, err
	}

	game := &tuning.Swamp
	if mode == ModeArena {
		game = &tuning.Arena
	}

	registry := ecs.NewComponentRegistry()
	registerComponents(registry)
	storage := ecs.NewStorage(registry)

	s := &Session{
		w: &world{
			mode:    mode,
			game:    game,
			storage: storage,
			warned:  make(map[string]struct{}),
		},
		storage: storage,
		base:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.w.rng == nil {
		s.w.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.newID()

	s.effects = ecs.NewSingleton[SessionEffects](storage)
	s.progress = ecs.NewSingleton(storage, s.freshProgress())
	s.players = ecs.NewView[playerView](storage)
	s.scene = ecs.NewView[sceneView](storage)

	s.scheduler = ecs.NewScheduler(storage)
	s.scheduler.Register(&playerSystem{world: s.w})
	s.scheduler.Register(&enemySystem{world: s.w})
	s.scheduler.Register(&motionSystem{world: s.w})
	s.scheduler.Register(&collisionSystem{world: s.w})
	s.scheduler.Register(&contactSystem{world: s.w})
	s.scheduler.Register(&effectSystem{world: s.w})
	s.scheduler.Register(&spawnSystem{world: s.w})
	s.scheduler.AfterFlush(s.afterFlush)

	s.w.log.Info("session created")
	return s, nil
}

func (s *Session) newID() {
	s.id = uuid.New()
	s.w.log = s.base.With(
		zap.String("session", s.id.String()),
		zap.String("mode", string(s.w.mode)),
	)
}

func (s *Session) freshProgress() Progress {
	return Progress{Level: 1, EnemyInterval: s.w.game.Spawn.EnemyInterval.Seconds()}
}

// clear drops every entity, timer and effect.
func (s *Session) clear() {
	s.storage.Clear()
	s.effects.Set(SessionEffects{})
	s.progress.Set(s.freshProgress())
	s.w.player = 0
	s.w.input = Input{}
}

// Start begins a fresh playthrough: the player and the initial wave are
// spawned and the session is running.
func (s *Session) Start() {
	if s.state != StateReady {
		s.newID()
	}
	s.clear()

	s.w.player = s.storage.Spawn(s.w.playerComponents()...)
	for range s.w.game.Spawn.Initial {
		s.storage.Spawn(s.w.nextEnemy()...)
	}

	s.state = StateRunning
	s.outcome = OutcomeNone
	s.hudSent = false
	s.w.cue(CueGameStart)
	s.w.log.Info("session started", zap.Int("initial_enemies", s.w.game.Spawn.Initial))
	s.pushHUD()
}

// Reset clears the playthrough and returns to StateReady.
func (s *Session) Reset() {
	s.clear()
	s.state = StateReady
	s.outcome = OutcomeNone
	s.hudSent = false
	s.w.log.Info("session reset")
	s.pushHUD()
}

// End finishes the playthrough with outcome and clears every entity. Ending a
// session that is not running does nothing.
func (s *Session) End(outcome Outcome) {
	if s.state != StateRunning {
		return
	}
	s.state = StateOver
	s.outcome = outcome
	s.pushHUD()

	progress := s.progress.Get()
	s.w.log.Info("session ended",
		zap.Stringer("outcome", outcome),
		zap.Int("score", progress.Score),
		zap.Int("kills", progress.Kills),
		zap.Float64("elapsed", progress.Elapsed),
	)
	if outcome == OutcomeWin {
		s.w.cue(CueVictory)
	} else {
		s.w.cue(CueGameOver)
	}

	s.storage.Clear()
	s.effects.Set(SessionEffects{})
	s.w.player = 0
}

// Tick advances a running session by dt using the input sampled for this
// frame. Paused, ready and finished sessions do not advance. Negative steps
// count as zero.
func (s *Session) Tick(dt time.Duration, in Input) {
	if s.state != StateRunning || in.Pause {
		return
	}
	s.w.input = in
	s.scheduler.Once(max(dt, 0).Seconds())
}

func (s *Session) afterFlush(*ecs.UpdateFrame) {
	progress := s.progress.Get()
	score := s.w.game.Score

	switch {
	case !s.playerAlive():
		s.End(OutcomeLose)
	case score.KillQuota > 0 && progress.Kills >= score.KillQuota && s.Count(KindEnemy) == 0:
		s.End(OutcomeWin)
	case score.Target > 0 && progress.Score >= score.Target:
		s.End(OutcomeWin)
	default:
		s.pushHUD()
	}
}

func (s *Session) playerAlive() bool {
	p := s.players.Get(s.w.player)
	return p != nil && !p.Health.Dead()
}

func (s *Session) currentHUD() HUD {
	progress := s.progress.Get()
	effects := s.effects.Get()
	h := HUD{
		State:   s.state,
		Outcome: s.outcome,
		Score:   progress.Score,
		Kills:   progress.Kills,
		Level:   progress.Level,
		Effects: effects.Mask(),
	}

	p := s.players.Get(s.w.player)
	if p == nil {
		return h
	}
	h.Health, h.MaxHealth = p.Current, p.Max
	if a := p.Arsenal; a != nil && a.Current < len(s.w.game.Weapons) {
		h.Weapon = s.w.game.Weapons[a.Current].Name
		h.Ammo = a.Magazine[a.Current]
		h.Reserve = a.Reserve[a.Current]
		h.Reloading = a.Reloading > 0
	}
	return h
}

// pushHUD sends the HUD to its sink when a value changed since the last push.
func (s *Session) pushHUD() {
	h := s.currentHUD()
	if s.hudSent && h == s.lastHUD {
		return
	}
	s.lastHUD, s.hudSent = h, true
	if s.hud != nil {
		s.hud.UpdateHUD(h)
	}
}

// Scene hands one Sprite per live entity to fn, in spawn order.
func (s *Session) Scene(fn func(Sprite)) {
	for v := range s.scene.Values() {
		sp := Sprite{
			Kind:   *v.Kind,
			Pos:    v.Pos,
			Visual: *v.Visual,
			Fade:   1,
		}
		if v.Body != nil {
			sp.Radius = v.Body.Radius
		}
		if v.Health != nil {
			sp.Health, sp.MaxHealth = v.Health.Current, v.Health.Max
		}
		if v.Life != nil && v.Life.Total > 0 {
			sp.Fade = geom.Clamp(v.Life.Remaining/v.Life.Total, 0, 1)
		}

		switch {
		case v.Player != nil:
			sp.Type = "player"
			sp.Shielded = v.Player.Shielded
		case v.Enemy != nil:
			sp.Type = v.Enemy.Type
			sp.AI = v.Enemy.AI
		case v.Projectile != nil:
			sp.Type = v.Projectile.Type
		case v.Particle != nil:
			sp.Type = v.Particle.Type
			sp.Radius = v.Particle.Size / 2
		case v.PowerUp != nil:
			sp.Type = v.PowerUp.Type
		}
		fn(sp)
	}
}

// Count returns the number of live entities of a kind.
func (s *Session) Count(kind Kind) int {
	n := 0
	for v := range s.scene.Values() {
		if *v.Kind == kind {
			n++
		}
	}
	return n
}

func (s *Session) ID() uuid.UUID { return s.id }
func (s *Session) Mode() Mode { return s.w.mode }
func (s *Session) State() State { return s.state }
func (s *Session) Outcome() Outcome { return s.outcome }
func (s *Session) HUD() HUD { return s.lastHUD }
func (s *Session) Player() ecs.EntityId { return s.w.player }
func (s *Session) Storage() *ecs.Storage { return s.storage }
func (s *Session) Scheduler() *ecs.Scheduler { return s.scheduler }
func (s *Session) Game() *config.Game { return s.w.game }
func (s *Session) Progress() Progress { return *s.progress.Get() }

// Effects returns a copy of the running effects.
func (s *Session) Effects() SessionEffects {
	e := *s.effects.Get()
	e.Active = slices.Clone(e.Active)
	return e
}

// SpawnEnemy places an enemy of the named type at pos.
func (s *Session) SpawnEnemy(typ string, pos geom.Vec3) ecs.EntityId {
	return s.storage.Spawn(s.w.enemyComponents(typ, pos)...)
}

// SpawnProjectile places a projectile. Zero damage takes the profile value.
func (s *Session) SpawnProjectile(typ string, side Side, pos, vel geom.Vec3, damage int) ecs.EntityId {
	return s.storage.Spawn(s.w.projectileComponents(shot{
		typ:    typ,
		side:   side,
		pos:    pos,
		vel:    vel,
		damage: damage,
	})...)
}

func (s *Session) SpawnPowerUp(typ string, pos geom.Vec3) ecs.EntityId {
	return s.storage.Spawn(s.w.powerUpComponents(typ, pos)...)
}

// ApplyPowerUp gives the player the effect of the named power-up as if it had
// been collected.
func (s *Session) ApplyPowerUp(typ string) {
	prof, ok := s.w.game.PowerUp(typ)
	if !ok {
		s.w.unknown("powerups", typ)
	}
	effect, ok := ParseEffect(prof.Effect)
	if !ok {
		s.w.unknown("effects", prof.Effect)
		return
	}

	var health *Health
	var state *PlayerState
	if p := s.players.Get(s.w.player); p != nil {
		health, state = p.Health, p.PlayerState
	} else {
		s.w.log.Debug("power-up target skipped: no player", zap.String("type", typ))
	}
	s.w.applyEffect(s.effects.Get(), PowerUp{
		Type:     typ,
		Effect:   effect,
		Duration: prof.Duration.Seconds(),
		Value:    prof.Value,
	}, health, state)
	s.pushHUD()
}
