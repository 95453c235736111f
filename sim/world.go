package sim

import (
	"math"
	"math/rand/v2"

	"github.com/plus3/tickloop/config"
	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/geom"
	"go.uber.org/zap"
)

// Progress is the per-session bookkeeping kept as a singleton.
type Progress struct {
	Score         int
	Kills         int
	Level         int
	Elapsed       float64
	EnemyTimer    float64
	PowerUpTimer  float64
	EnemyInterval float64
}

// world is the state shared by every system of one session.
type world struct {
	mode     Mode
	game     *config.Game
	rng      *rand.Rand
	log      *zap.Logger
	cues     CueSink
	feedback FeedbackSink
	storage  *ecs.Storage
	player   ecs.EntityId
	input    Input
	warned   map[string]struct{}
}

type spawnFunc func(components ...any)

func (w *world) cue(c Cue) {
	if w.cues == nil {
		return
	}
	w.cues.Cue(c)
}

func (w *world) shake(intensity float64) {
	if w.feedback == nil {
		return
	}
	w.feedback.Feedback(Feedback{Kind: FeedbackShake, Intensity: intensity, Duration: shakeDuration})
	w.feedback.Feedback(Feedback{Kind: FeedbackFlash, Intensity: intensity, Duration: flashDuration})
}

// unknown logs a fallback to the default profile once per name.
func (w *world) unknown(table, name string) {
	key := table + "/" + name
	if _, ok := w.warned[key]; ok {
		return
	}
	w.warned[key] = struct{}{}
	w.log.Warn("unknown type, using default profile", zap.String("table", table), zap.String("type", name))
}

func (w *world) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + w.rng.Float64()*(hi-lo)
}

// pick returns a name with probability proportional to its weight, or a
// uniform choice when no weight is set.
func (w *world) pick(names []string, weight func(string) float64) string {
	if len(names) == 0 {
		return config.DefaultProfile
	}

	total := 0.0
	for _, n := range names {
		total += max(weight(n), 0)
	}
	if total <= 0 {
		return names[w.rng.IntN(len(names))]
	}

	roll := w.rng.Float64() * total
	for _, n := range names {
		roll -= max(weight(n), 0)
		if roll < 0 {
			return n
		}
	}
	return names[len(names)-1]
}

func (w *world) playerComponents() []any {
	p := w.game.Player
	facing := geom.V2(0, -1)
	if w.mode == ModeArena {
		facing = geom.V2(1, 0)
	}

	components := []any{
		KindPlayer,
		SidePlayer,
		Transform{Pos: geom.V2(p.X, p.Y)},
		Motion{},
		Body{Radius: p.Radius},
		Health{Current: p.Health, Max: p.MaxHealth},
		PlayerState{Facing: facing},
		Visual{
			Shape:  ShapeCircle,
			Color:  playerColor,
			Width:  p.Radius * 2,
			Height: p.Radius * 2,
			Label:  "player",
		},
	}

	if len(w.game.Weapons) > 0 {
		arsenal := Arsenal{
			Magazine: make([]int, len(w.game.Weapons)),
			Reserve:  make([]int, len(w.game.Weapons)),
		}
		for i, wp := range w.game.Weapons {
			arsenal.Magazine[i] = wp.Magazine
			arsenal.Reserve[i] = wp.Reserve
		}
		components = append(components, arsenal)
	}
	return components
}

func (w *world) enemyComponents(typ string, pos geom.Vec3) []any {
	prof, ok := w.game.Enemy(typ)
	if !ok {
		w.unknown("enemies", typ)
	}

	state := EnemyState{
		Type:       typ,
		Damage:     prof.Damage,
		Speed:      w.uniform(prof.SpeedMin, prof.SpeedMax),
		Projectile: prof.Projectile,
	}
	vel := geom.Vec3{}

	switch w.mode {
	case ModeSwamp:
		state.Pattern = PatternStraight
		if len(prof.Patterns) > 0 {
			name := prof.Patterns[w.rng.IntN(len(prof.Patterns))]
			if p, ok := ParsePattern(name); ok {
				state.Pattern = p
			} else {
				w.unknown("patterns", name)
			}
		}
		state.Amplitude = w.uniform(prof.AmplitudeMin, prof.AmplitudeMax)
		state.ShootRate = w.uniform(prof.ShootMin.Seconds(), prof.ShootMax.Seconds())
		state.OriginX = pos.X
		pos.X = w.patternX(&state, prof.Radius)
		vel = geom.V2(0, state.Speed)
	case ModeArena:
		state.AI = AIIdle
		state.Detection = prof.DetectionRange
		state.AttackRange = prof.AttackRange
		state.AttackCooldown = prof.AttackCooldown.Seconds()
		state.Hover = prof.Hover
		pos.Z = prof.Hover
	}

	return []any{
		KindEnemy,
		SideHostile,
		Transform{Pos: pos},
		Motion{Vel: vel},
		Body{Radius: prof.Radius},
		Health{Current: prof.Health, Max: prof.Health},
		state,
		Visual{
			Shape:  ShapeDiamond,
			Color:  prof.Color.RGBA(),
			Width:  prof.Radius * 2,
			Height: prof.Radius * 2,
			Label:  typ,
		},
	}
}

// patternX is the horizontal position of a swamp enemy for its current phase,
// kept inside the playfield.
func (w *world) patternX(e *EnemyState, radius float64) float64 {
	x := e.OriginX
	switch e.Pattern {
	case PatternZigzag:
		x = e.OriginX + math.Sin(e.Phase*2)*e.Amplitude
	case PatternCircle:
		x = e.OriginX + math.Cos(e.Phase*3)*e.Amplitude*0.5
	}
	b := w.game.Bounds
	return geom.Clamp(x, b.MinX+radius, b.MaxX-radius)
}

// shot describes a projectile to spawn. Zero Damage or Life take the profile value.
type shot struct {
	typ    string
	side   Side
	pos    geom.Vec3
	vel    geom.Vec3
	damage int
	splash float64
	life   float64
}

func (w *world) projectileComponents(s shot) []any {
	prof, ok := w.game.Projectile(s.typ)
	if !ok {
		w.unknown("projectiles", s.typ)
	}

	damage := s.damage
	if damage <= 0 {
		damage = prof.Damage
	}
	life := s.life
	if life <= 0 {
		life = prof.Life.Seconds()
	}

	return []any{
		KindProjectile,
		s.side,
		Transform{Pos: s.pos},
		Motion{Vel: s.vel},
		Body{Radius: prof.Radius},
		Lifetime{Remaining: life, Total: life},
		Projectile{
			Type:   s.typ,
			Damage: damage,
			Splash: s.splash,
			Sway:   prof.Sway,
			Spread: prof.Spread,
		},
		Visual{
			Shape:  ShapeRect,
			Color:  prof.Color.RGBA(),
			Width:  prof.Radius * 2,
			Height: prof.Radius * 5,
			Label:  s.typ,
		},
	}
}

func (w *world) powerUpComponents(typ string, pos geom.Vec3) []any {
	prof, ok := w.game.PowerUp(typ)
	if !ok {
		w.unknown("powerups", typ)
	}
	effect, ok := ParseEffect(prof.Effect)
	if !ok {
		w.unknown("effects", prof.Effect)
		effect = EffectHealth
	}

	life := prof.Life.Seconds()
	return []any{
		KindPowerUp,
		SideNeutral,
		Transform{Pos: pos},
		Motion{Vel: geom.V2(0, prof.Speed)},
		Body{Radius: prof.Radius},
		Lifetime{Remaining: life, Total: life},
		PowerUp{
			Type:     typ,
			Effect:   effect,
			Duration: prof.Duration.Seconds(),
			Value:    prof.Value,
		},
		Visual{
			Shape:  ShapeCross,
			Color:  prof.Color.RGBA(),
			Width:  prof.Radius * 2,
			Height: prof.Radius * 2,
			Label:  typ,
		},
	}
}

// burst spawns n particles of one type around a point.
func (w *world) burst(spawn spawnFunc, typ string, at geom.Vec3, n int) {
	prof, ok := w.game.Particle(typ)
	if !ok {
		w.unknown("particles", typ)
	}

	for i := 0; i < n; i++ {
		life := w.uniform(prof.LifeMin.Seconds(), prof.LifeMax.Seconds())
		size := w.uniform(prof.SizeMin, prof.SizeMax)
		vel := geom.Vec3{
			X: w.uniform(-prof.BurstX, prof.BurstX),
			Y: w.uniform(prof.BurstMin, prof.BurstMax),
		}

		spawn(
			KindParticle,
			Transform{Pos: at},
			Motion{Vel: vel},
			Lifetime{Remaining: life, Total: life},
			Particle{
				Type:     typ,
				Size:     size,
				Gravity:  prof.Gravity,
				Friction: prof.Friction,
				Growth:   prof.Growth,
				Jitter:   prof.Jitter,
			},
			Visual{
				Shape:  ShapeCircle,
				Color:  prof.Color.RGBA(),
				Width:  size,
				Height: size,
			},
		)
	}
}

// outside reports whether a point left the playfield by more than the margin.
func (w *world) outside(p geom.Vec3) bool {
	b := w.game.Bounds
	return p.X < b.MinX-b.Margin || p.X > b.MaxX+b.Margin ||
		p.Y < b.MinY-b.Margin || p.Y > b.MaxY+b.Margin
}

// countdown lowers t by dt and reports whether it ran out during this step.
// A zero step never runs anything out.
func countdown(t *float64, dt float64) bool {
	if dt <= 0 {
		return false
	}
	*t -= dt
	return *t <= 0
}

// ApplyDamage lowers health by damage, never below zero, and reports whether
// the target died. Negative damage is ignored.
func ApplyDamage(h *Health, damage int) bool {
	if damage > 0 {
		h.Current = max(0, h.Current-damage)
	}
	return h.Dead()
}

// Heal raises health by amount, never above the maximum.
func Heal(h *Health, amount int) {
	if amount > 0 {
		h.Current = min(h.Max, h.Current+amount)
	}
}
