package sim

// EffectKind names a power-up effect.
type EffectKind uint8

const (
	EffectNone EffectKind = iota
	EffectRapidFire
	EffectShield
	EffectMultiShot
	EffectScoreBoost
	EffectHealth
)

var effectNames = map[EffectKind]string{
	EffectRapidFire:  "rapid_fire",
	EffectShield:     "shield",
	EffectMultiShot:  "multi_shot",
	EffectScoreBoost: "score_boost",
	EffectHealth:     "health",
}

func (k EffectKind) String() string {
	if name, ok := effectNames[k]; ok {
		return name
	}
	return "none"
}

// ParseEffect maps a config name to its kind.
func ParseEffect(s string) (EffectKind, bool) {
	for kind, name := range effectNames {
		if name == s {
			return kind, true
		}
	}
	return EffectNone, false
}

// Timed reports whether the effect has a duration. Health is applied at once.
func (k EffectKind) Timed() bool {
	switch k {
	case EffectRapidFire, EffectShield, EffectMultiShot, EffectScoreBoost:
		return true
	}
	return false
}

// EffectMask is a bit set of active effects.
type EffectMask uint8

func (m EffectMask) Has(k EffectKind) bool { return m&(1<<k) != 0 }

// TimedEffect is one running effect with its countdown in seconds.
type TimedEffect struct {
	Kind      EffectKind
	Remaining float64
	Value     float64
}

// SessionEffects holds the session-wide modifier flags. It is owned by the
// session and only changed by Apply and Advance.
type SessionEffects struct {
	RapidFire       bool
	Shield          bool
	MultiShot       bool
	ScoreBoost      bool
	MultiShotCount  int
	ScoreMultiplier float64
	Active          []TimedEffect
}

// Apply starts a timed effect, or refreshes its countdown and value when it is
// already running. It reports whether the effect was already running.
func (e *SessionEffects) Apply(kind EffectKind, duration, value float64) bool {
	if !kind.Timed() || duration <= 0 {
		return false
	}

	for i := range e.Active {
		if e.Active[i].Kind == kind {
			e.Active[i].Remaining = duration
			e.Active[i].Value = value
			e.set(kind, value)
			return true
		}
	}

	e.Active = append(e.Active, TimedEffect{Kind: kind, Remaining: duration, Value: value})
	e.set(kind, value)
	return false
}

// Advance counts every effect down by dt and returns the ones that expired,
// with their flags already cleared. dt <= 0 expires nothing.
func (e *SessionEffects) Advance(dt float64) []EffectKind {
	if dt <= 0 {
		return nil
	}

	var expired []EffectKind
	kept := e.Active[:0]
	for _, t := range e.Active {
		t.Remaining -= dt
		if t.Remaining > 0 {
			kept = append(kept, t)
			continue
		}
		e.clear(t.Kind)
		expired = append(expired, t.Kind)
	}
	clear(e.Active[len(kept):])
	e.Active = kept
	return expired
}

// Remaining returns the seconds left on an effect, or 0.
func (e SessionEffects) Remaining(kind EffectKind) float64 {
	for _, t := range e.Active {
		if t.Kind == kind {
			return t.Remaining
		}
	}
	return 0
}

// Has reports whether the effect flag is set.
func (e SessionEffects) Has(kind EffectKind) bool {
	switch kind {
	case EffectRapidFire:
		return e.RapidFire
	case EffectShield:
		return e.Shield
	case EffectMultiShot:
		return e.MultiShot
	case EffectScoreBoost:
		return e.ScoreBoost
	}
	return false
}

// Multiplier is the score multiplier currently in force.
func (e SessionEffects) Multiplier() float64 {
	if e.ScoreBoost && e.ScoreMultiplier > 0 {
		return e.ScoreMultiplier
	}
	return 1
}

// Mask returns the active flags as a bit set.
func (e SessionEffects) Mask() EffectMask {
	var m EffectMask
	for _, kind := range []EffectKind{EffectRapidFire, EffectShield, EffectMultiShot, EffectScoreBoost} {
		if e.Has(kind) {
			m |= 1 << kind
		}
	}
	return m
}

func (e *SessionEffects) set(kind EffectKind, value float64) {
	switch kind {
	case EffectRapidFire:
		e.RapidFire = true
	case EffectShield:
		e.Shield = true
	case EffectMultiShot:
		e.MultiShot = true
		e.MultiShotCount = int(value)
	case EffectScoreBoost:
		e.ScoreBoost = true
		e.ScoreMultiplier = value
	}
}

func (e *SessionEffects) clear(kind EffectKind) {
	switch kind {
	case EffectRapidFire:
		e.RapidFire = false
	case EffectShield:
		e.Shield = false
	case EffectMultiShot:
		e.MultiShot = false
		e.MultiShotCount = 0
	case EffectScoreBoost:
		e.ScoreBoost = false
		e.ScoreMultiplier = 0
	}
}
