package sim

import (
	"time"

	"github.com/plus3/tickloop/geom"
)

// Cue is a sound event for the audio collaborator.
type Cue uint8

const (
	CueShoot Cue = iota + 1
	CueEnemyHit
	CueExplosion
	CuePlayerHit
	CueShieldBlock
	CuePowerUp
	CueGameStart
	CueGameOver
	CueVictory
	CueReload
	CueWeaponSwitch
	CueEmpty
)

var cueNames = [...]string{
	CueShoot:        "shoot",
	CueEnemyHit:     "enemy_hit",
	CueExplosion:    "explosion",
	CuePlayerHit:    "player_hit",
	CueShieldBlock:  "shield_block",
	CuePowerUp:      "powerup",
	CueGameStart:    "game_start",
	CueGameOver:     "game_over",
	CueVictory:      "victory",
	CueReload:       "reload",
	CueWeaponSwitch: "weapon_switch",
	CueEmpty:        "empty",
}

func (c Cue) String() string {
	if int(c) < len(cueNames) && cueNames[c] != "" {
		return cueNames[c]
	}
	return "unknown"
}

// CueSink receives sound cues. Calls happen on the ticking goroutine.
type CueSink interface {
	Cue(c Cue)
}

// FeedbackKind is a camera or screen effect request.
type FeedbackKind uint8

const (
	FeedbackShake FeedbackKind = iota + 1
	FeedbackFlash
)

type Feedback struct {
	Kind      FeedbackKind
	Intensity float64
	Duration  time.Duration
}

// FeedbackSink receives visual feedback requests after a hit on the player.
type FeedbackSink interface {
	Feedback(f Feedback)
}

// HUD is the value set pushed to the UI collaborator.
type HUD struct {
	State     State
	Outcome   Outcome
	Score     int
	Kills     int
	Level     int
	Health    int
	MaxHealth int
	Weapon    string
	Ammo      int
	Reserve   int
	Reloading bool
	Effects   EffectMask
}

// HUDSink receives a HUD whenever one of its values changed.
type HUDSink interface {
	UpdateHUD(h HUD)
}

// Input is the control state sampled once per tick.
type Input struct {
	MoveX, MoveY float64 // -1..1
	Aim          geom.Vec3
	Sprint       bool
	Fire         bool
	Reload       bool
	NextWeapon   bool
	PrevWeapon   bool
	Pause        bool
}

// Sprite is the read-only view of one entity handed to the render collaborator.
type Sprite struct {
	Kind      Kind
	Type      string
	Pos       geom.Vec3
	Radius    float64
	Visual    Visual
	Health    int
	MaxHealth int
	Fade      float64 // 1 fresh, 0 expired
	AI        AIState
	Shielded  bool
}
