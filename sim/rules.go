package sim

import (
	"fmt"
	"image/color"
	"time"
)

// Mode selects the game the session simulates.
type Mode string

const (
	ModeSwamp Mode = "swamp"
	ModeArena Mode = "arena"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSwamp, ModeArena:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want %q or %q)", s, ModeSwamp, ModeArena)
}

const (
	// phaseRate advances the swamp movement patterns, in pattern units per second.
	phaseRate = 3.0
	// circleDescent scales the fall speed of enemies on the circle pattern.
	circleDescent = 0.7
	// venomDrop is how far below a swamp enemy its venom appears.
	venomDrop = 20.0
	// swayRate is the angular frequency of the poison sting sway.
	swayRate = 6.0
	// frameRate converts per-frame factors (friction, spread) to per-second ones.
	frameRate = 60.0

	shakeDuration = 300 * time.Millisecond
	flashDuration = 150 * time.Millisecond
)

var playerColor = color.RGBA{R: 0x32, G: 0xcd, B: 0x32, A: 0xff}

type burstSpec struct {
	typ string
	n   int
}

// rules are the behaviours that differ between the two games.
type rules struct {
	// contactDamage makes enemy bodies hurt the player on touch. Arena enemies
	// strike from their attacking state instead.
	contactDamage bool
	shakeScale    float64

	kill   []burstSpec
	impact []burstSpec
	hurt   []burstSpec
	block  []burstSpec
	pickup []burstSpec
}

var modeRules = map[Mode]rules{
	ModeSwamp: {
		contactDamage: true,
		shakeScale:    8,
		kill:          []burstSpec{{"green", 10}, {"spark", 5}},
		impact:        []burstSpec{{"spark", 3}},
		hurt:          []burstSpec{{"red", 6}},
		block:         []burstSpec{{"spark", 8}},
		pickup:        []burstSpec{{"spark", 8}},
	},
	ModeArena: {
		shakeScale: 0.02,
		kill:       []burstSpec{{"explosion", 8}, {"spark", 5}},
		impact:     []burstSpec{{"spark", 3}},
		hurt:       []burstSpec{{"spark", 4}},
		block:      []burstSpec{{"spark", 8}},
		pickup:     []burstSpec{{"spark", 8}},
	},
}
