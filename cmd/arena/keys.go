package main

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/tickloop/geom"
	"github.com/plus3/tickloop/sim"
)

// Terminals report key presses but never releases. A press keeps its action
// held until the hold window runs out; auto-repeat keeps refreshing it.
const holdWindow = 180 * time.Millisecond

type action uint8

const (
	actUp action = iota
	actDown
	actLeft
	actRight
	actAimUp
	actAimDown
	actAimLeft
	actAimRight
	actFire
	actSprint
	actCount
)

// pulse actions fire for exactly one tick.
type pulse uint8

const (
	pulseReload pulse = 1 << iota
	pulseNext
	pulsePrev
)

type keyState struct {
	until  [actCount]time.Time
	pulses pulse
	aim    geom.Vec3
}

func (k *keyState) hold(a action, now time.Time) {
	k.until[a] = now.Add(holdWindow)
}

func (k *keyState) held(a action, now time.Time) bool {
	return now.Before(k.until[a])
}

// handle records a key event. It reports false for keys it does not know.
func (k *keyState) handle(ev *tcell.EventKey, now time.Time) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		k.hold(actAimUp, now)
	case tcell.KeyDown:
		k.hold(actAimDown, now)
	case tcell.KeyLeft:
		k.hold(actAimLeft, now)
	case tcell.KeyRight:
		k.hold(actAimRight, now)
	case tcell.KeyRune:
		return k.letter(ev.Rune(), now)
	default:
		return false
	}
	return true
}

func (k *keyState) letter(r rune, now time.Time) bool {
	// Upper case movement sprints.
	if r >= 'A' && r <= 'Z' {
		switch r {
		case 'W', 'A', 'S', 'D':
			k.hold(actSprint, now)
			r += 'a' - 'A'
		}
	}

	switch r {
	case 'w':
		k.hold(actUp, now)
	case 's':
		k.hold(actDown, now)
	case 'a':
		k.hold(actLeft, now)
	case 'd':
		k.hold(actRight, now)
	case ' ':
		k.hold(actFire, now)
	case 'r':
		k.pulses |= pulseReload
	case 'e':
		k.pulses |= pulseNext
	case 'q':
		k.pulses |= pulsePrev
	default:
		return false
	}
	return true
}

// input builds the controls for one tick and consumes pending pulses. The
// arena is seen from above with +y pointing up the screen.
func (k *keyState) input(now time.Time) sim.Input {
	var in sim.Input
	if k.held(actLeft, now) {
		in.MoveX--
	}
	if k.held(actRight, now) {
		in.MoveX++
	}
	if k.held(actUp, now) {
		in.MoveY++
	}
	if k.held(actDown, now) {
		in.MoveY--
	}
	in.Sprint = k.held(actSprint, now)

	var aim geom.Vec3
	if k.held(actAimLeft, now) {
		aim.X--
	}
	if k.held(actAimRight, now) {
		aim.X++
	}
	if k.held(actAimUp, now) {
		aim.Y++
	}
	if k.held(actAimDown, now) {
		aim.Y--
	}
	if aim != (geom.Vec3{}) {
		k.aim = aim
	}
	in.Aim = k.aim
	in.Fire = k.held(actFire, now) || aim != (geom.Vec3{})

	in.Reload = k.pulses&pulseReload != 0
	in.NextWeapon = k.pulses&pulseNext != 0
	in.PrevWeapon = k.pulses&pulsePrev != 0
	k.pulses = 0
	return in
}
