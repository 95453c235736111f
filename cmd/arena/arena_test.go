package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/tickloop/config"
	"github.com/plus3/tickloop/geom"
	"github.com/plus3/tickloop/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyHoldWindow(t *testing.T) {
	var k keyState
	now := time.Now()

	require.True(t, k.handle(tcell.NewEventKey(tcell.KeyRune, 'd', tcell.ModNone), now))
	require.True(t, k.handle(tcell.NewEventKey(tcell.KeyRune, 'W', tcell.ModNone), now))

	in := k.input(now.Add(50 * time.Millisecond))
	assert.Equal(t, 1.0, in.MoveX)
	assert.Equal(t, 1.0, in.MoveY, "w moves up the screen")
	assert.True(t, in.Sprint)
	assert.False(t, in.Fire)

	in = k.input(now.Add(holdWindow))
	assert.Zero(t, in.MoveX)
	assert.Zero(t, in.MoveY)

	assert.False(t, k.handle(tcell.NewEventKey(tcell.KeyRune, 'z', tcell.ModNone), now))
}

func TestKeyPulsesLastOneTick(t *testing.T) {
	var k keyState
	now := time.Now()

	k.handle(tcell.NewEventKey(tcell.KeyRune, 'e', tcell.ModNone), now)
	k.handle(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone), now)

	in := k.input(now)
	assert.True(t, in.NextWeapon)
	assert.True(t, in.Reload)
	assert.False(t, in.PrevWeapon)

	in = k.input(now)
	assert.False(t, in.NextWeapon)
	assert.False(t, in.Reload)
}

func TestArrowsAimAndFire(t *testing.T) {
	var k keyState
	now := time.Now()

	k.handle(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), now)
	in := k.input(now)
	assert.Equal(t, geom.V2(-1, 0), in.Aim)
	assert.True(t, in.Fire)

	in = k.input(now.Add(time.Second))
	assert.Equal(t, geom.V2(-1, 0), in.Aim, "aim sticks after release")
	assert.False(t, in.Fire)
}

func TestViewportProject(t *testing.T) {
	vp := viewport{
		bounds: config.Bounds{MinX: -40, MaxX: 40, MinY: -40, MaxY: 40},
		width:  80,
		height: 20,
	}

	col, row, ok := vp.project(geom.V2(0, 0))
	require.True(t, ok)
	assert.Equal(t, 40, col)
	assert.Equal(t, 10, row)

	col, row, ok = vp.project(geom.V2(40, 40))
	require.True(t, ok)
	assert.Equal(t, 79, col)
	assert.Equal(t, 0, row, "top of the arena is the first row")

	_, _, ok = vp.project(geom.V2(41, 0))
	assert.False(t, ok)

	_, _, ok = viewport{bounds: vp.bounds}.project(geom.V2(0, 0))
	assert.False(t, ok, "no room to draw")
}

func TestGlyphsAndHUD(t *testing.T) {
	assert.Equal(t, '@', glyph(sim.Sprite{Kind: sim.KindPlayer}))
	assert.Equal(t, 'F', glyph(sim.Sprite{Kind: sim.KindEnemy, Type: "fallen_angel"}))
	assert.Equal(t, '.', glyph(sim.Sprite{Kind: sim.KindParticle}))
	assert.Less(t, layer(sim.KindParticle), layer(sim.KindPlayer))

	lines := hudLines(sim.HUD{State: sim.StateRunning, Health: 80, MaxHealth: 100, Weapon: "Holy Pistol", Ammo: 5, Reserve: 48}, false, false)
	assert.Contains(t, lines[0], "HP 80/100")
	assert.Contains(t, lines[0], "Holy Pistol 5/48")
	assert.Empty(t, lines[1])

	lines = hudLines(sim.HUD{State: sim.StateOver, Outcome: sim.OutcomeWin, Reloading: true}, false, true)
	assert.Contains(t, lines[0], "reloading")
	assert.Contains(t, lines[1], "VICTORY")
	assert.Contains(t, lines[1], "[muted]")
}

type keySource struct {
	left int
}

func (k *keySource) PollEvent() tcell.Event {
	if k.left == 0 {
		return nil
	}
	if k.left > 0 {
		k.left--
	}
	return tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone)
}

func drain(t *testing.T, events <-chan tcell.Event) int {
	t.Helper()
	n := 0
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return n
			}
			n++
		case <-time.After(time.Second):
			t.Fatal("event pump never stopped")
		}
	}
}

func TestPumpStops(t *testing.T) {
	t.Run("screen finished", func(t *testing.T) {
		done := make(chan struct{})
		defer close(done)
		assert.Equal(t, 3, drain(t, pump(&keySource{left: 3}, done)))
	})

	t.Run("reader gone with a full buffer", func(t *testing.T) {
		done := make(chan struct{})
		events := pump(&keySource{left: -1}, done)
		require.Eventually(t, func() bool { return len(events) == cap(events) }, time.Second, time.Millisecond)

		close(done)
		assert.Less(t, drain(t, events), 1000)
	})
}
