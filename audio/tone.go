// Package audio turns simulation cues into short synthesized beeps.
package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/plus3/tickloop/sim"
)

// SampleRate is the rate every cue is rendered at.
const SampleRate = beep.SampleRate(44100)

// floor is the gain a note decays to by its end.
const floor = 0.01

// Note is one square-wave beep.
type Note struct {
	Freq     float64
	Duration time.Duration
	Gain     float64
}

var cueNotes = map[sim.Cue][]Note{
	sim.CueShoot:        {{800, 100 * time.Millisecond, 0.3}},
	sim.CuePlayerHit:    {{200, 300 * time.Millisecond, 0.3}},
	sim.CueEnemyHit:     {{600, 100 * time.Millisecond, 0.3}},
	sim.CueExplosion:    {{150, 400 * time.Millisecond, 0.3}},
	sim.CueShieldBlock:  {{1000, 80 * time.Millisecond, 0.2}, {1200, 80 * time.Millisecond, 0.2}},
	sim.CuePowerUp:      {{400, 100 * time.Millisecond, 0.3}, {600, 100 * time.Millisecond, 0.3}, {800, 100 * time.Millisecond, 0.3}},
	sim.CueGameStart:    {{300, 100 * time.Millisecond, 0.3}, {500, 150 * time.Millisecond, 0.3}},
	sim.CueGameOver:     {{400, 300 * time.Millisecond, 0.3}, {300, 300 * time.Millisecond, 0.3}, {200, 500 * time.Millisecond, 0.3}},
	sim.CueVictory:      {{500, 150 * time.Millisecond, 0.3}, {650, 150 * time.Millisecond, 0.3}, {800, 400 * time.Millisecond, 0.3}},
	sim.CueReload:       {{350, 60 * time.Millisecond, 0.2}, {450, 60 * time.Millisecond, 0.2}},
	sim.CueWeaponSwitch: {{700, 50 * time.Millisecond, 0.2}},
	sim.CueEmpty:        {{120, 60 * time.Millisecond, 0.2}},
}

// Notes returns the melody of a cue, or nil for a silent one.
func Notes(c sim.Cue) []Note {
	return cueNotes[c]
}

// decay scales a stream by an exponential ramp from 1 down to floor over n samples.
type decay struct {
	streamer beep.Streamer
	pos, n   int
}

func (d *decay) Stream(samples [][2]float64) (int, bool) {
	n, ok := d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		g := math.Pow(floor, float64(d.pos)/float64(d.n))
		samples[i][0] *= g
		samples[i][1] *= g
		d.pos++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// Tone renders a single note at rate.
func Tone(n Note, rate beep.SampleRate) (beep.Streamer, error) {
	sq, err := generators.SquareTone(rate, n.Freq)
	if err != nil {
		return nil, fmt.Errorf("tone %.0fHz: %w", n.Freq, err)
	}
	samples := max(1, rate.N(n.Duration))
	return volume(&decay{streamer: beep.Take(samples, sq), n: samples}, n.Gain), nil
}

// Sound renders the whole melody of a cue scaled by vol, or nil for a cue
// without notes.
func Sound(c sim.Cue, rate beep.SampleRate, vol float64) (beep.Streamer, error) {
	notes := Notes(c)
	if len(notes) == 0 {
		return nil, nil
	}

	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		s, err := Tone(n, rate)
		if err != nil {
			return nil, err
		}
		parts = append(parts, s)
	}
	return volume(beep.Seq(parts...), vol), nil
}

// volume applies a linear gain. Zero or less is silence.
func volume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}
