package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/plus3/tickloop/geom"
	"github.com/plus3/tickloop/sim"
	"go.uber.org/zap"
)

// Player plays cues through the speaker. It is safe to use before Init or
// after Init failed: cues are then dropped.
type Player struct {
	mu     sync.Mutex
	log    *zap.Logger
	mixer  *beep.Mixer
	volume float64
	muted  bool
	ready  bool
	played map[sim.Cue]int
}

func NewPlayer(log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{
		log:    log.Named("audio"),
		mixer:  &beep.Mixer{},
		volume: 0.5,
		played: make(map[sim.Cue]int),
	}
}

// Init opens the speaker and starts the mixer.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if err := speaker.Init(SampleRate, SampleRate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.ready = true
	p.log.Debug("speaker ready", zap.Int("rate", int(SampleRate)))
	return nil
}

// Close silences everything still playing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.ready = false
}

// Cue implements sim.CueSink.
func (p *Player) Cue(c sim.Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.played[c]++
	if p.muted || !p.ready {
		return
	}

	s, err := Sound(c, SampleRate, p.volume)
	if err != nil {
		p.log.Warn("cue not rendered", zap.Stringer("cue", c), zap.Error(err))
		return
	}
	if s == nil {
		return
	}

	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// SetVolume sets the effects volume, clamped to [0, 1].
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.volume = geom.Clamp(v, 0, 1)
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetMuted toggles every cue off or back on.
func (p *Player) SetMuted(muted bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.muted = muted
}

func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Played reports how often a cue was received, played or not.
func (p *Player) Played(c sim.Cue) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[c]
}
