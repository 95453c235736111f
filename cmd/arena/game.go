package main

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/tickloop/audio"
	"github.com/plus3/tickloop/sim"
	"go.uber.org/zap"
)

const frameInterval = 16 * time.Millisecond

// Game drives an arena session from a terminal.
type Game struct {
	log     *zap.Logger
	screen  tcell.Screen
	session *sim.Session
	sound   *audio.Player
	keys    keyState
	hud     sim.HUD
	paused  bool
	hurt    time.Time
}

func newGame(log *zap.Logger, sound *audio.Player) (*Game, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()

	return &Game{
		log:    log.Named("arena"),
		screen: screen,
		sound:  sound,
	}, nil
}

func (g *Game) close() {
	g.screen.Fini()
}

// UpdateHUD implements sim.HUDSink.
func (g *Game) UpdateHUD(h sim.HUD) { g.hud = h }

// Feedback implements sim.FeedbackSink. The terminal cannot shake, so a hit
// tints the status bar instead.
func (g *Game) Feedback(f sim.Feedback) {
	g.hurt = time.Now().Add(max(f.Duration, 150*time.Millisecond))
}

// handle reacts to one terminal event and reports whether the game goes on.
func (g *Game) handle(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyEnter && g.session.State() != sim.StateRunning {
			g.paused = false
			g.session.Start()
			return true
		}
		if ev.Key() == tcell.KeyRune {
			switch ev.Rune() {
			case 'p':
				g.paused = !g.paused
				return true
			case 'm':
				g.sound.SetMuted(!g.sound.Muted())
				return true
			}
		}
		if !g.keys.handle(ev, now) {
			g.log.Debug("unbound key", zap.String("key", ev.Name()))
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

type poller interface {
	PollEvent() tcell.Event
}

// pump forwards events from src until src runs dry or done is closed.
func pump(src poller, done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, 100)
	go func() {
		defer close(events)
		for {
			ev := src.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}

func (g *Game) run() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := pump(g.screen, done)

	last := time.Now()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !g.handle(ev, time.Now()) {
				return
			}

		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now

			in := g.keys.input(now)
			in.Pause = g.paused
			g.session.Tick(dt, in)
			g.draw(now)
		}
	}
}
