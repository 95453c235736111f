package main

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/plus3/tickloop/audio"
	debugui_ebiten "github.com/plus3/tickloop/ecs/debugui/ebiten"
	"github.com/plus3/tickloop/sim"
	"go.uber.org/zap"
)

// Game implements ebiten.Game on top of a swamp session.
type Game struct {
	log     *zap.Logger
	session *sim.Session
	sound   *audio.Player
	overlay *debugui_ebiten.Overlay
	fx      *screenFX
	hud     sim.HUD
	paused  bool
}

func newGame(log *zap.Logger, sound *audio.Player) *Game {
	return &Game{
		log:   log.Named("swamp"),
		sound: sound,
		fx:    newScreenFX(),
	}
}

// UpdateHUD implements sim.HUDSink.
func (g *Game) UpdateHUD(h sim.HUD) {
	if h.State == sim.StateOver && g.hud.State != sim.StateOver {
		g.log.Info("game over", zap.Stringer("outcome", h.Outcome), zap.Int("score", h.Score))
	}
	g.hud = h
}

func (g *Game) step() time.Duration {
	return time.Second / time.Duration(ebiten.TPS())
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	dt := g.step()

	if g.overlay != nil {
		if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
			g.overlay.Visible = !g.overlay.Visible
		}
		g.overlay.Update(dt.Seconds())
		if g.overlay.WantsKeyboard() {
			return nil
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		g.sound.SetMuted(!g.sound.Muted())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}

	switch g.session.State() {
	case sim.StateReady, sim.StateOver:
		if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			g.paused = false
			g.session.Start()
		}
	case sim.StateRunning:
		in := readInput(ebiten.IsKeyPressed)
		in.Pause = g.paused
		g.session.Tick(dt, in)
		if !g.paused {
			g.fx.advance(dt)
		}
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.drawScene(screen)
	g.drawHUD(screen)
	if g.overlay != nil {
		g.overlay.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.overlay != nil {
		g.overlay.Layout(outsideWidth, outsideHeight)
	}
	b := g.session.Game().Bounds
	return int(b.MaxX - b.MinX), int(b.MaxY - b.MinY)
}

// readInput maps the keyboard onto the frog's controls. The tongue fires while
// space is held.
func readInput(pressed func(ebiten.Key) bool) sim.Input {
	var in sim.Input
	if pressed(ebiten.KeyArrowLeft) || pressed(ebiten.KeyA) {
		in.MoveX--
	}
	if pressed(ebiten.KeyArrowRight) || pressed(ebiten.KeyD) {
		in.MoveX++
	}
	if pressed(ebiten.KeyArrowUp) || pressed(ebiten.KeyW) {
		in.MoveY--
	}
	if pressed(ebiten.KeyArrowDown) || pressed(ebiten.KeyS) {
		in.MoveY++
	}
	in.Fire = pressed(ebiten.KeySpace)
	in.Sprint = pressed(ebiten.KeyShift)
	return in
}
