package main

import (
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/tickloop/sim"
)

var (
	waterColor  = color.RGBA{24, 60, 48, 255}
	shieldColor = color.RGBA{120, 200, 255, 255}
	flashColor  = color.RGBA{255, 60, 60, 255}
	barBack     = color.RGBA{100, 100, 100, 255}
	barFront    = color.RGBA{100, 200, 100, 255}
)

// screenFX turns feedback requests into a camera shake and a red flash.
type screenFX struct {
	rng        *rand.Rand
	shake      float64
	shakeLeft  time.Duration
	shakeTotal time.Duration
	flash      float64
	flashLeft  time.Duration
	flashTotal time.Duration
}

func newScreenFX() *screenFX {
	return &screenFX{rng: rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))}
}

// Feedback implements sim.FeedbackSink. A stronger request replaces a weaker
// one still running.
func (fx *screenFX) Feedback(f sim.Feedback) {
	switch f.Kind {
	case sim.FeedbackShake:
		if f.Intensity >= fx.shakeStrength() {
			fx.shake, fx.shakeLeft, fx.shakeTotal = f.Intensity, f.Duration, f.Duration
		}
	case sim.FeedbackFlash:
		fx.flash, fx.flashLeft, fx.flashTotal = f.Intensity, f.Duration, f.Duration
	}
}

func (fx *screenFX) advance(dt time.Duration) {
	fx.shakeLeft = max(0, fx.shakeLeft-dt)
	fx.flashLeft = max(0, fx.flashLeft-dt)
}

// shakeStrength is the current shake amplitude, fading linearly.
func (fx *screenFX) shakeStrength() float64 {
	if fx.shakeLeft <= 0 || fx.shakeTotal <= 0 {
		return 0
	}
	return fx.shake * float64(fx.shakeLeft) / float64(fx.shakeTotal)
}

func (fx *screenFX) flashAlpha() float64 {
	if fx.flashLeft <= 0 || fx.flashTotal <= 0 {
		return 0
	}
	return math.Min(1, fx.flash) * float64(fx.flashLeft) / float64(fx.flashTotal)
}

func (fx *screenFX) offset() (float32, float32) {
	s := fx.shakeStrength()
	if s == 0 {
		return 0, 0
	}
	return float32((fx.rng.Float64()*2 - 1) * s), float32((fx.rng.Float64()*2 - 1) * s)
}

func (g *Game) drawScene(screen *ebiten.Image) {
	screen.Fill(waterColor)
	ox, oy := g.fx.offset()

	g.session.Scene(func(sp sim.Sprite) {
		x, y := float32(sp.Pos.X)+ox, float32(sp.Pos.Y)+oy
		c := fade(sp.Visual.Color, sp.Fade)
		drawShape(screen, sp, x, y, c)

		if sp.Shielded {
			vector.StrokeCircle(screen, x, y, float32(sp.Radius)+6, 2, shieldColor, true)
		}
		if sp.Kind == sim.KindEnemy && sp.MaxHealth > 1 && sp.Health < sp.MaxHealth {
			drawHealthBar(screen, x, y-float32(sp.Radius)-8, float32(sp.Radius)*2, float32(sp.Health)/float32(sp.MaxHealth))
		}
	})

	if a := g.fx.flashAlpha(); a > 0 {
		vector.DrawFilledRect(screen, 0, 0, float32(screen.Bounds().Dx()), float32(screen.Bounds().Dy()), fade(flashColor, a*0.4), false)
	}
}

func drawShape(screen *ebiten.Image, sp sim.Sprite, x, y float32, c color.RGBA) {
	w, h := float32(sp.Visual.Width), float32(sp.Visual.Height)
	if w == 0 {
		w = float32(sp.Radius * 2)
	}
	if h == 0 {
		h = w
	}

	switch sp.Visual.Shape {
	case sim.ShapeRect:
		vector.DrawFilledRect(screen, x-w/2, y-h/2, w, h, c, false)
	case sim.ShapeDiamond:
		vector.StrokeLine(screen, x, y-h/2, x+w/2, y, 2, c, true)
		vector.StrokeLine(screen, x+w/2, y, x, y+h/2, 2, c, true)
		vector.StrokeLine(screen, x, y+h/2, x-w/2, y, 2, c, true)
		vector.StrokeLine(screen, x-w/2, y, x, y-h/2, 2, c, true)
		vector.DrawFilledCircle(screen, x, y, min(w, h)/4, c, true)
	case sim.ShapeCross:
		vector.StrokeLine(screen, x-w/2, y-h/2, x+w/2, y+h/2, 2, c, true)
		vector.StrokeLine(screen, x-w/2, y+h/2, x+w/2, y-h/2, 2, c, true)
	default:
		vector.DrawFilledCircle(screen, x, y, w/2, c, true)
	}

	if sp.Visual.Label != "" && (sp.Kind == sim.KindEnemy || sp.Kind == sim.KindPowerUp) {
		ebitenutil.DebugPrintAt(screen, sp.Visual.Label, int(x-w/2), int(y-h/2-16))
	}
}

func drawHealthBar(screen *ebiten.Image, cx, y, width, pct float32) {
	vector.DrawFilledRect(screen, cx-width/2, y, width, 4, barBack, false)
	vector.DrawFilledRect(screen, cx-width/2, y, width*pct, 4, barFront, false)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, hudText(g.hud, g.paused, g.sound.Muted()), 8, 8)
}

// hudText renders the HUD as the lines shown in the top left corner.
func hudText(h sim.HUD, paused, muted bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Score: %d  Level: %d  Kills: %d\n", h.Score, h.Level, h.Kills)
	fmt.Fprintf(&b, "Lives: %d/%d\n", max(0, h.Health), h.MaxHealth)

	var active []string
	for _, k := range []sim.EffectKind{sim.EffectRapidFire, sim.EffectShield, sim.EffectMultiShot, sim.EffectScoreBoost} {
		if h.Effects.Has(k) {
			active = append(active, k.String())
		}
	}
	if len(active) > 0 {
		fmt.Fprintf(&b, "Power-ups: %s\n", strings.Join(active, ", "))
	}

	switch {
	case h.State == sim.StateReady:
		b.WriteString("\nPress SPACE to start")
	case h.State == sim.StateOver && h.Outcome == sim.OutcomeWin:
		b.WriteString("\nYOU WIN! Press SPACE to play again")
	case h.State == sim.StateOver:
		b.WriteString("\nGAME OVER. Press SPACE to play again")
	case paused:
		b.WriteString("\nPAUSED")
	}
	if muted {
		b.WriteString("\n[muted]")
	}
	return b.String()
}

// fade scales the alpha of a colour. RGBA is premultiplied so every channel
// scales with it.
func fade(c color.RGBA, f float64) color.RGBA {
	if f >= 1 {
		return c
	}
	f = math.Max(0, f)
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: uint8(float64(c.A) * f),
	}
}
