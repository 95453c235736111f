package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/tickloop/config"
	"github.com/plus3/tickloop/geom"
	"github.com/plus3/tickloop/sim"
)

// hudRows is the space kept under the arena for the HUD.
const hudRows = 2

// viewport maps arena units onto terminal cells, +y pointing up the screen.
type viewport struct {
	bounds        config.Bounds
	width, height int
}

func (v viewport) project(p geom.Vec3) (col, row int, ok bool) {
	if v.width <= 0 || v.height <= 0 {
		return 0, 0, false
	}
	b := v.bounds
	fx := (p.X - b.MinX) / (b.MaxX - b.MinX)
	fy := (b.MaxY - p.Y) / (b.MaxY - b.MinY)
	if fx < 0 || fx > 1 || fy < 0 || fy > 1 {
		return 0, 0, false
	}
	col = min(int(fx*float64(v.width)), v.width-1)
	row = min(int(fy*float64(v.height)), v.height-1)
	return col, row, true
}

// layer orders sprites so the player is drawn last and particles first.
func layer(k sim.Kind) int {
	switch k {
	case sim.KindParticle:
		return 0
	case sim.KindProjectile:
		return 1
	case sim.KindPowerUp:
		return 2
	case sim.KindEnemy:
		return 3
	default:
		return 4
	}
}

func glyph(sp sim.Sprite) rune {
	switch sp.Kind {
	case sim.KindPlayer:
		return '@'
	case sim.KindEnemy:
		if sp.Type != "" {
			return []rune(strings.ToUpper(sp.Type))[0]
		}
		return 'E'
	case sim.KindProjectile:
		return '*'
	case sim.KindPowerUp:
		return '+'
	default:
		return '.'
	}
}

func style(sp sim.Sprite) tcell.Style {
	c := sp.Visual.Color
	st := tcell.StyleDefault.Foreground(tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B)))
	switch {
	case sp.Shielded, sp.Kind == sim.KindEnemy && sp.AI == sim.AIAttacking:
		st = st.Reverse(true)
	case sp.Fade < 0.3:
		st = st.Dim(true)
	}
	return st
}

func (g *Game) draw(now time.Time) {
	g.screen.Clear()
	w, h := g.screen.Size()
	vp := viewport{bounds: g.session.Game().Bounds, width: w, height: max(0, h-hudRows)}

	var layers [5][]sim.Sprite
	g.session.Scene(func(sp sim.Sprite) {
		l := layer(sp.Kind)
		layers[l] = append(layers[l], sp)
	})
	for _, sprites := range layers {
		for _, sp := range sprites {
			if col, row, ok := vp.project(sp.Pos); ok {
				g.screen.SetContent(col, row, glyph(sp), nil, style(sp))
			}
		}
	}

	bar := tcell.StyleDefault.Reverse(true)
	if now.Before(g.hurt) {
		bar = bar.Foreground(tcell.ColorRed)
	}
	lines := hudLines(g.hud, g.paused, g.sound.Muted())
	for i, line := range lines {
		st := tcell.StyleDefault
		if i == 0 {
			st = bar
		}
		drawText(g.screen, 0, h-hudRows+i, line, st)
	}
	g.screen.Show()
}

func drawText(s tcell.Screen, x, y int, text string, st tcell.Style) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, st)
		x++
	}
}

func hudLines(h sim.HUD, paused, muted bool) [hudRows]string {
	weapon := h.Weapon
	if weapon == "" {
		weapon = "-"
	}
	ammo := fmt.Sprintf("%d/%d", h.Ammo, h.Reserve)
	if h.Reloading {
		ammo = "reloading"
	}

	var lines [hudRows]string
	lines[0] = fmt.Sprintf(" HP %d/%d | %s %s | Kills %d | Score %d | Level %d ",
		max(0, h.Health), h.MaxHealth, weapon, ammo, h.Kills, h.Score, h.Level)

	switch {
	case h.State == sim.StateReady:
		lines[1] = " ENTER to start | wasd move (caps sprint) | arrows aim+fire | space fire | r reload | q/e weapon | esc quit"
	case h.State == sim.StateOver && h.Outcome == sim.OutcomeWin:
		lines[1] = " VICTORY! ENTER to play again"
	case h.State == sim.StateOver:
		lines[1] = " YOU DIED. ENTER to play again"
	case paused:
		lines[1] = " PAUSED (p)"
	}
	if muted {
		lines[1] += " [muted]"
	}
	return lines
}
