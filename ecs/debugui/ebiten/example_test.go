package ebiten_test

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/debugui"
	debugui_ebiten "github.com/plus3/tickloop/ecs/debugui/ebiten"
)

type Position struct{ X, Y float64 }

// Game draws nothing but the debug overlay.
type Game struct {
	overlay *debugui_ebiten.Overlay
}

func (g *Game) Update() error {
	g.overlay.Update(1.0 / 60.0)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.overlay.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.overlay.Layout(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

func Example() {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)

	storage := ecs.NewStorage(registry)
	for i := range 10 {
		storage.Spawn(Position{X: float64(i), Y: float64(i)})
	}

	overlay := debugui_ebiten.NewOverlay("ECS ImGui Example", 1280, 720, debugui.Target{
		Storage:   storage,
		Scheduler: ecs.NewScheduler(storage),
	})
	overlay.Visible = true

	if err := ebiten.RunGame(&Game{overlay: overlay}); err != nil {
		panic(err)
	}
}
