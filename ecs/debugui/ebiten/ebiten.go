// Package ebiten provides Dear ImGui backend integration for the Ebiten game engine.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/ecs/debugui"
)

// ImguiBackend wraps the Ebiten-specific Dear ImGui backend implementation.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Overlay runs the debug windows in a world of their own and draws them over
// an Ebiten game. The game forwards Update, Draw and Layout.
type Overlay struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	backend   *ecs.Singleton[ImguiBackend]
	input     *ecs.Singleton[debugui.ImguiInputState]

	Visible bool
}

// NewOverlay creates the ImGui backend window and spawns the debug windows
// inspecting target.
func NewOverlay(title string, width, height int, target debugui.Target) *Overlay {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")

	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[ImguiBackend](registry)
	debugui.RegisterDebugUIComponents(registry)

	storage := ecs.NewStorage(registry)
	o := &Overlay{
		storage:   storage,
		scheduler: ecs.NewScheduler(storage),
		backend:   ecs.NewSingleton(storage, ImguiBackend{EbitenBackend: backend}),
		input:     ecs.NewSingleton(storage, debugui.ImguiInputState{}),
	}

	debugui.SpawnDebugUI(storage, target)
	o.scheduler.Register(&debugui.ImguiSystem{})
	return o
}

// Update builds one ImGui frame.
func (o *Overlay) Update(dt float64) {
	if !o.Visible {
		return
	}
	o.backend.Get().BeginFrame()
	o.scheduler.Once(dt)
	o.backend.Get().EndFrame()
}

// Draw renders the last built frame on top of screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	if !o.Visible {
		return
	}
	o.backend.Get().Draw(screen)
}

func (o *Overlay) Layout(outsideWidth, outsideHeight int) {
	o.backend.Get().Layout(outsideWidth, outsideHeight)
}

// WantsKeyboard reports whether a debug window has keyboard focus, in which
// case the game should ignore keys.
func (o *Overlay) WantsKeyboard() bool {
	return o.Visible && o.input.Get().WantCaptureKeyboard
}
