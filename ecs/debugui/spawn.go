package debugui

import "github.com/plus3/tickloop/ecs"

// SpawnDebugUI adds the entity browser, component inspector and performance
// windows to ui. They inspect target.
func SpawnDebugUI(ui *ecs.Storage, target Target) {
	browser := NewEntityBrowser(100)
	perf := NewPerfStats(120)

	ui.Spawn(ImguiItem{Render: func() { browser.Render(target.Storage) }})
	ui.Spawn(ImguiItem{Render: func() { RenderInspector(target.Storage, browser.Selected()) }})
	ui.Spawn(ImguiItem{Render: func() { perf.Render(target) }})
}

func RegisterDebugUIComponents(registry *ecs.ComponentRegistry) {
	ecs.RegisterComponent[ImguiItem](registry)
	ecs.RegisterComponent[ImguiInputState](registry)
}
