package debugui

import (
	"fmt"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/tickloop/ecs"
)

// PerfStats shows frame times over a rolling window next to the target's
// storage and scheduler stats.
type PerfStats struct {
	history []float32
	next    int
	timer   FrameTimer
}

func NewPerfStats(window int) *PerfStats {
	return &PerfStats{
		history: make([]float32, window),
		timer:   *NewFrameTimer(),
	}
}

// record stores one frame time in milliseconds and returns the running average.
func (ps *PerfStats) record(deltaTime float32) float32 {
	ps.history[ps.next] = deltaTime * 1000.0
	ps.next = (ps.next + 1) % len(ps.history)

	var avgFrameTime float32
	for _, ft := range ps.history {
		avgFrameTime += ft
	}
	return avgFrameTime / float32(len(ps.history))
}

func (ps *PerfStats) Render(target Target) {
	avgFrameTime := ps.record(ps.timer.GetDeltaTime())

	if !imgui.BeginV("Performance Stats", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	stats := target.Storage.CollectStats()

	imgui.Text(fmt.Sprintf("Total Entities: %d", stats.TotalEntityCount))
	imgui.Text(fmt.Sprintf("Component Types: %d", stats.ComponentTypeCount))
	imgui.Text(fmt.Sprintf("Singletons: %d", stats.SingletonCount))
	if avgFrameTime > 0 {
		imgui.Text(fmt.Sprintf("Avg Frame Time: %.2f ms (%.0f FPS)", avgFrameTime, 1000.0/avgFrameTime))
	}

	imgui.Separator()
	imgui.Text("Frame Time Graph (ms)")
	imgui.PlotLinesFloatPtr("##frametime", &ps.history[0], int32(len(ps.history)))

	if target.Scheduler != nil && imgui.TreeNodeStr("Systems") {
		renderSystemTable(target.Scheduler.GetStats())
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Component Details") {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("ComponentStatsTable", 2, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Component")
			imgui.TableSetupColumn("Entity Count")
			imgui.TableHeadersRow()

			for _, comp := range stats.ComponentBreakdown {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(comp.Type.String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", comp.EntityCount))
			}

			imgui.EndTable()
		}
		imgui.TreePop()
	}

	if imgui.TreeNodeStr("Singleton Details") {
		for _, singletonType := range stats.SingletonTypes {
			imgui.BulletText(singletonType.String())
		}
		imgui.TreePop()
	}

	imgui.End()
}

func renderSystemTable(stats *ecs.SchedulerStats) {
	imgui.Text(fmt.Sprintf("Frames: %d  Executions: %d", stats.Frames, stats.TotalExecutions))

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
	if !imgui.BeginTableV("SystemStatsTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		return
	}
	imgui.TableSetupColumn("System")
	imgui.TableSetupColumn("Last")
	imgui.TableSetupColumn("Avg")
	imgui.TableSetupColumn("Max")
	imgui.TableHeadersRow()

	for _, sys := range stats.Systems {
		imgui.TableNextRow()
		imgui.TableNextColumn()
		imgui.Text(sys.Name)
		imgui.TableNextColumn()
		imgui.Text(sys.LastDuration.String())
		imgui.TableNextColumn()
		imgui.Text(sys.AvgDuration.String())
		imgui.TableNextColumn()
		imgui.Text(sys.MaxDuration.String())
	}
	imgui.EndTable()
}

type FrameTimer struct {
	lastFrameTime time.Time
}

func NewFrameTimer() *FrameTimer {
	return &FrameTimer{
		lastFrameTime: time.Now(),
	}
}

func (ft *FrameTimer) GetDeltaTime() float32 {
	now := time.Now()
	delta := float32(now.Sub(ft.lastFrameTime).Seconds())
	ft.lastFrameTime = now
	return delta
}
