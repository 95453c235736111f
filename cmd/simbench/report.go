package main

import (
	"fmt"
	"io"
	"runtime"
	"sort"
	"text/template"
	"time"

	"github.com/plus3/tickloop/ecs"
	"github.com/plus3/tickloop/sim"
)

type Report struct {
	// Configuration
	Mode     sim.Mode
	Duration time.Duration
	FPS      int
	Step     time.Duration
	Seed     uint64

	// Results
	Ticks          int64
	TotalTime      time.Duration
	SimulatedTime  time.Duration
	TickTime       Stats
	PeakEntities   int
	Games          []Game
	Systems        *ecs.SchedulerStats
	Cues           []CueCount
	GCPauseMetrics bool
	MemStatsStart  runtime.MemStats
	MemStatsEnd    runtime.MemStats
}

// Game is one finished playthrough.
type Game struct {
	Session string
	Outcome sim.Outcome
	Score   int
	Kills   int
	Level   int
	Elapsed time.Duration
}

type CueCount struct {
	Cue   sim.Cue
	Count int
}

func (r *Report) record(s *sim.Session) {
	p := s.Progress()
	r.Games = append(r.Games, Game{
		Session: s.ID().String(),
		Outcome: s.Outcome(),
		Score:   p.Score,
		Kills:   p.Kills,
		Level:   p.Level,
		Elapsed: time.Duration(p.Elapsed * float64(time.Second)),
	})
}

func (r *Report) Wins() int   { return r.count(sim.OutcomeWin) }
func (r *Report) Losses() int { return r.count(sim.OutcomeLose) }

func (r *Report) count(outcome sim.Outcome) int {
	n := 0
	for _, g := range r.Games {
		if g.Outcome == outcome {
			n++
		}
	}
	return n
}

func (c cueCounter) rows() []CueCount {
	rows := make([]CueCount, 0, len(c))
	for cue, n := range c {
		rows = append(rows, CueCount{Cue: cue, Count: n})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Cue < rows[j].Cue })
	return rows
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		if sample < s.Min {
			s.Min = sample
		}
		if sample > s.Max {
			s.Max = sample
		}
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

func (r *Report) Generate(w io.Writer) error {
	const reportTemplate = `
# Simulation Benchmark Report

## Configuration
- **Mode:** {{.Mode}}
- **Run Duration:** {{.Duration}}
- **Pacing:** {{if .FPS}}{{.FPS}} ticks/s{{else}}unpaced{{end}} (step {{.Step}})
- **Seed:** {{.Seed}}

## Performance Results
- **Total Ticks:** {{.Ticks}}
- **Wall Time:** {{.TotalTime}}
- **Simulated Time:** {{.SimulatedTime}}
- **Peak Entities:** {{.PeakEntities}}
- **Tick Time:**
  - **Avg:** {{.TickTime.Avg}}
  - **Min:** {{.TickTime.Min}}
  - **Max:** {{.TickTime.Max}}
{{with .Systems}}
## Systems ({{.Frames}} frames)
| System | Runs | Avg | Max |
|---|---|---|---|
{{- range .Systems}}
| {{.Name}} | {{.ExecutionCount}} | {{.AvgDuration}} | {{.MaxDuration}} |
{{- end}}
{{end}}
## Games ({{len .Games}} finished, {{.Wins}} won, {{.Losses}} lost)
{{- range .Games}}
- {{.Session}}: {{.Outcome}} score={{.Score}} kills={{.Kills}} level={{.Level}} after {{.Elapsed}}
{{- end}}

## Cues
{{- range .Cues}}
- {{.Cue}}: {{.Count}}
{{- end}}

## Memory Usage
- Heap Alloc:     {{mb .MemStatsStart.HeapAlloc}} MB (start) -> {{mb .MemStatsEnd.HeapAlloc}} MB (end)
- Total Alloc:    {{.MemStatsStart.TotalAlloc}} (start) -> {{.MemStatsEnd.TotalAlloc}} (end) -> delta: {{bsub .MemStatsEnd.TotalAlloc .MemStatsStart.TotalAlloc}}
- Num GC:         {{.MemStatsStart.NumGC}} (start) -> {{.MemStatsEnd.NumGC}} (end) -> delta: {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
{{if .GCPauseMetrics}}
## GC Pause Durations
- **Total GC Pause:** {{.MemStatsEnd.PauseTotalNs | ns}}
- **Num GC Cycles:** {{ usub .MemStatsEnd.NumGC .MemStatsStart.NumGC }}
{{end}}`

	fm := template.FuncMap{
		"mb": func(v uint64) string {
			return fmt.Sprintf("%.2f", float64(v)/1024/1024)
		},
		"bsub": func(a, b uint64) int64 {
			return int64(a) - int64(b)
		},
		"usub": func(a, b uint32) uint32 {
			return a - b
		},
		"ns": func(ns uint64) string {
			return time.Duration(ns).String()
		},
	}

	tmpl, err := template.New("report").Funcs(fm).Parse(reportTemplate)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, r)
}
