package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/plus3/tickloop/config"
	"github.com/plus3/tickloop/sim"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// cueCounter tallies every sound cue the sessions emit.
type cueCounter map[sim.Cue]int

func (c cueCounter) Cue(cue sim.Cue) { c[cue]++ }

func main() {
	mode := flag.String("mode", "swamp", "Game to simulate: swamp or arena.")
	duration := flag.Duration("duration", 10*time.Second, "Wall-clock time the benchmark runs for.")
	fps := flag.Int("fps", 0, "Ticks per second. 0 runs unpaced with a 60Hz step.")
	seed := flag.Uint64("seed", 1, "Random seed shared by every playthrough.")
	configPath := flag.String("config", "", "TOML tuning file layered over the defaults.")
	debug := flag.Bool("debug", false, "Development logging.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	report, err := run(log, options{
		mode:     *mode,
		duration: *duration,
		fps:      *fps,
		seed:     *seed,
		config:   *configPath,
	})
	if err != nil {
		log.Fatal("benchmark failed", zap.Error(err))
	}
	report.GCPauseMetrics = *gcPauseMetrics

	if err := report.Generate(os.Stdout); err != nil {
		log.Fatal("failed to generate report", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

type options struct {
	mode     string
	duration time.Duration
	fps      int
	seed     uint64
	config   string
}

func (o options) step() time.Duration {
	if o.fps <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(o.fps)
}

// run plays back-to-back sessions until the duration elapses.
func run(log *zap.Logger, opts options) (*Report, error) {
	mode, err := sim.ParseMode(opts.mode)
	if err != nil {
		return nil, err
	}

	tuning := config.Default()
	if opts.config != "" {
		if tuning, err = config.Load(opts.config); err != nil {
			return nil, fmt.Errorf("loading %s: %w", opts.config, err)
		}
	}

	cues := cueCounter{}
	session, err := sim.NewSession(mode, tuning,
		sim.WithLogger(log),
		sim.WithSeed(opts.seed),
		sim.WithCues(cues),
	)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Mode:     mode,
		Duration: opts.duration,
		FPS:      opts.fps,
		Step:     opts.step(),
		Seed:     opts.seed,
		TickTime: Stats{Samples: make([]time.Duration, 0, 1024)},
	}

	var limiter *rate.Limiter
	if opts.fps > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.fps), 1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.duration)
	defer cancel()

	runtime.ReadMemStats(&report.MemStatsStart)
	log.Info("benchmark started",
		zap.String("mode", string(mode)),
		zap.Duration("duration", opts.duration),
		zap.Int("fps", opts.fps),
	)

	pilot := newAutopilot(mode)
	session.Start()
	startTime := time.Now()

Loop:
	for {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break Loop
			}
		}
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		in := pilot.Input(session)
		tickStart := time.Now()
		session.Tick(report.Step, in)
		report.TickTime.Samples = append(report.TickTime.Samples, time.Since(tickStart))
		report.Ticks++
		report.PeakEntities = max(report.PeakEntities, session.Storage().Len())

		if session.State() == sim.StateOver {
			report.record(session)
			session.Start()
		}
	}

	report.TotalTime = time.Since(startTime)
	report.SimulatedTime = time.Duration(report.Ticks) * report.Step
	report.TickTime.Finalize()
	report.Systems = session.Scheduler().GetStats()
	report.Cues = cues.rows()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Info("benchmark finished",
		zap.Int64("ticks", report.Ticks),
		zap.Int("games", len(report.Games)),
	)
	return report, nil
}
