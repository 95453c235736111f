package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/plus3/tickloop/audio"
	"github.com/plus3/tickloop/config"
	"github.com/plus3/tickloop/sim"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "TOML tuning file layered over the defaults.")
	debug := flag.Bool("debug", false, "Development logging.")
	logPath := flag.String("log", "arena.log", "File the log is written to. The terminal belongs to the game.")
	mute := flag.Bool("mute", false, "Start with sound effects off.")
	seed := flag.Uint64("seed", 0, "Random seed. 0 picks one.")
	flag.Parse()

	log, err := newLogger(*debug, *logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	tuning := config.Default()
	if *configPath != "" {
		if tuning, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	sound := audio.NewPlayer(log)
	if err := sound.Init(); err != nil {
		log.Warn("audio disabled", zap.Error(err))
	}
	defer sound.Close()
	sound.SetMuted(*mute)

	game, err := newGame(log, sound)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	opts := []sim.Option{
		sim.WithLogger(log),
		sim.WithCues(sound),
		sim.WithFeedback(game),
		sim.WithHUD(game),
	}
	if *seed != 0 {
		opts = append(opts, sim.WithSeed(*seed))
	}
	session, err := sim.NewSession(sim.ModeArena, tuning, opts...)
	if err != nil {
		game.close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	game.session = session

	game.run()
	game.close()
}

func newLogger(debug bool, path string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	return cfg.Build()
}
