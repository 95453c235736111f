package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/tickloop/audio"
	"github.com/plus3/tickloop/config"
	"github.com/plus3/tickloop/ecs/debugui"
	debugui_ebiten "github.com/plus3/tickloop/ecs/debugui/ebiten"
	"github.com/plus3/tickloop/sim"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "", "TOML tuning file layered over the defaults.")
	debug := flag.Bool("debug", false, "Development logging and the ImGui debug overlay (F1).")
	mute := flag.Bool("mute", false, "Start with sound effects off.")
	flag.Parse()

	log, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	tuning := config.Default()
	if *configPath != "" {
		if tuning, err = config.Load(*configPath); err != nil {
			log.Fatal("failed to load tuning", zap.String("path", *configPath), zap.Error(err))
		}
	}

	sound := audio.NewPlayer(log)
	if err := sound.Init(); err != nil {
		log.Warn("audio disabled", zap.Error(err))
	}
	defer sound.Close()
	sound.SetMuted(*mute)

	game := newGame(log, sound)
	session, err := sim.NewSession(sim.ModeSwamp, tuning,
		sim.WithLogger(log),
		sim.WithCues(sound),
		sim.WithFeedback(game.fx),
		sim.WithHUD(game),
	)
	if err != nil {
		log.Fatal("failed to create session", zap.Error(err))
	}
	game.session = session

	b := session.Game().Bounds
	width, height := int(b.MaxX-b.MinX), int(b.MaxY-b.MinY)
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("Swamp")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if *debug {
		game.overlay = debugui_ebiten.NewOverlay("Swamp", width, height, debugui.Target{
			Storage:   session.Storage(),
			Scheduler: session.Scheduler(),
		})
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal("game loop failed", zap.Error(err))
	}
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
