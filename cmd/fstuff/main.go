//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"fallingstuff/internal/app"
	"fallingstuff/internal/config"
	"fallingstuff/internal/core"
	"fallingstuff/internal/render"
	"fallingstuff/internal/sim"
	"fallingstuff/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	logger, err := core.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	core.SetFatalLogger(logger)

	renderer := render.NewEbiten(logger.Named("render"))
	panel := ui.NewPanel(cfg.View.Width-280, 8, 272)
	s := sim.New(sim.Options{
		Config:   cfg.Sim,
		Renderer: renderer,
		UI:       panel,
		Logger:   logger.Named("sim"),
	})
	game := app.New(s, renderer, panel, cfg.View, logger.Named("app"))

	ebiten.SetWindowTitle("Falling Stuff")
	ebiten.SetTPS(cfg.View.TPS)
	ebiten.SetWindowSize(cfg.View.Width, cfg.View.Height)

	err = ebiten.RunGame(game)
	s.Shutdown()
	if err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Fatal("game loop failed", zap.Error(err))
	}
}
