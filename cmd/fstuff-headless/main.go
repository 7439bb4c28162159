package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fallingstuff/internal/config"
	"fallingstuff/internal/core"
	"fallingstuff/internal/render"
	"fallingstuff/internal/sim"
	"fallingstuff/internal/telemetry"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type globalOpts struct {
	configPath string
	logLevel   string
	overrides  map[string]string
}

func main() {
	var g globalOpts
	rootCmd := &cobra.Command{
		Use:           "fstuff-headless",
		Short:         "Run the falling marble simulation without a window",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "TOML or YAML config file")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override the configured log level")
	rootCmd.PersistentFlags().StringToStringVar(&g.overrides, "set", nil, "simulation overrides, e.g. --set marbles_max=50")

	rootCmd.AddCommand(renderCmd(&g))
	rootCmd.AddCommand(serveCmd(&g))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (g *globalOpts) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return cfg, nil, err
	}
	if err := cfg.ApplyOverrides(g.overrides); err != nil {
		return cfg, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	logger, err := core.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return cfg, nil, err
	}
	core.SetFatalLogger(logger)
	return cfg, logger, nil
}

type renderOpts struct {
	fps     float64
	seconds float64
	every   int
	out     string
}

func renderCmd(g *globalOpts) *cobra.Command {
	var o renderOpts
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Simulate on a virtual clock and write PNG frames",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			defer logger.Sync()
			return runRender(cfg, logger, o, cmd.OutOrStdout())
		},
	}
	cmd.Flags().Float64Var(&o.fps, "fps", 60, "virtual frames per second")
	cmd.Flags().Float64Var(&o.seconds, "seconds", 10, "virtual seconds to simulate")
	cmd.Flags().IntVar(&o.every, "every", 0, "write every n-th frame (0 writes none)")
	cmd.Flags().StringVarP(&o.out, "out", "o", "frames", "directory for PNG frames")
	return cmd
}

// runRender steps the simulation on a virtual clock so the output depends
// only on the config and seed.
func runRender(cfg config.Config, logger *zap.Logger, o renderOpts, stdout io.Writer) error {
	if o.fps <= 0 || o.seconds < 0 {
		return fmt.Errorf("render: fps must be positive and seconds non-negative")
	}
	if o.every > 0 {
		if err := os.MkdirAll(o.out, 0o755); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}

	clock := time.Unix(0, 0)
	raster := render.NewRaster(cfg.View.Width, cfg.View.Height, logger.Named("raster"))
	s := sim.New(sim.Options{
		Config:   cfg.Sim,
		Renderer: raster,
		Logger:   logger.Named("sim"),
		Now:      func() time.Time { return clock },
	})
	s.SetGlobalScale(cfg.View.Scale, cfg.View.Scale)
	s.ViewChanged(core.ViewSizeFromPixels(cfg.View.Width, cfg.View.Height, cfg.View.MMPerPixel))
	defer s.Shutdown()

	frame := time.Duration(float64(time.Second) / o.fps)
	frames := int(math.Round(o.seconds * o.fps))
	written := 0
	for i := 0; i <= frames; i++ {
		s.Update()
		if o.every > 0 && i%o.every == 0 {
			raster.BeginFrame()
			s.Render()
			path := filepath.Join(o.out, fmt.Sprintf("frame-%05d.png", i))
			if err := raster.SavePNG(path); err != nil {
				return fmt.Errorf("render: %w", err)
			}
			written++
		}
		clock = clock.Add(frame)
	}
	logger.Info("render finished", zap.Int("frames", frames+1), zap.Int("written", written))

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Stats())
}

func serveCmd(g *globalOpts) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation behind the telemetry HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := g.load()
			if err != nil {
				return err
			}
			defer logger.Sync()
			if cmd.Flags().Changed("addr") {
				cfg.Telemetry.Addr = addr
			}
			srv, err := telemetry.New(telemetry.Options{Config: cfg, Logger: logger})
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	return cmd
}
