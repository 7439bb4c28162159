// Package telemetry runs a headless simulation and exposes it over HTTP.
package telemetry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"fallingstuff/internal/config"
	"fallingstuff/internal/core"
	"fallingstuff/internal/render"
	"fallingstuff/internal/sim"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures a Server. Registry and Now are optional.
type Options struct {
	Config   config.Config
	Logger   *zap.Logger
	Registry *prometheus.Registry
	Now      func() time.Time
}

// Server owns one Simulation. Only the loop goroutine started by Run touches
// it; handlers talk to the loop through Do and read the published snapshot.
type Server struct {
	cfg    config.Config
	log    *zap.Logger
	reg    *prometheus.Registry
	sim    *sim.Simulation
	raster *render.Raster
	tick   time.Duration

	cmds      chan func()
	running   chan struct{}
	frameRate *rate.Limiter

	mu      sync.RWMutex
	stats   sim.Stats
	frame   []byte
	frameAt time.Time
	changed chan struct{}
}

// New builds the server and its simulation. Nothing runs until Run.
func New(opts Options) (*Server, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("telemetry config: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
		opts.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	v := opts.Config.View
	raster := render.NewRaster(v.Width, v.Height, opts.Logger.Named("raster"))
	s := &Server{
		cfg:     opts.Config,
		log:     opts.Logger,
		reg:     opts.Registry,
		raster:  raster,
		tick:    time.Second / time.Duration(max(1, v.TPS)),
		cmds:    make(chan func()),
		running: make(chan struct{}),
		changed: make(chan struct{}),
	}
	if fps := opts.Config.Telemetry.FrameFPS; fps > 0 {
		s.frameRate = rate.NewLimiter(rate.Limit(fps), 1)
	}
	s.sim = sim.New(sim.Options{
		Config:   opts.Config.Sim,
		Renderer: raster,
		Logger:   opts.Logger.Named("sim"),
		Metrics:  sim.NewMetrics(opts.Registry),
		Now:      opts.Now,
	})
	s.sim.SetGlobalScale(v.Scale, v.Scale)
	s.sim.ViewChanged(core.ViewSizeFromPixels(v.Width, v.Height, v.MMPerPixel))
	return s, nil
}

// Run drives the simulation at the configured TPS until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	close(s.running)
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	defer s.sim.Shutdown()

	s.step()
	s.log.Info("simulation loop started", zap.Duration("tick", s.tick))
	for {
		select {
		case <-ctx.Done():
			s.log.Info("simulation loop stopped")
			return ctx.Err()
		case fn := <-s.cmds:
			fn()
		case <-ticker.C:
			s.step()
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to finish. The stats
// snapshot is republished before Do returns.
func (s *Server) Do(ctx context.Context, fn func(*sim.Simulation)) error {
	select {
	case <-s.running:
	default:
		return errors.New("simulation loop not running")
	}
	done := make(chan struct{})
	cmd := func() {
		defer close(done)
		fn(s.sim)
		s.publish(false)
	}
	select {
	case s.cmds <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) step() {
	s.sim.Update()
	s.publish(true)
}

// publish copies the stats out of the loop and renders a frame when the
// frame budget allows it.
func (s *Server) publish(frame bool) {
	st := s.sim.Stats()
	var png []byte
	if frame && (s.frameRate == nil || s.frameRate.Allow()) {
		s.raster.BeginFrame()
		s.sim.Render()
		var buf bytes.Buffer
		if err := s.raster.WritePNG(&buf); err != nil {
			s.log.Warn("frame encode failed", zap.Error(err))
		} else {
			png = buf.Bytes()
		}
	}

	s.mu.Lock()
	s.stats = st
	if png != nil {
		s.frame = png
		s.frameAt = time.Now()
	}
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}

// Stats returns the last published snapshot.
func (s *Server) Stats() sim.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Frame returns the last encoded PNG, or nil before the first frame.
func (s *Server) Frame() ([]byte, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame, s.frameAt
}

// updates returns the current stats and a channel closed on the next publish.
func (s *Server) updates() (sim.Stats, <-chan struct{}) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, s.changed
}

// ListenAndServe serves the router on the configured address and runs the
// loop until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Telemetry.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	loopCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopErr := make(chan error, 1)
	go func() { loopErr <- s.Run(loopCtx) }()

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("telemetry listening", zap.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		cancel()
		<-loopErr
		return fmt.Errorf("telemetry serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("telemetry shutdown: %w", err)
	}
	<-loopErr
	return nil
}
