package telemetry

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fallingstuff/internal/event"
	"fallingstuff/internal/sim"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var keyNames = map[string]rune{
	"left":  event.ArrowLeft,
	"up":    event.ArrowUp,
	"right": event.ArrowRight,
	"down":  event.ArrowDown,
	"space": ' ',
}

// Router builds the HTTP surface. It starts no goroutines.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.origins(),
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	r.Get("/stats", s.handleStats)
	r.Get("/frame.png", s.handleFrame)
	r.Post("/reset", s.handleReset)
	r.Post("/keys/{key}", s.handleKey)
	r.Get("/ws", s.handleWS)
	return r
}

func (s *Server) origins() []string {
	if len(s.cfg.Telemetry.AllowedOrigins) == 0 {
		return []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	return s.cfg.Telemetry.AllowedOrigins
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Stats())
}

func (s *Server) handleFrame(w http.ResponseWriter, _ *http.Request) {
	frame, at := s.Frame()
	if frame == nil {
		writeError(w, http.StatusServiceUnavailable, "no frame rendered yet")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Last-Modified", at.UTC().Format(http.TimeFormat))
	w.Header().Set("Content-Length", strconv.Itoa(len(frame)))
	_, _ = w.Write(frame)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var st sim.Stats
	err := s.Do(r.Context(), func(sm *sim.Simulation) {
		sm.ResetWorld()
		st = sm.Stats()
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleKey presses and releases one key. Arrow keys are spelled out; any
// other name contributes its first character.
func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "key")
	down := event.NewKeyFromName(event.KeyDownKind, name)
	up := event.NewKeyFromName(event.KeyUpKind, name)
	if k, ok := keyNames[strings.ToLower(name)]; ok {
		down = event.NewKey(event.KeyDownKind, k)
		up = event.NewKey(event.KeyUpKind, k)
	}
	if down.Data == nil {
		writeError(w, http.StatusBadRequest, "invalid key name")
		return
	}

	handled := false
	err := s.Do(r.Context(), func(sm *sim.Simulation) {
		sm.EventReceived(&down)
		sm.EventReceived(&up)
		handled = down.Handled
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"key": name, "handled": handled})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
