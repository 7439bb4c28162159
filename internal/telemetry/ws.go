package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const wsWriteWait = 5 * time.Second

func (s *Server) upgrader() websocket.Upgrader {
	patterns := s.origins()
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			ok := originAllowed(origin, patterns)
			if !ok {
				s.log.Warn("websocket origin rejected", zap.String("origin", origin))
			}
			return ok
		},
	}
}

// originAllowed matches origin against patterns. A pattern may hold one
// "*" standing for any run of characters, e.g. "http://localhost:*".
func originAllowed(origin string, patterns []string) bool {
	origin = strings.ToLower(origin)
	for _, p := range patterns {
		p = strings.ToLower(p)
		if p == "*" || p == origin {
			return true
		}
		prefix, suffix, found := strings.Cut(p, "*")
		if !found {
			continue
		}
		if len(origin) >= len(prefix)+len(suffix) &&
			strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

// handleWS pushes Stats as JSON after every publish, throttled to
// StatsPerSecond.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := r.Context()
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	perSecond := s.cfg.Telemetry.StatsPerSecond
	if perSecond <= 0 {
		perSecond = 4
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), 1)
	s.log.Debug("websocket client connected", zap.String("remote", r.RemoteAddr))
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		stats, next := s.updates()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(stats); err != nil {
			s.log.Debug("websocket write failed", zap.Error(err))
			return
		}
		select {
		case <-next:
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}
