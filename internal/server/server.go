// Package server exposes the graph providers and the layout engine over HTTP,
// websocket live sessions and gRPC.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/fractionaljobsuk/skillgraph/internal/events"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/provider"
	"github.com/fractionaljobsuk/skillgraph/internal/store"
	"github.com/gorilla/websocket"
)

// Options configures a Server. Zero values fall back to the layout defaults,
// a no-op publisher and slog.Default().
type Options struct {
	Params    layout.Params
	Canvas    layout.Canvas
	Publisher events.Publisher
	Logger    *slog.Logger
}

// Server serves graphs, renders and live layout sessions.
type Server struct {
	providers *provider.Providers
	params    layout.Params
	canvas    layout.Canvas
	publisher events.Publisher
	logger    *slog.Logger
	hub       *refreshHub
	upgrader  websocket.Upgrader

	sessionsMu sync.Mutex
	sessions   map[string]*session
}

// New returns a Server backed by p.
func New(p *provider.Providers, o Options) *Server {
	if o.Params.MaxTicks == 0 {
		o.Params = layout.DefaultParams()
	}
	if o.Canvas.Width <= 0 || o.Canvas.Height <= 0 {
		o.Canvas = layout.Canvas{Width: 600, Height: 400}
	}
	if o.Publisher == nil {
		o.Publisher = &events.NoopPublisher{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return &Server{
		providers: p,
		params:    o.Params,
		canvas:    o.Canvas,
		publisher: o.Publisher,
		logger:    o.Logger,
		hub:       newRefreshHub(),
		sessions:  make(map[string]*session),
	}
}

// StartRefresh feeds refresh events from sub to live sessions and event
// stream clients until ctx is canceled.
func (s *Server) StartRefresh(ctx context.Context, sub events.Subscriber) error {
	ch, cancel, err := sub.Subscribe(events.TopicRefreshAll)
	if err != nil {
		return fmt.Errorf("subscribe refresh: %w", err)
	}
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				r, err := events.ParseRefresh(data)
				if err != nil {
					s.logger.Warn("ignoring refresh event", "err", err)
					continue
				}
				s.hub.broadcast(r.Topic(), data)
			}
		}
	}()
	return nil
}

// Sessions returns the number of open live sessions.
func (s *Server) Sessions() int {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	return len(s.sessions)
}

// CloseSessions ends every open live session. Hijacked websocket connections
// are not covered by http.Server.Shutdown.
func (s *Server) CloseSessions() {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	for _, sess := range s.sessions {
		sess.cancel()
	}
}

func (s *Server) addSession(sess *session) {
	s.sessionsMu.Lock()
	s.sessions[sess.id] = sess
	s.sessionsMu.Unlock()
}

func (s *Server) removeSession(id string) {
	s.sessionsMu.Lock()
	delete(s.sessions, id)
	s.sessionsMu.Unlock()
}

// httpStatus maps provider and store errors onto HTTP status codes.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, provider.ErrUnknownRole), errors.Is(err, provider.ErrUnknownSource):
		return http.StatusNotFound
	case errors.Is(err, provider.ErrUserIDRequired):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
