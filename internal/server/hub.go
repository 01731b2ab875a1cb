package server

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fractionaljobsuk/skillgraph/internal/events"
)

// streamKeepaliveInterval is how often keepalive comments are sent to idle
// event stream clients.
const streamKeepaliveInterval = 15 * time.Second

// hubEvent is one refresh event fanned out to subscribers.
type hubEvent struct {
	ID    uint64
	Topic string
	Data  []byte // JSON-encoded events.Refresh
}

// refreshHub fans refresh events out to live sessions and event stream
// clients. Slow clients drop events rather than block the publisher.
type refreshHub struct {
	mu      sync.RWMutex
	clients map[*hubClient]struct{}
	nextID  atomic.Uint64
}

type hubClient struct {
	topics []string // NATS-style patterns; empty matches everything
	ch     chan *hubEvent
}

func newRefreshHub() *refreshHub {
	return &refreshHub{clients: make(map[*hubClient]struct{})}
}

func (h *refreshHub) broadcast(topic string, payload []byte) {
	evt := &hubEvent{ID: h.nextID.Add(1), Topic: topic, Data: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !c.matchesTopic(topic) {
			continue
		}
		select {
		case c.ch <- evt:
		default:
		}
	}
}

func (h *refreshHub) subscribe(topics []string) *hubClient {
	c := &hubClient{topics: topics, ch: make(chan *hubEvent, 16)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *refreshHub) unsubscribe(c *hubClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *refreshHub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *hubClient) matchesTopic(topic string) bool {
	if len(c.topics) == 0 {
		return true
	}
	for _, p := range c.topics {
		if events.MatchSubject(p, topic) {
			return true
		}
	}
	return false
}

// handleEventStream handles GET /v1/events/stream, an SSE feed of refresh
// events filtered by the optional comma-separated topics parameter.
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	var topics []string
	for _, t := range strings.Split(r.URL.Query().Get("topics"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}

	client := s.hub.subscribe(topics)
	defer s.hub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepaliveInterval)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-client.ch:
			fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.ID, evt.Topic, evt.Data)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}
