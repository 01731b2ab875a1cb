package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// LocalBus delivers events to in-process subscribers. The server uses it in
// place of NATS when no NATS URL is configured.
type LocalBus struct {
	mu     sync.Mutex
	subs   map[int]*localSub
	nextID int
	closed bool
}

type localSub struct {
	pattern string
	ch      chan []byte
}

// NewLocalBus creates an empty bus.
func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[int]*localSub)}
}

// Publish JSON-encodes event and hands it to every subscriber whose pattern
// matches topic. Full subscriber buffers drop the event.
func (b *LocalBus) Publish(_ context.Context, topic string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("publish on closed bus")
	}
	for _, s := range b.subs {
		if !MatchSubject(s.pattern, topic) {
			continue
		}
		select {
		case s.ch <- data:
		default:
			slog.Warn("events: subscriber full, dropping event", "topic", topic)
		}
	}
	return nil
}

// Subscribe registers a subscriber for topic, which may end in ">" or use "*"
// tokens like a NATS subject.
func (b *LocalBus) Subscribe(topic string) (<-chan []byte, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, nil, fmt.Errorf("subscribe on closed bus")
	}
	id := b.nextID
	b.nextID++
	s := &localSub{pattern: topic, ch: make(chan []byte, 64)}
	b.subs[id] = s

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if _, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(s.ch)
			}
		})
	}
	return s.ch, cancel, nil
}

// Close closes every subscriber channel.
func (b *LocalBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, s := range b.subs {
		close(s.ch)
		delete(b.subs, id)
	}
	return nil
}

// MatchSubject applies NATS subject wildcards: "*" matches one token, a
// trailing ">" matches one or more.
func MatchSubject(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")
	for i, p := range pt {
		if p == ">" {
			return i == len(pt)-1 && len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if p != "*" && p != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}
