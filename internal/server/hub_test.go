package server

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fractionaljobsuk/skillgraph/internal/events"
)

func TestRefreshHub_BroadcastAndReceive(t *testing.T) {
	hub := newRefreshHub()

	client := hub.subscribe(nil) // all topics
	defer hub.unsubscribe(client)

	hub.broadcast(events.TopicRefreshJobs, []byte(`{"scope":"jobs"}`))

	select {
	case evt := <-client.ch:
		if evt.Topic != events.TopicRefreshJobs {
			t.Fatalf("expected topic=%q, got %q", events.TopicRefreshJobs, evt.Topic)
		}
		if string(evt.Data) != `{"scope":"jobs"}` {
			t.Fatalf("unexpected data %q", evt.Data)
		}
		if evt.ID != 1 {
			t.Fatalf("expected id=1, got %d", evt.ID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestRefreshHub_TopicFiltering(t *testing.T) {
	hub := newRefreshHub()

	client := hub.subscribe([]string{events.TopicRefreshUser})
	defer hub.unsubscribe(client)

	hub.broadcast(events.TopicRefreshJobs, []byte(`{}`))
	hub.broadcast(events.TopicRefreshUser, []byte(`{}`))

	select {
	case evt := <-client.ch:
		if evt.Topic != events.TopicRefreshUser {
			t.Fatalf("expected topic=%q, got %q", events.TopicRefreshUser, evt.Topic)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}

	select {
	case evt := <-client.ch:
		t.Fatalf("unexpected event: topic=%q", evt.Topic)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRefreshHub_WildcardPatterns(t *testing.T) {
	for _, tc := range []struct {
		pattern string
		topic   string
		want    bool
	}{
		{events.TopicRefreshAll, events.TopicRefreshJobs, true},
		{events.TopicRefreshAll, events.TopicRefreshUser, true},
		{"skillgraph.refresh.*", events.TopicRefreshJobs, true},
		{"skillgraph.*", events.TopicRefreshJobs, false},
		{"other.>", events.TopicRefreshJobs, false},
	} {
		t.Run(tc.pattern+"_"+tc.topic, func(t *testing.T) {
			c := &hubClient{topics: []string{tc.pattern}}
			if got := c.matchesTopic(tc.topic); got != tc.want {
				t.Fatalf("matchesTopic(%q) with %q = %v, want %v", tc.topic, tc.pattern, got, tc.want)
			}
		})
	}
}

func TestRefreshHub_Unsubscribe(t *testing.T) {
	hub := newRefreshHub()

	client := hub.subscribe(nil)
	hub.unsubscribe(client)
	if hub.len() != 0 {
		t.Fatalf("expected no clients, got %d", hub.len())
	}

	hub.broadcast(events.TopicRefreshJobs, []byte(`{}`))

	select {
	case <-client.ch:
		t.Fatal("should not receive events after unsubscribe")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRefreshHub_SlowClientDrops(t *testing.T) {
	hub := newRefreshHub()
	client := hub.subscribe(nil)
	defer hub.unsubscribe(client)

	for range cap(client.ch) + 10 {
		hub.broadcast(events.TopicRefreshJobs, []byte(`{}`))
	}
	if got := len(client.ch); got != cap(client.ch) {
		t.Fatalf("expected a full buffer of %d, got %d", cap(client.ch), got)
	}
}

// streamBody runs the event stream handler until fn returns and yields
// everything written.
func streamBody(t *testing.T, path string, fn func(srv *Server)) (*httptest.ResponseRecorder, string) {
	t.Helper()
	srv, handler := newTestServer(nil, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest("GET", path, nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		handler.ServeHTTP(rec, req)
	}()

	deadline := time.Now().Add(time.Second)
	for srv.hub.len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}
	fn(srv)
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done
	return rec, rec.Body.String()
}

func TestHandleEventStream_SSE(t *testing.T) {
	rec, body := streamBody(t, "/v1/events/stream", func(srv *Server) {
		srv.hub.broadcast(events.TopicRefreshUser, []byte(`{"scope":"user","user_id":"7"}`))
	})

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected Content-Type=text/event-stream, got %q", ct)
	}
	want := "id:1\nevent:skillgraph.refresh.user\ndata:{\"scope\":\"user\",\"user_id\":\"7\"}\n\n"
	if !strings.Contains(body, want) {
		t.Fatalf("expected %q in body, got:\n%s", want, body)
	}
}

func TestHandleEventStream_TopicFilter(t *testing.T) {
	_, body := streamBody(t, "/v1/events/stream?topics=skillgraph.refresh.jobs", func(srv *Server) {
		srv.hub.broadcast(events.TopicRefreshUser, []byte(`{"scope":"user","user_id":"1"}`))
		srv.hub.broadcast(events.TopicRefreshJobs, []byte(`{"scope":"jobs"}`))
	})

	if strings.Contains(body, events.TopicRefreshUser) {
		t.Fatalf("expected user refresh to be filtered out, got:\n%s", body)
	}
	if !strings.Contains(body, "event:"+events.TopicRefreshJobs) {
		t.Fatalf("expected jobs refresh in body, got:\n%s", body)
	}
}

func TestStartRefresh_FeedsHub(t *testing.T) {
	bus := events.NewLocalBus()
	defer bus.Close()
	srv, _ := newTestServer(nil, bus, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.StartRefresh(ctx, bus); err != nil {
		t.Fatalf("StartRefresh: %v", err)
	}
	client := srv.hub.subscribe(nil)
	defer srv.hub.unsubscribe(client)

	// Malformed events are dropped before reaching the hub.
	if err := bus.Publish(ctx, events.TopicRefreshJobs, map[string]string{"scope": "everything"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := bus.Publish(ctx, events.TopicRefreshUser, events.Refresh{Scope: events.ScopeUser, UserID: "42"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case evt := <-client.ch:
		if evt.Topic != events.TopicRefreshUser {
			t.Fatalf("expected %q, got %q", events.TopicRefreshUser, evt.Topic)
		}
		r, err := events.ParseRefresh(evt.Data)
		if err != nil || r.UserID != "42" {
			t.Fatalf("unexpected refresh %+v (%v)", r, err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for refresh")
	}
}
