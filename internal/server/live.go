package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/fractionaljobsuk/skillgraph/internal/events"
	"github.com/fractionaljobsuk/skillgraph/internal/idgen"
	"github.com/fractionaljobsuk/skillgraph/internal/interact"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/provider"
	"github.com/fractionaljobsuk/skillgraph/internal/render"
	"github.com/gorilla/websocket"
)

const liveWriteTimeout = 10 * time.Second

// Live message types.
const (
	msgFrame     = "frame"
	msgDone      = "done"
	msgEmpty     = "empty"
	msgNodeClick = "node_click"
	msgError     = "error"

	msgHover   = "hover"
	msgUnhover = "unhover"
	msgClick   = "click"
)

// liveMessage is sent from the server to the browser.
type liveMessage struct {
	Type    string      `json:"type"`
	Tick    int         `json:"tick,omitempty"`
	Ticks   int         `json:"ticks,omitempty"`
	SVG     string      `json:"svg,omitempty"`
	Node    *model.Node `json:"node,omitempty"`
	Message string      `json:"message,omitempty"`
}

// clientMessage is sent from the browser: hover, unhover or click on a node.
type clientMessage struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// session is one live view: a simulation and an interaction controller
// bound to a websocket.
type session struct {
	id     string
	srv    *Server
	src    provider.Source
	opts   render.Options
	conn   *websocket.Conn
	logger *slog.Logger
	cancel context.CancelFunc

	writeMu sync.Mutex

	sim  *layout.Simulation
	ctrl *interact.Controller

	// Latest frame, redrawn when the interaction state changes.
	graph *model.Graph
	state layout.State
	drawn bool
}

// handleLive handles GET /v1/live/{source...}, upgrading to a websocket that
// streams layout frames and accepts hover and click messages.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	src, err := provider.ParseSource(r.PathValue("source"), r.URL.Query())
	if err != nil {
		s.writeProviderError(w, err)
		return
	}
	opts, err := s.renderOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := idgen.Session()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	sess := &session{
		id:     id,
		srv:    s,
		src:    src,
		opts:   opts,
		conn:   conn,
		logger: s.logger.With("session", id, "source", src.Name()),
		cancel: cancel,
	}
	s.addSession(sess)
	defer s.removeSession(id)

	sess.run(ctx)
}

func (ss *session) run(ctx context.Context) {
	ss.logger.Debug("live session started")
	defer ss.logger.Debug("live session ended")

	g, err := ss.load(ctx)
	if err != nil {
		ss.send(liveMessage{Type: msgError, Message: err.Error()})
		return
	}
	ss.ctrl = interact.NewController(g, func(n model.Node) {
		ss.send(liveMessage{Type: msgNodeClick, Node: &n})
	})

	ss.sim = layout.NewSimulation(layout.NewRunner(ss.srv.params),
		layout.Canvas{Width: ss.opts.Width, Height: ss.opts.Height}, nil)
	defer ss.sim.Stop()
	ss.sim.Start(ctx, g)

	var refresh <-chan *hubEvent
	if topic := ss.refreshTopic(); topic != "" {
		client := ss.srv.hub.subscribe([]string{topic})
		defer ss.srv.hub.unsubscribe(client)
		refresh = client.ch
	}

	in := make(chan clientMessage)
	go ss.readLoop(ctx, in)

	for {
		select {
		case <-ctx.Done():
			return
		case f := <-ss.sim.Frames():
			if !ss.frame(f) {
				return
			}
		case m, ok := <-in:
			if !ok {
				return
			}
			ss.interact(m)
		case evt := <-refresh:
			ss.refresh(ctx, evt)
		}
	}
}

// load fetches and normalizes the session's GraphData.
func (ss *session) load(ctx context.Context) (*model.Graph, error) {
	data, err := ss.srv.providers.Fetch(ctx, ss.src)
	if err != nil {
		return nil, err
	}
	g, issues := model.Normalize(data)
	model.LogIssues(ss.logger, issues)
	return g, nil
}

// frame forwards one simulation frame. It reports false when the socket is gone.
func (ss *session) frame(f layout.Frame) bool {
	ss.graph, ss.state, ss.drawn = f.Graph, f.State, true
	switch {
	case errors.Is(f.Err, layout.ErrEmptyGraph):
		svg, err := render.SVGString(render.Render(f.Graph, f.State, interact.View{}, ss.opts))
		if err != nil {
			return ss.send(liveMessage{Type: msgError, Message: err.Error()})
		}
		return ss.send(liveMessage{Type: msgEmpty, SVG: svg})
	case f.Err != nil:
		return ss.send(liveMessage{Type: msgError, Message: f.Err.Error()})
	case f.Done:
		return ss.send(liveMessage{Type: msgDone, Ticks: f.Ticks})
	}
	return ss.draw()
}

// draw sends the latest positions with the current interaction state.
func (ss *session) draw() bool {
	if !ss.drawn || ss.graph.Empty() {
		return true
	}
	svg, err := render.SVGString(render.Render(ss.graph, ss.state, ss.ctrl.View(), ss.opts))
	if err != nil {
		return ss.send(liveMessage{Type: msgError, Message: err.Error()})
	}
	return ss.send(liveMessage{Type: msgFrame, Tick: ss.state.Tick, SVG: svg})
}

func (ss *session) interact(m clientMessage) {
	var changed bool
	switch m.Type {
	case msgHover:
		changed = ss.ctrl.Hover(m.ID)
	case msgUnhover:
		changed = ss.ctrl.Unhover(m.ID)
	case msgClick:
		changed = ss.ctrl.Click(m.ID)
	default:
		ss.logger.Debug("ignoring client message", "type", m.Type)
	}
	if changed {
		ss.draw()
	}
}

// refreshTopic is the refresh subject this session listens on; role
// taxonomies are static and never refresh.
func (ss *session) refreshTopic() string {
	switch ss.src.Kind {
	case provider.KindJobs:
		return events.TopicRefreshJobs
	case provider.KindUser:
		return events.TopicRefreshUser
	}
	return ""
}

func (ss *session) refresh(ctx context.Context, evt *hubEvent) {
	r, err := events.ParseRefresh(evt.Data)
	if err != nil {
		return
	}
	if r.Scope == events.ScopeUser && r.UserID != ss.src.UserID {
		return
	}
	g, err := ss.load(ctx)
	if err != nil {
		ss.send(liveMessage{Type: msgError, Message: err.Error()})
		return
	}
	ss.logger.Info("refreshing live session", "nodes", g.Len())
	ss.ctrl.Retain(g)
	ss.drawn = false
	ss.sim.Start(ctx, g)
}

// readLoop decodes client messages into in until the socket closes.
func (ss *session) readLoop(ctx context.Context, in chan<- clientMessage) {
	defer close(in)
	for {
		var m clientMessage
		if err := ss.conn.ReadJSON(&m); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				ss.logger.Debug("websocket read ended", "err", err)
			}
			return
		}
		select {
		case in <- m:
		case <-ctx.Done():
			return
		}
	}
}

func (ss *session) send(m liveMessage) bool {
	ss.writeMu.Lock()
	defer ss.writeMu.Unlock()
	_ = ss.conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
	if err := ss.conn.WriteJSON(m); err != nil {
		ss.logger.Debug("websocket write failed", "err", err)
		return false
	}
	return true
}
