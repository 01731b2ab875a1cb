package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fractionaljobsuk/skillgraph/internal/events"
	"github.com/fractionaljobsuk/skillgraph/internal/interact"
	"github.com/fractionaljobsuk/skillgraph/internal/layout"
	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/provider"
	"github.com/fractionaljobsuk/skillgraph/internal/render"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests other than GET must include a valid
// Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	mux.HandleFunc("GET /v1/roles", s.handleRoles)
	mux.HandleFunc("GET /v1/graph/roles/{role}", s.handleRoleGraph)
	mux.HandleFunc("GET /v1/graph/jobs", s.handleJobsGraph)
	mux.HandleFunc("GET /v1/graph/user", s.handleUserGraph)
	mux.HandleFunc("GET /v1/render/{source...}", s.handleRender)
	mux.HandleFunc("GET /v1/view/{source...}", s.handleView)
	mux.HandleFunc("GET /v1/live/{source...}", s.handleLive)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("POST /v1/refresh", s.handleRefresh)
	return LoggingMiddleware(s.logger, RecoveryMiddleware(s.logger, AuthMiddleware(authToken, mux)))
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.Sessions()})
}

// handleRoles handles GET /v1/roles.
func (s *Server) handleRoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"roles": s.providers.Taxonomy.Roles()})
}

// handleRoleGraph handles GET /v1/graph/roles/{role}.
func (s *Server) handleRoleGraph(w http.ResponseWriter, r *http.Request) {
	rg, err := s.providers.Taxonomy.Build(r.PathValue("role"))
	if err != nil {
		s.writeProviderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rg)
}

// handleJobsGraph handles GET /v1/graph/jobs?role=&q=&limit=.
func (s *Server) handleJobsGraph(w http.ResponseWriter, r *http.Request) {
	src, err := provider.ParseSource(provider.KindJobs, r.URL.Query())
	if err != nil {
		s.writeProviderError(w, err)
		return
	}
	jg, err := s.providers.Jobs.Build(r.Context(), src.Jobs)
	if err != nil {
		s.writeProviderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, jg)
}

// handleUserGraph handles GET /v1/graph/user?userId=.
func (s *Server) handleUserGraph(w http.ResponseWriter, r *http.Request) {
	ug, err := s.providers.User.Build(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		s.writeProviderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ug)
}

// renderResponse is the format=json body of the render endpoint.
type renderResponse struct {
	Scene   *render.Scene `json:"scene"`
	Ticks   int           `json:"ticks"`
	Settled bool          `json:"settled,omitempty"`
}

// handleRender handles GET /v1/render/{source...}. It runs the whole tick
// budget and encodes the final frame as svg (default), echarts or json.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	format := r.URL.Query().Get("format")
	switch format {
	case "", "svg", "echarts", "json":
	default:
		writeError(w, http.StatusBadRequest, "unknown format "+strconv.Quote(format))
		return
	}

	data, ok := s.fetch(w, r)
	if !ok {
		return
	}
	view := interact.View{
		Selected: r.URL.Query().Get("select"),
		Hovered:  r.URL.Query().Get("hover"),
	}
	sc, res, err := render.Static(r.Context(), data, s.params, view, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch format {
	case "json":
		writeJSON(w, http.StatusOK, renderResponse{Scene: sc, Ticks: res.Ticks, Settled: res.Settled})
	case "echarts":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := render.WriteECharts(w, sc); err != nil {
			s.logger.Warn("writing echarts page", "err", err)
		}
	default:
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("X-Layout-Ticks", strconv.Itoa(res.Ticks))
		if err := render.WriteSVG(w, sc); err != nil {
			s.logger.Warn("writing svg", "err", err)
		}
	}
}

// handleView handles GET /v1/view/{source...}: an HTML page showing the
// seeded graph that animates over the matching live socket.
func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	opts, err := s.renderOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	data, ok := s.fetch(w, r)
	if !ok {
		return
	}
	g, issues := model.Normalize(data)
	model.LogIssues(s.logger, issues)

	c := layout.Canvas{Width: opts.Width, Height: opts.Height}
	st := layout.Seed(g, c, layout.SeedFor(g))
	sc := render.Render(g, st, interact.View{}, opts)

	socket := "/v1/live/" + r.PathValue("source")
	if r.URL.RawQuery != "" {
		socket += "?" + r.URL.RawQuery
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WriteHTML(w, sc, render.LiveOptions{SocketPath: socket}); err != nil {
		s.logger.Warn("writing view page", "err", err)
	}
}

// handleRefresh handles POST /v1/refresh.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req events.Refresh
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.publisher.Publish(r.Context(), req.Topic(), req); err != nil {
		writeError(w, http.StatusInternalServerError, "publish refresh: "+err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, req)
}

// fetch resolves the {source...} path value and builds its GraphData,
// writing the error response itself when it fails.
func (s *Server) fetch(w http.ResponseWriter, r *http.Request) (*model.GraphData, bool) {
	src, err := provider.ParseSource(r.PathValue("source"), r.URL.Query())
	if err != nil {
		s.writeProviderError(w, err)
		return nil, false
	}
	data, err := s.providers.Fetch(r.Context(), src)
	if err != nil {
		s.writeProviderError(w, err)
		return nil, false
	}
	return data, true
}

// renderOptions reads width, height and title, defaulting to the server canvas.
func (s *Server) renderOptions(r *http.Request) (render.Options, error) {
	q := r.URL.Query()
	o := render.Options{Width: s.canvas.Width, Height: s.canvas.Height, Title: q.Get("title")}
	for _, dim := range []struct {
		name string
		dst  *float64
	}{{"width", &o.Width}, {"height", &o.Height}} {
		v := q.Get(dim.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > 10000 {
			return o, &paramError{name: dim.name, value: v}
		}
		*dim.dst = f
	}
	return o, nil
}

type paramError struct{ name, value string }

func (e *paramError) Error() string {
	return "invalid " + e.name + " " + strconv.Quote(e.value)
}

func (s *Server) writeProviderError(w http.ResponseWriter, err error) {
	code := httpStatus(err)
	if code == http.StatusInternalServerError {
		s.logger.Error("provider failed", "err", err)
	}
	writeError(w, code, err.Error())
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
