package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fractionaljobsuk/skillgraph/internal/events"
	"github.com/fractionaljobsuk/skillgraph/internal/model"
	"github.com/fractionaljobsuk/skillgraph/internal/provider"
)

// HTTPClient talks to the skillgraph HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

func (c *HTTPClient) Health(ctx context.Context) (*HealthStatus, error) {
	var resp HealthStatus
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Graphs ---

func (c *HTTPClient) Roles(ctx context.Context) ([]model.RoleInfo, error) {
	var resp struct {
		Roles []model.RoleInfo `json:"roles"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/roles", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Roles, nil
}

func (c *HTTPClient) RoleGraph(ctx context.Context, role string) (*model.RoleGraph, error) {
	var rg model.RoleGraph
	if err := c.doJSON(ctx, http.MethodGet, "/v1/graph/roles/"+url.PathEscape(role), nil, &rg); err != nil {
		return nil, err
	}
	return &rg, nil
}

func (c *HTTPClient) JobsGraph(ctx context.Context, q provider.JobsQuery) (*model.JobsGraph, error) {
	_, v := provider.Source{Kind: provider.KindJobs, Jobs: q}.Path()
	var jg model.JobsGraph
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/graph/jobs", v), nil, &jg); err != nil {
		return nil, err
	}
	return &jg, nil
}

func (c *HTTPClient) UserGraph(ctx context.Context, userID string) (*model.UserGraph, error) {
	q := url.Values{"userId": {userID}}
	var ug model.UserGraph
	if err := c.doJSON(ctx, http.MethodGet, withQuery("/v1/graph/user", q), nil, &ug); err != nil {
		return nil, err
	}
	return &ug, nil
}

// Graph fetches the GraphData behind any source.
func (c *HTTPClient) Graph(ctx context.Context, src provider.Source) (*model.GraphData, error) {
	switch src.Kind {
	case provider.KindRoles:
		rg, err := c.RoleGraph(ctx, src.Role)
		if err != nil {
			return nil, err
		}
		return rg.Graph, nil
	case provider.KindJobs:
		jg, err := c.JobsGraph(ctx, src.Jobs)
		if err != nil {
			return nil, err
		}
		return jg.Graph, nil
	case provider.KindUser:
		ug, err := c.UserGraph(ctx, src.UserID)
		if err != nil {
			return nil, err
		}
		return ug.Graph, nil
	}
	return nil, fmt.Errorf("%w: %q", provider.ErrUnknownSource, src.Kind)
}

// --- Renders ---

// Render returns the server-side render of src as raw bytes.
func (c *HTTPClient) Render(ctx context.Context, src provider.Source, req RenderRequest) ([]byte, error) {
	path, q := src.Path()
	if req.Format != "" {
		q.Set("format", req.Format)
	}
	if req.Width > 0 {
		q.Set("width", strconv.FormatFloat(req.Width, 'f', -1, 64))
	}
	if req.Height > 0 {
		q.Set("height", strconv.FormatFloat(req.Height, 'f', -1, 64))
	}
	if req.Select != "" {
		q.Set("select", req.Select)
	}
	if req.Hover != "" {
		q.Set("hover", req.Hover)
	}
	return c.do(ctx, http.MethodGet, withQuery("/v1/render/"+path, q), nil)
}

// ViewURL is the address of the interactive page for src.
func (c *HTTPClient) ViewURL(src provider.Source) string {
	path, q := src.Path()
	return c.baseURL + withQuery("/v1/view/"+path, q)
}

// --- Refresh ---

func (c *HTTPClient) Refresh(ctx context.Context, r events.Refresh) (*events.Refresh, error) {
	var resp events.Refresh
	if err := c.doJSON(ctx, http.MethodPost, "/v1/refresh", r, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	respBody, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// do performs an HTTP request and returns the raw response body. Error
// statuses become an *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return respBody, nil
}
