package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const layoutMethod = "/skillgraph.v1.LayoutService/Layout"

// stubHandler is a no-op gRPC handler used in interceptor tests.
func stubHandler(_ context.Context, _ any) (any, error) {
	return "ok", nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthInterceptor(t *testing.T) {
	for _, tc := range []struct {
		name   string
		token  string
		method string
		md     metadata.MD
		want   codes.Code
	}{
		{"disabled", "", layoutMethod, nil, codes.OK},
		{"health exempt", "secret", "/grpc.health.v1.Health/Check", nil, codes.OK},
		{"no metadata", "secret", layoutMethod, nil, codes.Unauthenticated},
		{"missing header", "secret", layoutMethod, metadata.Pairs("other", "value"), codes.Unauthenticated},
		{"wrong token", "secret", layoutMethod, metadata.Pairs("authorization", "Bearer wrong"), codes.Unauthenticated},
		{"invalid scheme", "secret", layoutMethod, metadata.Pairs("authorization", "Basic secret"), codes.Unauthenticated},
		{"correct token", "secret", layoutMethod, metadata.Pairs("authorization", "Bearer secret"), codes.OK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			if tc.md != nil {
				ctx = metadata.NewIncomingContext(ctx, tc.md)
			}
			resp, err := AuthInterceptor(tc.token)(ctx, nil, &grpc.UnaryServerInfo{FullMethod: tc.method}, stubHandler)
			if got := status.Code(err); got != tc.want {
				t.Fatalf("code = %v, want %v (err %v)", got, tc.want, err)
			}
			if tc.want == codes.OK && resp != "ok" {
				t.Fatalf("expected 'ok', got %v", resp)
			}
		})
	}
}

func TestRecoveryInterceptor(t *testing.T) {
	resp, err := RecoveryInterceptor(discardLogger())(context.Background(), nil, &grpc.UnaryServerInfo{FullMethod: layoutMethod},
		func(context.Context, any) (any, error) { panic("boom") })
	if status.Code(err) != codes.Internal || resp != nil {
		t.Fatalf("expected Internal and no response, got %v, %v", resp, err)
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	info := &grpc.UnaryServerInfo{FullMethod: layoutMethod}

	if _, err := LoggingInterceptor(logger)(context.Background(), nil, info, stubHandler); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := LoggingInterceptor(logger)(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "gone")
	})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("error should pass through, got %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "level=DEBUG msg=rpc method="+layoutMethod+" code=OK") {
		t.Errorf("missing success line in %q", out)
	}
	if !strings.Contains(out, "level=WARN msg=rpc method="+layoutMethod+" code=NotFound") {
		t.Errorf("missing failure line in %q", out)
	}
}

func TestAuthMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	for _, tc := range []struct {
		name   string
		token  string
		method string
		auth   string
		want   int
	}{
		{"disabled", "", http.MethodPost, "", http.StatusOK},
		{"get is public", "secret", http.MethodGet, "", http.StatusOK},
		{"post without header", "secret", http.MethodPost, "", http.StatusUnauthorized},
		{"post wrong token", "secret", http.MethodPost, "Bearer wrong", http.StatusUnauthorized},
		{"post wrong scheme", "secret", http.MethodPost, "Token secret", http.StatusUnauthorized},
		{"post correct token", "secret", http.MethodPost, "Bearer secret", http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/v1/refresh", nil)
			if tc.auth != "" {
				req.Header.Set("Authorization", tc.auth)
			}
			rec := httptest.NewRecorder()
			AuthMiddleware(tc.token, ok).ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d; body: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	h := RecoveryMiddleware(discardLogger(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestLoggingMiddleware_RecordsStatus(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := LoggingMiddleware(logger, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/roles", nil))

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected 418, got %d", rec.Code)
	}
	out := sb.String()
	if !strings.Contains(out, "status=418") || !strings.Contains(out, "path=/v1/roles") {
		t.Fatalf("log line missing fields: %q", out)
	}
}

func TestStatusRecorder_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	var _ http.Flusher = sr
	var _ http.Hijacker = sr
	sr.Flush()
	if !rec.Flushed {
		t.Fatal("expected flush to reach the underlying writer")
	}
	if _, _, err := sr.Hijack(); err == nil {
		t.Fatal("expected hijack error from a recorder")
	}
}
