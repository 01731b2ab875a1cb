package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// allEnvVars lists every variable Load reads; each test starts with all of them cleared.
var allEnvVars = []string{
	"SKILLGRAPH_DATABASE_URL", "SKILLGRAPH_GRPC_ADDR", "SKILLGRAPH_HTTP_ADDR",
	"SKILLGRAPH_NATS_URL", "SKILLGRAPH_AUTH_TOKEN", "SKILLGRAPH_LOG_LEVEL",
	"SKILLGRAPH_CANVAS_WIDTH", "SKILLGRAPH_CANVAS_HEIGHT", "SKILLGRAPH_MAX_TICKS",
	"SKILLGRAPH_FRAME_INTERVAL", "SKILLGRAPH_SETTLE_EPSILON", "SKILLGRAPH_GRID_INDEX",
	"SKILLGRAPH_SNAPSHOT_INTERVAL", "SKILLGRAPH_SNAPSHOT_S3_BUCKET", "SKILLGRAPH_SNAPSHOT_S3_ENDPOINT",
	"SKILLGRAPH_SNAPSHOT_S3_REGION", "SKILLGRAPH_SNAPSHOT_PREFIX", "SKILLGRAPH_SNAPSHOT_DIR",
}

func clearAllEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnvVars {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearAllEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "" || cfg.NATSURL != "" || cfg.AuthToken != "" {
		t.Errorf("optional settings should be empty: %+v", cfg)
	}
	if cfg.GRPCAddr != ":9090" || cfg.HTTPAddr != ":8080" {
		t.Errorf("addrs = %q %q", cfg.GRPCAddr, cfg.HTTPAddr)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if cfg.CanvasWidth != 600 || cfg.CanvasHeight != 400 {
		t.Errorf("canvas = %vx%v", cfg.CanvasWidth, cfg.CanvasHeight)
	}
	if cfg.MaxTicks != 100 || cfg.FrameInterval != 16*time.Millisecond || cfg.SettleEpsilon != 0 || cfg.GridIndex {
		t.Errorf("layout settings = %+v", cfg)
	}
	if cfg.SnapshotInterval != 0 || cfg.SnapshotS3Region != "us-east-1" || cfg.SnapshotPrefix != "snapshots/" {
		t.Errorf("snapshot settings = %+v", cfg)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearAllEnv(t)
	for k, v := range map[string]string{
		"SKILLGRAPH_DATABASE_URL":       "postgres://db:5432/skillgraph",
		"SKILLGRAPH_GRPC_ADDR":          ":5050",
		"SKILLGRAPH_HTTP_ADDR":          ":3000",
		"SKILLGRAPH_NATS_URL":           "nats://localhost:4222",
		"SKILLGRAPH_LOG_LEVEL":          "debug",
		"SKILLGRAPH_CANVAS_WIDTH":       "800",
		"SKILLGRAPH_CANVAS_HEIGHT":      "500.5",
		"SKILLGRAPH_MAX_TICKS":          "250",
		"SKILLGRAPH_FRAME_INTERVAL":     "0s",
		"SKILLGRAPH_SETTLE_EPSILON":     "0.05",
		"SKILLGRAPH_GRID_INDEX":         "true",
		"SKILLGRAPH_SNAPSHOT_INTERVAL":  "10m",
		"SKILLGRAPH_SNAPSHOT_S3_BUCKET": "graphs",
		"SKILLGRAPH_SNAPSHOT_DIR":       "/tmp/graphs",
	} {
		t.Setenv(k, v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCAddr != ":5050" || cfg.HTTPAddr != ":3000" || cfg.NATSURL != "nats://localhost:4222" {
		t.Errorf("addrs = %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v", cfg.LogLevel)
	}
	if c := cfg.Canvas(); c.Width != 800 || c.Height != 500.5 {
		t.Errorf("Canvas() = %+v", c)
	}
	p := cfg.LayoutParams()
	if p.MaxTicks != 250 || p.FrameInterval != 0 || p.SettleEpsilon != 0.05 || !p.GridIndex {
		t.Errorf("LayoutParams() = %+v", p)
	}
	if p.MinDist != 60 || p.RestLength != 100 {
		t.Errorf("physics constants changed: %+v", p)
	}
	if cfg.SnapshotInterval != 10*time.Minute || cfg.SnapshotS3Bucket != "graphs" || cfg.SnapshotDir != "/tmp/graphs" {
		t.Errorf("snapshot settings = %+v", cfg)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	for _, tc := range []struct {
		key, value string
	}{
		{"SKILLGRAPH_LOG_LEVEL", "loud"},
		{"SKILLGRAPH_CANVAS_WIDTH", "wide"},
		{"SKILLGRAPH_CANVAS_HEIGHT", "-1"},
		{"SKILLGRAPH_MAX_TICKS", "-5"},
		{"SKILLGRAPH_MAX_TICKS", "many"},
		{"SKILLGRAPH_FRAME_INTERVAL", "16"},
		{"SKILLGRAPH_SETTLE_EPSILON", "tiny"},
		{"SKILLGRAPH_GRID_INDEX", "sometimes"},
		{"SKILLGRAPH_SNAPSHOT_INTERVAL", "hourly"},
	} {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearAllEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelWarn)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered at warn level:\n%s", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "k=v") {
		t.Errorf("missing warn record:\n%s", out)
	}
	if !strings.Contains(out, "source=config_test.go:") {
		t.Errorf("source should be the file base name:\n%s", out)
	}
	if strings.Contains(out, "/config_test.go") {
		t.Errorf("source should not carry a directory:\n%s", out)
	}
}
