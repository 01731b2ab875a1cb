package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/fractionaljobsuk/skillgraph/internal/layout"
)

type Config struct {
	DatabaseURL string // SKILLGRAPH_DATABASE_URL (optional, empty = jobs/user graphs disabled)
	GRPCAddr    string // SKILLGRAPH_GRPC_ADDR (default ":9090")
	HTTPAddr    string // SKILLGRAPH_HTTP_ADDR (default ":8080")
	NATSURL     string // SKILLGRAPH_NATS_URL (optional, empty = in-process refresh only)
	AuthToken   string // SKILLGRAPH_AUTH_TOKEN (optional, empty = auth disabled)
	LogLevel    slog.Level

	// Layout settings
	CanvasWidth   float64       // SKILLGRAPH_CANVAS_WIDTH (default 600)
	CanvasHeight  float64       // SKILLGRAPH_CANVAS_HEIGHT (default 400)
	MaxTicks      int           // SKILLGRAPH_MAX_TICKS (default 100)
	FrameInterval time.Duration // SKILLGRAPH_FRAME_INTERVAL (default 16ms)
	SettleEpsilon float64       // SKILLGRAPH_SETTLE_EPSILON (default 0 = fixed budget)
	GridIndex     bool          // SKILLGRAPH_GRID_INDEX (default false)

	// Snapshot settings
	SnapshotInterval   time.Duration // SKILLGRAPH_SNAPSHOT_INTERVAL (default 0 = disabled)
	SnapshotS3Bucket   string        // SKILLGRAPH_SNAPSHOT_S3_BUCKET (enables S3 when set)
	SnapshotS3Endpoint string        // SKILLGRAPH_SNAPSHOT_S3_ENDPOINT (custom endpoint for MinIO)
	SnapshotS3Region   string        // SKILLGRAPH_SNAPSHOT_S3_REGION (default "us-east-1")
	SnapshotPrefix     string        // SKILLGRAPH_SNAPSHOT_PREFIX (default "snapshots/")
	SnapshotDir        string        // SKILLGRAPH_SNAPSHOT_DIR (enables local files when set)
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:        os.Getenv("SKILLGRAPH_DATABASE_URL"),
		GRPCAddr:           envOrDefault("SKILLGRAPH_GRPC_ADDR", ":9090"),
		HTTPAddr:           envOrDefault("SKILLGRAPH_HTTP_ADDR", ":8080"),
		NATSURL:            os.Getenv("SKILLGRAPH_NATS_URL"),
		AuthToken:          os.Getenv("SKILLGRAPH_AUTH_TOKEN"),
		SnapshotS3Bucket:   os.Getenv("SKILLGRAPH_SNAPSHOT_S3_BUCKET"),
		SnapshotS3Endpoint: os.Getenv("SKILLGRAPH_SNAPSHOT_S3_ENDPOINT"),
		SnapshotS3Region:   envOrDefault("SKILLGRAPH_SNAPSHOT_S3_REGION", "us-east-1"),
		SnapshotPrefix:     envOrDefault("SKILLGRAPH_SNAPSHOT_PREFIX", "snapshots/"),
		SnapshotDir:        os.Getenv("SKILLGRAPH_SNAPSHOT_DIR"),
	}

	var err error
	if c.LogLevel, err = parseLevel(envOrDefault("SKILLGRAPH_LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("SKILLGRAPH_LOG_LEVEL: %w", err)
	}
	if c.CanvasWidth, err = envFloat("SKILLGRAPH_CANVAS_WIDTH", 600); err != nil {
		return nil, err
	}
	if c.CanvasHeight, err = envFloat("SKILLGRAPH_CANVAS_HEIGHT", 400); err != nil {
		return nil, err
	}
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return nil, fmt.Errorf("SKILLGRAPH_CANVAS_WIDTH/HEIGHT must be positive")
	}
	if c.MaxTicks, err = envInt("SKILLGRAPH_MAX_TICKS", 100); err != nil {
		return nil, err
	}
	if c.FrameInterval, err = envDuration("SKILLGRAPH_FRAME_INTERVAL", 16*time.Millisecond); err != nil {
		return nil, err
	}
	if c.SettleEpsilon, err = envFloat("SKILLGRAPH_SETTLE_EPSILON", 0); err != nil {
		return nil, err
	}
	if c.GridIndex, err = envBool("SKILLGRAPH_GRID_INDEX", false); err != nil {
		return nil, err
	}
	if c.SnapshotInterval, err = envDuration("SKILLGRAPH_SNAPSHOT_INTERVAL", 0); err != nil {
		return nil, err
	}

	return c, nil
}

// LayoutParams returns the default simulation constants with the configured
// overrides applied.
func (c *Config) LayoutParams() layout.Params {
	p := layout.DefaultParams()
	p.MaxTicks = c.MaxTicks
	p.FrameInterval = c.FrameInterval
	p.SettleEpsilon = c.SettleEpsilon
	p.GridIndex = c.GridIndex
	return p
}

// Canvas returns the default canvas for renders that don't specify one.
func (c *Config) Canvas() layout.Canvas {
	return layout.Canvas{Width: c.CanvasWidth, Height: c.CanvasHeight}
}

// Logger returns a text logger at the configured level that tags each record
// with its short source location.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return NewLogger(w, c.LogLevel)
}

// NewLogger is a slog text logger whose source attribute keeps only the file
// base name.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				if src, ok := a.Value.Any().(*slog.Source); ok && src != nil {
					src.File = filepath.Base(src.File)
				}
			}
			return a
		},
	}))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s: invalid non-negative integer %q", key, v)
	}
	return n, nil
}

func envFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, err
	}
	return l, nil
}
