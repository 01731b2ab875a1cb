package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// Rasterizer turns scenes into PNG images using headless Chrome.
type Rasterizer struct {
	ExecPath string        // Chrome binary; empty uses chromedp's lookup
	Timeout  time.Duration // per image; zero means 30s
}

// PNG draws sc as SVG and screenshots it at the scene size.
func (r Rasterizer) PNG(ctx context.Context, sc *Scene) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, sc); err != nil {
		return nil, err
	}
	return r.RasterizePNG(ctx, buf.Bytes(), int64(sc.Width), int64(sc.Height))
}

// RasterizePNG loads svgDoc in a headless browser sized width x height and
// returns a PNG screenshot.
func (r Rasterizer) RasterizePNG(ctx context.Context, svgDoc []byte, width, height int64) ([]byte, error) {
	timeout := r.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctx, cancelTimeout := context.WithTimeout(ctx, timeout)
	defer cancelTimeout()

	if r.ExecPath != "" {
		opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.ExecPath(r.ExecPath))
		var cancelAlloc context.CancelFunc
		ctx, cancelAlloc = chromedp.NewExecAllocator(ctx, opts...)
		defer cancelAlloc()
	}
	ctx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	url := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svgDoc)
	var png []byte
	err := chromedp.Run(ctx,
		chromedp.EmulateViewport(width, height),
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			png, err = page.CaptureScreenshot().WithFormat(page.CaptureScreenshotFormatPng).Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("rasterizing svg: %w", err)
	}
	return png, nil
}
