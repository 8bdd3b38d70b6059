// Package ingest orchestrates the discovery and persistence of newly listed
// rentals from the source site.
package ingest

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"

	"vigia/internal/common/logger"
)

// PageFetcher returns the rendered HTML of a page. The browser mechanics
// stay behind this boundary so the orchestration and the parsers can be
// tested without Chrome.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// ChromeFetcher renders pages with a headless Chrome instance. The source
// site builds parts of the listing markup with JavaScript, so a plain HTTP
// GET is not enough.
type ChromeFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	timeout  time.Duration
	logger   logger.Logger
}

func NewChromeFetcher(timeout time.Duration, log logger.Logger) *ChromeFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromeFetcher{
		allocCtx: allocCtx,
		cancel:   cancel,
		timeout:  timeout,
		logger:   log.WithFields(map[string]interface{}{"component": "fetcher"}),
	}
}

func (f *ChromeFetcher) Fetch(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.allocCtx,
		chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, f.timeout)
	defer cancelTimeout()

	go func() {
		select {
		case <-ctx.Done():
			cancelTab()
		case <-tabCtx.Done():
		}
	}()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		f.logger.Warn("page fetch failed", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		return "", err
	}
	return html, nil
}

func (f *ChromeFetcher) Close() {
	f.cancel()
}
