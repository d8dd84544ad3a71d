package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// minStaticLength is the shortest extracted text accepted from a plain HTTP
// fetch. Anything shorter usually means a JavaScript-rendered posting page.
const minStaticLength = 500

func needsBrowser(extracted string) bool {
	return len(strings.TrimSpace(extracted)) < minStaticLength
}

// renderWithBrowser loads the posting in headless Chrome and returns the
// rendered HTML. Requires Chrome or Chromium on the host.
func renderWithBrowser(ctx context.Context, postingURL string, timeout time.Duration) (string, error) {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(postingURL),
		chromedp.WaitReady("body"),
		// Job boards render the description after load; give scripts a beat.
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dismiss cookie banners when present; ignore when not.
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("headless render failed: %w", err)
	}
	return html, nil
}
