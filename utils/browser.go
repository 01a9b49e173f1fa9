package utils

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/chromedp/chromedp"

	"sku-traverser/internal/types"
)

// BrowserClient owns a single persistent browser tab for the whole session.
// SKU state lives in the page between calls, so unlike a fetch-and-discard
// scraper the tab must survive across every core operation.
//
// BrowserClient implements types.Page and types.GridPage.
type BrowserClient struct {
	config *types.Config
	logger types.Logger

	allocCancel context.CancelFunc
	ctxCancel   context.CancelFunc
	ctx         context.Context
}

// NewBrowserClient creates a browser client. Start must be called before any
// page operation.
func NewBrowserClient(config *types.Config, logger types.Logger) *BrowserClient {
	// Suppress chromedp's own debug logging.
	log.SetOutput(io.Discard)

	return &BrowserClient{
		config: config,
		logger: logger,
	}
}

// Start launches the browser and opens the session tab. When UserDataDir is
// set the existing profile is reused, which carries the user's logged-in
// state into the session.
func (b *BrowserClient) Start(ctx context.Context) error {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.config.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.UserAgent(b.config.UserAgent),
	)
	if b.config.UserDataDir != "" {
		opts = append(opts,
			chromedp.UserDataDir(b.config.UserDataDir),
			chromedp.Flag("profile-directory", b.config.ProfileDir),
		)
		b.logger.Infof("Reusing browser profile: %s / %s", b.config.UserDataDir, b.config.ProfileDir)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// Force the browser process to start now so a broken environment fails
	// fast instead of on the first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return fmt.Errorf("failed to start browser: %w", err)
	}

	// Remove the most obvious webdriver trace before any page script runs.
	_ = chromedp.Run(tabCtx, chromedp.Evaluate(
		"Object.defineProperty(navigator, 'webdriver', {get: () => undefined})", nil))

	b.allocCancel = allocCancel
	b.ctxCancel = tabCancel
	b.ctx = tabCtx
	b.logger.Debug("Browser session started")
	return nil
}

// Navigate opens url in the session tab and gives the page a short moment to
// begin rendering. Readiness of specific regions is the caller's concern.
func (b *BrowserClient) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := b.opCtx()
	defer cancel()

	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(500*time.Millisecond),
	)
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	b.logger.Debugf("Navigated to %s", url)
	return nil
}

// HTML returns the outer HTML of the first element matching selector.
func (b *BrowserClient) HTML(ctx context.Context, selector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	runCtx, cancel := b.opCtx()
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.OuterHTML(selector, &html, chromedp.ByQuery, chromedp.AtLeast(0)),
	)
	if err != nil {
		return "", fmt.Errorf("failed to capture HTML for %q: %w", selector, err)
	}
	if html == "" {
		return "", fmt.Errorf("no element matches %q", selector)
	}
	return html, nil
}

// Evaluate runs script in the page and unmarshals its JSON result into res.
func (b *BrowserClient) Evaluate(ctx context.Context, script string, res interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := b.opCtx()
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, res)); err != nil {
		return fmt.Errorf("script evaluation failed: %w", err)
	}
	return nil
}

// Scroll scrolls the region matching selector by dy pixels, or the window
// when selector is empty.
func (b *BrowserClient) Scroll(ctx context.Context, selector string, dy int) error {
	script := fmt.Sprintf(`(function(sel, dy){
  if (sel) {
    var el = document.querySelector(sel);
    if (el) { el.scrollTop += dy; return true; }
  }
  window.scrollBy(0, dy);
  return true;
})(%q, %d)`, selector, dy)

	var ok bool
	if err := b.Evaluate(ctx, script, &ok); err != nil {
		return fmt.Errorf("scroll failed: %w", err)
	}
	return nil
}

// opCtx derives a per-operation context bound to the session tab and limited
// by the configured timeout.
func (b *BrowserClient) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(b.ctx, b.config.Timeout)
}

// Close tears down the tab and the browser process.
func (b *BrowserClient) Close() {
	if b.ctxCancel != nil {
		b.ctxCancel()
	}
	if b.allocCancel != nil {
		b.allocCancel()
	}
}
