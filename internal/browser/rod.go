package browser

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/pfrederiksen/conf-authors/internal/config"
)

// RodFetcher drives a local headless Chromium. Pages are loaded one at a
// time in a single reused tab.
type RodFetcher struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	timeout  time.Duration
}

// NewRod launches the browser binary at cfg.Path and connects to it.
func NewRod(cfg config.Browser) (*RodFetcher, error) {
	if cfg.Path == "" {
		return nil, &FetchError{Err: errors.New("no browser binary configured (CHROME.PATH)")}
	}

	l := launcher.New().
		Bin(cfg.Path).
		Headless(true).
		Set("window-size", fmt.Sprintf("%d,%d", cfg.Width, cfg.Height))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("launching %s: %w", cfg.Path, err)}
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, &FetchError{Err: fmt.Errorf("connecting to browser: %w", err)}
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, &FetchError{Err: fmt.Errorf("opening tab: %w", err)}
	}

	return &RodFetcher{
		launcher: l,
		browser:  b,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

// Fetch navigates the tab to url, waits for the load event and parses the
// rendered DOM. Without CHROME.TIMEOUT the wait is bounded only by ctx.
func (f *RodFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	page := f.page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("waiting for load: %w", err)}
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("reading page source: %w", err)}
	}

	doc, err := parseDocument(url, html)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	return doc, nil
}

// Close shuts the browser down and removes its profile directory.
func (f *RodFetcher) Close() error {
	err := f.browser.Close()
	f.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("closing browser: %w", err)
	}
	return nil
}
