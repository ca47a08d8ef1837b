// Package browser loads pages and returns them as parsed HTML documents.
//
// The digital library renders its tables of contents with JavaScript, so the
// default driver controls a headless Chromium over the DevTools protocol. A
// plain HTTP driver is available for static pages. One Fetcher is acquired
// per run, reused for every page and closed when the run ends.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/conf-authors/internal/config"
	"github.com/pfrederiksen/conf-authors/internal/logger"
)

// Fetcher loads a page and returns its rendered document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
	Close() error
}

// FetchError reports a page that could not be loaded, or a browser that
// could not be started (URL is empty).
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("starting browser: %v", e.Err)
	}
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// New opens the fetcher selected by cfg.Driver, instrumented with log and
// throttled to cfg.MinInterval. A nil log uses the package default.
func New(cfg config.Browser, log *logger.Logger) (Fetcher, error) {
	var (
		f   Fetcher
		err error
	)

	switch cfg.Driver {
	case config.DriverRod, "":
		f, err = NewRod(cfg)
	case config.DriverHTTP:
		f = NewHTTP(cfg.Timeout)
	default:
		return nil, &config.ConfigurationError{Key: "CHROME.DRIVER", Msg: fmt.Sprintf("unknown driver %q", cfg.Driver)}
	}
	if err != nil {
		return nil, err
	}

	return Throttle(Instrument(f, log), cfg.MinInterval), nil
}

// parseDocument parses rendered HTML and records the page URL on the document.
func parseDocument(pageURL, html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	if u, err := url.Parse(pageURL); err == nil {
		doc.Url = u
	}
	return doc, nil
}

type instrumented struct {
	Fetcher
	log *logger.Logger
}

// Instrument logs each page load to log and records page metrics. A nil log
// uses the package default.
func Instrument(f Fetcher, log *logger.Logger) Fetcher {
	if log == nil {
		log = logger.Default()
	}
	return &instrumented{Fetcher: f, log: log}
}

func (i *instrumented) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	i.log.Info("Fetching page", logger.Fields{"url": url})

	start := time.Now()
	doc, err := i.Fetcher.Fetch(ctx, url)
	logger.RecordTiming("page.load", time.Since(start))

	if err != nil {
		logger.IncrCounter("pages.failed")
		return nil, err
	}
	logger.IncrCounter("pages.fetched")
	return doc, nil
}
