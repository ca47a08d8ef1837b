package browser

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Lazy defers opening the underlying fetcher until the first page load, so
// runs served entirely from cached results never start a browser.
type Lazy struct {
	open    func() (Fetcher, error)
	fetcher Fetcher
}

// NewLazy wraps open. open is called at most once successfully.
func NewLazy(open func() (Fetcher, error)) *Lazy {
	return &Lazy{open: open}
}

func (l *Lazy) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if l.fetcher == nil {
		f, err := l.open()
		if err != nil {
			return nil, err
		}
		l.fetcher = f
	}
	return l.fetcher.Fetch(ctx, url)
}

// Close releases the underlying fetcher if it was opened. It is safe to call
// more than once.
func (l *Lazy) Close() error {
	if l.fetcher == nil {
		return nil
	}
	err := l.fetcher.Close()
	l.fetcher = nil
	return err
}
