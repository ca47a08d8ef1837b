// Package session runs the author and affiliation scrapes for one invocation.
//
// A Session owns the single page fetcher of a run. Stages are strictly
// sequential and each persists its output to the results directory; a stage
// whose output already exists is served from disk without fetching any page.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/pfrederiksen/conf-authors/internal/affiliation"
	"github.com/pfrederiksen/conf-authors/internal/author"
	"github.com/pfrederiksen/conf-authors/internal/browser"
	"github.com/pfrederiksen/conf-authors/internal/config"
	"github.com/pfrederiksen/conf-authors/internal/listing"
	"github.com/pfrederiksen/conf-authors/internal/logger"
	"github.com/pfrederiksen/conf-authors/internal/scraper"
	"github.com/pfrederiksen/conf-authors/internal/storage"
)

// Options tune a Session
type Options struct {
	// Refresh ignores cached stage outputs and scrapes again.
	Refresh bool
	// Log is the base logger; nil uses the package default.
	Log *logger.Logger
}

// Session is one run over the configured years.
type Session struct {
	cfg      *config.Config
	store    *storage.Storage
	fetcher  browser.Fetcher
	resolver *listing.Resolver
	scraper  *scraper.Scraper
	refresh  bool
	log      *logger.Logger
	runID    uuid.UUID
}

// New creates a Session. The session takes ownership of f; call Close when
// done, on every path.
func New(cfg *config.Config, store *storage.Storage, f browser.Fetcher, opts Options) *Session {
	runID := uuid.New()

	base := opts.Log
	if base == nil {
		base = logger.Default()
	}
	log := base.With(logger.Fields{"run_id": runID.String()})

	return &Session{
		cfg:      cfg,
		store:    store,
		fetcher:  f,
		resolver: listing.NewResolver(cfg),
		scraper:  scraper.New(f, cfg.ProfileURL, log),
		refresh:  opts.Refresh,
		log:      log,
		runID:    runID,
	}
}

// RunID identifies this run in log output
func (s *Session) RunID() uuid.UUID {
	return s.runID
}

// Log returns the run's logger. Every entry carries the run ID.
func (s *Session) Log() *logger.Logger {
	return s.log
}

// Close releases the fetcher.
func (s *Session) Close() error {
	return s.fetcher.Close()
}

// Authors returns the author identifiers of every configured year. A
// persisted author index is returned as is; otherwise every year is scraped
// and the index persisted. A stage failure in any year aborts the run and
// nothing is persisted.
func (s *Session) Authors(ctx context.Context) (author.Index, error) {
	if !s.refresh {
		idx, err := s.store.LoadAuthors()
		if err == nil {
			s.log.Info("Using cached author identifiers", logger.Fields{"dir": s.store.Dir(), "file": storage.AuthorFile})
			return idx, nil
		}
		if !errors.Is(err, storage.ErrNotCached) {
			return nil, err
		}
	}

	idx := make(author.Index, len(s.cfg.Years))
	for _, year := range s.cfg.Years {
		set, err := s.scrapeYear(ctx, year)
		if err != nil {
			s.log.Error("Author scrape failed", logger.Fields{"conference": s.cfg.Conference, "year": year}, err)
			return nil, fmt.Errorf("scraping %s %s authors: %w", s.cfg.Conference, year, err)
		}
		idx[year] = set
	}

	if err := s.store.SaveAuthors(idx); err != nil {
		return nil, fmt.Errorf("saving author identifiers: %w", err)
	}
	s.log.Info("Saved author identifiers", logger.Fields{"dir": s.store.Dir(), "file": storage.AuthorFile})

	return idx, nil
}

func (s *Session) scrapeYear(ctx context.Context, year string) (author.Set, error) {
	y, err := s.cfg.YearConfig(year)
	if err != nil {
		return nil, err
	}

	pages, err := s.resolver.Resolve(year)
	if err != nil {
		return nil, err
	}
	s.log.Info("Processing event", logger.Fields{
		"conference":    s.cfg.Conference,
		"year":          year,
		"listing_pages": len(pages),
	})

	links, err := s.scraper.ListingLinks(ctx, year, pages)
	if err != nil {
		return nil, err
	}

	return s.scraper.CollectAuthors(ctx, year, y.BaseURL, links)
}

// Affiliations counts the institutions of the authors of every configured
// affiliation year. Profiles that cannot be parsed are collected in the
// report's manual-check list and do not stop the run. The report is
// persisted, and a persisted report is returned without fetching.
func (s *Session) Affiliations(ctx context.Context, idx author.Index) (*affiliation.Report, error) {
	if !s.refresh {
		rep, err := s.store.LoadAffiliations()
		if err == nil {
			s.log.Info("Using cached affiliation counts", logger.Fields{"dir": s.store.Dir()})
			return rep, nil
		}
		if !errors.Is(err, storage.ErrNotCached) {
			return nil, err
		}
	}

	rep := affiliation.NewReport()
	for _, year := range s.cfg.AffiliationYears {
		ids := idx.Get(year)
		s.log.Info("Collecting affiliations", logger.Fields{"year": year, "authors": ids.Len()})

		manual, err := s.scraper.CollectAffiliations(ctx, year, ids, rep.Year(year))
		rep.ManualCheck = append(rep.ManualCheck, manual...)
		if err != nil {
			return nil, fmt.Errorf("collecting %s affiliations: %w", year, err)
		}
	}

	if err := s.store.SaveAffiliations(rep); err != nil {
		return nil, fmt.Errorf("saving affiliations: %w", err)
	}
	s.log.Info("Saved affiliation counts", logger.Fields{
		"dir":          s.store.Dir(),
		"manual_check": len(rep.ManualCheck),
	})

	return rep, nil
}
