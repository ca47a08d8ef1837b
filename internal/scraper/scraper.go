package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/conf-authors/internal/affiliation"
	"github.com/pfrederiksen/conf-authors/internal/author"
	"github.com/pfrederiksen/conf-authors/internal/browser"
	"github.com/pfrederiksen/conf-authors/internal/listing"
	"github.com/pfrederiksen/conf-authors/internal/logger"
)

// Selectors for the digital library page layout. The author list carries a
// misspelt "ariaa-label" attribute on the live site; the correct spelling is
// accepted too.
const (
	ArticleTitleSelector = "h5.issue-item__title"
	AuthorListSelector   = `ul[ariaa-label="authors"], ul[aria-label="authors"]`
	AuthorItemSelector   = "li.loa__item"
	AuthorInstSelector   = "span.loa_author_inst"
	ProfileNameSelector  = "h1.title"
	InstitutionSelector  = "ul.list-of-institutions"

	// AuthorIDAttr holds the composite author identifier, e.g. "10.1145-81100283849".
	AuthorIDAttr = "data-doi"
)

// ParseError reports a page missing an element that every page of its kind
// must have, usually because the site layout changed or the page did not
// render.
type ParseError struct {
	URL      string
	Selector string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("no %q element found on %s; confirm the site is working", e.Selector, e.URL)
}

// ItemError describes one author entry that could not be extracted.
type ItemError struct {
	Entry string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%v (entry: %s)", e.Err, e.Entry)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

var (
	ErrMissingAuthorID   = errors.New("author entry has no " + AuthorIDAttr + " value")
	ErrMalformedAuthorID = errors.New("author identifier has no second segment")
)

func pageURL(doc *goquery.Document) string {
	if doc.Url == nil {
		return "(unknown page)"
	}
	return doc.Url.String()
}

// ArticleLinks returns the href of the first link inside each article title
// on a listing page, and the text of the titles that have no link. A page
// with no titles at all is a ParseError.
func ArticleLinks(doc *goquery.Document) ([]string, []string, error) {
	titles := doc.Find(ArticleTitleSelector)
	if titles.Length() == 0 {
		return nil, nil, &ParseError{URL: pageURL(doc), Selector: ArticleTitleSelector}
	}

	var (
		links    = make([]string, 0, titles.Length())
		unlinked []string
	)
	titles.Each(func(i int, title *goquery.Selection) {
		href, ok := title.Find("a[href]").First().Attr("href")
		if !ok {
			unlinked = append(unlinked, strings.Join(strings.Fields(title.Text()), " "))
			return
		}
		links = append(links, href)
	})

	return links, unlinked, nil
}

// ParseAuthorID extracts the author identifier from a composite data-doi
// value by splitting on "-" and keeping the second segment, so
// "10.1145/contrib-81100283849" yields "81100283849". The rule is purely
// positional: a change in the attribute format yields wrong identifiers
// without any error.
func ParseAuthorID(attr string) (author.ID, error) {
	parts := strings.Split(attr, "-")
	if len(parts) < 2 || parts[1] == "" {
		return "", fmt.Errorf("%w: %q", ErrMalformedAuthorID, attr)
	}
	return author.ID(parts[1]), nil
}

// ArticleAuthors returns the author identifiers on an article page in byline
// order. Authors without an institution entry are ignored. Entries whose
// identifier is present but unusable are returned as ItemErrors. A page
// without an author list is a ParseError.
func ArticleAuthors(doc *goquery.Document) ([]author.ID, []*ItemError, error) {
	list := doc.Find(AuthorListSelector).First()
	if list.Length() == 0 {
		return nil, nil, &ParseError{URL: pageURL(doc), Selector: AuthorListSelector}
	}

	var (
		ids      []author.ID
		failures []*ItemError
	)

	list.Find(AuthorItemSelector).Each(func(i int, item *goquery.Selection) {
		p := item.Find(AuthorInstSelector).First().Find("p").First()
		if p.Length() == 0 {
			return
		}

		entry := strings.Join(strings.Fields(item.Text()), " ")

		attr, ok := p.Attr(AuthorIDAttr)
		if !ok || attr == "" {
			failures = append(failures, &ItemError{Entry: entry, Err: ErrMissingAuthorID})
			return
		}

		id, err := ParseAuthorID(attr)
		if err != nil {
			failures = append(failures, &ItemError{Entry: entry, Err: err})
			return
		}
		ids = append(ids, id)
	})

	return ids, failures, nil
}

// Profile is the parsed content of an author profile page.
type Profile struct {
	Name         string
	Institutions []string
}

// ParseProfile extracts the display name and lowercased institution names
// from an author profile page.
func ParseProfile(doc *goquery.Document) (*Profile, error) {
	name := doc.Find(ProfileNameSelector).First()
	if name.Length() == 0 {
		return nil, &ParseError{URL: pageURL(doc), Selector: ProfileNameSelector}
	}

	list := doc.Find(InstitutionSelector).First()
	if list.Length() == 0 {
		return nil, &ParseError{URL: pageURL(doc), Selector: InstitutionSelector}
	}

	profile := &Profile{Name: strings.TrimSpace(name.Text())}

	var err error
	list.Find("a").EachWithBreak(func(i int, a *goquery.Selection) bool {
		inst := strings.ToLower(strings.TrimSpace(a.Text()))
		if inst == "" {
			err = fmt.Errorf("empty institution link at position %d on %s", i, pageURL(doc))
			return false
		}
		profile.Institutions = append(profile.Institutions, inst)
		return true
	})
	if err != nil {
		return nil, err
	}

	return profile, nil
}

// Scraper walks listing, article and profile pages through a single fetcher.
type Scraper struct {
	fetcher    browser.Fetcher
	profileURL string
	log        *logger.Logger
}

// New creates a Scraper. Author profiles are fetched from profileURL + id.
// A nil log uses the package default.
func New(f browser.Fetcher, profileURL string, log *logger.Logger) *Scraper {
	if log == nil {
		log = logger.Default()
	}
	return &Scraper{
		fetcher:    f,
		profileURL: profileURL,
		log:        log,
	}
}

// ProfileURL returns the profile page URL for id.
func (s *Scraper) ProfileURL(id author.ID) string {
	return s.profileURL + string(id)
}

// ListingLinks fetches each listing page of year and returns the article
// links of all of them, in page order. Titles without a link are logged and
// skipped. Any fetch or parse failure aborts.
func (s *Scraper) ListingLinks(ctx context.Context, year string, pages []listing.URL) ([]string, error) {
	var links []string
	for _, page := range pages {
		doc, err := s.fetcher.Fetch(ctx, page.String())
		if err != nil {
			return nil, err
		}

		found, unlinked, err := ArticleLinks(doc)
		if err != nil {
			return nil, err
		}
		for _, title := range unlinked {
			s.log.Warn("No article link found", logger.Fields{
				"year":  year,
				"page":  page.String(),
				"title": title,
			})
			logger.IncrCounter("articles.missing_link")
		}

		s.log.Info("Parsed listing page", logger.Fields{"year": year, "url": page.String(), "articles": len(found)})
		links = append(links, found...)
	}
	return links, nil
}

// CollectAuthors visits every article, resolved against base, and returns
// the distinct author identifiers found. Malformed author entries are logged
// with the article URL and skipped; a fetch failure or an article without an
// author list aborts the collection.
func (s *Scraper) CollectAuthors(ctx context.Context, year, base string, links []string) (author.Set, error) {
	authors := author.NewSet()

	for _, link := range links {
		articleURL, err := listing.Join(base, link)
		if err != nil {
			return nil, fmt.Errorf("resolving article link: %w", err)
		}

		doc, err := s.fetcher.Fetch(ctx, articleURL)
		if err != nil {
			return nil, err
		}

		ids, failures, err := ArticleAuthors(doc)
		if err != nil {
			return nil, err
		}

		for _, f := range failures {
			s.log.Warn("Author entry needs manual investigation", logger.Fields{
				"year":    year,
				"article": articleURL,
				"entry":   f.Entry,
				"reason":  f.Err.Error(),
			})
			logger.IncrCounter("authors.skipped")
		}

		s.log.Info("Authors discovered", logger.Fields{"year": year, "article": link, "count": len(ids)})
		authors.Add(ids...)
	}

	s.log.Info("Author collection complete", logger.Fields{
		"year":     year,
		"articles": len(links),
		"authors":  authors.Len(),
	})
	logger.AddCounter("authors.found", int64(authors.Len()))

	return authors, nil
}

// CollectAffiliations visits the profile of every author in ids and counts
// their institutions into rec. Profiles that fail to load or parse are
// logged and their URLs returned for manual checking; the remaining authors
// are still processed. Only cancellation of ctx stops the loop early.
func (s *Scraper) CollectAffiliations(ctx context.Context, year string, ids author.Set, rec *affiliation.Record) ([]string, error) {
	manual := make([]string, 0)

	for _, id := range ids.Sorted() {
		if err := ctx.Err(); err != nil {
			return manual, err
		}

		profileURL := s.ProfileURL(id)
		profile, err := s.profile(ctx, profileURL)
		if err != nil {
			s.log.Warn("Profile needs manual check", logger.Fields{
				"year":   year,
				"url":    profileURL,
				"reason": err.Error(),
			})
			logger.IncrCounter("profiles.manual_check")
			manual = append(manual, profileURL)
			continue
		}

		s.log.Info("Parsed author profile", logger.Fields{"year": year, "author_id": string(id), "name": profile.Name})
		for _, inst := range profile.Institutions {
			bucket, count := rec.Add(inst)
			s.log.Debug("Counted affiliation", logger.Fields{
				"year":        year,
				"institution": inst,
				"bucket":      string(bucket),
				"count":       count,
			})
		}
	}

	return manual, nil
}

func (s *Scraper) profile(ctx context.Context, profileURL string) (*Profile, error) {
	doc, err := s.fetcher.Fetch(ctx, profileURL)
	if err != nil {
		return nil, err
	}
	return ParseProfile(doc)
}
