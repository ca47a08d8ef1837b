package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/conf-authors/internal/affiliation"
	"github.com/pfrederiksen/conf-authors/internal/author"
	"github.com/pfrederiksen/conf-authors/internal/browser"
	"github.com/pfrederiksen/conf-authors/internal/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects the request URIs served by a test library.
type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

// newLibrary serves a miniature digital library. Requests are recorded in
// hits so tests can assert which pages were visited.
func newLibrary(t *testing.T, hits *recorder) *httptest.Server {
	t.Helper()

	fixture := func(name string) string {
		data, err := os.ReadFile("../../testdata/fixtures/" + name)
		require.NoError(t, err)
		return string(data)
	}
	listingHTML := fixture("listing.html")
	articleHTML := fixture("article.html")
	profileHTML := fixture("profile.html")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.RequestURI())

		switch {
		case r.URL.Path == "/doi/proceedings/10.1145/383059":
			fmt.Fprint(w, listingHTML)
		case r.URL.Path == "/doi/10.1145/383059.383060":
			fmt.Fprint(w, articleHTML)
		case r.URL.Path == "/doi/10.1145/383059.383061":
			fmt.Fprint(w, `<ul ariaa-label="authors">
				<li class="loa__item"><span class="loa_author_inst"><p data-doi="10.1145/contrib-81100355578">MIT</p></span></li>
				<li class="loa__item"><span class="loa_author_inst"><p data-doi="10.1145/contrib-81452608737">Cornell</p></span></li>
			</ul>`)
		case r.URL.Path == "/doi/10.1145/383059.383062":
			fmt.Fprint(w, `<ul ariaa-label="authors"></ul>`)
		case r.URL.Path == "/doi/broken":
			fmt.Fprint(w, `<html><body>Please enable JavaScript</body></html>`)
		case r.URL.Path == "/profile/81100283849":
			fmt.Fprint(w, profileHTML)
		case r.URL.Path == "/profile/81100355578":
			fmt.Fprint(w, `<h1 class="title">Robert Morris</h1>
				<ul class="list-of-institutions"><li><a>Massachusetts Institute of Technology</a></li><li><a>Google Inc</a></li></ul>`)
		case r.URL.Path == "/profile/81100096812":
			fmt.Fprint(w, `<h1 class="title">David Karger</h1>`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestScraper_ListingLinks(t *testing.T) {
	logs := captureLogs(t)
	hits := &recorder{}
	server := newLibrary(t, hits)

	s := New(browser.NewHTTP(5*time.Second), server.URL+"/profile/", nil)

	links, err := s.ListingLinks(context.Background(), "2001", []listing.URL{
		listing.URL(server.URL + "/doi/proceedings/10.1145/383059"),
	})
	require.NoError(t, err)
	assert.Len(t, links, 3)

	// Titles without a link are reported with the year and page
	var warnings int
	for _, line := range strings.Split(strings.TrimSpace(logs.String()), "\n") {
		if !strings.Contains(line, "No article link found") {
			continue
		}
		warnings++
		assert.Contains(t, line, `"year":"2001"`)
		assert.Contains(t, line, server.URL+"/doi/proceedings/10.1145/383059")
	}
	assert.Equal(t, 2, warnings)

	// A tab that fails to load aborts the whole listing
	_, err = s.ListingLinks(context.Background(), "2001", []listing.URL{
		listing.URL(server.URL + "/doi/proceedings/10.1145/383059"),
		listing.URL(server.URL + "/doi/proceedings/missing"),
	})
	var fetchErr *browser.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestScraper_CollectAuthors(t *testing.T) {
	logs := captureLogs(t)
	hits := &recorder{}
	server := newLibrary(t, hits)

	s := New(browser.NewHTTP(5*time.Second), server.URL+"/profile/", nil)
	links := []string{
		"/doi/10.1145/383059.383060",
		"/doi/10.1145/383059.383061",
		server.URL + "/doi/10.1145/383059.383062",
	}

	got, err := s.CollectAuthors(context.Background(), "2001", server.URL, links)
	require.NoError(t, err)

	want := author.NewSet("81100283849", "81100355578", "81100096812", "81452608737")
	assert.Equal(t, want.Sorted(), got.Sorted())
	assert.Equal(t, 2, strings.Count(logs.String(), "Author entry needs manual investigation"))
	assert.Contains(t, logs.String(), server.URL+"/doi/10.1145/383059.383060")

	// Same articles in a different order give the same set
	reversed := []string{links[2], links[1], links[0]}
	again, err := s.CollectAuthors(context.Background(), "2001", server.URL, reversed)
	require.NoError(t, err)
	assert.True(t, got.Equal(again))
}

func TestScraper_CollectAuthors_StageFailure(t *testing.T) {
	captureLogs(t)
	hits := &recorder{}
	server := newLibrary(t, hits)

	s := New(browser.NewHTTP(5*time.Second), server.URL+"/profile/", nil)

	_, err := s.CollectAuthors(context.Background(), "2001", server.URL, []string{"/doi/broken", "/doi/10.1145/383059.383060"})
	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, []string{"/doi/broken"}, hits.list(), "collection should stop at the first broken article")

	_, err = s.CollectAuthors(context.Background(), "2001", server.URL, []string{"/doi/gone"})
	var fetchErr *browser.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestScraper_CollectAffiliations(t *testing.T) {
	captureLogs(t)
	hits := &recorder{}
	server := newLibrary(t, hits)

	s := New(browser.NewHTTP(5*time.Second), server.URL+"/profile/", nil)
	ids := author.NewSet("81100283849", "81100355578", "81100096812", "00000000000")
	rec := affiliation.NewRecord()

	manual, err := s.CollectAffiliations(context.Background(), "2021", ids, rec)
	require.NoError(t, err)

	// 81100096812 has no institutions, 00000000000 does not exist
	assert.Equal(t, []string{
		server.URL + "/profile/00000000000",
		server.URL + "/profile/81100096812",
	}, manual)

	assert.Equal(t, map[string]int{
		"university of california, berkeley":    1,
		"carnegie mellon university":            1,
		"massachusetts institute of technology": 1,
	}, rec.Academic)
	assert.Equal(t, map[string]int{
		"databricks inc": 1,
		"google inc":     1,
	}, rec.Other)

	// Every profile was attempted despite failures
	assert.Len(t, hits.list(), 4)
}

func TestScraper_CollectAffiliations_Cancelled(t *testing.T) {
	captureLogs(t)
	hits := &recorder{}
	server := newLibrary(t, hits)

	s := New(browser.NewHTTP(5*time.Second), server.URL+"/profile/", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	manual, err := s.CollectAffiliations(ctx, "2021", author.NewSet("81100283849"), affiliation.NewRecord())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, manual)
	assert.Empty(t, hits.list())
}
