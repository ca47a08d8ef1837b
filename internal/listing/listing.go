// Package listing resolves the proceedings listing pages to visit for a year.
//
// Most years list every accepted paper on a single table-of-contents page.
// Some years split the table of contents across tabs that are only rendered
// when selected through a query parameter; those are resolved to one URL per
// configured parameter value.
package listing

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/pfrederiksen/conf-authors/internal/config"
)

// URL is an absolute http(s) URL of a listing page.
type URL string

// ValidationError is returned when a string is not an http(s) URL
type ValidationError struct {
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%q is not an http:// or https:// URL", e.Value)
}

// NewURL validates s and returns it as a URL.
func NewURL(s string) (URL, error) {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return "", &ValidationError{Value: s}
	}
	return URL(s), nil
}

func (u URL) String() string {
	return string(u)
}

// Join resolves ref against base the way a browser resolves a link.
func Join(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing base URL %q: %w", base, err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parsing reference %q: %w", ref, err)
	}
	return b.ResolveReference(r).String(), nil
}

// Strategy produces the listing URLs for one year.
type Strategy interface {
	URLs() ([]URL, error)
}

// SinglePage lists every paper on one page.
type SinglePage struct {
	Base string
	Path string
}

func (s SinglePage) URLs() ([]URL, error) {
	joined, err := Join(s.Base, s.Path)
	if err != nil {
		return nil, err
	}
	u, err := NewURL(joined)
	if err != nil {
		return nil, err
	}
	return []URL{u}, nil
}

// Paginated lists papers across tabs selected by the Key query parameter.
// Repeated values produce a single URL.
type Paginated struct {
	Base   string
	Path   string
	Key    string
	Values []string
}

func (p Paginated) URLs() ([]URL, error) {
	seen := make(map[URL]bool)
	urls := make([]URL, 0, len(p.Values))

	for _, value := range p.Values {
		query := url.Values{p.Key: []string{value}}.Encode()
		joined, err := Join(p.Base, p.Path+"?"+query)
		if err != nil {
			return nil, err
		}
		u, err := NewURL(joined)
		if err != nil {
			return nil, err
		}
		if seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}

	sort.Slice(urls, func(i, j int) bool { return urls[i] < urls[j] })
	return urls, nil
}

// Resolver selects a listing strategy for each configured year.
type Resolver struct {
	cfg *config.Config
}

// NewResolver creates a Resolver backed by cfg
func NewResolver(cfg *config.Config) *Resolver {
	return &Resolver{cfg: cfg}
}

// Strategy returns the listing strategy configured for year.
func (r *Resolver) Strategy(year string) (Strategy, error) {
	y, err := r.cfg.YearConfig(year)
	if err != nil {
		return nil, err
	}
	if y.BaseURL == "" {
		return nil, &config.ConfigurationError{Key: "URL." + year + ".BASE_URL", Msg: "missing"}
	}
	if y.Path == "" {
		return nil, &config.ConfigurationError{Key: "URL." + year + ".PATH", Msg: "missing"}
	}

	if !y.Paginated() {
		return SinglePage{Base: y.BaseURL, Path: y.Path}, nil
	}

	if len(y.Params) > 1 {
		return nil, &config.ConfigurationError{Key: "URL." + year + ".PARAMS", Msg: "only one pagination parameter is supported"}
	}

	var key string
	for k := range y.Params {
		key = k
	}
	values := y.Params[key]
	if len(values) == 0 {
		return nil, &config.ConfigurationError{Key: "URL." + year + ".PARAMS." + key, Msg: "no values"}
	}
	return Paginated{Base: y.BaseURL, Path: y.Path, Key: key, Values: values}, nil
}

// Resolve returns the distinct listing URLs for year.
func (r *Resolver) Resolve(year string) ([]URL, error) {
	strategy, err := r.Strategy(year)
	if err != nil {
		return nil, err
	}
	urls, err := strategy.URLs()
	if err != nil {
		return nil, fmt.Errorf("resolving listing for %s: %w", year, err)
	}
	return urls, nil
}
