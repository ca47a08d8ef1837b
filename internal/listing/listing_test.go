package listing

import (
	"errors"
	"testing"

	"github.com/pfrederiksen/conf-authors/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		URL: map[string]config.Year{
			"2001": {BaseURL: "https://dl.acm.org", Path: "/doi/proceedings/10.1145/383059"},
			"2021": {
				BaseURL: "https://dl.acm.org",
				Path:    "/doi/proceedings/10.1145/3452296",
				Params: map[string][]string{
					"tocHeading": {"heading2", "heading1", "heading2", "heading 3"},
				},
			},
			"1999": {BaseURL: "https://dl.acm.org"},
			"2000": {
				BaseURL: "https://dl.acm.org",
				Path:    "/toc",
				Params:  map[string][]string{"tocHeading": {}},
			},
		},
	}
}

func TestNewURL(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"https://dl.acm.org/doi/10.1145/383059.383060", false},
		{"http://example.com", false},
		{"ws://example.com", true},
		{"dl.acm.org/doi", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			u, err := NewURL(tt.in)
			if tt.wantErr {
				var vErr *ValidationError
				require.True(t, errors.As(err, &vErr))
				assert.Equal(t, tt.in, vErr.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in, u.String())
		})
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://dl.acm.org", "/doi/10.1145/383059.383060", "https://dl.acm.org/doi/10.1145/383059.383060"},
		{"https://dl.acm.org/", "doi/abs/1", "https://dl.acm.org/doi/abs/1"},
		{"https://dl.acm.org/toc/", "https://other.example/doi/2", "https://other.example/doi/2"},
	}

	for _, tt := range tests {
		got, err := Join(tt.base, tt.ref)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestResolve_SinglePage(t *testing.T) {
	r := NewResolver(testConfig())

	urls, err := r.Resolve("2001")
	require.NoError(t, err)
	assert.Equal(t, []URL{"https://dl.acm.org/doi/proceedings/10.1145/383059"}, urls)

	strategy, err := r.Strategy("2001")
	require.NoError(t, err)
	assert.IsType(t, SinglePage{}, strategy)
}

func TestResolve_Paginated(t *testing.T) {
	r := NewResolver(testConfig())

	urls, err := r.Resolve("2021")
	require.NoError(t, err)
	assert.Equal(t, []URL{
		"https://dl.acm.org/doi/proceedings/10.1145/3452296?tocHeading=heading+3",
		"https://dl.acm.org/doi/proceedings/10.1145/3452296?tocHeading=heading1",
		"https://dl.acm.org/doi/proceedings/10.1145/3452296?tocHeading=heading2",
	}, urls)

	strategy, err := r.Strategy("2021")
	require.NoError(t, err)
	assert.IsType(t, Paginated{}, strategy)
}

func TestResolve_ConfigurationErrors(t *testing.T) {
	r := NewResolver(testConfig())

	for _, year := range []string{"1987", "1999", "2000"} {
		t.Run(year, func(t *testing.T) {
			_, err := r.Resolve(year)
			var cfgErr *config.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %v", err)
		})
	}
}

func TestPaginated_InvalidBase(t *testing.T) {
	p := Paginated{Base: "dl.acm.org", Path: "/toc", Key: "tocHeading", Values: []string{"a"}}
	_, err := p.URLs()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}
