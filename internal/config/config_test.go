package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
CHROME:
  PATH: /opt/chrome
  MIN_INTERVAL: 500ms
URL:
  "2001":
    BASE_URL: https://dl.acm.org
    PATH: /doi/proceedings/10.1145/383059
  "2021":
    BASE_URL: https://dl.acm.org
    PATH: /doi/proceedings/10.1145/3452296
    PARAMS:
      tocHeading: [heading1, heading2]
`

func TestParse_Defaults(t *testing.T) {
	t.Setenv(BrowserPathEnv, "")

	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, DefaultConference, cfg.Conference)
	assert.Equal(t, DriverRod, cfg.Browser.Driver)
	assert.Equal(t, "/opt/chrome", cfg.Browser.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Browser.MinInterval)
	assert.Equal(t, DefaultWidth, cfg.Browser.Width)
	assert.Equal(t, DefaultHeight, cfg.Browser.Height)
	assert.Equal(t, DefaultProfileURL, cfg.ProfileURL)
	assert.Equal(t, DefaultResultsDir, cfg.ResultsDir)
	assert.Equal(t, []string{"2001", "2021"}, cfg.Years)
	assert.Equal(t, []string{"2001", "2021"}, cfg.AffiliationYears)
	assert.Equal(t, "2021", cfg.Report.Target)
	assert.Equal(t, []string{"2001"}, cfg.Report.Baselines)

	assert.False(t, cfg.URL["2001"].Paginated())
	assert.True(t, cfg.URL["2021"].Paginated())
}

func TestParse_OriginalJSONShape(t *testing.T) {
	t.Setenv(BrowserPathEnv, "")

	doc := `{"CHROME": {"PATH": "./chromedriver"}, ` +
		`"URL": {"2002": {"BASE_URL": "https://dl.acm.org", "PATH": "/doi/proceedings/10.1145/633025"}}}`

	cfg, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "./chromedriver", cfg.Browser.Path)
	assert.Equal(t, "/doi/proceedings/10.1145/633025", cfg.URL["2002"].Path)
}

func TestParse_EnvOverride(t *testing.T) {
	t.Setenv(BrowserPathEnv, "/usr/local/bin/chromium")

	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/chromium", cfg.Browser.Path)
}

func TestParse_Invalid(t *testing.T) {
	t.Setenv(BrowserPathEnv, "")

	tests := []struct {
		name    string
		doc     string
		wantKey string
	}{
		{
			name:    "no years",
			doc:     "CONFERENCE: SIGCOMM\n",
			wantKey: "URL",
		},
		{
			name:    "missing base url",
			doc:     "URL:\n  \"2001\":\n    PATH: /x\n",
			wantKey: "URL.2001.BASE_URL",
		},
		{
			name:    "missing path",
			doc:     "URL:\n  \"2001\":\n    BASE_URL: https://dl.acm.org\n",
			wantKey: "URL.2001.PATH",
		},
		{
			name:    "empty pagination values",
			doc:     "URL:\n  \"2021\":\n    BASE_URL: https://dl.acm.org\n    PATH: /x\n    PARAMS:\n      tocHeading: []\n",
			wantKey: "URL.2021.PARAMS.tocHeading",
		},
		{
			name:    "unknown driver",
			doc:     "CHROME:\n  DRIVER: selenium\nURL:\n  \"2001\":\n    BASE_URL: https://dl.acm.org\n    PATH: /x\n",
			wantKey: "CHROME.DRIVER",
		},
		{
			name:    "year list references unknown year",
			doc:     "YEARS: [\"1999\"]\nURL:\n  \"2001\":\n    BASE_URL: https://dl.acm.org\n    PATH: /x\n",
			wantKey: "YEARS",
		},
		{
			name:    "profile url without scheme",
			doc:     "PROFILE_URL: dl.acm.org/profile/\nURL:\n  \"2001\":\n    BASE_URL: https://dl.acm.org\n    PATH: /x\n",
			wantKey: "PROFILE_URL",
		},
		{
			name:    "malformed document",
			doc:     "URL: [unterminated",
			wantKey: "document",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "expected ConfigurationError, got %T", err)
			assert.Equal(t, tt.wantKey, cfgErr.Key)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Setenv(BrowserPathEnv, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, cfg.URL, 2)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "not found")
}

func TestYearConfig(t *testing.T) {
	t.Setenv(BrowserPathEnv, "")

	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	y, err := cfg.YearConfig("2001")
	require.NoError(t, err)
	assert.Equal(t, "https://dl.acm.org", y.BaseURL)

	_, err = cfg.YearConfig("1987")
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "URL.1987", cfgErr.Key)
}

func TestRepoConfigLoads(t *testing.T) {
	t.Setenv(BrowserPathEnv, "")

	cfg, err := Load(filepath.Join("..", "..", DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, []string{"2001", "2002", "2021"}, cfg.Years)
	assert.Equal(t, []string{"2002", "2021"}, cfg.AffiliationYears)
	assert.True(t, cfg.URL["2021"].Paginated())
}
