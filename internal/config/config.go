package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPath       = "config/config.yaml"
	DefaultResultsDir = "./results"
	DefaultProfileURL = "https://dl.acm.org/profile/"
	DefaultConference = "SIGCOMM"
	DefaultDriver     = DriverRod
	DefaultWidth      = 1920
	DefaultHeight     = 1080

	// BrowserPathEnv overrides CHROME.PATH when set.
	BrowserPathEnv = "CONF_AUTHORS_BROWSER_PATH"
)

// Supported page fetch drivers
const (
	DriverRod  = "rod"
	DriverHTTP = "http"
)

// ConfigurationError reports a missing or invalid configuration value.
// It is always fatal for the run.
type ConfigurationError struct {
	Key string
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %s: %v", e.Key, e.Msg, e.Err)
	}
	return fmt.Sprintf("configuration error: %s: %s", e.Key, e.Msg)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// Browser configures the page fetcher
type Browser struct {
	Driver      string        `yaml:"DRIVER"`
	Path        string        `yaml:"PATH"`
	Width       int           `yaml:"WINDOW_WIDTH"`
	Height      int           `yaml:"WINDOW_HEIGHT"`
	Timeout     time.Duration `yaml:"TIMEOUT"`
	MinInterval time.Duration `yaml:"MIN_INTERVAL"`
}

// Year describes where a single year's proceedings are listed.
type Year struct {
	BaseURL string              `yaml:"BASE_URL"`
	Path    string              `yaml:"PATH"`
	Params  map[string][]string `yaml:"PARAMS,omitempty"`
}

// Paginated reports whether the listing is split across parameterised tabs.
func (y Year) Paginated() bool {
	return len(y.Params) > 0
}

// Report selects which years are compared in the cross-reference report.
type Report struct {
	Target    string   `yaml:"TARGET"`
	Baselines []string `yaml:"BASELINES"`
}

// Config is the full run configuration. Treat it as read-only after Load.
type Config struct {
	Conference       string          `yaml:"CONFERENCE"`
	Browser          Browser         `yaml:"CHROME"`
	URL              map[string]Year `yaml:"URL"`
	Years            []string        `yaml:"YEARS"`
	AffiliationYears []string        `yaml:"AFFILIATION_YEARS"`
	Report           Report          `yaml:"REPORT"`
	ProfileURL       string          `yaml:"PROFILE_URL"`
	ResultsDir       string          `yaml:"RESULTS_DIR"`
}

// Load reads the configuration document at path, applies environment
// overrides and defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigurationError{Key: path, Msg: "configuration file not found"}
		}
		return nil, &ConfigurationError{Key: path, Msg: "reading configuration", Err: err}
	}
	return Parse(data)
}

// Parse decodes a configuration document. See Load.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ConfigurationError{Key: "document", Msg: "parsing configuration", Err: err}
	}

	if p := os.Getenv(BrowserPathEnv); p != "" {
		cfg.Browser.Path = p
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Conference == "" {
		c.Conference = DefaultConference
	}
	if c.Browser.Driver == "" {
		c.Browser.Driver = DefaultDriver
	}
	if c.Browser.Width == 0 {
		c.Browser.Width = DefaultWidth
	}
	if c.Browser.Height == 0 {
		c.Browser.Height = DefaultHeight
	}
	if c.ProfileURL == "" {
		c.ProfileURL = DefaultProfileURL
	}
	if c.ResultsDir == "" {
		c.ResultsDir = DefaultResultsDir
	}

	// Without an explicit list every configured year is scraped, in order.
	if len(c.Years) == 0 {
		for year := range c.URL {
			c.Years = append(c.Years, year)
		}
		sort.Strings(c.Years)
	}
	if len(c.AffiliationYears) == 0 {
		c.AffiliationYears = append([]string(nil), c.Years...)
	}

	// The latest year is compared against all earlier ones by default.
	if c.Report.Target == "" && len(c.Years) > 0 {
		c.Report.Target = c.Years[len(c.Years)-1]
	}
	if len(c.Report.Baselines) == 0 {
		for _, year := range c.Years {
			if year != c.Report.Target {
				c.Report.Baselines = append(c.Report.Baselines, year)
			}
		}
	}
}

// Validate checks that every referenced year is configured and complete.
func (c *Config) Validate() error {
	if len(c.URL) == 0 {
		return &ConfigurationError{Key: "URL", Msg: "no years configured"}
	}

	switch c.Browser.Driver {
	case DriverRod, DriverHTTP:
	default:
		return &ConfigurationError{Key: "CHROME.DRIVER", Msg: fmt.Sprintf("unknown driver %q", c.Browser.Driver)}
	}

	if !strings.HasPrefix(c.ProfileURL, "http://") && !strings.HasPrefix(c.ProfileURL, "https://") {
		return &ConfigurationError{Key: "PROFILE_URL", Msg: fmt.Sprintf("%q is not an http(s) URL", c.ProfileURL)}
	}

	for year, y := range c.URL {
		if err := y.validate(year); err != nil {
			return err
		}
	}

	check := func(key string, years []string) error {
		for _, year := range years {
			if _, ok := c.URL[year]; !ok {
				return &ConfigurationError{Key: key, Msg: fmt.Sprintf("year %s has no URL entry", year)}
			}
		}
		return nil
	}
	if err := check("YEARS", c.Years); err != nil {
		return err
	}
	if err := check("AFFILIATION_YEARS", c.AffiliationYears); err != nil {
		return err
	}
	if err := check("REPORT.TARGET", []string{c.Report.Target}); err != nil {
		return err
	}
	return check("REPORT.BASELINES", c.Report.Baselines)
}

func (y Year) validate(year string) error {
	prefix := "URL." + year
	if strings.TrimSpace(y.BaseURL) == "" {
		return &ConfigurationError{Key: prefix + ".BASE_URL", Msg: "missing"}
	}
	if strings.TrimSpace(y.Path) == "" {
		return &ConfigurationError{Key: prefix + ".PATH", Msg: "missing"}
	}
	if len(y.Params) > 1 {
		return &ConfigurationError{Key: prefix + ".PARAMS", Msg: "only one pagination parameter is supported"}
	}
	for key, values := range y.Params {
		if len(values) == 0 {
			return &ConfigurationError{Key: prefix + ".PARAMS." + key, Msg: "no values"}
		}
	}
	return nil
}

// YearConfig returns the listing configuration for year.
func (c *Config) YearConfig(year string) (Year, error) {
	y, ok := c.URL[year]
	if !ok {
		return Year{}, &ConfigurationError{Key: "URL." + year, Msg: "unknown year"}
	}
	return y, nil
}
