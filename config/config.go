// Package config loads and validates the YAML run manifest: which pages to
// check, where baselines live, and how strict the checks are.
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/webqa/ui-test-harness/page"
)

// Config is the top-level run manifest.
type Config struct {
	// AppBaseURL is the root of the application under test; page paths are
	// resolved against it.
	AppBaseURL string `yaml:"appBaseUrl"`
	// BaselineDir is the root of the baseline image store.
	BaselineDir string `yaml:"baselineDir"`
	// FailureDir receives screenshots captured when a page test fails.
	// Empty disables failure screenshots.
	FailureDir string `yaml:"failureDir"`
	// Browser names the browser to request from the driver (e.g. "chrome",
	// "firefox"). Empty lets the driver pick.
	Browser string `yaml:"browser"`
	// Threshold is the default maximum passing diff score, in [0,1].
	Threshold float64 `yaml:"threshold"`
	// ResizeToBaseline scales captures to baseline dimensions instead of
	// failing on a size mismatch.
	ResizeToBaseline bool `yaml:"resizeToBaseline"`
	// CacheAuditFailures makes a failed accessibility audit permanent for a
	// page object instead of retrying on the next read.
	CacheAuditFailures bool `yaml:"cacheAuditFailures"`
	// Audit selects which accessibility rules apply to every page.
	Audit page.Rules `yaml:"audit"`
	// Pages lists the pages under test.
	Pages []PageConfig `yaml:"pages"`
}

// PageConfig describes one page under test.
type PageConfig struct {
	Name string `yaml:"name"`
	// Path is resolved against AppBaseURL.
	Path string `yaml:"path"`
	// ReadySelector, when set, is a css selector that must be present before
	// the page counts as loaded. Without it the page is considered ready as
	// soon as navigation completes.
	ReadySelector string `yaml:"readySelector"`
	// Baseline overrides the baseline id; defaults to a slug of Name.
	Baseline string `yaml:"baseline"`
	// Threshold overrides the run-wide diff threshold for this page.
	Threshold *float64 `yaml:"threshold"`
	// Viewport sets the window size before capturing.
	Viewport *Viewport `yaml:"viewport"`
	// SkipAudit and SkipVisual exclude the respective check for this page.
	SkipAudit  bool `yaml:"skipAudit"`
	SkipVisual bool `yaml:"skipVisual"`
}

// Viewport is a requested window size in pixels.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

var slugInvalidChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// BaselineID returns the id this page's baseline is stored under.
func (p PageConfig) BaselineID() string {
	if p.Baseline != "" {
		return p.Baseline
	}
	slug := slugInvalidChars.ReplaceAllString(p.Name, "-")
	return strings.Trim(slug, "-")
}

// URL resolves the page's address against the application base URL.
func (p PageConfig) URL(appBaseURL string) string {
	return strings.TrimSuffix(appBaseURL, "/") + "/" + strings.TrimPrefix(p.Path, "/")
}

// Load reads and validates a manifest file. Unknown fields are rejected so a
// typo in a manifest fails loudly instead of silently disabling a check.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates manifest bytes.
func Parse(data []byte) (Config, error) {
	var c Config
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the manifest for the mistakes that would otherwise surface
// as confusing mid-run failures.
func (c *Config) Validate() error {
	if c.AppBaseURL == "" {
		return fmt.Errorf("appBaseUrl is required")
	}
	if u, err := url.Parse(c.AppBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("appBaseUrl %q is not an absolute URL", c.AppBaseURL)
	}
	if c.BaselineDir == "" {
		return fmt.Errorf("baselineDir is required")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold %v is outside [0,1]", c.Threshold)
	}
	if len(c.Pages) == 0 {
		return fmt.Errorf("at least one page is required")
	}

	seen := map[string]bool{}
	for i, p := range c.Pages {
		if p.Name == "" {
			return fmt.Errorf("pages[%d]: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate page name %q", p.Name)
		}
		seen[p.Name] = true
		if p.Path == "" {
			return fmt.Errorf("page %q: path is required", p.Name)
		}
		if p.BaselineID() == "" {
			return fmt.Errorf("page %q: name does not yield a usable baseline id", p.Name)
		}
		if p.Threshold != nil && (*p.Threshold < 0 || *p.Threshold > 1) {
			return fmt.Errorf("page %q: threshold %v is outside [0,1]", p.Name, *p.Threshold)
		}
		if p.Viewport != nil && (p.Viewport.Width <= 0 || p.Viewport.Height <= 0) {
			return fmt.Errorf("page %q: viewport must have positive width and height", p.Name)
		}
	}
	return nil
}

// PageThreshold returns the effective diff threshold for a page.
func (c *Config) PageThreshold(p PageConfig) float64 {
	if p.Threshold != nil {
		return *p.Threshold
	}
	return c.Threshold
}
