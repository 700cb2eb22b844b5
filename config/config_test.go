package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validManifest = `
appBaseUrl: http://localhost:8003
baselineDir: testdata/baselines
threshold: 0.01
audit:
  exclude: [duplicate-id]
pages:
  - name: home page
    path: /home.html
    readySelector: "#ready"
  - name: checkout
    path: /checkout.html
    baseline: checkout-v2
    threshold: 0.05
    viewport: {width: 1280, height: 800}
    skipAudit: true
`

func TestParseValidManifest(t *testing.T) {
	c, err := Parse([]byte(validManifest))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8003", c.AppBaseURL)
	assert.Equal(t, 0.01, c.Threshold)
	assert.Equal(t, []string{"duplicate-id"}, c.Audit.Exclude)
	require.Len(t, c.Pages, 2)

	home := c.Pages[0]
	assert.Equal(t, "home-page", home.BaselineID())
	assert.Equal(t, "http://localhost:8003/home.html", home.URL(c.AppBaseURL))
	assert.Equal(t, 0.01, c.PageThreshold(home))

	checkout := c.Pages[1]
	assert.Equal(t, "checkout-v2", checkout.BaselineID())
	assert.Equal(t, 0.05, c.PageThreshold(checkout))
	require.NotNil(t, checkout.Viewport)
	assert.Equal(t, 1280, checkout.Viewport.Width)
	assert.True(t, checkout.SkipAudit)
	assert.False(t, checkout.SkipVisual)
}

func TestLoadReadsManifestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ui-tests.yml")
	require.NoError(t, os.WriteFile(path, []byte(validManifest), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Pages, 2)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`
appBaseUrl: http://localhost:8003
baselineDir: b
thresold: 0.5
pages:
  - {name: p, path: /p}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "thresold")
}

func TestValidateErrors(t *testing.T) {
	base := func() Config {
		return Config{
			AppBaseURL:  "http://localhost:8003",
			BaselineDir: "b",
			Pages:       []PageConfig{{Name: "p", Path: "/p"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		message string
	}{
		{"missing base url", func(c *Config) { c.AppBaseURL = "" }, "appBaseUrl is required"},
		{"relative base url", func(c *Config) { c.AppBaseURL = "localhost:nope" }, "not an absolute URL"},
		{"missing baseline dir", func(c *Config) { c.BaselineDir = "" }, "baselineDir is required"},
		{"threshold out of range", func(c *Config) { c.Threshold = 1.5 }, "outside [0,1]"},
		{"no pages", func(c *Config) { c.Pages = nil }, "at least one page"},
		{"unnamed page", func(c *Config) { c.Pages[0].Name = "" }, "name is required"},
		{"page without path", func(c *Config) { c.Pages[0].Path = "" }, "path is required"},
		{"duplicate page names", func(c *Config) {
			c.Pages = append(c.Pages, PageConfig{Name: "p", Path: "/q"})
		}, "duplicate page name"},
		{"bad page threshold", func(c *Config) {
			bad := -0.1
			c.Pages[0].Threshold = &bad
		}, "outside [0,1]"},
		{"bad viewport", func(c *Config) {
			c.Pages[0].Viewport = &Viewport{Width: 0, Height: 600}
		}, "viewport"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestBaselineIDSlug(t *testing.T) {
	p := PageConfig{Name: "Home Page (v2)!"}
	assert.Equal(t, "Home-Page-v2", p.BaselineID())
}
