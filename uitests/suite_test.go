package uitests

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webqa/ui-test-harness/config"
	"github.com/webqa/ui-test-harness/framework"
	"github.com/webqa/ui-test-harness/visual"
	"github.com/webqa/ui-test-harness/webdriver"
)

// fakeDriver is a minimal scripted WebDriver endpoint: enough of the wire
// protocol for the suite to run end to end without a browser.
type fakeDriver struct {
	mu            sync.Mutex
	nextSession   int
	openSessions  map[string]bool
	closedCount   int
	navigations   []string
	screenshotPNG []byte
	auditJSON     string
}

func newFakeDriver(screenshot []byte, auditJSON string) *fakeDriver {
	return &fakeDriver{
		openSessions:  map[string]bool{},
		screenshotPNG: screenshot,
		auditJSON:     auditJSON,
	}
}

func writeValue(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"value": value})
}

func (d *fakeDriver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == "POST" && path == "/session":
		d.nextSession++
		id := fmt.Sprintf("s%d", d.nextSession)
		d.openSessions[id] = true
		writeValue(w, map[string]interface{}{"sessionId": id})

	case r.Method == "DELETE" && strings.HasPrefix(path, "/session/"):
		id := strings.TrimPrefix(path, "/session/")
		delete(d.openSessions, id)
		d.closedCount++
		writeValue(w, nil)

	case r.Method == "POST" && strings.HasSuffix(path, "/url"):
		var body struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		d.navigations = append(d.navigations, body.URL)
		writeValue(w, nil)

	case r.Method == "GET" && strings.HasSuffix(path, "/url"):
		current := ""
		if len(d.navigations) > 0 {
			current = d.navigations[len(d.navigations)-1]
		}
		writeValue(w, current)

	case r.Method == "GET" && strings.HasSuffix(path, "/title"):
		writeValue(w, "Fake Page")

	case r.Method == "POST" && strings.HasSuffix(path, "/execute/sync"):
		var body struct {
			Script string `json:"script"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if strings.Contains(body.Script, "readyState") {
			writeValue(w, "complete")
		} else {
			writeValue(w, json.RawMessage(d.auditJSON))
		}

	case r.Method == "GET" && strings.HasSuffix(path, "/screenshot"):
		writeValue(w, base64.StdEncoding.EncodeToString(d.screenshotPNG))

	case r.Method == "POST" && strings.HasSuffix(path, "/window/rect"):
		writeValue(w, nil)

	default:
		w.WriteHeader(404)
		writeValue(w, map[string]string{"error": "unknown command", "message": path})
	}
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func whiteImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	return encodePNG(t, img)
}

type suiteFixture struct {
	driver  *fakeDriver
	cfg     config.Config
	opts    RunOptions
	store   *visual.Store
	baseDir string
}

func runSuite(t *testing.T, f suiteFixture) framework.Results {
	t.Helper()
	server := httptest.NewServer(f.driver)
	defer server.Close()

	client := webdriver.NewClient(server.URL, time.Second*5, nil)
	store := f.store
	if store == nil {
		var err error
		store, err = visual.NewStore(f.cfg.BaselineDir)
		require.NoError(t, err)
	}
	return RunTestSuite(context.Background(), client, f.cfg, f.opts, store, nil, nil)
}

func baseConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		AppBaseURL:  "http://app.local",
		BaselineDir: filepath.Join(dir, "baselines"),
		FailureDir:  filepath.Join(dir, "failures"),
		Pages: []config.PageConfig{
			{Name: "home", Path: "/home.html"},
		},
	}
}

func TestSuitePassesWhenPageMatchesBaselineAndAuditIsClean(t *testing.T) {
	shot := whiteImage(t, 64, 48)
	cfg := baseConfig(t)

	store, err := visual.NewStore(cfg.BaselineDir)
	require.NoError(t, err)
	require.NoError(t, store.Save("home", shot))

	driver := newFakeDriver(shot, `[]`)
	results := runSuite(t, suiteFixture{driver: driver, cfg: cfg, store: store})

	assert.True(t, results.OK(), "failures: %+v", results.Failures)
	assert.Contains(t, driver.navigations, "http://app.local/home.html")
	assert.Empty(t, driver.openSessions, "all sessions must be closed")
	assert.Greater(t, driver.closedCount, 0)
}

func TestSuiteReportsAuditViolations(t *testing.T) {
	shot := whiteImage(t, 64, 48)
	cfg := baseConfig(t)

	store, err := visual.NewStore(cfg.BaselineDir)
	require.NoError(t, err)
	require.NoError(t, store.Save("home", shot))

	driver := newFakeDriver(shot,
		`[{"rule":"image-alt","severity":"critical","selector":"img"}]`)
	results := runSuite(t, suiteFixture{driver: driver, cfg: cfg, store: store})

	assert.False(t, results.OK())
	found := false
	for _, f := range results.Failures {
		if f.TestID.String() == "home/accessibility" {
			found = true
			require.NotEmpty(t, f.Errors)
			assert.Contains(t, f.Errors[0].Error(), "image-alt")
		}
	}
	assert.True(t, found, "expected home/accessibility to fail, got %+v", results.Failures)
}

func TestSuiteFailsOnMissingBaselineWithSpecificMessage(t *testing.T) {
	shot := whiteImage(t, 64, 48)
	cfg := baseConfig(t)

	driver := newFakeDriver(shot, `[]`)
	results := runSuite(t, suiteFixture{driver: driver, cfg: cfg})

	assert.False(t, results.OK())
	var visualFailure *framework.TestResult
	for i, f := range results.Failures {
		if f.TestID.String() == "home/visual baseline" {
			visualFailure = &results.Failures[i]
		}
	}
	require.NotNil(t, visualFailure, "expected home/visual baseline to fail")
	assert.Contains(t, visualFailure.Errors[0].Error(), "no baseline stored")
	assert.Contains(t, visualFailure.Errors[0].Error(), "-update-baselines")
}

func TestSuiteUpdateBaselinesCreatesBaselineAndPasses(t *testing.T) {
	shot := whiteImage(t, 64, 48)
	cfg := baseConfig(t)

	driver := newFakeDriver(shot, `[]`)
	results := runSuite(t, suiteFixture{
		driver: driver,
		cfg:    cfg,
		opts:   RunOptions{UpdateBaselines: true},
	})

	assert.True(t, results.OK(), "failures: %+v", results.Failures)
	assert.FileExists(t, filepath.Join(cfg.BaselineDir, "home.png"))

	// a second, normal run now passes against the stored baseline
	again := runSuite(t, suiteFixture{driver: newFakeDriver(shot, `[]`), cfg: cfg})
	assert.True(t, again.OK(), "failures: %+v", again.Failures)
}

func TestSuiteDetectsVisualRegressionAndSavesArtifacts(t *testing.T) {
	cfg := baseConfig(t)

	store, err := visual.NewStore(cfg.BaselineDir)
	require.NoError(t, err)
	require.NoError(t, store.Save("home", whiteImage(t, 64, 48)))

	// capture differs from the baseline in one corner block
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, color.RGBA{A: 255})
		}
	}
	driver := newFakeDriver(encodePNG(t, img), `[]`)

	results := runSuite(t, suiteFixture{driver: driver, cfg: cfg, store: store})
	assert.False(t, results.OK())

	var messages []string
	for _, f := range results.Failures {
		for _, e := range f.Errors {
			messages = append(messages, e.Error())
		}
	}
	assert.Contains(t, strings.Join(messages, "\n"), "visual regression")

	// failure artifacts: the failure screenshot and the annotated diff image
	entries, err := os.ReadDir(cfg.FailureDir)
	require.NoError(t, err)
	assert.NotEmpty(t, entries)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, strings.Join(names, "\n"), "diff")
}

func TestSuiteSkipsChecksDisabledInManifest(t *testing.T) {
	shot := whiteImage(t, 64, 48)
	cfg := baseConfig(t)
	cfg.Pages[0].SkipAudit = true
	cfg.Pages[0].SkipVisual = true

	driver := newFakeDriver(shot, `[]`)
	results := runSuite(t, suiteFixture{driver: driver, cfg: cfg})

	assert.True(t, results.OK())
	require.Len(t, results.Skips, 2)
	for _, s := range results.Skips {
		assert.Contains(t, s.SkipReason, "disabled for this page")
	}
}

func TestSuiteFilterExcludesPageGroups(t *testing.T) {
	shot := whiteImage(t, 64, 48)
	cfg := baseConfig(t)

	var filters framework.RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("^home"))

	driver := newFakeDriver(shot, `[]`)
	server := httptest.NewServer(driver)
	defer server.Close()

	client := webdriver.NewClient(server.URL, time.Second*5, nil)
	store, err := visual.NewStore(cfg.BaselineDir)
	require.NoError(t, err)

	results := RunTestSuite(context.Background(), client, cfg, RunOptions{}, store,
		filters.AsFilter, nil)
	assert.True(t, results.OK())
	for _, r := range results.Tests {
		assert.NotContains(t, r.TestID.String(), "home/")
	}
}
