package uitests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/webqa/ui-test-harness/config"
	"github.com/webqa/ui-test-harness/framework"
	"github.com/webqa/ui-test-harness/visual"
	"github.com/webqa/ui-test-harness/webdriver"
)

// RunOptions are operator choices that change suite behavior, as opposed to
// the manifest, which describes the application under test.
type RunOptions struct {
	// UpdateBaselines rewrites every page's baseline from the current capture
	// instead of comparing. Explicitly opt-in so a routine run can never
	// silently mask a regression.
	UpdateBaselines bool
}

type environment struct {
	client *webdriver.Client
	cfg    config.Config
	opts   RunOptions
	store  *visual.Store
}

// T represents a test or subtest in the UI suite.
//
// It implements the same basic functionality as Go's testing.T, but outside
// the Go test runner, on top of the framework package. Pass a *T to the
// assert and require packages as if it were a *testing.T.
//
// Each test that needs a browser acquires its own session through
// RequireSession; the session is always closed when the test finishes, and a
// failure screenshot is captured first when the manifest configures a
// failure directory.
type T struct {
	context *framework.Context
	env     *environment
	ctx     context.Context
	session *webdriver.Session
}

func newTestScope(c *framework.Context, env *environment, ctx context.Context) *T {
	return &T{context: c, env: env, ctx: ctx}
}

// Errorf is called by assertions to log a test failure. It does not cause an
// immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately
// exit. The methods in the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest with a fresh scope; any session the subtest acquires is
// its own.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env, t.ctx))
	})
}

// Skip skips this test with an explanatory reason.
func (t *T) Skip(reason string) {
	t.context.SkipWithReason(reason)
}

// Debug logs debug output for the test; it is shown at the end of the test
// depending on the run's debug flags.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

func (t *T) DebugLogger() framework.Logger {
	return t.context.DebugLogger()
}

// Cleanup registers a function to run when this test finishes, on all exit
// paths, in LIFO order.
func (t *T) Cleanup(fn func()) {
	t.context.Cleanup(fn)
}

// RequireSession returns this test's browser session, starting one on first
// use. Failing to start a session is an infrastructure error and ends the
// test immediately. Teardown is registered here: the session is closed on
// every exit path, after the failure screenshot (if any) has been taken.
func (t *T) RequireSession() *webdriver.Session {
	if t.session != nil {
		return t.session
	}

	caps := webdriver.Capabilities{BrowserName: t.env.cfg.Browser}
	sess, err := t.env.client.NewSession(t.ctx, caps)
	if err != nil {
		t.Errorf("could not start browser session: %s", err)
		t.FailNow()
	}
	t.Debug("started session %s", sess.ID())
	t.session = sess

	// Cleanups run in LIFO order: the failure screenshot is taken BEFORE the
	// session quits.
	t.Cleanup(func() {
		if err := sess.Close(t.ctx); err != nil {
			t.Debug("error closing session %s: %s", sess.ID(), err)
		}
	})
	t.Cleanup(func() { t.saveFailureScreenshot(sess) })

	return t.session
}

// saveFailureScreenshot captures the browser state into the failure artifacts
// directory when the test has failed. Errors here are logged, never raised: a
// broken screenshot must not obscure the original failure.
func (t *T) saveFailureScreenshot(sess *webdriver.Session) {
	if !t.context.Failed() || t.env.cfg.FailureDir == "" {
		return
	}
	artifact, err := visual.Capture(t.ctx, sess)
	if err != nil {
		t.Debug("could not capture failure screenshot: %s", err)
		return
	}
	name := fmt.Sprintf("%s-%s.png", slugify(t.context.ID().String()), artifact.ID)
	if err := writeFailureArtifact(t.env.cfg.FailureDir, name, artifact.PNG); err != nil {
		t.Debug("could not save failure screenshot: %s", err)
		return
	}
	t.Debug("saved failure screenshot %s", name)
}

func writeFailureArtifact(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}

func slugify(s string) string {
	replaced := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '-'
		}
	}, s)
	replaced = strings.Trim(replaced, "-")
	if replaced == "" {
		replaced = uuid.NewString()
	}
	return replaced
}

// differFor builds the diff engine for one page, applying its threshold
// override.
func (t *T) differFor(pc config.PageConfig) *visual.Differ {
	return visual.NewDiffer(t.env.store, visual.Options{
		Threshold:        t.env.cfg.PageThreshold(pc),
		ResizeToBaseline: t.env.cfg.ResizeToBaseline,
		Annotate:         true,
	})
}
