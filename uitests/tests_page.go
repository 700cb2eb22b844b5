package uitests

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/stretchr/testify/require"

	"github.com/webqa/ui-test-harness/config"
	"github.com/webqa/ui-test-harness/visual"
)

// DoPageTests runs the per-page checks: the page loads, it passes the
// accessibility audit, and it matches its visual baseline.
func DoPageTests(t *T, pc config.PageConfig) {
	t.Run("loads", func(t *T) {
		obj := t.visitPage(pc)

		onPage, err := obj.OnPage(t.ctx)
		require.NoError(t, err)
		require.True(t, onPage)
	})

	t.Run("accessibility", func(t *T) {
		if pc.SkipAudit {
			t.Skip("audit disabled for this page in the manifest")
		}
		obj := t.visitPage(pc)
		runAccessibilityCheck(t, obj)
	})

	t.Run("visual baseline", func(t *T) {
		if pc.SkipVisual {
			t.Skip("visual check disabled for this page in the manifest")
		}
		obj := t.visitPage(pc)
		runVisualCheck(t, pc, obj)
	})
}

func runAccessibilityCheck(t *T, obj *sitePage) {
	result, err := obj.AuditResults(t.ctx)
	if err != nil {
		t.Errorf("%s", describePageError(err))
		t.FailNow()
	}
	t.Debug("audit found %d violation(s)", len(result.Violations))

	for _, v := range result.Violations {
		t.Errorf("accessibility violation: rule %s (%s) at %s", v.RuleID, v.Severity, v.Selector)
	}

	// The audit is memoized per page object; a second read must not rescan.
	again, err := obj.AuditResults(t.ctx)
	if err == nil && len(again.Violations) != len(result.Violations) {
		t.Errorf("audit result changed between reads of the same page object")
	}
}

func runVisualCheck(t *T, pc config.PageConfig, obj *sitePage) {
	artifact, err := visual.Capture(t.ctx, obj.Browser())
	if err != nil {
		t.Errorf("%s", describePageError(err))
		t.FailNow()
	}
	t.Debug("captured %dx%d screenshot %s", artifact.Viewport.X, artifact.Viewport.Y, artifact.ID)

	baselineID := pc.BaselineID()
	differ := t.differFor(pc)

	if t.env.opts.UpdateBaselines {
		require.NoError(t, differ.UpdateBaseline(artifact, baselineID))
		t.Debug("baseline %q updated", baselineID)
		return
	}

	result, err := differ.Compare(artifact, baselineID)
	if err != nil {
		t.Errorf("%s", describeDiffError(err, baselineID))
		t.FailNow()
	}

	t.Debug("diff score %.6f against baseline %q (threshold %.6f, %d/%d pixels differ)",
		result.Score, baselineID, result.Threshold, result.DifferingPixels, result.TotalPixels)

	if !result.Pass {
		t.saveDiffImage(result)
		t.Errorf("visual regression: diff score %.6f exceeds threshold %.6f for baseline %q",
			result.Score, result.Threshold, baselineID)
	}
}

// saveDiffImage writes the annotated diff image next to the failure
// screenshots so a failed comparison can be inspected without rerunning.
func (t *T) saveDiffImage(result visual.DiffResult) {
	if result.Annotated == nil || t.env.cfg.FailureDir == "" {
		return
	}
	if err := os.MkdirAll(t.env.cfg.FailureDir, 0o755); err != nil {
		t.Debug("could not create failure dir: %s", err)
		return
	}
	name := fmt.Sprintf("%s-diff.png", slugify(t.context.ID().String()))
	f, err := os.Create(filepath.Join(t.env.cfg.FailureDir, name))
	if err != nil {
		t.Debug("could not save diff image: %s", err)
		return
	}
	defer f.Close()
	if err := png.Encode(f, result.Annotated); err != nil {
		t.Debug("could not encode diff image: %s", err)
		return
	}
	t.Debug("saved diff image %s", name)
}
