package uitests

import (
	"errors"
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/webqa/ui-test-harness/page"
	"github.com/webqa/ui-test-harness/visual"
	"github.com/webqa/ui-test-harness/webdriver"
)

func optionalInt(v int) ldvalue.OptionalInt {
	return ldvalue.NewOptionalInt(v)
}

// describePageError turns an error from the page layer into a test message
// that names the error kind, so CI output distinguishes an assertion failure
// from an infrastructure problem.
func describePageError(err error) string {
	var (
		driverErr  *webdriver.DriverError
		locatorErr *webdriver.LocatorError
		wrongPage  *page.WrongPageError
		auditErr   *page.AuditError
	)
	switch {
	case errors.As(err, &wrongPage):
		return fmt.Sprintf("page load failed: %s", wrongPage)
	case errors.As(err, &locatorErr):
		return fmt.Sprintf("locator error: %s", locatorErr)
	case errors.As(err, &driverErr):
		return fmt.Sprintf("infrastructure error: %s", driverErr)
	case errors.As(err, &auditErr):
		return fmt.Sprintf("audit error: %s", auditErr)
	default:
		return err.Error()
	}
}

// describeDiffError does the same for errors from the visual layer.
func describeDiffError(err error, baselineID string) string {
	switch {
	case errors.Is(err, visual.ErrBaselineMissing):
		return fmt.Sprintf("no baseline stored for %q; run with -update-baselines to create it", baselineID)
	case errors.Is(err, visual.ErrDimensionMismatch):
		return fmt.Sprintf("diff error: %s (set resizeToBaseline in the manifest to scale captures)", err)
	default:
		return describePageError(err)
	}
}
