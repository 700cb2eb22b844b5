package uitests

import (
	"context"

	"github.com/webqa/ui-test-harness/config"
	"github.com/webqa/ui-test-harness/framework"
	"github.com/webqa/ui-test-harness/visual"
	"github.com/webqa/ui-test-harness/webdriver"
)

// RunTestSuite executes the whole suite and returns the aggregated results:
// a session smoke test, then one test group per configured page.
func RunTestSuite(
	ctx context.Context,
	client *webdriver.Client,
	cfg config.Config,
	opts RunOptions,
	store *visual.Store,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		env := &environment{
			client: client,
			cfg:    cfg,
			opts:   opts,
			store:  store,
		}
		t := newTestScope(c, env, ctx)

		t.Run("session", DoSessionTests)
		for _, pc := range cfg.Pages {
			pc := pc
			t.Run(pc.Name, func(t *T) {
				DoPageTests(t, pc)
			})
		}
	})
}
