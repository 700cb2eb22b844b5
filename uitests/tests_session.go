package uitests

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// DoSessionTests smoke-tests the browser session lifecycle before any page
// checks run, so a misconfigured endpoint fails one obvious test instead of
// every page group.
func DoSessionTests(t *T) {
	t.Run("create and navigate", func(t *T) {
		sess := t.RequireSession()

		require.NoError(t, sess.Navigate(t.ctx, t.env.cfg.AppBaseURL))

		url, err := sess.CurrentURL(t.ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, url)

		_, err = sess.Title(t.ctx)
		assert.NoError(t, err)
	})

	t.Run("each test gets its own session", func(t *T) {
		first := t.RequireSession()
		assert.Same(t, first, t.RequireSession(), "within one test the session is shared")
	})
}
