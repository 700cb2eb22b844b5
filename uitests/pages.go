package uitests

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/webqa/ui-test-harness/config"
	"github.com/webqa/ui-test-harness/page"
	"github.com/webqa/ui-test-harness/webdriver"
)

const (
	pageReadyTryLimit    = 20
	pageReadyTryInterval = time.Millisecond * 250
)

// sitePage is the page object the suite builds for each manifest entry. Its
// readiness check is either the configured ready selector or the document
// load state.
type sitePage struct {
	page.Base
	url           string
	readySelector string
}

func (t *T) newSitePage(pc config.PageConfig) *sitePage {
	sess := t.RequireSession()

	var lazyOpts []page.LazyOption
	if t.env.cfg.CacheAuditFailures {
		lazyOpts = append(lazyOpts, page.CacheFailures())
	}
	return &sitePage{
		Base:          page.NewBase(sess, t.env.cfg.Audit, lazyOpts...),
		url:           pc.URL(t.env.cfg.AppBaseURL),
		readySelector: pc.ReadySelector,
	}
}

func (p *sitePage) URL() string { return p.url }

func (p *sitePage) OnPage(ctx context.Context) (bool, error) {
	if p.readySelector != "" {
		_, err := p.Browser().FindElement(ctx, webdriver.CSS(p.readySelector))
		if err != nil {
			if errors.Is(err, webdriver.ErrElementNotFound) {
				return false, nil
			}
			return false, err
		}
		return true, nil
	}

	raw, err := p.Browser().ExecuteScript(ctx, "return document.readyState;")
	if err != nil {
		return false, err
	}
	var state string
	if err := json.Unmarshal(raw, &state); err != nil {
		return false, err
	}
	return state == "complete", nil
}

// visitPage applies the page's viewport (if any), navigates to it, and waits
// for readiness. Navigation or readiness problems end the test.
func (t *T) visitPage(pc config.PageConfig) *sitePage {
	sess := t.RequireSession()
	if vp := pc.Viewport; vp != nil {
		rect := webdriver.WindowRect{
			Width:  optionalInt(vp.Width),
			Height: optionalInt(vp.Height),
		}
		if err := sess.SetWindowRect(t.ctx, rect); err != nil {
			t.Errorf("could not set viewport %dx%d: %s", vp.Width, vp.Height, err)
			t.FailNow()
		}
	}

	obj := t.newSitePage(pc)
	err := page.Visit(t.ctx, obj, page.WaitOpts{
		TryLimit:    pageReadyTryLimit,
		TryInterval: pageReadyTryInterval,
	})
	if err != nil {
		t.Errorf("%s", describePageError(err))
		t.FailNow()
	}
	t.Debug("visited %s", obj.URL())
	return obj
}
