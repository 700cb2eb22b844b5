// Package page implements the page-object layer of the harness: a page under
// test bundles its URL, a readiness check, element queries, and derived
// attributes such as the accessibility audit, which is computed lazily at most
// once per object instance.
package page

import (
	"context"
	"fmt"

	"github.com/webqa/ui-test-harness/webdriver"
)

// Object represents one logical web page under test.
type Object interface {
	// Browser returns the session this page object operates on. The session
	// is shared with the test that created the object, not owned by it.
	Browser() *webdriver.Session

	// URL returns the address the page is served from.
	URL() string

	// OnPage reports whether the browser is currently showing this page.
	OnPage(ctx context.Context) (bool, error)
}

// WrongPageError is returned by Visit when the browser never arrived at the
// expected page.
type WrongPageError struct {
	URL string
	Err error
}

func (e *WrongPageError) Error() string {
	return fmt.Sprintf("browser did not land on %s: %s", e.URL, e.Err)
}

func (e *WrongPageError) Unwrap() error { return e.Err }

// Base provides the shared parts of a page object: the browser handle and the
// lazily computed accessibility audit. Embed it in concrete page types.
type Base struct {
	session *webdriver.Session
	audit   *Lazy[AuditResult]
}

// NewBase creates the common page-object state. The audit slot is configured
// here; its computation runs only when AuditResults is first called, and at
// most once for the lifetime of this object.
func NewBase(session *webdriver.Session, rules Rules, opts ...LazyOption) Base {
	b := Base{session: session}
	b.audit = NewLazy(func(ctx context.Context) (AuditResult, error) {
		return Audit(ctx, session, rules)
	}, opts...)
	return b
}

func (b *Base) Browser() *webdriver.Session { return b.session }

// AuditResults returns the page's accessibility audit, computing it on first
// access. Repeated calls return the stored result without rescanning the DOM.
func (b *Base) AuditResults(ctx context.Context) (AuditResult, error) {
	return b.audit.Get(ctx)
}

// AuditRan reports whether the audit has been computed for this object.
func (b *Base) AuditRan() bool { return b.audit.Computed() }

// Q finds the first element matching a css selector on the page.
func (b *Base) Q(ctx context.Context, selector string) (*webdriver.Element, error) {
	return b.session.FindElement(ctx, webdriver.CSS(selector))
}

// QAll finds all elements matching a css selector on the page.
func (b *Base) QAll(ctx context.Context, selector string) ([]*webdriver.Element, error) {
	return b.session.FindElements(ctx, webdriver.CSS(selector))
}

// Visit navigates the browser to the page and waits until OnPage reports
// true. A page that never becomes ready yields a WrongPageError wrapping the
// underlying BrokenPromiseError.
func Visit(ctx context.Context, obj Object, opts WaitOpts) error {
	if err := obj.Browser().Navigate(ctx, obj.URL()); err != nil {
		return err
	}
	err := Wait(ctx, fmt.Sprintf("on page %s", obj.URL()), obj.OnPage, opts)
	if err != nil {
		return &WrongPageError{URL: obj.URL(), Err: err}
	}
	return nil
}
