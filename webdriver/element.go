package webdriver

import (
	"context"
	"encoding/base64"
	"fmt"
)

// w3cElementKey is the property name the W3C protocol uses for element
// references in JSON payloads.
const w3cElementKey = "element-6066-11e4-a52e-4f735466cecf"

// LocatorStrategy is one of the W3C element location strategies.
type LocatorStrategy string

const (
	ByCSSSelector LocatorStrategy = "css selector"
	ByXPath       LocatorStrategy = "xpath"
	ByLinkText    LocatorStrategy = "link text"
	ByTagName     LocatorStrategy = "tag name"
)

// Locator selects elements on a page.
type Locator struct {
	Strategy LocatorStrategy
	Value    string
}

// CSS is shorthand for a css-selector locator, the strategy page objects use
// almost exclusively.
func CSS(selector string) Locator {
	return Locator{Strategy: ByCSSSelector, Value: selector}
}

func (l Locator) String() string {
	return fmt.Sprintf("%s %q", l.Strategy, l.Value)
}

func (l Locator) requestBody() map[string]string {
	return map[string]string{"using": string(l.Strategy), "value": l.Value}
}

type elementRef map[string]string

func (r elementRef) id() string { return r[w3cElementKey] }

// Element is a handle to an element previously located in a session. The
// handle can go stale if the page changes; operations then return a
// LocatorError wrapping ErrStaleElement.
type Element struct {
	session *Session
	id      string
	locator Locator
}

func (e *Element) path(suffix string) string {
	return e.session.path("/element/" + e.id + suffix)
}

func (e *Element) do(ctx context.Context, method, suffix string, body, out interface{}) error {
	return e.session.client.do(ctx, method, e.path(suffix), body, out, &e.locator)
}

// Click clicks the element.
func (e *Element) Click(ctx context.Context) error {
	return e.do(ctx, "POST", "/click", nil, nil)
}

// SendKeys types the given text into the element.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	return e.do(ctx, "POST", "/value", map[string]string{"text": text}, nil)
}

// Clear empties an input element.
func (e *Element) Clear(ctx context.Context) error {
	return e.do(ctx, "POST", "/clear", nil, nil)
}

// Text returns the element's rendered text.
func (e *Element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.do(ctx, "GET", "/text", nil, &text)
	return text, err
}

// Attribute returns the value of the named attribute; a missing attribute is
// returned as an empty string, matching the protocol's null result.
func (e *Element) Attribute(ctx context.Context, name string) (string, error) {
	var value *string
	if err := e.do(ctx, "GET", "/attribute/"+name, nil, &value); err != nil {
		return "", err
	}
	if value == nil {
		return "", nil
	}
	return *value, nil
}

// Displayed reports whether the element is visible.
func (e *Element) Displayed(ctx context.Context) (bool, error) {
	var displayed bool
	err := e.do(ctx, "GET", "/displayed", nil, &displayed)
	return displayed, err
}

// Selected reports whether a checkbox, radio button or option is selected.
func (e *Element) Selected(ctx context.Context) (bool, error) {
	var selected bool
	err := e.do(ctx, "GET", "/selected", nil, &selected)
	return selected, err
}

// Screenshot captures just this element and returns the PNG bytes.
func (e *Element) Screenshot(ctx context.Context) ([]byte, error) {
	var encoded string
	if err := e.do(ctx, "GET", "/screenshot", nil, &encoded); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &DriverError{Message: fmt.Sprintf("element screenshot was not valid base64: %s", err)}
	}
	return data, nil
}
