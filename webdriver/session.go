package webdriver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Session is one browser session on the remote endpoint. Sessions are scoped
// resources: acquire one at test start and make sure Close runs on every exit
// path.
type Session struct {
	client *Client
	id     string
}

// NewSession asks the remote endpoint to start a browser session with the
// given capabilities.
func (c *Client) NewSession(ctx context.Context, caps Capabilities) (*Session, error) {
	var resp newSessionResponse
	req := newSessionRequest{Capabilities: newSessionCapabilities{AlwaysMatch: caps}}
	if err := c.post(ctx, "/session", req, &resp); err != nil {
		return nil, err
	}
	if resp.SessionID == "" {
		return nil, &DriverError{Message: "driver did not return a session id"}
	}
	c.logger.Printf("started session %s", resp.SessionID)
	return &Session{client: c, id: resp.SessionID}, nil
}

// ID returns the driver-assigned session id.
func (s *Session) ID() string { return s.id }

func (s *Session) path(suffix string) string {
	return "/session/" + s.id + suffix
}

// Close ends the session. The browser is torn down by the remote endpoint.
func (s *Session) Close(ctx context.Context) error {
	return s.client.delete(ctx, s.path(""))
}

// Navigate loads the given URL and blocks until the driver considers the page
// load complete (subject to the session's pageLoad timeout).
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.client.post(ctx, s.path("/url"), map[string]string{"url": url}, nil)
}

// CurrentURL returns the browser's current URL.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := s.client.get(ctx, s.path("/url"), &url)
	return url, err
}

// Title returns the current page title.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	err := s.client.get(ctx, s.path("/title"), &title)
	return title, err
}

// Refresh reloads the current page.
func (s *Session) Refresh(ctx context.Context) error {
	return s.client.post(ctx, s.path("/refresh"), nil, nil)
}

// FindElement locates the first element matching the locator. A non-match is a
// LocatorError wrapping ErrElementNotFound.
func (s *Session) FindElement(ctx context.Context, locator Locator) (*Element, error) {
	var ref elementRef
	err := s.client.do(ctx, "POST", s.path("/element"), locator.requestBody(), &ref, &locator)
	if err != nil {
		return nil, err
	}
	id := ref.id()
	if id == "" {
		return nil, &LocatorError{Locator: locator, Message: "driver returned no element reference"}
	}
	return &Element{session: s, id: id, locator: locator}, nil
}

// FindElements locates all elements matching the locator. No matches is not an
// error; the result is simply empty.
func (s *Session) FindElements(ctx context.Context, locator Locator) ([]*Element, error) {
	var refs []elementRef
	err := s.client.do(ctx, "POST", s.path("/elements"), locator.requestBody(), &refs, &locator)
	if err != nil {
		return nil, err
	}
	elements := make([]*Element, 0, len(refs))
	for _, ref := range refs {
		if id := ref.id(); id != "" {
			elements = append(elements, &Element{session: s, id: id, locator: locator})
		}
	}
	return elements, nil
}

// Screenshot captures the visible viewport and returns the PNG bytes.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var encoded string
	if err := s.client.get(ctx, s.path("/screenshot"), &encoded); err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, &DriverError{Message: fmt.Sprintf("screenshot was not valid base64: %s", err)}
	}
	return data, nil
}

// ExecuteScript runs a synchronous script in the page and returns the raw JSON
// result value.
func (s *Session) ExecuteScript(ctx context.Context, script string, args ...interface{}) (json.RawMessage, error) {
	if args == nil {
		args = []interface{}{}
	}
	body := map[string]interface{}{"script": script, "args": args}
	var result json.RawMessage
	if err := s.client.post(ctx, s.path("/execute/sync"), body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// SetWindowRect resizes and/or moves the browser window.
func (s *Session) SetWindowRect(ctx context.Context, rect WindowRect) error {
	return s.client.post(ctx, s.path("/window/rect"), rect, nil)
}
