package webdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/webqa/ui-test-harness/framework"
)

const defaultCallTimeout = time.Second * 30

// Client is an HTTP client for a remote endpoint speaking the W3C WebDriver
// wire protocol. The exact wire format is owned by the remote automation
// service; this client only builds requests, decodes the standard response
// envelope, and maps protocol errors onto the harness's error taxonomy.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	callTimeout time.Duration
	logger      framework.Logger
}

// NewClient creates a Client for the WebDriver endpoint at baseURL. A zero
// callTimeout means defaultCallTimeout; every protocol round-trip is bounded
// by it.
func NewClient(baseURL string, callTimeout time.Duration, logger framework.Logger) *Client {
	if callTimeout == 0 {
		callTimeout = defaultCallTimeout
	}
	if logger == nil {
		logger = framework.NullLogger()
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		httpClient:  &http.Client{},
		callTimeout: callTimeout,
		logger:      logger,
	}
}

// responseEnvelope is the standard WebDriver response body: every reply wraps
// its payload in a "value" property, which on error holds an error object.
type responseEnvelope struct {
	Value json.RawMessage `json:"value"`
}

type errorValue struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	Stacktrace string `json:"stacktrace"`
}

// do performs one protocol round-trip and decodes the value payload into out
// (when out is non-nil). The locator, when given, is attached to any resulting
// LocatorError.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}, locator *Locator) error {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		c.logger.Printf(">> %s %s %s", method, path, string(data))
		reqBody = bytes.NewReader(data)
	} else {
		c.logger.Printf(">> %s %s", method, path)
		if method == http.MethodPost {
			// Some drivers reject POST requests with no body at all.
			reqBody = strings.NewReader("{}")
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return transportError(err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return &DriverError{Message: fmt.Sprintf("%s %s exceeded call timeout of %s", method, path, c.callTimeout),
				wrapped: ErrNavigationTimeout}
		}
		return transportError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(err)
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return &DriverError{Message: fmt.Sprintf("malformed response from driver: %s", string(data))}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ev errorValue
		if err := json.Unmarshal(envelope.Value, &ev); err != nil || ev.Error == "" {
			return &DriverError{Message: fmt.Sprintf("driver returned HTTP %d: %s", resp.StatusCode, string(data))}
		}
		c.logger.Printf("<< error %q: %s", ev.Error, ev.Message)
		return protocolError(ev.Error, ev.Message, locator)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Value, out); err != nil {
			return &DriverError{Message: fmt.Sprintf("could not decode driver response value: %s", err)}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out, nil)
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out, nil)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Status queries the endpoint's readiness resource. It retries until the
// endpoint responds or the timeout elapses, so the harness can be started
// before the browser service finishes coming up.
func (c *Client) Status(ctx context.Context, timeout time.Duration, output io.Writer) error {
	fmt.Fprintf(output, "Connecting to WebDriver endpoint at %s", c.baseURL)
	deadline := time.Now().Add(timeout)
	for {
		fmt.Fprintf(output, ".")
		var status struct {
			Ready bool `json:"ready"`
		}
		err := c.get(ctx, "/status", &status)
		if err == nil {
			fmt.Fprintln(output)
			if !status.Ready {
				return &DriverError{Message: "endpoint responded but reports not ready"}
			}
			return nil
		}
		if !time.Now().Before(deadline) {
			fmt.Fprintln(output)
			return fmt.Errorf("timed out waiting for WebDriver endpoint: %w", err)
		}
		time.Sleep(time.Millisecond * 100)
	}
}
