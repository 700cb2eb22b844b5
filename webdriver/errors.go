package webdriver

import (
	"errors"
	"fmt"
)

// Sentinel errors for the conditions test logic most often needs to branch on.
// They are wrapped by DriverError or LocatorError, so use errors.Is to check.
var (
	ErrElementNotFound    = errors.New("element not found")
	ErrNavigationTimeout  = errors.New("navigation timed out")
	ErrDriverDisconnected = errors.New("driver disconnected")
	ErrInvalidSession     = errors.New("invalid session id")
	ErrStaleElement       = errors.New("stale element reference")
)

// DriverError indicates a connectivity or session-level failure: the remote
// endpoint could not be reached, rejected the session, or reported a
// non-locator protocol error.
type DriverError struct {
	// Code is the WebDriver protocol error string, if the remote end sent one
	// (for example "invalid session id"); empty for transport failures.
	Code    string
	Message string
	wrapped error
}

func (e *DriverError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("driver error: %s", e.Message)
	}
	return fmt.Sprintf("driver error (%s): %s", e.Code, e.Message)
}

func (e *DriverError) Unwrap() error { return e.wrapped }

// LocatorError indicates that an element lookup failed: nothing matched, or a
// previously found element went stale.
type LocatorError struct {
	Locator Locator
	Code    string
	Message string
	wrapped error
}

func (e *LocatorError) Error() string {
	return fmt.Sprintf("locator error for %s: %s", e.Locator, e.Message)
}

func (e *LocatorError) Unwrap() error { return e.wrapped }

// protocolError converts a WebDriver error-response body into the harness's
// error taxonomy. The set of protocol codes is defined by the W3C WebDriver
// specification; anything unrecognized still surfaces as a DriverError rather
// than being swallowed.
func protocolError(code, message string, locator *Locator) error {
	switch code {
	case "no such element":
		loc := Locator{}
		if locator != nil {
			loc = *locator
		}
		return &LocatorError{Locator: loc, Code: code, Message: message, wrapped: ErrElementNotFound}
	case "stale element reference":
		loc := Locator{}
		if locator != nil {
			loc = *locator
		}
		return &LocatorError{Locator: loc, Code: code, Message: message, wrapped: ErrStaleElement}
	case "timeout":
		return &DriverError{Code: code, Message: message, wrapped: ErrNavigationTimeout}
	case "invalid session id":
		return &DriverError{Code: code, Message: message, wrapped: ErrInvalidSession}
	default:
		return &DriverError{Code: code, Message: message}
	}
}

// transportError wraps a failure to reach the remote endpoint at all.
func transportError(err error) error {
	return &DriverError{Message: err.Error(), wrapped: ErrDriverDisconnected}
}
