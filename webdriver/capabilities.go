package webdriver

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Capabilities describes the browser session to request from the remote
// endpoint. Numeric fields use OptionalInt so that unset values are simply
// omitted from the new-session payload instead of being sent as zero.
type Capabilities struct {
	BrowserName string    `json:"browserName,omitempty"`
	Timeouts    *Timeouts `json:"timeouts,omitempty"`
}

// Timeouts holds the standard WebDriver session timeouts, all in milliseconds.
type Timeouts struct {
	ImplicitMS ldvalue.OptionalInt `json:"implicit,omitempty"`
	PageLoadMS ldvalue.OptionalInt `json:"pageLoad,omitempty"`
	ScriptMS   ldvalue.OptionalInt `json:"script,omitempty"`
}

// WindowRect is the requested or reported window geometry.
type WindowRect struct {
	X      ldvalue.OptionalInt `json:"x,omitempty"`
	Y      ldvalue.OptionalInt `json:"y,omitempty"`
	Width  ldvalue.OptionalInt `json:"width,omitempty"`
	Height ldvalue.OptionalInt `json:"height,omitempty"`
}

type newSessionRequest struct {
	Capabilities newSessionCapabilities `json:"capabilities"`
}

type newSessionCapabilities struct {
	AlwaysMatch Capabilities `json:"alwaysMatch"`
}

type newSessionResponse struct {
	SessionID    string                 `json:"sessionId"`
	Capabilities map[string]interface{} `json:"capabilities"`
}
