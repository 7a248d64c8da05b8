// Package events defines application lifecycle events and the publishers
// that forward them to the host bridge.
package events

import "time"

// Lifecycle event kinds.
const (
	KindWindowOpened = "window.opened"
	KindWindowClosed = "window.closed"
	KindAppShutdown  = "app.shutdown"
)

// LifecycleEvent is emitted when a window opens or closes and when the
// application shuts down. WindowID is nil for application events.
type LifecycleEvent struct {
	App       string `json:"app"`
	Kind      string `json:"kind"`
	WindowID  *uint8 `json:"windowId,omitempty"`
	Timestamp string `json:"timestamp"`
	Payload   any    `json:"payload,omitempty"`
}

// NewLifecycleEvent stamps an event with the current UTC time.
func NewLifecycleEvent(app, kind string, windowID *uint8, payload any) *LifecycleEvent {
	return &LifecycleEvent{
		App:       app,
		Kind:      kind,
		WindowID:  windowID,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	}
}
