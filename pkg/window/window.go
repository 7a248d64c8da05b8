// Package window owns the registry of live native windows and the helpers
// that push events and responses back into their webviews.
package window

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/morezero/framehost/pkg/eventloop"
)

const logPrefix = "window:window"

// Event names emitted into page script.
const (
	EventIPCCallback        = "ipc.callback"
	EventFocused            = "window.focused"
	EventCloseRequested     = "window.closeRequested"
	EventThemeChanged       = "window.themeChanged"
	EventScaleFactorChanged = "window.scaleFactorChanged"
	EventMessage            = "window.message"
	EventShortcut           = "shortcut.emit"
)

// EmitFunction is the page-side entry point for native events.
const EmitFunction = "FrameHost.__emit__"

// Window is one registered native window. The registry owns it; handlers get
// a shared pointer and must not keep it past Close.
type Window struct {
	id     uint8
	osid   eventloop.WindowID
	native Native
	ext    Extensions
	proxy  *eventloop.Proxy

	mu                  sync.Mutex
	blockCloseRequested bool
}

// ID is the runtime-assigned id.
func (w *Window) ID() uint8 {
	return w.id
}

// OSID is the native window identity.
func (w *Window) OSID() eventloop.WindowID {
	return w.osid
}

// Native returns the platform window. Only use it on the loop goroutine.
func (w *Window) Native() Native {
	return w.native
}

// Extensions returns the capabilities resolved when the window was opened.
func (w *Window) Extensions() Extensions {
	return w.ext
}

// SetBlockCloseRequested controls whether a user close request is forwarded
// to page script instead of closing the window.
func (w *Window) SetBlockCloseRequested(block bool) {
	w.mu.Lock()
	w.blockCloseRequested = block
	w.mu.Unlock()
}

// BlockCloseRequested reports the current setting.
func (w *Window) BlockCloseRequested() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.blockCloseRequested
}

// SendEvent runs fn against the native window on the loop goroutine.
func (w *Window) SendEvent(fn func(n Native) error) error {
	return w.proxy.Invoke(func(_ *eventloop.Target, _ *eventloop.ControlFlow) error {
		return fn(w.native)
	})
}

// SendIPCEvent emits name with payload into the page.
func (w *Window) SendIPCEvent(name string, payload any) error {
	script, err := EmitScript(name, payload)
	if err != nil {
		return err
	}
	return w.evaluate(script)
}

// SendIPCCallback delivers a response to the page.
func (w *Window) SendIPCCallback(resp any) error {
	return w.SendIPCEvent(EventIPCCallback, resp)
}

// PostMessage dispatches payload as a DOM message event in the page.
func (w *Window) PostMessage(payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s - encode message: %w", logPrefix, err)
	}
	return w.evaluate(fmt.Sprintf(`window.postMessage(%s,"*")`, data))
}

func (w *Window) evaluate(script string) error {
	return w.SendEvent(func(n Native) error {
		return n.EvaluateScript(script)
	})
}

// EmitScript renders the script that raises event name with payload in the page.
func EmitScript(name string, payload any) (string, error) {
	quoted, err := json.Marshal(name)
	if err != nil {
		return "", fmt.Errorf("%s - encode event name: %w", logPrefix, err)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s - encode %s payload: %w", logPrefix, name, err)
	}
	return fmt.Sprintf("%s(%s,%s)", EmitFunction, quoted, data), nil
}
