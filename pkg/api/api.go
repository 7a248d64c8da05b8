// Package api registers the built-in native methods page script can call.
package api

import (
	"errors"
	"fmt"

	"github.com/morezero/framehost/pkg/dispatcher"
	"github.com/morezero/framehost/pkg/window"
)

const logPrefix = "api:api"

// ErrUnsupported is returned when the platform binding lacks a capability.
var ErrUnsupported = errors.New("not supported on this platform")

// Register installs every built-in method on d.
func Register(d *dispatcher.Dispatcher) {
	registerWindow(d)
	registerWebview(d)
	registerShortcut(d)
	registerMenu(d)
	registerTray(d)
	registerFS(d)
	registerOS(d)
	registerProcess(d)
	registerHTTP(d)

	d.RegisterSync("api.methods", methods)
}

func methods(c *dispatcher.Call) (any, error) {
	return c.Dispatcher.Methods(), nil
}

// windowArg resolves the optional window id argument at i, defaulting to the
// calling window.
func windowArg(c *dispatcher.Call, i int) (*window.Window, error) {
	id, err := c.Args().WindowOr(i, c.Window.ID())
	if err != nil {
		return nil, err
	}
	if id == c.Window.ID() {
		return c.Window, nil
	}
	return c.App.Windows().Get(id)
}

// ownerArg is windowArg for methods that only need the id.
func ownerArg(c *dispatcher.Call, i int) (uint8, error) {
	return c.Args().WindowOr(i, c.Window.ID())
}

func unsupported(name string) error {
	return fmt.Errorf("%s - %s: %w", logPrefix, name, ErrUnsupported)
}
