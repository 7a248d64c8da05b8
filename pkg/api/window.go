package api

import (
	"github.com/morezero/framehost/pkg/dispatcher"
	"github.com/morezero/framehost/pkg/window"
)

func registerWindow(d *dispatcher.Dispatcher) {
	d.RegisterSync("window.current", windowCurrent)
	d.RegisterEvent("window.open", windowOpen)
	d.RegisterEvent("window.close", windowClose)
	d.RegisterEvent("window.list", windowList)
	d.RegisterSync("window.sendMessage", windowSendMessage)
	d.RegisterEvent("window.setTitle", windowSetTitle)
	d.RegisterEvent("window.title", windowTitle)
	d.RegisterEvent("window.isVisible", windowIsVisible)
	d.RegisterEvent("window.setVisible", windowSetVisible)
	d.RegisterEvent("window.setFocus", windowSetFocus)
	d.RegisterSync("window.blockCloseRequested", windowBlockCloseRequested)
	d.RegisterSync("window.menu_comand_handel", windowMenuCommand)
	registerWindowState(d)
}

// WindowSummary is one entry of window.list.
type WindowSummary struct {
	ID      uint8  `json:"id"`
	Title   string `json:"title"`
	Visible bool   `json:"visible"`
}

func windowCurrent(c *dispatcher.Call) (any, error) {
	return c.Window.ID(), nil
}

func windowOpen(c *dispatcher.Call) (any, error) {
	var cfg window.Config
	if _, err := c.Args().Optional(0, &cfg); err != nil {
		return nil, err
	}
	w, err := c.App.Windows().Open(c.Target, cfg)
	if err != nil {
		return nil, err
	}
	return w.ID(), nil
}

// windowClose closes the given window. Closing the main window shuts the
// application down.
func windowClose(c *dispatcher.Call) (any, error) {
	id, err := ownerArg(c, 0)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		c.App.Shutdown(c.Control)
		return nil, nil
	}
	return nil, c.App.Windows().Close(id)
}

// Summaries lists every window for window.list and the host bridge. It reads
// native state, so call it on the loop goroutine only.
func Summaries(m *window.Manager) []WindowSummary {
	list := m.List()
	out := make([]WindowSummary, 0, len(list))
	for _, w := range list {
		n := w.Native()
		out = append(out, WindowSummary{ID: w.ID(), Title: n.Title(), Visible: n.IsVisible()})
	}
	return out
}

func windowList(c *dispatcher.Call) (any, error) {
	return Summaries(c.App.Windows()), nil
}

func windowSendMessage(c *dispatcher.Call) (any, error) {
	var message string
	var id uint8
	if err := c.Args().At(0, &message); err != nil {
		return nil, err
	}
	if err := c.Args().At(1, &id); err != nil {
		return nil, err
	}
	remote, err := c.App.Windows().Get(id)
	if err != nil {
		return nil, err
	}
	return nil, remote.SendIPCEvent(window.EventMessage, map[string]any{
		"from":    c.Window.ID(),
		"message": message,
	})
}

func windowSetTitle(c *dispatcher.Call) (any, error) {
	var title string
	if err := c.Args().At(0, &title); err != nil {
		return nil, err
	}
	w, err := windowArg(c, 1)
	if err != nil {
		return nil, err
	}
	w.Native().SetTitle(title)
	return nil, nil
}

func windowTitle(c *dispatcher.Call) (any, error) {
	w, err := windowArg(c, 0)
	if err != nil {
		return nil, err
	}
	return w.Native().Title(), nil
}

func windowIsVisible(c *dispatcher.Call) (any, error) {
	w, err := windowArg(c, 0)
	if err != nil {
		return nil, err
	}
	return w.Native().IsVisible(), nil
}

func windowSetVisible(c *dispatcher.Call) (any, error) {
	var visible bool
	if err := c.Args().At(0, &visible); err != nil {
		return nil, err
	}
	w, err := windowArg(c, 1)
	if err != nil {
		return nil, err
	}
	w.Native().SetVisible(visible)
	return nil, nil
}

func windowSetFocus(c *dispatcher.Call) (any, error) {
	w, err := windowArg(c, 0)
	if err != nil {
		return nil, err
	}
	focus := w.Extensions().SetFocus
	if focus == nil {
		return nil, unsupported("window.setFocus")
	}
	return nil, focus()
}

func windowBlockCloseRequested(c *dispatcher.Call) (any, error) {
	var blocked bool
	if err := c.Args().At(0, &blocked); err != nil {
		return nil, err
	}
	w, err := windowArg(c, 1)
	if err != nil {
		return nil, err
	}
	w.SetBlockCloseRequested(blocked)
	return nil, nil
}

// windowMenuCommand echoes its argument back; page script uses it to route
// menu notifications through the normal response path.
func windowMenuCommand(c *dispatcher.Call) (any, error) {
	var data any
	if _, err := c.Args().Optional(0, &data); err != nil {
		return nil, err
	}
	return data, nil
}
