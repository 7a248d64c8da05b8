package api

import (
	"fmt"

	"github.com/morezero/framehost/pkg/dispatcher"
	"github.com/morezero/framehost/pkg/window"
)

// windowFlags maps page methods onto boolean window properties. An empty
// method name means the property has no getter or setter on the page side.
var windowFlags = []struct {
	get, set string
	flag     string
}{
	{"window.isResizable", "window.setResizable", window.FlagResizable},
	{"window.isMinimizable", "window.setMinimizable", window.FlagMinimizable},
	{"window.isMaximizable", "window.setMaximizable", window.FlagMaximizable},
	{"window.isClosable", "window.setClosable", window.FlagClosable},
	{"window.isMinimized", "window.setMinimized", window.FlagMinimized},
	{"window.isMaximized", "window.setMaximized", window.FlagMaximized},
	{"window.Decorated", "window.setDecorated", window.FlagDecorated},
	{"window.fullscreen", "", window.FlagFullscreen},
	{"window.isFocused", "", window.FlagFocused},
	{"", "window.setAlwaysOnTop", window.FlagAlwaysOnTop},
	{"", "window.setAlwaysOnBottom", window.FlagAlwaysOnBottom},
	{"", "window.setContentProtection", window.FlagContentProtection},
	{"", "window.setVisibleOnAllWorkspaces", window.FlagVisibleOnAllWorkspaces},
	{"", "window.setCursorGrab", window.FlagCursorGrab},
	{"", "window.setCursorVisible", window.FlagCursorVisible},
	{"", "window.setIgnoreCursorEvents", window.FlagIgnoreCursorEvents},
}

// Attention levels accepted by window.requestUserAttention.
const (
	AttentionInformational = "informational"
	AttentionCritical      = "critical"
)

func registerWindowState(d *dispatcher.Dispatcher) {
	for _, f := range windowFlags {
		if f.get != "" {
			d.RegisterEvent(f.get, flagGetter(f.get, f.flag))
		}
		if f.set != "" {
			d.RegisterEvent(f.set, flagSetter(f.set, f.flag))
		}
	}

	d.RegisterEvent("window.scaleFactor", windowScaleFactor)
	d.RegisterEvent("window.innerPosition", positionGetter("window.innerPosition", func(e window.Extensions) func() window.Position { return e.InnerPosition }))
	d.RegisterEvent("window.outerPosition", positionGetter("window.outerPosition", func(e window.Extensions) func() window.Position { return e.OuterPosition }))
	d.RegisterEvent("window.setOuterPosition", positionSetter("window.setOuterPosition", func(e window.Extensions) func(window.Position) error { return e.SetOuterPosition }))
	d.RegisterEvent("window.innerSize", sizeGetter("window.innerSize", func(e window.Extensions) func() window.Size { return e.InnerSize }))
	d.RegisterEvent("window.outerSize", sizeGetter("window.outerSize", func(e window.Extensions) func() window.Size { return e.OuterSize }))
	d.RegisterEvent("window.setInnerSize", sizeSetter("window.setInnerSize", func(e window.Extensions) func(window.Size) error { return e.SetInnerSize }))
	d.RegisterEvent("window.setMinInnerSize", sizeSetter("window.setMinInnerSize", func(e window.Extensions) func(window.Size) error { return e.SetMinInnerSize }))
	d.RegisterEvent("window.setMaxInnerSize", sizeSetter("window.setMaxInnerSize", func(e window.Extensions) func(window.Size) error { return e.SetMaxInnerSize }))
	d.RegisterEvent("window.setFullscreen", windowSetFullscreen)
	d.RegisterEvent("window.requestUserAttention", windowRequestUserAttention)
	d.RegisterEvent("window.theme", windowTheme)
	d.RegisterEvent("window.setCursorIcon", windowSetCursorIcon)
	d.RegisterEvent("window.cursorPosition", positionGetter("window.cursorPosition", func(e window.Extensions) func() window.Position { return e.CursorPosition }))
	d.RegisterEvent("window.setCursorPosition", positionSetter("window.setCursorPosition", func(e window.Extensions) func(window.Position) error { return e.SetCursorPosition }))
	d.RegisterEvent("window.dragWindow", windowDragWindow)

	d.RegisterEvent("monitor.list", monitorList)
	d.RegisterEvent("monitor.current", monitorPick("monitor.current", func(e window.Extensions) func() (window.Monitor, bool) { return e.CurrentMonitor }))
	d.RegisterEvent("monitor.primary", monitorPick("monitor.primary", func(e window.Extensions) func() (window.Monitor, bool) { return e.PrimaryMonitor }))
	d.RegisterEvent("monitor.fromPoint", monitorFromPoint)
}

func flagGetter(name, flag string) dispatcher.Func {
	return func(c *dispatcher.Call) (any, error) {
		w, err := windowArg(c, 0)
		if err != nil {
			return nil, err
		}
		f, ok := w.Extensions().Flag(flag)
		if !ok || f.Get == nil {
			return nil, unsupported(name)
		}
		return f.Get(), nil
	}
}

func flagSetter(name, flag string) dispatcher.Func {
	return func(c *dispatcher.Call) (any, error) {
		var on bool
		if err := c.Args().At(0, &on); err != nil {
			return nil, err
		}
		w, err := windowArg(c, 1)
		if err != nil {
			return nil, err
		}
		f, ok := w.Extensions().Flag(flag)
		if !ok || f.Set == nil {
			return nil, unsupported(name)
		}
		return nil, f.Set(on)
	}
}

func positionGetter(name string, pick func(window.Extensions) func() window.Position) dispatcher.Func {
	return func(c *dispatcher.Call) (any, error) {
		w, err := windowArg(c, 0)
		if err != nil {
			return nil, err
		}
		fn := pick(w.Extensions())
		if fn == nil {
			return nil, unsupported(name)
		}
		return fn(), nil
	}
}

func positionSetter(name string, pick func(window.Extensions) func(window.Position) error) dispatcher.Func {
	return func(c *dispatcher.Call) (any, error) {
		var p window.Position
		if err := c.Args().At(0, &p); err != nil {
			return nil, err
		}
		w, err := windowArg(c, 1)
		if err != nil {
			return nil, err
		}
		fn := pick(w.Extensions())
		if fn == nil {
			return nil, unsupported(name)
		}
		return nil, fn(p)
	}
}

func sizeGetter(name string, pick func(window.Extensions) func() window.Size) dispatcher.Func {
	return func(c *dispatcher.Call) (any, error) {
		w, err := windowArg(c, 0)
		if err != nil {
			return nil, err
		}
		fn := pick(w.Extensions())
		if fn == nil {
			return nil, unsupported(name)
		}
		return fn(), nil
	}
}

func sizeSetter(name string, pick func(window.Extensions) func(window.Size) error) dispatcher.Func {
	return func(c *dispatcher.Call) (any, error) {
		var s window.Size
		if err := c.Args().At(0, &s); err != nil {
			return nil, err
		}
		if s.Width < 0 || s.Height < 0 {
			return nil, fmt.Errorf("%s - %s: negative size %vx%v", logPrefix, name, s.Width, s.Height)
		}
		w, err := windowArg(c, 1)
		if err != nil {
			return nil, err
		}
		fn := pick(w.Extensions())
		if fn == nil {
			return nil, unsupported(name)
		}
		return nil, fn(s)
	}
}

func windowScaleFactor(c *dispatcher.Call) (any, error) {
	w, err := windowArg(c, 0)
	if err != nil {
		return nil, err
	}
	fn := w.Extensions().ScaleFactor
	if fn == nil {
		return nil, unsupported("window.scaleFactor")
	}
	return fn(), nil
}

// windowSetFullscreen takes (on, monitorName?, window?). An empty monitor
// name means the window's current monitor.
func windowSetFullscreen(c *dispatcher.Call) (any, error) {
	var on bool
	if err := c.Args().At(0, &on); err != nil {
		return nil, err
	}
	var monitor string
	if _, err := c.Args().Optional(1, &monitor); err != nil {
		return nil, err
	}
	w, err := windowArg(c, 2)
	if err != nil {
		return nil, err
	}
	fn := w.Extensions().SetFullscreen
	if fn == nil {
		return nil, unsupported("window.setFullscreen")
	}
	return nil, fn(on, monitor)
}

func windowRequestUserAttention(c *dispatcher.Call) (any, error) {
	var level string
	if err := c.Args().At(0, &level); err != nil {
		return nil, err
	}
	if level != AttentionInformational && level != AttentionCritical {
		return nil, fmt.Errorf("%s - window.requestUserAttention: unknown level %q", logPrefix, level)
	}
	w, err := windowArg(c, 1)
	if err != nil {
		return nil, err
	}
	fn := w.Extensions().RequestUserAttention
	if fn == nil {
		return nil, unsupported("window.requestUserAttention")
	}
	return nil, fn(level)
}

func windowTheme(c *dispatcher.Call) (any, error) {
	w, err := windowArg(c, 0)
	if err != nil {
		return nil, err
	}
	fn := w.Extensions().Theme
	if fn == nil {
		return nil, unsupported("window.theme")
	}
	return fn(), nil
}

func windowSetCursorIcon(c *dispatcher.Call) (any, error) {
	var icon string
	if err := c.Args().At(0, &icon); err != nil {
		return nil, err
	}
	w, err := windowArg(c, 1)
	if err != nil {
		return nil, err
	}
	fn := w.Extensions().SetCursorIcon
	if fn == nil {
		return nil, unsupported("window.setCursorIcon")
	}
	return nil, fn(icon)
}

func windowDragWindow(c *dispatcher.Call) (any, error) {
	w, err := windowArg(c, 0)
	if err != nil {
		return nil, err
	}
	fn := w.Extensions().DragWindow
	if fn == nil {
		return nil, unsupported("window.dragWindow")
	}
	return nil, fn()
}

func monitorList(c *dispatcher.Call) (any, error) {
	fn := c.Window.Extensions().Monitors
	if fn == nil {
		return nil, unsupported("monitor.list")
	}
	return fn(), nil
}

// monitorPick returns null when the platform knows no such monitor.
func monitorPick(name string, pick func(window.Extensions) func() (window.Monitor, bool)) dispatcher.Func {
	return func(c *dispatcher.Call) (any, error) {
		fn := pick(c.Window.Extensions())
		if fn == nil {
			return nil, unsupported(name)
		}
		if m, ok := fn(); ok {
			return m, nil
		}
		return nil, nil
	}
}

func monitorFromPoint(c *dispatcher.Call) (any, error) {
	var x, y float64
	if err := c.Args().At(0, &x); err != nil {
		return nil, err
	}
	if err := c.Args().At(1, &y); err != nil {
		return nil, err
	}
	fn := c.Window.Extensions().MonitorFromPoint
	if fn == nil {
		return nil, unsupported("monitor.fromPoint")
	}
	if m, ok := fn(x, y); ok {
		return m, nil
	}
	return nil, nil
}
