package window

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/morezero/framehost/pkg/eventloop"
)

const headlessLogPrefix = "window:headless"

var (
	// ErrNativeClosed is returned by a headless window after Close.
	ErrNativeClosed = errors.New("native window closed")
	// ErrUnknownMonitor is returned for a monitor name no display carries.
	ErrUnknownMonitor = errors.New("unknown monitor")
)

// HeadlessBinding creates in-memory windows that record the scripts evaluated
// in them. It backs headless runs and tests.
type HeadlessBinding struct {
	next atomic.Uint64

	mu      sync.Mutex
	windows map[eventloop.WindowID]*HeadlessWindow
}

// NewHeadlessBinding returns a binding whose first window has OS id 1.
func NewHeadlessBinding() *HeadlessBinding {
	return &HeadlessBinding{windows: make(map[eventloop.WindowID]*HeadlessWindow)}
}

// HeadlessMonitor is the single display every headless window reports.
var HeadlessMonitor = Monitor{
	Name:             "headless-0",
	Size:             Size{Width: 1920, Height: 1080},
	PhysicalSize:     Size{Width: 1920, Height: 1080},
	ScaleFactor:      1,
	Position:         Position{},
	PhysicalPosition: Position{},
}

const (
	headlessDefaultWidth  = 800
	headlessDefaultHeight = 600
	headlessTitleBar      = 28
)

// Create implements Binding.
func (b *HeadlessBinding) Create(_ *eventloop.Target, spec CreateSpec) (Native, error) {
	osid := eventloop.WindowID(b.next.Add(1))
	cfg := spec.Config
	url := cfg.URL
	if url == "" && cfg.HTML != "" {
		url = "about:blank"
	}
	size := Size{Width: cfg.Width, Height: cfg.Height}
	if size.Width <= 0 {
		size.Width = headlessDefaultWidth
	}
	if size.Height <= 0 {
		size.Height = headlessDefaultHeight
	}
	w := &HeadlessWindow{
		osid:    osid,
		id:      spec.ID,
		title:   cfg.Title,
		url:     url,
		html:    cfg.HTML,
		visible: cfg.IsVisible(),
		onIPC:   spec.OnIPC,
		size:    size,
		minSize: Size{Width: cfg.MinWidth, Height: cfg.MinHeight},
		zoom:    1,
		flags: map[string]bool{
			FlagResizable:     cfg.Resizable == nil || *cfg.Resizable,
			FlagMinimizable:   true,
			FlagMaximizable:   true,
			FlagClosable:      true,
			FlagMaximized:     cfg.Maximized,
			FlagDecorated:     cfg.Decorations == nil || *cfg.Decorations,
			FlagAlwaysOnTop:   cfg.AlwaysOnTop,
			FlagCursorVisible: true,
		},
	}
	if cfg.Center {
		w.position = Position{
			X: (HeadlessMonitor.Size.Width - size.Width) / 2,
			Y: (HeadlessMonitor.Size.Height - size.Height) / 2,
		}
	}
	b.mu.Lock()
	b.windows[osid] = w
	b.mu.Unlock()
	return w, nil
}

// Extensions implements Binding. Every headless window supports every extension.
func (b *HeadlessBinding) Extensions(n Native) Extensions {
	w, ok := n.(*HeadlessWindow)
	if !ok {
		return Extensions{}
	}
	flags := make(map[string]Flag)
	for _, name := range []string{
		FlagResizable, FlagMinimizable, FlagMaximizable, FlagClosable,
		FlagMinimized, FlagMaximized, FlagDecorated,
		FlagContentProtection, FlagVisibleOnAllWorkspaces,
		FlagCursorGrab, FlagCursorVisible, FlagIgnoreCursorEvents,
	} {
		flags[name] = Flag{Get: w.getter(name), Set: w.setter(name)}
	}
	flags[FlagFullscreen] = Flag{Get: w.getter(FlagFullscreen)}
	flags[FlagFocused] = Flag{Get: w.getter(FlagFocused)}
	flags[FlagAlwaysOnTop] = Flag{Get: w.getter(FlagAlwaysOnTop), Set: func(v bool) error {
		return w.set(func() {
			w.flags[FlagAlwaysOnTop] = v
			if v {
				w.flags[FlagAlwaysOnBottom] = false
			}
		})
	}}
	flags[FlagAlwaysOnBottom] = Flag{Get: w.getter(FlagAlwaysOnBottom), Set: func(v bool) error {
		return w.set(func() {
			w.flags[FlagAlwaysOnBottom] = v
			if v {
				w.flags[FlagAlwaysOnTop] = false
			}
		})
	}}

	return Extensions{
		Flags: flags,

		ScaleFactor:   func() float64 { return HeadlessMonitor.ScaleFactor },
		InnerPosition: func() Position { return w.innerPosition() },
		OuterPosition: func() Position {
			w.mu.Lock()
			defer w.mu.Unlock()
			return w.position
		},
		SetOuterPosition: func(p Position) error { return w.set(func() { w.position = p }) },
		InnerSize: func() Size {
			w.mu.Lock()
			defer w.mu.Unlock()
			return w.size
		},
		OuterSize:       func() Size { return w.outerSize() },
		SetInnerSize:    w.setInnerSize,
		SetMinInnerSize: func(s Size) error { return w.set(func() { w.minSize = s }) },
		SetMaxInnerSize: func(s Size) error { return w.set(func() { w.maxSize = s }) },

		SetFocus: func() error { return w.set(func() { w.flags[FlagFocused] = true }) },
		SetFullscreen: func(on bool, monitor string) error {
			if monitor != "" && monitor != HeadlessMonitor.Name {
				return fmt.Errorf("%s - fullscreen on %q: %w", headlessLogPrefix, monitor, ErrUnknownMonitor)
			}
			return w.set(func() { w.flags[FlagFullscreen] = on })
		},
		RequestUserAttention: func(level string) error { return w.set(func() { w.attention = level }) },
		Theme:                func() string { return "light" },

		SetCursorIcon: func(icon string) error { return w.set(func() { w.cursorIcon = icon }) },
		CursorPosition: func() Position {
			w.mu.Lock()
			defer w.mu.Unlock()
			return w.cursor
		},
		SetCursorPosition: func(p Position) error { return w.set(func() { w.cursor = p }) },
		DragWindow:        func() error { return w.set(func() { w.drags++ }) },

		Monitors:       func() []Monitor { return []Monitor{HeadlessMonitor} },
		CurrentMonitor: func() (Monitor, bool) { return HeadlessMonitor, true },
		PrimaryMonitor: func() (Monitor, bool) { return HeadlessMonitor, true },
		MonitorFromPoint: func(x, y float64) (Monitor, bool) {
			m := HeadlessMonitor
			inside := x >= m.Position.X && y >= m.Position.Y &&
				x < m.Position.X+m.Size.Width && y < m.Position.Y+m.Size.Height
			return m, inside
		},

		OpenDevtools:  func() error { return w.set(func() { w.devtools = true }) },
		CloseDevtools: func() error { return w.set(func() { w.devtools = false }) },
		IsDevtoolsOpen: func() bool {
			w.mu.Lock()
			defer w.mu.Unlock()
			return w.devtools
		},
		LoadHTML: func(html string) error {
			return w.set(func() {
				w.html = html
				w.url = "about:blank"
			})
		},
		Zoom: func(scale float64) error { return w.set(func() { w.zoom = scale }) },
	}
}

// Window returns the headless window with osid, or nil.
func (b *HeadlessBinding) Window(osid eventloop.WindowID) *HeadlessWindow {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.windows[osid]
}

// HeadlessWindow is an in-memory Native.
type HeadlessWindow struct {
	osid  eventloop.WindowID
	id    uint8
	onIPC IPCFunc

	mu         sync.Mutex
	title      string
	url        string
	html       string
	visible    bool
	flags      map[string]bool
	position   Position
	size       Size
	minSize    Size
	maxSize    Size
	cursor     Position
	cursorIcon string
	attention  string
	zoom       float64
	drags      int
	devtools   bool
	closed     bool
	reloads    int
	scripts    []string
}

// OSID implements Native.
func (w *HeadlessWindow) OSID() eventloop.WindowID {
	return w.osid
}

// EvaluateScript records script.
func (w *HeadlessWindow) EvaluateScript(script string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("%s - evaluate in window %d: %w", headlessLogPrefix, w.id, ErrNativeClosed)
	}
	w.scripts = append(w.scripts, script)
	return nil
}

func (w *HeadlessWindow) Title() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title
}

func (w *HeadlessWindow) SetTitle(title string) {
	w.mu.Lock()
	w.title = title
	w.mu.Unlock()
}

func (w *HeadlessWindow) IsVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *HeadlessWindow) SetVisible(visible bool) {
	w.mu.Lock()
	w.visible = visible
	w.mu.Unlock()
}

func (w *HeadlessWindow) URL() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.url
}

func (w *HeadlessWindow) LoadURL(url string) error {
	return w.set(func() { w.url = url })
}

func (w *HeadlessWindow) Reload() error {
	return w.set(func() { w.reloads++ })
}

// Close implements Native. Closing twice is an error.
func (w *HeadlessWindow) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("%s - close window %d: %w", headlessLogPrefix, w.id, ErrNativeClosed)
	}
	w.closed = true
	return nil
}

// PostIPC simulates page script posting a request body.
func (w *HeadlessWindow) PostIPC(body string) {
	if w.onIPC != nil {
		w.onIPC(w.osid, []byte(body))
	}
}

// Scripts returns a copy of every script evaluated so far.
func (w *HeadlessWindow) Scripts() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.scripts...)
}

// Closed reports whether Close was called.
func (w *HeadlessWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// State is a snapshot of what extensions changed.
type State struct {
	Minimized  bool
	Maximized  bool
	Focused    bool
	Devtools   bool
	Reloads    int
	Flags      map[string]bool
	Position   Position
	Size       Size
	MinSize    Size
	MaxSize    Size
	HTML       string
	Zoom       float64
	CursorIcon string
	Cursor     Position
	Attention  string
	Drags      int
}

// State returns the current extension state.
func (w *HeadlessWindow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	flags := make(map[string]bool, len(w.flags))
	for k, v := range w.flags {
		flags[k] = v
	}
	return State{
		Minimized:  w.flags[FlagMinimized],
		Maximized:  w.flags[FlagMaximized],
		Focused:    w.flags[FlagFocused],
		Devtools:   w.devtools,
		Reloads:    w.reloads,
		Flags:      flags,
		Position:   w.position,
		Size:       w.size,
		MinSize:    w.minSize,
		MaxSize:    w.maxSize,
		HTML:       w.html,
		Zoom:       w.zoom,
		CursorIcon: w.cursorIcon,
		Cursor:     w.cursor,
		Attention:  w.attention,
		Drags:      w.drags,
	}
}

func (w *HeadlessWindow) getter(name string) func() bool {
	return func() bool {
		w.mu.Lock()
		defer w.mu.Unlock()
		return w.flags[name]
	}
}

func (w *HeadlessWindow) setter(name string) func(bool) error {
	return func(v bool) error {
		return w.set(func() { w.flags[name] = v })
	}
}

func (w *HeadlessWindow) innerPosition() Position {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.flags[FlagDecorated] {
		return w.position
	}
	return Position{X: w.position.X, Y: w.position.Y + headlessTitleBar}
}

func (w *HeadlessWindow) outerSize() Size {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.flags[FlagDecorated] {
		return w.size
	}
	return Size{Width: w.size.Width, Height: w.size.Height + headlessTitleBar}
}

// setInnerSize clamps s to the min and max sizes set so far.
func (w *HeadlessWindow) setInnerSize(s Size) error {
	return w.set(func() {
		s.Width = clamp(s.Width, w.minSize.Width, w.maxSize.Width)
		s.Height = clamp(s.Height, w.minSize.Height, w.maxSize.Height)
		w.size = s
	})
}

func clamp(v, lo, hi float64) float64 {
	if lo > 0 && v < lo {
		v = lo
	}
	if hi > 0 && v > hi {
		v = hi
	}
	return v
}

func (w *HeadlessWindow) set(fn func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("%s - window %d: %w", headlessLogPrefix, w.id, ErrNativeClosed)
	}
	fn()
	return nil
}
