package eventloop

// WindowID is the OS-level identity of a native window. It is opaque to the
// runtime and only used as a lookup key.
type WindowID uint64

// Callback is deferred work executed on the loop goroutine.
type Callback func(target *Target, cf *ControlFlow) error

// Command is a message the loop goroutine consumes. The set is closed: only
// the types in this file implement it.
type Command interface {
	isCommand()
}

// Invoke runs Fn on the loop goroutine with live Target and ControlFlow.
type Invoke struct {
	Fn Callback
}

// WindowEventKind enumerates the native window notifications the runtime reacts to.
type WindowEventKind int

const (
	WindowFocused WindowEventKind = iota + 1
	WindowDestroyed
	WindowCloseRequested
	WindowThemeChanged
	WindowScaleFactorChanged
)

func (k WindowEventKind) String() string {
	switch k {
	case WindowFocused:
		return "focused"
	case WindowDestroyed:
		return "destroyed"
	case WindowCloseRequested:
		return "closeRequested"
	case WindowThemeChanged:
		return "themeChanged"
	case WindowScaleFactorChanged:
		return "scaleFactorChanged"
	default:
		return "unknown"
	}
}

// WindowEvent is a native notification for one window. Only the fields
// relevant to Kind are set.
type WindowEvent struct {
	Window      WindowID
	Kind        WindowEventKind
	Focused     bool
	Theme       string
	ScaleFactor float64
	Width       float64
	Height      float64
}

// MenuActivated reports a click on a menu or tray menu item.
type MenuActivated struct {
	Item uint16
}

// ShortcutActivated reports a global shortcut press.
type ShortcutActivated struct {
	ID uint8
}

// ShutdownRequested asks the loop to close every window and exit.
type ShutdownRequested struct {
	Reason string
}

func (Invoke) isCommand()            {}
func (WindowEvent) isCommand()       {}
func (MenuActivated) isCommand()     {}
func (ShortcutActivated) isCommand() {}
func (ShutdownRequested) isCommand() {}
