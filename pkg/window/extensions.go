package window

// Position is a point in logical screen coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a logical width and height.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Monitor describes one display as seen from a window.
type Monitor struct {
	Name             string   `json:"name"`
	Size             Size     `json:"size"`
	Position         Position `json:"position"`
	PhysicalSize     Size     `json:"physicalSize"`
	PhysicalPosition Position `json:"physicalPosition"`
	ScaleFactor      float64  `json:"scaleFactor"`
}

// Boolean window properties exposed through Extensions.Flags.
const (
	FlagResizable              = "resizable"
	FlagMinimizable            = "minimizable"
	FlagMaximizable            = "maximizable"
	FlagClosable               = "closable"
	FlagMinimized              = "minimized"
	FlagMaximized              = "maximized"
	FlagDecorated              = "decorated"
	FlagFullscreen             = "fullscreen"
	FlagFocused                = "focused"
	FlagAlwaysOnTop            = "alwaysOnTop"
	FlagAlwaysOnBottom         = "alwaysOnBottom"
	FlagContentProtection      = "contentProtection"
	FlagVisibleOnAllWorkspaces = "visibleOnAllWorkspaces"
	FlagCursorGrab             = "cursorGrab"
	FlagCursorVisible          = "cursorVisible"
	FlagIgnoreCursorEvents     = "ignoreCursorEvents"
)

// Flag is one boolean property. Get or Set is nil when the platform can only
// write or only read it.
type Flag struct {
	Get func() bool
	Set func(bool) error
}

// Extensions are optional platform capabilities, resolved once per window.
// A nil field or a missing flag means the platform does not support it.
// Every function is called on the loop goroutine.
type Extensions struct {
	Flags map[string]Flag

	ScaleFactor      func() float64
	InnerPosition    func() Position
	OuterPosition    func() Position
	SetOuterPosition func(Position) error
	InnerSize        func() Size
	OuterSize        func() Size
	SetInnerSize     func(Size) error
	SetMinInnerSize  func(Size) error
	SetMaxInnerSize  func(Size) error

	SetFocus             func() error
	SetFullscreen        func(on bool, monitor string) error
	RequestUserAttention func(level string) error
	Theme                func() string

	SetCursorIcon     func(icon string) error
	CursorPosition    func() Position
	SetCursorPosition func(Position) error
	DragWindow        func() error

	Monitors         func() []Monitor
	CurrentMonitor   func() (Monitor, bool)
	PrimaryMonitor   func() (Monitor, bool)
	MonitorFromPoint func(x, y float64) (Monitor, bool)

	OpenDevtools   func() error
	CloseDevtools  func() error
	IsDevtoolsOpen func() bool
	LoadHTML       func(html string) error
	Zoom           func(scale float64) error
}

// Flag returns the named property and whether the platform has it at all.
func (e Extensions) Flag(name string) (Flag, bool) {
	f, ok := e.Flags[name]
	return f, ok
}
