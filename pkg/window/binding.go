package window

import (
	"github.com/morezero/framehost/pkg/eventloop"
)

// Config describes a window to open. Zero values mean platform defaults,
// except Visible which defaults to true when nil.
type Config struct {
	Title       string  `json:"title" toml:"title"`
	URL         string  `json:"url" toml:"url"`
	HTML        string  `json:"html,omitempty" toml:"html"`
	Width       float64 `json:"width,omitempty" toml:"width"`
	Height      float64 `json:"height,omitempty" toml:"height"`
	MinWidth    float64 `json:"minWidth,omitempty" toml:"minWidth"`
	MinHeight   float64 `json:"minHeight,omitempty" toml:"minHeight"`
	Resizable   *bool   `json:"resizable,omitempty" toml:"resizable"`
	Visible     *bool   `json:"visible,omitempty" toml:"visible"`
	Decorations *bool   `json:"decorations,omitempty" toml:"decorations"`
	AlwaysOnTop bool    `json:"alwaysOnTop,omitempty" toml:"alwaysOnTop"`
	Maximized   bool    `json:"maximized,omitempty" toml:"maximized"`
	Center      bool    `json:"center,omitempty" toml:"center"`
	Devtools    bool    `json:"devtools,omitempty" toml:"devtools"`
}

// IsVisible reports the effective initial visibility.
func (c Config) IsVisible() bool {
	return c.Visible == nil || *c.Visible
}

// IPCFunc receives a raw request body posted by page script.
type IPCFunc func(osid eventloop.WindowID, body []byte)

// CreateSpec is what the manager hands a Binding to build one native window.
type CreateSpec struct {
	ID     uint8
	Config Config
	OnIPC  IPCFunc
}

// Native is the platform window plus its embedded webview. All methods are
// called on the loop goroutine.
type Native interface {
	OSID() eventloop.WindowID
	EvaluateScript(script string) error
	Title() string
	SetTitle(title string)
	IsVisible() bool
	SetVisible(visible bool)
	URL() string
	LoadURL(url string) error
	Reload() error
	Close() error
}

// Binding creates native windows. Implementations wrap a GUI toolkit; the
// headless binding in this package keeps everything in memory.
type Binding interface {
	Create(target *eventloop.Target, spec CreateSpec) (Native, error)
	Extensions(n Native) Extensions
}
