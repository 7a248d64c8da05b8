// Package launch parses the options the host process starts the runtime with.
package launch

import (
	"github.com/morezero/framehost/pkg/menu"
	"github.com/morezero/framehost/pkg/shortcut"
	"github.com/morezero/framehost/pkg/tray"
	"github.com/morezero/framehost/pkg/window"
)

// DefaultHost is used when options leave host empty.
const DefaultHost = "127.0.0.1"

// DefaultName is used when options leave name empty.
const DefaultName = "framehost"

// Options is the decoded launch document.
type Options struct {
	Name           string            `json:"name"`
	UUID           string            `json:"uuid"`
	Host           string            `json:"host"`
	Port           uint16            `json:"port"`
	Icon           string            `json:"icon,omitempty"`
	Workers        int               `json:"workers,omitempty"`
	Window         window.Config     `json:"window"`
	MenuMode       menu.Mode         `json:"menuMode,omitempty"`
	WindowMenu     *menu.Frame       `json:"windowMenu,omitempty"`
	SystemTray     *tray.Options     `json:"systemTray,omitempty"`
	Shortcuts      []shortcut.Option `json:"shortcuts,omitempty"`
	DebugDevtools  bool              `json:"debugDevtools,omitempty"`
	DebugResource  string            `json:"debugResource,omitempty"`
	DebugEntry     string            `json:"debugEntry,omitempty"`
	RuntimeVersion string            `json:"runtimeVersion,omitempty"`
}

// Info is Options plus the identity and directories derived from them.
type Info struct {
	Options  Options
	IDName   string
	DataDir  string
	CacheDir string
	TempDir  string
}

// WantsTray reports whether a tray icon should be built at startup.
func (i *Info) WantsTray() bool {
	return i.Options.SystemTray != nil && i.Options.MenuMode.WantsTray()
}

// WantsWindowMenu reports whether the window menu should be registered at startup.
func (i *Info) WantsWindowMenu() bool {
	return i.Options.WindowMenu != nil && !i.Options.WindowMenu.Empty()
}
