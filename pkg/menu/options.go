package menu

import (
	"fmt"
	"strings"
)

// Mode selects where the application menu is shown.
type Mode string

const (
	ModeMenu        Mode = "menu"
	ModeTray        Mode = "tray"
	ModeMenuAndTray Mode = "menuAndTray"
)

// ParseMode accepts the launch option spelling. Empty parses as ModeMenu.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeMenu:
		return ModeMenu, nil
	case ModeTray, ModeMenuAndTray:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("%s - unknown menu mode %q: %w", logPrefix, s, ErrInvalid)
	}
}

// WantsTray reports whether the mode shows a tray icon.
func (m Mode) WantsTray() bool {
	return m == ModeTray || m == ModeMenuAndTray
}

// WantsMenu reports whether the mode shows a window menu bar.
func (m Mode) WantsMenu() bool {
	return m == "" || m == ModeMenu || m == ModeMenuAndTray
}

// ItemOption is a plain clickable item.
type ItemOption struct {
	Text      string `json:"text" toml:"text"`
	Enabled   bool   `json:"enabled" toml:"enabled"`
	Modifier  string `json:"modifier,omitempty" toml:"modifier"`
	Key       string `json:"key,omitempty" toml:"key"`
	CommandID string `json:"commandId,omitempty" toml:"commandId"`
}

// CheckOption is a toggle item.
type CheckOption struct {
	Text      string `json:"text" toml:"text"`
	Enabled   bool   `json:"enabled" toml:"enabled"`
	Checked   bool   `json:"checked" toml:"checked"`
	Modifier  string `json:"modifier,omitempty" toml:"modifier"`
	Key       string `json:"key,omitempty" toml:"key"`
	CommandID string `json:"commandId,omitempty" toml:"commandId"`
}

// IconOption is an item with an image.
type IconOption struct {
	Text      string `json:"text" toml:"text"`
	Enabled   bool   `json:"enabled" toml:"enabled"`
	IconPath  string `json:"iconPath" toml:"iconPath"`
	Modifier  string `json:"modifier,omitempty" toml:"modifier"`
	Key       string `json:"key,omitempty" toml:"key"`
	CommandID string `json:"commandId,omitempty" toml:"commandId"`
}

// AboutMetadata fills the predefined "about" dialog.
type AboutMetadata struct {
	Name         string   `json:"name,omitempty" toml:"name"`
	Version      string   `json:"version,omitempty" toml:"version"`
	ShortVersion string   `json:"shortVersion,omitempty" toml:"shortVersion"`
	Authors      []string `json:"authors,omitempty" toml:"authors"`
	Comments     string   `json:"comments,omitempty" toml:"comments"`
	Copyright    string   `json:"copyright,omitempty" toml:"copyright"`
	License      string   `json:"license,omitempty" toml:"license"`
	Website      string   `json:"website,omitempty" toml:"website"`
	WebsiteLabel string   `json:"websiteLabel,omitempty" toml:"websiteLabel"`
	Credits      string   `json:"credits,omitempty" toml:"credits"`
	Icon         string   `json:"icon,omitempty" toml:"icon"`
}

// PredefinedOption is a platform-provided item such as copy or quit.
type PredefinedOption struct {
	ItemType  string         `json:"itemType" toml:"itemType"`
	Text      string         `json:"text,omitempty" toml:"text"`
	Metadata  *AboutMetadata `json:"metadata,omitempty" toml:"metadata"`
	CommandID string         `json:"commandId,omitempty" toml:"commandId"`
}

// SubmenuOption nests items one level deep.
type SubmenuOption struct {
	Text           string             `json:"text" toml:"text"`
	Enabled        bool               `json:"enabled" toml:"enabled"`
	MenuItems      []ItemOption       `json:"menuItems,omitempty" toml:"menuItems"`
	CheckMenu      []CheckOption      `json:"checkMenu,omitempty" toml:"checkMenu"`
	IconMenu       []IconOption       `json:"iconMenu,omitempty" toml:"iconMenu"`
	PredefinedMenu []PredefinedOption `json:"predefinedMenu,omitempty" toml:"predefinedMenu"`
	CommandID      string             `json:"commandId,omitempty" toml:"commandId"`
}

// Frame is a full menu description as sent by launch options or menu.register.
type Frame struct {
	MenuItems      []ItemOption       `json:"menuItems,omitempty" toml:"menuItems"`
	SubMenu        []SubmenuOption    `json:"subMenu,omitempty" toml:"subMenu"`
	CheckMenu      []CheckOption      `json:"checkMenu,omitempty" toml:"checkMenu"`
	IconMenu       []IconOption       `json:"iconMenu,omitempty" toml:"iconMenu"`
	PredefinedMenu []PredefinedOption `json:"predefinedMenu,omitempty" toml:"predefinedMenu"`
}

// Empty reports whether f has no items at all.
func (f Frame) Empty() bool {
	return len(f.MenuItems) == 0 && len(f.SubMenu) == 0 && len(f.CheckMenu) == 0 &&
		len(f.IconMenu) == 0 && len(f.PredefinedMenu) == 0
}

var predefinedTypes = map[string]struct{}{
	"separator": {}, "about": {}, "close_window": {}, "copy": {}, "fullscreen": {},
	"cut": {}, "hide": {}, "hide_others": {}, "maximize": {}, "minimize": {},
	"paste": {}, "bring_all_to_front": {}, "quit": {}, "redo": {}, "select_all": {},
	"show_all": {}, "undo": {},
}

func validPredefined(itemType string) bool {
	_, ok := predefinedTypes[strings.ToLower(itemType)]
	return ok
}
