package launch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/morezero/framehost/pkg/menu"
)

const loaderTestPrefix = "launch:loader_test"

func TestParse_Basic(t *testing.T) {
	raw := `{
		"name": "Notes",
		"uuid": "0F8FAD5B-D9CB-469F-A165-70867728950E",
		"host": "localhost",
		"port": 8421,
		"workers": 8,
		"window": {"title": "Notes", "url": "http://localhost:8421/", "width": 800},
		"shortcuts": [{"key": "KeyN", "modifier": "control", "acceleratorStr": "Ctrl+N", "id": 1}]
	}`
	info, err := Parse([]byte(raw), "linux")
	if err != nil {
		t.Fatalf("%s - Parse: %v", loaderTestPrefix, err)
	}
	if info.Options.Port != 8421 || info.Options.Workers != 8 {
		t.Errorf("%s - port=%d workers=%d", loaderTestPrefix, info.Options.Port, info.Options.Workers)
	}
	if info.Options.UUID != "0f8fad5b-d9cb-469f-a165-70867728950e" {
		t.Errorf("%s - UUID = %s, want canonical lowercase", loaderTestPrefix, info.Options.UUID)
	}
	if info.IDName != "notes_0f8fad5b" {
		t.Errorf("%s - IDName = %s, want notes_0f8fad5b", loaderTestPrefix, info.IDName)
	}
	if info.Options.Window.Width != 800 {
		t.Errorf("%s - Window.Width = %v, want 800", loaderTestPrefix, info.Options.Window.Width)
	}
	if len(info.Options.Shortcuts) != 1 || info.Options.Shortcuts[0].ID != 1 {
		t.Errorf("%s - Shortcuts = %+v", loaderTestPrefix, info.Options.Shortcuts)
	}
	if !strings.HasSuffix(info.TempDir, "notes_0f8fad5b") {
		t.Errorf("%s - TempDir = %s", loaderTestPrefix, info.TempDir)
	}
	if info.Options.MenuMode != menu.ModeMenu {
		t.Errorf("%s - MenuMode = %q, want menu", loaderTestPrefix, info.Options.MenuMode)
	}
}

func TestParse_PlatformSectionMerged(t *testing.T) {
	raw := `{
		"name": "app",
		"window": {"title": "generic", "width": 640, "height": 480},
		"darwin": {"window": {"title": "mac"}},
		"linux": {"window": {"width": 1024}, "workers": 2}
	}`
	info, err := Parse([]byte(raw), "linux")
	if err != nil {
		t.Fatalf("%s - Parse: %v", loaderTestPrefix, err)
	}
	w := info.Options.Window
	if w.Title != "generic" || w.Width != 1024 || w.Height != 480 {
		t.Errorf("%s - window = %+v, want linux override of width only", loaderTestPrefix, w)
	}
	if info.Options.Workers != 2 {
		t.Errorf("%s - Workers = %d, want 2", loaderTestPrefix, info.Options.Workers)
	}
}

func TestParse_GeneratesUUID(t *testing.T) {
	info, err := Parse([]byte(`{"name":"x"}`), "linux")
	if err != nil {
		t.Fatalf("%s - Parse: %v", loaderTestPrefix, err)
	}
	if len(info.Options.UUID) != 36 {
		t.Errorf("%s - generated UUID = %q", loaderTestPrefix, info.Options.UUID)
	}
	if info.Options.Host != DefaultHost {
		t.Errorf("%s - Host = %q, want %q", loaderTestPrefix, info.Options.Host, DefaultHost)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `not json`},
		{"bad uuid", `{"uuid":"nope"}`},
		{"bad menu mode", `{"menuMode":"dock"}`},
		{"negative workers", `{"workers":-1}`},
		{"runtime too new", `{"runtimeVersion":">= 99.0.0"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.raw), "linux"); err == nil {
				t.Errorf("%s - Parse(%s) succeeded, want error", loaderTestPrefix, tt.raw)
			}
		})
	}
}

func TestParse_DebugDevtoolsEnablesWindowDevtools(t *testing.T) {
	info, err := Parse([]byte(`{"debugDevtools":true}`), "linux")
	if err != nil {
		t.Fatalf("%s - Parse: %v", loaderTestPrefix, err)
	}
	if !info.Options.Window.Devtools {
		t.Errorf("%s - Window.Devtools = false", loaderTestPrefix)
	}
}

func TestInfo_WantsTray(t *testing.T) {
	info, err := Parse([]byte(`{"menuMode":"menuAndTray","systemTray":{"tooltip":"t"}}`), "linux")
	if err != nil {
		t.Fatalf("%s - Parse: %v", loaderTestPrefix, err)
	}
	if !info.WantsTray() {
		t.Errorf("%s - WantsTray = false", loaderTestPrefix)
	}
	info, _ = Parse([]byte(`{"systemTray":{"tooltip":"t"}}`), "linux")
	if info.WantsTray() {
		t.Errorf("%s - WantsTray = true in menu mode", loaderTestPrefix)
	}
}

func TestLoadFile_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launch.toml")
	content := `
name = "Toml App"
port = 9000
menuMode = "tray"

[window]
title = "From TOML"
url = "http://127.0.0.1:9000/"

[systemTray]
tooltip = "tray"

[[windowMenu.menuItems]]
text = "Open"
enabled = true
commandId = "open"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("%s - write: %v", loaderTestPrefix, err)
	}

	info, err := LoadFile(path)
	if err != nil {
		t.Fatalf("%s - LoadFile: %v", loaderTestPrefix, err)
	}
	if info.Options.Name != "Toml App" || info.Options.Port != 9000 {
		t.Errorf("%s - options = %+v", loaderTestPrefix, info.Options)
	}
	if info.Options.Window.Title != "From TOML" {
		t.Errorf("%s - Window.Title = %q", loaderTestPrefix, info.Options.Window.Title)
	}
	if !info.WantsWindowMenu() || info.Options.WindowMenu.MenuItems[0].CommandID != "open" {
		t.Errorf("%s - WindowMenu = %+v", loaderTestPrefix, info.Options.WindowMenu)
	}
	if !info.WantsTray() {
		t.Errorf("%s - WantsTray = false", loaderTestPrefix)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "launch.json")
	if err := os.WriteFile(path, []byte(`{"name":"fromfile"}`), 0o644); err != nil {
		t.Fatalf("%s - write: %v", loaderTestPrefix, err)
	}

	info, err := Load([]string{`{"name":"fromarg"}`}, path)
	if err != nil || info.Options.Name != "fromarg" {
		t.Errorf("%s - JSON argument should win, got %v, %v", loaderTestPrefix, info, err)
	}
	info, err = Load(nil, path)
	if err != nil || info.Options.Name != "fromfile" {
		t.Errorf("%s - file should be used, got %v, %v", loaderTestPrefix, info, err)
	}
	info, err = Load([]string{path}, "")
	if err != nil || info.Options.Name != "fromfile" {
		t.Errorf("%s - argument path should be used, got %v, %v", loaderTestPrefix, info, err)
	}
	info, err = Load(nil, "")
	if err != nil || info.Options.Name != DefaultName {
		t.Errorf("%s - defaults expected, got %v, %v", loaderTestPrefix, info, err)
	}
	if _, err := Load(nil, filepath.Join(dir, "missing.json")); err == nil {
		t.Errorf("%s - missing file should fail", loaderTestPrefix)
	}
}

func TestMergeValues(t *testing.T) {
	dest := map[string]any{"a": 1, "nested": map[string]any{"x": 1, "y": 2}}
	src := map[string]any{"b": 2, "nested": map[string]any{"y": 3}}

	got := MergeValues(dest, src).(map[string]any)
	nested := got["nested"].(map[string]any)
	if got["a"] != 1 || got["b"] != 2 || nested["x"] != 1 || nested["y"] != 3 {
		t.Errorf("%s - MergeValues = %v", loaderTestPrefix, got)
	}
	if MergeValues(map[string]any{"a": 1}, nil).(map[string]any)["a"] != 1 {
		t.Errorf("%s - nil src should keep dest", loaderTestPrefix)
	}
	if MergeValues(map[string]any{"a": 1}, "scalar") != "scalar" {
		t.Errorf("%s - scalar src should replace dest", loaderTestPrefix)
	}
}

func TestCheckRuntimeVersion(t *testing.T) {
	tests := []struct {
		constraint string
		version    string
		wantErr    bool
	}{
		{"", "0.1.0", false},
		{"^0.4.0", "0.4.2", false},
		{">= 1.0.0", "0.4.0", true},
		{"not a range", "0.4.0", true},
		{"^1.0.0", "bad", true},
	}
	for _, tt := range tests {
		err := CheckRuntimeVersion(tt.constraint, tt.version)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s - CheckRuntimeVersion(%q, %q) err = %v, wantErr %v", loaderTestPrefix, tt.constraint, tt.version, err, tt.wantErr)
		}
	}
}
