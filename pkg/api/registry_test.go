package api

import (
	"errors"
	"testing"

	"github.com/morezero/framehost/pkg/tray"
)

const registryTestPrefix = "api:registry_test"

func TestShortcut_RegisterListUnregister(t *testing.T) {
	f := newFixture(t)
	id := f.ok(t, "shortcut.register", map[string]any{"modifier": "control", "key": "KeyK", "acceleratorStr": "Ctrl+K"})
	list := f.ok(t, "shortcut.list").([]any)
	if len(list) != 1 {
		t.Fatalf("%s - list len = %d, want 1", registryTestPrefix, len(list))
	}
	pair := list[0].([]any)
	if pair[0] != id || pair[1] != "Ctrl+K" {
		t.Errorf("%s - list[0] = %v, want [%v Ctrl+K]", registryTestPrefix, pair, id)
	}

	f.ok(t, "shortcut.unregister", id)
	if got := f.ok(t, "shortcut.list").([]any); len(got) != 0 {
		t.Errorf("%s - list after unregister = %v", registryTestPrefix, got)
	}
}

func TestShortcut_InvalidModifier(t *testing.T) {
	f := newFixture(t)
	resp := f.call(t, "shortcut.register", map[string]any{"modifier": "banana", "key": "K"})
	if resp.Succeeded() {
		t.Errorf("%s - invalid modifier accepted", registryTestPrefix)
	}
}

func TestMenu_RegisterAndCheck(t *testing.T) {
	f := newFixture(t)
	frame := map[string]any{
		"menuItems": []any{map[string]any{"text": "Open", "enabled": true}},
		"checkMenu": []any{map[string]any{"text": "Wrap", "enabled": true}},
	}
	ids := f.ok(t, "menu.register", frame).([]any)
	if len(ids) != 2 {
		t.Fatalf("%s - ids = %v, want 2", registryTestPrefix, ids)
	}

	item := f.ok(t, "menu.setChecked", ids[1], true).(map[string]any)
	if item["checked"] != true {
		t.Errorf("%s - setChecked item = %v", registryTestPrefix, item)
	}
	if got := f.ok(t, "menu.list").([]any); len(got) != 2 {
		t.Errorf("%s - list len = %d, want 2", registryTestPrefix, len(got))
	}

	f.ok(t, "menu.unregister", ids[0])
	if got := f.ok(t, "menu.list").([]any); len(got) != 1 {
		t.Errorf("%s - list len after unregister = %d, want 1", registryTestPrefix, len(got))
	}
}

func TestTray_CreateWithMenu(t *testing.T) {
	f := newFixture(t)
	frame := map[string]any{"menuItems": []any{map[string]any{"text": "Quit", "enabled": true}}}
	id := f.ok(t, "tray.create", map[string]any{"title": "demo"}, frame)

	trays := f.ok(t, "tray.list").([]any)
	if len(trays) != 1 {
		t.Fatalf("%s - trays = %v", registryTestPrefix, trays)
	}
	entry := trays[0].(map[string]any)
	if entry["id"] != id {
		t.Errorf("%s - tray id = %v, want %v", registryTestPrefix, entry["id"], id)
	}
	if menu := entry["menu"].([]any); len(menu) != 1 {
		t.Errorf("%s - tray menu = %v", registryTestPrefix, menu)
	}

	f.ok(t, "tray.destroy", id)
	if got := f.ok(t, "tray.list").([]any); len(got) != 0 {
		t.Errorf("%s - trays after destroy = %v", registryTestPrefix, got)
	}
}

type refusingTrays struct{}

func (refusingTrays) Build(tray.Tray) error   { return errors.New("no status area") }
func (refusingTrays) Destroy(tray.Tray) error { return nil }

func TestTray_CreateFailureReleasesMenu(t *testing.T) {
	f := newFixture(t)
	f.app.trays = tray.NewManager(refusingTrays{})
	frame := map[string]any{"menuItems": []any{
		map[string]any{"text": "Show", "enabled": true},
		map[string]any{"text": "Quit", "enabled": true},
	}}

	if resp := f.call(t, "tray.create", map[string]any{"title": "demo"}, frame); resp.Succeeded() {
		t.Fatalf("%s - tray.create succeeded with a refusing builder", registryTestPrefix)
	}
	if got := f.ok(t, "menu.list").([]any); len(got) != 0 {
		t.Errorf("%s - menu items left after failed tray.create: %v", registryTestPrefix, got)
	}
	if got := f.ok(t, "tray.list").([]any); len(got) != 0 {
		t.Errorf("%s - trays after failed create = %v", registryTestPrefix, got)
	}
}
