// Package menu keeps the registry of window and tray menu items. Item ids are
// 16 bits: the owning window in the high byte, a per-window counter in the low.
package menu

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/morezero/framehost/pkg/ident"
)

const logPrefix = "menu:menu"

var (
	// ErrNotFound is returned for unknown item ids.
	ErrNotFound = errors.New("menu item not found")
	// ErrNotOwner is returned when a window touches another window's item.
	ErrNotOwner = errors.New("menu item owned by another window")
	// ErrInvalid is returned for malformed options or operations that do not
	// apply to the item kind.
	ErrInvalid = errors.New("invalid menu item")
)

// Kind is the item variant.
type Kind int

const (
	KindItem Kind = iota + 1
	KindSubmenu
	KindCheck
	KindIcon
	KindPredefined
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindSubmenu:
		return "submenu"
	case KindCheck:
		return "check"
	case KindIcon:
		return "icon"
	case KindPredefined:
		return "predefined"
	default:
		return "unknown"
	}
}

// MarshalText renders the kind name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Item is one registered menu entry.
type Item struct {
	ID        uint16 `json:"id"`
	Owner     uint8  `json:"owner"`
	Parent    uint16 `json:"parent,omitempty"`
	HasParent bool   `json:"-"`
	Kind      Kind   `json:"kind"`
	Text      string `json:"text"`
	Enabled   bool   `json:"enabled"`
	Checked   bool   `json:"checked,omitempty"`
	IconPath  string `json:"iconPath,omitempty"`
	ItemType  string `json:"itemType,omitempty"`
	Modifier  string `json:"modifier,omitempty"`
	Key       string `json:"key,omitempty"`
	CommandID string `json:"commandId,omitempty"`
}

// Notification is the message posted into the page when the item is
// activated. Items without a command id produce nothing.
func (it Item) Notification() (map[string]any, bool) {
	if it.CommandID == "" {
		return nil, false
	}
	switch it.Kind {
	case KindItem:
		return map[string]any{
			"protocol": "menu",
			"payload": map[string]any{
				"command_id":   it.CommandID,
				"extra_args":   []any{it.ID},
				"extra_kwargs": map[string]any{},
			},
		}, true
	case KindSubmenu:
		return map[string]any{"event": "menu", "kind": "submenu", "command_id": it.CommandID, "is_enabled": it.Enabled}, true
	case KindPredefined:
		return map[string]any{"event": "menu", "kind": "predefined", "command_id": it.CommandID, "text": it.Text}, true
	case KindCheck:
		return map[string]any{"event": "menu", "kind": "check", "command_id": it.CommandID, "checked": it.Checked}, true
	case KindIcon:
		return map[string]any{"event": "menu", "kind": "icon", "command_id": it.CommandID, "is_enabled": it.Enabled}, true
	default:
		return nil, false
	}
}

// Builder mirrors registry changes into the native menu.
type Builder interface {
	Append(item Item) error
	Remove(item Item) error
	Update(item Item) error
}

// NopBuilder keeps menus in memory only.
type NopBuilder struct{}

func (NopBuilder) Append(Item) error { return nil }
func (NopBuilder) Remove(Item) error { return nil }
func (NopBuilder) Update(Item) error { return nil }

// Manager is the item registry. One mutex guards items and counters; the
// Builder is called with it held so native order matches registry order.
type Manager struct {
	builder Builder

	mu       sync.Mutex
	counters map[uint8]*ident.Counter
	items    map[uint16]Item
	live     map[uint8]map[uint8]struct{}
}

// NewManager returns an empty registry. A nil builder means NopBuilder.
func NewManager(builder Builder) *Manager {
	if builder == nil {
		builder = NopBuilder{}
	}
	return &Manager{
		builder:  builder,
		counters: make(map[uint8]*ident.Counter),
		items:    make(map[uint16]Item),
		live:     make(map[uint8]map[uint8]struct{}),
	}
}

// Register adds every item in frame for owner and returns the new ids in
// registration order: items, submenus (each followed by its children),
// check, icon, predefined. On error, items added so far are removed again
// and no ids are returned.
func (m *Manager) Register(owner uint8, frame Frame) ([]uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.registerLocked(owner, frame)
	if err != nil {
		if derr := m.discardLocked(owner, ids); derr != nil {
			slog.Warn(fmt.Sprintf("%s - roll back %d items for window %d: %v", logPrefix, len(ids), owner, derr))
		}
		return nil, err
	}
	slog.Debug(fmt.Sprintf("%s - registered %d items for window %d", logPrefix, len(ids), owner))
	return ids, nil
}

func (m *Manager) registerLocked(owner uint8, frame Frame) ([]uint16, error) {
	var ids []uint16
	add := func(it Item) error {
		id, err := m.addLocked(owner, it)
		if err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	}

	for _, o := range frame.MenuItems {
		if err := add(fromItem(o)); err != nil {
			return ids, err
		}
	}
	for _, s := range frame.SubMenu {
		parent := Item{Kind: KindSubmenu, Text: s.Text, Enabled: s.Enabled, CommandID: s.CommandID}
		if err := add(parent); err != nil {
			return ids, err
		}
		pid := ids[len(ids)-1]
		children := Frame{MenuItems: s.MenuItems, CheckMenu: s.CheckMenu, IconMenu: s.IconMenu, PredefinedMenu: s.PredefinedMenu}
		for _, child := range flatten(children) {
			child.Parent, child.HasParent = pid, true
			if err := add(child); err != nil {
				return ids, err
			}
		}
	}
	rest := Frame{CheckMenu: frame.CheckMenu, IconMenu: frame.IconMenu, PredefinedMenu: frame.PredefinedMenu}
	for _, it := range flatten(rest) {
		if err := add(it); err != nil {
			return ids, err
		}
	}
	return ids, nil
}

// Discard removes those of ids that are still registered to owner, in
// reverse order. It undoes a Register whose items ended up unused.
func (m *Manager) Discard(owner uint8, ids []uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.discardLocked(owner, ids)
}

func (m *Manager) discardLocked(owner uint8, ids []uint16) error {
	var errs []error
	for i := len(ids) - 1; i >= 0; i-- {
		it, ok := m.items[ids[i]]
		if !ok || it.Owner != owner {
			continue
		}
		errs = append(errs, m.removeLocked(ids[i], it))
	}
	return errors.Join(errs...)
}

func flatten(f Frame) []Item {
	var out []Item
	for _, o := range f.MenuItems {
		out = append(out, fromItem(o))
	}
	for _, o := range f.CheckMenu {
		out = append(out, Item{Kind: KindCheck, Text: o.Text, Enabled: o.Enabled, Checked: o.Checked,
			Modifier: o.Modifier, Key: o.Key, CommandID: o.CommandID})
	}
	for _, o := range f.IconMenu {
		out = append(out, Item{Kind: KindIcon, Text: o.Text, Enabled: o.Enabled, IconPath: o.IconPath,
			Modifier: o.Modifier, Key: o.Key, CommandID: o.CommandID})
	}
	for _, o := range f.PredefinedMenu {
		out = append(out, Item{Kind: KindPredefined, Text: o.Text, Enabled: true, ItemType: o.ItemType,
			CommandID: o.CommandID})
	}
	return out
}

func fromItem(o ItemOption) Item {
	return Item{Kind: KindItem, Text: o.Text, Enabled: o.Enabled, Modifier: o.Modifier, Key: o.Key, CommandID: o.CommandID}
}

func (m *Manager) addLocked(owner uint8, it Item) (uint16, error) {
	if it.Kind == KindPredefined && !validPredefined(it.ItemType) {
		return 0, fmt.Errorf("%s - predefined type %q: %w", logPrefix, it.ItemType, ErrInvalid)
	}
	c, ok := m.counters[owner]
	if !ok {
		c = ident.New()
		m.counters[owner] = c
	}
	live := m.live[owner]
	if live == nil {
		live = make(map[uint8]struct{})
		m.live[owner] = live
	}
	local, err := ident.NextFree(c, live)
	if err != nil {
		return 0, fmt.Errorf("%s - allocate item for window %d: %w", logPrefix, owner, err)
	}
	it.ID = ident.Merge(owner, local)
	it.Owner = owner
	if err := m.builder.Append(it); err != nil {
		return 0, fmt.Errorf("%s - append %q: %w", logPrefix, it.Text, err)
	}
	live[local] = struct{}{}
	m.items[it.ID] = it
	return it.ID, nil
}

// Unregister removes id, and its children when it is a submenu.
func (m *Manager) Unregister(owner uint8, id uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return fmt.Errorf("%s - id %d: %w", logPrefix, id, ErrNotFound)
	}
	if it.Owner != owner {
		return fmt.Errorf("%s - id %d belongs to window %d: %w", logPrefix, id, it.Owner, ErrNotOwner)
	}
	var errs []error
	if it.Kind == KindSubmenu {
		for cid, child := range m.items {
			if child.HasParent && child.Parent == id {
				errs = append(errs, m.removeLocked(cid, child))
			}
		}
	}
	errs = append(errs, m.removeLocked(id, it))
	return errors.Join(errs...)
}

func (m *Manager) removeLocked(id uint16, it Item) error {
	delete(m.items, id)
	_, local := ident.Split(id)
	delete(m.live[it.Owner], local)
	if err := m.builder.Remove(it); err != nil {
		return fmt.Errorf("%s - remove %d: %w", logPrefix, id, err)
	}
	return nil
}

// ReleaseOwner implements window.OwnerReleaser.
func (m *Manager) ReleaseOwner(owner uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for id, it := range m.items {
		if it.Owner == owner {
			if err := m.removeLocked(id, it); err != nil {
				errs = append(errs, err)
			}
		}
	}
	delete(m.live, owner)
	delete(m.counters, owner)
	return errors.Join(errs...)
}

// Get returns the item with id.
func (m *Manager) Get(id uint16) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%s - id %d: %w", logPrefix, id, ErrNotFound)
	}
	return it, nil
}

// List returns owner's items ordered by id.
func (m *Manager) List(owner uint8) []Item {
	m.mu.Lock()
	out := make([]Item, 0)
	for _, it := range m.items {
		if it.Owner == owner {
			out = append(out, it)
		}
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SetChecked toggles a check item.
func (m *Manager) SetChecked(owner uint8, id uint16, checked bool) (Item, error) {
	return m.update(owner, id, func(it *Item) error {
		if it.Kind != KindCheck {
			return fmt.Errorf("%s - id %d is a %s item: %w", logPrefix, id, it.Kind, ErrInvalid)
		}
		it.Checked = checked
		return nil
	})
}

// SetEnabled enables or disables any item.
func (m *Manager) SetEnabled(owner uint8, id uint16, enabled bool) (Item, error) {
	return m.update(owner, id, func(it *Item) error {
		it.Enabled = enabled
		return nil
	})
}

func (m *Manager) update(owner uint8, id uint16, fn func(*Item) error) (Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok {
		return Item{}, fmt.Errorf("%s - id %d: %w", logPrefix, id, ErrNotFound)
	}
	if it.Owner != owner {
		return Item{}, fmt.Errorf("%s - id %d belongs to window %d: %w", logPrefix, id, it.Owner, ErrNotOwner)
	}
	if err := fn(&it); err != nil {
		return Item{}, err
	}
	if err := m.builder.Update(it); err != nil {
		return Item{}, fmt.Errorf("%s - update %d: %w", logPrefix, id, err)
	}
	m.items[id] = it
	return it, nil
}
