// Package tray tracks system tray icons, the window that owns each one and
// the menu items shown in its context menu.
package tray

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/morezero/framehost/pkg/ident"
)

const logPrefix = "tray:tray"

// ErrNotFound is returned for unknown tray ids.
var ErrNotFound = errors.New("tray not found")

// Options describes the icon itself.
type Options struct {
	Title           string `json:"title,omitempty" toml:"title"`
	Icon            string `json:"icon,omitempty" toml:"icon"`
	IsTemplate      bool   `json:"isTemplate,omitempty" toml:"isTemplate"`
	MenuOnLeftClick bool   `json:"menuOnLeftClick,omitempty" toml:"menuOnLeftClick"`
	Tooltip         string `json:"tooltip,omitempty" toml:"tooltip"`
}

// Tray is one registered tray icon.
type Tray struct {
	ID      uint8    `json:"id"`
	Owner   uint8    `json:"owner"`
	Options Options  `json:"options"`
	Menu    []uint16 `json:"menu"`
}

// Builder creates and destroys the native icon.
type Builder interface {
	Build(t Tray) error
	Destroy(t Tray) error
}

// NopBuilder keeps trays in memory only.
type NopBuilder struct{}

func (NopBuilder) Build(Tray) error   { return nil }
func (NopBuilder) Destroy(Tray) error { return nil }

// Manager is the tray registry.
type Manager struct {
	builder Builder

	mu    sync.Mutex
	ids   *ident.Counter
	trays map[uint8]Tray
}

// NewManager returns an empty registry. A nil builder means NopBuilder.
func NewManager(builder Builder) *Manager {
	if builder == nil {
		builder = NopBuilder{}
	}
	return &Manager{builder: builder, ids: ident.New(), trays: make(map[uint8]Tray)}
}

// Create builds a tray for owner whose context menu holds menuItems.
func (m *Manager) Create(owner uint8, opts Options, menuItems []uint16) (uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := ident.NextFree(m.ids, m.trays)
	if err != nil {
		return 0, fmt.Errorf("%s - allocate tray id: %w", logPrefix, err)
	}
	t := Tray{ID: id, Owner: owner, Options: opts, Menu: append([]uint16(nil), menuItems...)}
	if err := m.builder.Build(t); err != nil {
		return 0, fmt.Errorf("%s - build tray %d: %w", logPrefix, id, err)
	}
	m.trays[id] = t
	slog.Debug(fmt.Sprintf("%s - created tray %d for window %d with %d menu items", logPrefix, id, owner, len(t.Menu)))
	return id, nil
}

// Destroy removes tray id.
func (m *Manager) Destroy(id uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trays[id]
	if !ok {
		return fmt.Errorf("%s - id %d: %w", logPrefix, id, ErrNotFound)
	}
	delete(m.trays, id)
	if err := m.builder.Destroy(t); err != nil {
		return fmt.Errorf("%s - destroy tray %d: %w", logPrefix, id, err)
	}
	return nil
}

// DestroyAll removes every tray, used on shutdown.
func (m *Manager) DestroyAll() error {
	m.mu.Lock()
	ids := make([]uint8, 0, len(m.trays))
	for id := range m.trays {
		ids = append(ids, id)
	}
	m.mu.Unlock()
	var errs []error
	for _, id := range ids {
		if err := m.Destroy(id); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ReleaseOwner implements window.OwnerReleaser.
func (m *Manager) ReleaseOwner(owner uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for id, t := range m.trays {
		if t.Owner != owner {
			continue
		}
		delete(m.trays, id)
		if err := m.builder.Destroy(t); err != nil {
			errs = append(errs, fmt.Errorf("%s - destroy tray %d: %w", logPrefix, id, err))
		}
	}
	return errors.Join(errs...)
}

// OwnerOfMenu returns the window owning the tray whose menu contains item.
func (m *Manager) OwnerOfMenu(item uint16) (uint8, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trays {
		for _, id := range t.Menu {
			if id == item {
				return t.Owner, true
			}
		}
	}
	return 0, false
}

// List returns every tray ordered by id.
func (m *Manager) List() []Tray {
	m.mu.Lock()
	out := make([]Tray, 0, len(m.trays))
	for _, t := range m.trays {
		out = append(out, t)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
