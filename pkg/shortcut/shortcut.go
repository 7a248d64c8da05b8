// Package shortcut tracks global keyboard shortcuts and the window that owns
// each one.
package shortcut

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/morezero/framehost/pkg/ident"
)

const logPrefix = "shortcut:shortcut"

var (
	// ErrNotFound is returned for unknown shortcut ids.
	ErrNotFound = errors.New("shortcut not found")
	// ErrAlreadyRegistered is returned when an explicit id is taken.
	ErrAlreadyRegistered = errors.New("shortcut already registered")
	// ErrNotOwner is returned when a window unregisters another window's shortcut.
	ErrNotOwner = errors.New("shortcut owned by another window")
	// ErrInvalid is returned for malformed options.
	ErrInvalid = errors.New("invalid shortcut")
)

var modifiers = map[string]struct{}{
	"alt": {}, "altgraph": {}, "scrolllock": {}, "shift": {}, "super": {},
	"symbol": {}, "symbollock": {}, "fn": {}, "fnlock": {}, "numlock": {},
	"capslock": {}, "control": {}, "hyper": {}, "meta": {},
}

// Option describes one shortcut as page script or launch options send it.
// ID is only honoured by RegisterWithID.
type Option struct {
	Modifier       string `json:"modifier,omitempty" toml:"modifier"`
	Key            string `json:"key" toml:"key"`
	AcceleratorStr string `json:"acceleratorStr" toml:"acceleratorStr"`
	ID             uint8  `json:"id,omitempty" toml:"id"`
}

// HotKey is the normalized key combination handed to the Registrar.
type HotKey struct {
	Modifier string
	Key      string
}

func (h HotKey) String() string {
	if h.Modifier == "" {
		return h.Key
	}
	return h.Modifier + "+" + h.Key
}

// Validate normalizes o into a HotKey.
func (o Option) Validate() (HotKey, error) {
	key := strings.TrimSpace(o.Key)
	if key == "" {
		return HotKey{}, fmt.Errorf("%s - key is required: %w", logPrefix, ErrInvalid)
	}
	mod := strings.ToLower(strings.TrimSpace(o.Modifier))
	if mod != "" {
		if _, ok := modifiers[mod]; !ok {
			return HotKey{}, fmt.Errorf("%s - unknown modifier %q: %w", logPrefix, o.Modifier, ErrInvalid)
		}
	}
	return HotKey{Modifier: mod, Key: key}, nil
}

// Registrar installs hot keys with the operating system.
type Registrar interface {
	Register(id uint8, key HotKey) error
	Unregister(id uint8, key HotKey) error
}

// NopRegistrar accepts every key without touching the OS.
type NopRegistrar struct{}

func (NopRegistrar) Register(uint8, HotKey) error   { return nil }
func (NopRegistrar) Unregister(uint8, HotKey) error { return nil }

// Entry is one registered shortcut.
type Entry struct {
	ID             uint8  `json:"id"`
	Owner          uint8  `json:"owner"`
	AcceleratorStr string `json:"acceleratorStr"`
	key            HotKey
}

// Manager maps shortcut ids to their owning window. Ids are global across windows.
type Manager struct {
	registrar Registrar

	mu        sync.Mutex
	ids       *ident.Counter
	shortcuts map[uint8]Entry
}

// NewManager returns an empty manager. A nil registrar means NopRegistrar.
func NewManager(registrar Registrar) *Manager {
	if registrar == nil {
		registrar = NopRegistrar{}
	}
	return &Manager{
		registrar: registrar,
		ids:       ident.New(),
		shortcuts: make(map[uint8]Entry),
	}
}

// Register allocates an id for opt and installs it for owner.
func (m *Manager) Register(owner uint8, opt Option) (uint8, error) {
	key, err := opt.Validate()
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id, err := ident.NextFree(m.ids, m.shortcuts)
	if err != nil {
		return 0, fmt.Errorf("%s - allocate shortcut id: %w", logPrefix, err)
	}
	if err := m.insertLocked(owner, id, opt.AcceleratorStr, key); err != nil {
		return 0, err
	}
	return id, nil
}

// RegisterWithID installs opt under opt.ID.
func (m *Manager) RegisterWithID(owner uint8, opt Option) error {
	key, err := opt.Validate()
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shortcuts[opt.ID]; ok {
		return fmt.Errorf("%s - id %d: %w", logPrefix, opt.ID, ErrAlreadyRegistered)
	}
	return m.insertLocked(owner, opt.ID, opt.AcceleratorStr, key)
}

// RegisterAll installs every option with its explicit id, stopping at the first error.
func (m *Manager) RegisterAll(owner uint8, opts []Option) error {
	for _, opt := range opts {
		if err := m.RegisterWithID(owner, opt); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) insertLocked(owner, id uint8, accel string, key HotKey) error {
	if accel == "" {
		accel = key.String()
	}
	if err := m.registrar.Register(id, key); err != nil {
		return fmt.Errorf("%s - register %s: %w", logPrefix, accel, err)
	}
	m.shortcuts[id] = Entry{ID: id, Owner: owner, AcceleratorStr: accel, key: key}
	slog.Debug(fmt.Sprintf("%s - registered shortcut %d (%s) for window %d", logPrefix, id, accel, owner))
	return nil
}

// Unregister removes id if owner owns it.
func (m *Manager) Unregister(owner, id uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unregisterLocked(owner, id)
}

func (m *Manager) unregisterLocked(owner, id uint8) error {
	e, ok := m.shortcuts[id]
	if !ok {
		return fmt.Errorf("%s - id %d: %w", logPrefix, id, ErrNotFound)
	}
	if e.Owner != owner {
		return fmt.Errorf("%s - id %d belongs to window %d: %w", logPrefix, id, e.Owner, ErrNotOwner)
	}
	delete(m.shortcuts, id)
	if err := m.registrar.Unregister(id, e.key); err != nil {
		return fmt.Errorf("%s - unregister %s: %w", logPrefix, e.AcceleratorStr, err)
	}
	return nil
}

// UnregisterAll removes every shortcut owner owns.
func (m *Manager) UnregisterAll(owner uint8) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var errs []error
	for id, e := range m.shortcuts {
		if e.Owner == owner {
			if err := m.unregisterLocked(owner, id); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// ReleaseOwner implements window.OwnerReleaser.
func (m *Manager) ReleaseOwner(owner uint8) error {
	return m.UnregisterAll(owner)
}

// Get returns the entry for id.
func (m *Manager) Get(id uint8) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.shortcuts[id]
	if !ok {
		return Entry{}, fmt.Errorf("%s - id %d: %w", logPrefix, id, ErrNotFound)
	}
	return e, nil
}

// List returns the shortcuts owner owns, ordered by id.
func (m *Manager) List(owner uint8) []Entry {
	m.mu.Lock()
	out := make([]Entry, 0)
	for _, e := range m.shortcuts {
		if e.Owner == owner {
			out = append(out, e)
		}
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
