package window

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/morezero/framehost/pkg/eventloop"
	"github.com/morezero/framehost/pkg/ident"
)

const managerLogPrefix = "window:manager"

// ErrNotFound is returned for ids or OS ids that are not registered.
var ErrNotFound = errors.New("window not found")

// OwnerReleaser drops every entry owned by a window. Shortcut, menu and tray
// managers implement it so closing a window cleans up after it.
type OwnerReleaser interface {
	ReleaseOwner(owner uint8) error
}

// Listener is told about registry changes after the registry lock is released.
type Listener interface {
	WindowOpened(w *Window)
	WindowClosed(id uint8)
}

// Manager is the registry of live windows. One mutex guards the id map, the
// reverse OS id map and the id counter; it is never held while calling out.
type Manager struct {
	binding Binding
	proxy   *eventloop.Proxy

	mu       sync.Mutex
	ids      *ident.Counter
	windows  map[uint8]*Window
	byOSID   map[eventloop.WindowID]uint8
	reserved map[uint8]struct{}

	hooksMu   sync.RWMutex
	releasers []OwnerReleaser
	listeners []Listener
	ipc       IPCFunc
}

// NewManager creates an empty registry.
func NewManager(binding Binding, proxy *eventloop.Proxy) *Manager {
	return &Manager{
		binding:  binding,
		proxy:    proxy,
		ids:      ident.New(),
		windows:  make(map[uint8]*Window),
		byOSID:   make(map[eventloop.WindowID]uint8),
		reserved: make(map[uint8]struct{}),
	}
}

// AddReleaser registers a collaborator to clean up on Close.
func (m *Manager) AddReleaser(r OwnerReleaser) {
	m.hooksMu.Lock()
	m.releasers = append(m.releasers, r)
	m.hooksMu.Unlock()
}

// AddListener registers a lifecycle listener.
func (m *Manager) AddListener(l Listener) {
	m.hooksMu.Lock()
	m.listeners = append(m.listeners, l)
	m.hooksMu.Unlock()
}

// SetIPCHandler sets the function that receives request bodies from every window.
func (m *Manager) SetIPCHandler(fn IPCFunc) {
	m.hooksMu.Lock()
	m.ipc = fn
	m.hooksMu.Unlock()
}

func (m *Manager) deliverIPC(osid eventloop.WindowID, body []byte) {
	m.hooksMu.RLock()
	fn := m.ipc
	m.hooksMu.RUnlock()
	if fn == nil {
		slog.Warn(fmt.Sprintf("%s - ipc from window %d dropped, no handler", managerLogPrefix, osid))
		return
	}
	fn(osid, body)
}

// Open allocates an id and creates the native window. Must run on the loop goroutine.
func (m *Manager) Open(target *eventloop.Target, cfg Config) (*Window, error) {
	m.mu.Lock()
	id, err := m.ids.Next(func(id uint8) bool {
		if _, ok := m.windows[id]; ok {
			return true
		}
		_, ok := m.reserved[id]
		return ok
	})
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("%s - allocate window id: %w", managerLogPrefix, err)
	}
	m.reserved[id] = struct{}{}
	m.mu.Unlock()

	native, err := m.binding.Create(target, CreateSpec{ID: id, Config: cfg, OnIPC: m.deliverIPC})
	if err != nil {
		m.mu.Lock()
		delete(m.reserved, id)
		m.mu.Unlock()
		return nil, fmt.Errorf("%s - create window %d: %w", managerLogPrefix, id, err)
	}

	w := &Window{
		id:     id,
		osid:   native.OSID(),
		native: native,
		ext:    m.binding.Extensions(native),
		proxy:  m.proxy,
	}

	m.mu.Lock()
	delete(m.reserved, id)
	m.windows[id] = w
	m.byOSID[w.osid] = id
	m.mu.Unlock()

	slog.Debug(fmt.Sprintf("%s - opened window %d (os id %d)", managerLogPrefix, id, w.osid))
	for _, l := range m.snapshotListeners() {
		l.WindowOpened(w)
	}
	return w, nil
}

// Close unregisters id, releases everything the window owns and tears down
// the native window.
func (m *Manager) Close(id uint8) error {
	m.mu.Lock()
	w, ok := m.windows[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%s - close %d: %w", managerLogPrefix, id, ErrNotFound)
	}
	delete(m.windows, id)
	delete(m.byOSID, w.osid)
	m.mu.Unlock()

	m.hooksMu.RLock()
	releasers := append([]OwnerReleaser(nil), m.releasers...)
	m.hooksMu.RUnlock()

	var errs []error
	for _, r := range releasers {
		if err := r.ReleaseOwner(id); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.native.Close(); err != nil {
		errs = append(errs, fmt.Errorf("%s - close native window %d: %w", managerLogPrefix, id, err))
	}

	slog.Debug(fmt.Sprintf("%s - closed window %d", managerLogPrefix, id))
	for _, l := range m.snapshotListeners() {
		l.WindowClosed(id)
	}
	return errors.Join(errs...)
}

// CloseByOSID closes the window with the given native id.
func (m *Manager) CloseByOSID(osid eventloop.WindowID) error {
	m.mu.Lock()
	id, ok := m.byOSID[osid]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s - close os id %d: %w", managerLogPrefix, osid, ErrNotFound)
	}
	return m.Close(id)
}

// Get returns the window with id.
func (m *Manager) Get(id uint8) (*Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.windows[id]
	if !ok {
		return nil, fmt.Errorf("%s - window %d: %w", managerLogPrefix, id, ErrNotFound)
	}
	return w, nil
}

// GetByOSID returns the window with the given native id.
func (m *Manager) GetByOSID(osid eventloop.WindowID) (*Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.byOSID[osid]
	if !ok {
		return nil, fmt.Errorf("%s - os id %d: %w", managerLogPrefix, osid, ErrNotFound)
	}
	return m.windows[id], nil
}

// List returns the live windows ordered by id.
func (m *Manager) List() []*Window {
	m.mu.Lock()
	out := make([]*Window, 0, len(m.windows))
	for _, w := range m.windows {
		out = append(out, w)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Len returns the number of live windows.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.windows)
}

func (m *Manager) snapshotListeners() []Listener {
	m.hooksMu.RLock()
	defer m.hooksMu.RUnlock()
	return append([]Listener(nil), m.listeners...)
}
