// Package runtime wires the window, dispatch and event loop components into
// a running application.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/framehost/internal/config"
	"github.com/morezero/framehost/pkg/api"
	"github.com/morezero/framehost/pkg/commsutil"
	"github.com/morezero/framehost/pkg/dispatcher"
	"github.com/morezero/framehost/pkg/eventloop"
	"github.com/morezero/framehost/pkg/events"
	"github.com/morezero/framehost/pkg/launch"
	"github.com/morezero/framehost/pkg/menu"
	"github.com/morezero/framehost/pkg/shortcut"
	"github.com/morezero/framehost/pkg/tray"
	"github.com/morezero/framehost/pkg/window"
	"github.com/morezero/framehost/pkg/workerpool"
)

const logPrefix = "runtime:runtime"

// ErrNoNativeBinding is returned when a GUI run is requested but this build
// only carries the headless binding.
var ErrNoNativeBinding = errors.New("no native window binding in this build")

// Params are the collaborators of a Runtime. Nil builders and registrars
// fall back to no-ops; a nil Publisher disables lifecycle events.
type Params struct {
	Config      *config.Config
	Info        *launch.Info
	Binding     window.Binding
	Registrar   shortcut.Registrar
	MenuBuilder menu.Builder
	TrayBuilder tray.Builder
	Publisher   events.EventPublisher
}

// Runtime owns every registry and the loop. It is the dispatcher.App handed
// to handlers.
type Runtime struct {
	cfg       *config.Config
	info      *launch.Info
	loop      *eventloop.Loop
	pool      *workerpool.Pool
	windows   *window.Manager
	shortcuts *shortcut.Manager
	menus     *menu.Manager
	trays     *tray.Manager
	disp      *dispatcher.Dispatcher
	publisher events.EventPublisher
	control   *ControlClient

	mu          sync.Mutex
	lastFocused uint8
	initErr     error
}

var _ dispatcher.App = (*Runtime)(nil)

// New builds a Runtime. Nothing runs until Run.
func New(p Params) (*Runtime, error) {
	if p.Config == nil || p.Info == nil || p.Binding == nil {
		return nil, fmt.Errorf("%s - config, launch info and binding are required", logPrefix)
	}
	workers := p.Config.Workers
	if p.Info.Options.Workers > 0 {
		workers = p.Info.Options.Workers
	}
	publisher := p.Publisher
	if publisher == nil {
		publisher = &events.NoOpPublisher{}
	}

	rt := &Runtime{
		cfg:       p.Config,
		info:      p.Info,
		loop:      eventloop.New(),
		pool:      workerpool.New(workers),
		shortcuts: shortcut.NewManager(p.Registrar),
		menus:     menu.NewManager(p.MenuBuilder),
		trays:     tray.NewManager(p.TrayBuilder),
		publisher: publisher,
		control:   NewControlClient(p.Info.Options.Host, p.Info.Options.Port, p.Config.ShutdownPath, p.Config.ControlTimeout),
	}
	rt.windows = window.NewManager(p.Binding, rt.loop.Proxy())
	rt.windows.AddReleaser(rt.shortcuts)
	rt.windows.AddReleaser(rt.menus)
	rt.windows.AddReleaser(rt.trays)
	rt.windows.AddListener(&events.WindowListener{App: p.Info.IDName, Publisher: publisher})

	rt.disp = dispatcher.NewDispatcher(rt, rt.pool, rt.loop.Proxy())
	api.Register(rt.disp)
	rt.windows.SetIPCHandler(rt.handleIPC)
	return rt, nil
}

func (rt *Runtime) Windows() *window.Manager     { return rt.windows }
func (rt *Runtime) Shortcuts() *shortcut.Manager { return rt.shortcuts }
func (rt *Runtime) Menus() *menu.Manager         { return rt.menus }
func (rt *Runtime) Trays() *tray.Manager         { return rt.trays }
func (rt *Runtime) Launch() *launch.Info         { return rt.info }

// Dispatcher exposes the method table, mostly for tests and embedding.
func (rt *Runtime) Dispatcher() *dispatcher.Dispatcher { return rt.disp }

// Proxy returns the loop proxy native bindings post events through.
func (rt *Runtime) Proxy() *eventloop.Proxy { return rt.loop.Proxy() }

// LastFocused returns the id of the most recently focused window.
func (rt *Runtime) LastFocused() uint8 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.lastFocused
}

func (rt *Runtime) setLastFocused(id uint8) {
	rt.mu.Lock()
	rt.lastFocused = id
	rt.mu.Unlock()
}

func (rt *Runtime) handleIPC(osid eventloop.WindowID, body []byte) {
	if err := rt.disp.Dispatch(osid, body); err != nil {
		switch {
		case errors.Is(err, dispatcher.ErrTransport):
			slog.Warn(fmt.Sprintf("%s - dropped malformed request from window %d: %v", logPrefix, osid, err))
		case errors.Is(err, window.ErrNotFound):
			slog.Debug(fmt.Sprintf("%s - request from unknown window %d", logPrefix, osid))
		default:
			slog.Debug(fmt.Sprintf("%s - dispatch: %v", logPrefix, err))
		}
	}
}

// Run drives the loop on the calling goroutine until the application exits
// and returns the first startup error, if any.
func (rt *Runtime) Run() error {
	defer rt.pool.Close()
	if err := rt.loop.Run(&bridge{rt: rt}); err != nil {
		return fmt.Errorf("%s - loop: %w", logPrefix, err)
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.initErr
}

// start opens the main window and installs launch-time shortcuts, menus and
// the tray. Loop goroutine only.
func (rt *Runtime) start(target *eventloop.Target) error {
	opts := rt.info.Options
	main, err := rt.windows.Open(target, opts.Window)
	if err != nil {
		return fmt.Errorf("%s - failed to open main window: %w", logPrefix, err)
	}
	slog.Info(fmt.Sprintf("%s - Opened main window %d", logPrefix, main.ID()))

	if err := rt.shortcuts.RegisterAll(main.ID(), opts.Shortcuts); err != nil {
		return fmt.Errorf("%s - failed to register launch shortcuts: %w", logPrefix, err)
	}

	var menuItems []uint16
	if rt.info.WantsWindowMenu() {
		if menuItems, err = rt.menus.Register(main.ID(), *opts.WindowMenu); err != nil {
			return fmt.Errorf("%s - failed to register window menu: %w", logPrefix, err)
		}
	}
	if rt.info.WantsTray() {
		if _, err := rt.trays.Create(main.ID(), *opts.SystemTray, menuItems); err != nil {
			return fmt.Errorf("%s - failed to create tray: %w", logPrefix, err)
		}
	}
	return nil
}

func (rt *Runtime) fail(err error, cf *eventloop.ControlFlow) {
	slog.Error(fmt.Sprintf("%s - %v", logPrefix, err))
	rt.mu.Lock()
	if rt.initErr == nil {
		rt.initErr = err
	}
	rt.mu.Unlock()
	cf.Exit()
}

// Shutdown notifies the control endpoint, tears every window down and exits
// the loop. Loop goroutine only.
func (rt *Runtime) Shutdown(cf *eventloop.ControlFlow) {
	slog.Info(fmt.Sprintf("%s - Shutting down", logPrefix))
	if err := rt.control.NotifyShutdown(context.Background()); err != nil {
		slog.Warn(fmt.Sprintf("%s - control endpoint: %v", logPrefix, err))
	}
	rt.teardown("shutdown")
	cf.Exit()
}

// shutdownRequested is Shutdown without the control endpoint; the host
// asked for it and already knows.
func (rt *Runtime) shutdownRequested(reason string, cf *eventloop.ControlFlow) {
	slog.Info(fmt.Sprintf("%s - Shutdown requested: %s", logPrefix, reason))
	rt.teardown(reason)
	cf.Exit()
}

func (rt *Runtime) teardown(reason string) {
	for _, w := range rt.windows.List() {
		if err := rt.windows.Close(w.ID()); err != nil {
			slog.Debug(fmt.Sprintf("%s - close window %d: %v", logPrefix, w.ID(), err))
		}
	}
	if err := rt.trays.DestroyAll(); err != nil {
		slog.Warn(fmt.Sprintf("%s - destroy trays: %v", logPrefix, err))
	}
	event := events.NewLifecycleEvent(rt.info.IDName, events.KindAppShutdown, nil, map[string]any{"reason": reason})
	if err := rt.publisher.PublishLifecycle(context.Background(), event); err != nil {
		slog.Warn(fmt.Sprintf("%s - publish shutdown: %v", logPrefix, err))
	}
}

// Run loads configuration and launch options, starts the optional host
// bridge and resource watcher, and blocks on the loop.
func Run(args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.Headless {
		return fmt.Errorf("%s - %w (set FRAME_HEADLESS=true)", logPrefix, ErrNoNativeBinding)
	}

	info, err := launch.Load(args, cfg.LaunchFile)
	if err != nil {
		return fmt.Errorf("%s - failed to load launch options: %w", logPrefix, err)
	}
	slog.Info(fmt.Sprintf("%s - Starting %s (runtime %s)", logPrefix, info.IDName, launch.RuntimeVersion))

	params := Params{Config: cfg, Info: info, Binding: window.NewHeadlessBinding()}

	var nc *comms.Conn
	if cfg.BridgeEnabled() {
		if nc, err = commsutil.Connect(cfg.COMMSURL, cfg.COMMSName); err != nil {
			return fmt.Errorf("%s - failed to connect host bridge: %w", logPrefix, err)
		}
		defer nc.Drain()
		params.Publisher = events.NewCommsPublisher(nc, &events.CommsPublisherOpts{Prefix: cfg.SubjectPrefix})
	}

	rt, err := New(params)
	if err != nil {
		return err
	}
	if nc != nil {
		hb, err := StartHostBridge(nc, rt, cfg.SubjectPrefix)
		if err != nil {
			return err
		}
		defer hb.Close()
	}
	return runWithSignals(cfg, rt)
}

func runWithSignals(cfg *config.Config, rt *Runtime) error {
	if cfg.WatchResources && rt.info.Options.DebugResource != "" {
		w, err := WatchResources(rt.info.Options.DebugResource, rt.Proxy(), rt.windows)
		if err != nil {
			slog.Warn(fmt.Sprintf("%s - resource watcher disabled: %v", logPrefix, err))
		} else {
			defer w.Close()
		}
	}

	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigCh)
		close(done)
	}()
	go func() {
		select {
		case sig := <-sigCh:
			slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))
			_ = rt.Proxy().Send(eventloop.ShutdownRequested{Reason: sig.String()})
		case <-done:
		}
	}()

	err := rt.Run()
	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return err
}
