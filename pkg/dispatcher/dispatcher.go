package dispatcher

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/morezero/framehost/pkg/eventloop"
	"github.com/morezero/framehost/pkg/window"
)

const logPrefix = "dispatcher:dispatch"

// Runner executes tasks off the calling goroutine. workerpool.Pool satisfies it.
type Runner interface {
	Run(task func()) error
}

// MethodInfo describes one registered method.
type MethodInfo struct {
	Name       string     `json:"name"`
	Discipline Discipline `json:"discipline"`
}

// Dispatcher routes requests from windows to registered handlers.
type Dispatcher struct {
	app   App
	pool  Runner
	proxy *eventloop.Proxy

	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewDispatcher creates a Dispatcher with no methods registered.
func NewDispatcher(app App, pool Runner, proxy *eventloop.Proxy) *Dispatcher {
	return &Dispatcher{
		app:      app,
		pool:     pool,
		proxy:    proxy,
		handlers: make(map[string]Handler),
	}
}

// Register binds name to h. A later registration for the same name wins.
func (d *Dispatcher) Register(name string, h Handler) {
	d.mu.Lock()
	d.handlers[name] = h
	d.mu.Unlock()
}

// RegisterSync binds name to an inline handler.
func (d *Dispatcher) RegisterSync(name string, fn Func) {
	d.Register(name, SyncHandler(fn))
}

// RegisterPooled binds name to a worker pool handler.
func (d *Dispatcher) RegisterPooled(name string, fn Func) {
	d.Register(name, PooledHandler(fn))
}

// RegisterEvent binds name to a loop handler.
func (d *Dispatcher) RegisterEvent(name string, fn Func) {
	d.Register(name, EventHandler(fn))
}

// Lookup returns the handler registered for name.
func (d *Dispatcher) Lookup(name string) (Handler, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[name]
	return h, ok
}

// Methods returns every registered method ordered by name.
func (d *Dispatcher) Methods() []MethodInfo {
	d.mu.RLock()
	out := make([]MethodInfo, 0, len(d.handlers))
	for name, h := range d.handlers {
		out = append(out, MethodInfo{Name: name, Discipline: h.Discipline()})
	}
	d.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Dispatch decodes raw, resolves the window it came from and runs the
// handler under its discipline. Pooled and Event handlers deliver their
// response later and Dispatch returns nil once they are queued.
//
// Decode failures wrap ErrTransport and a closed origin window wraps
// window.ErrNotFound; neither delivers anything. An unknown method delivers
// an error response and returns ErrAPINotFound. A Sync handler error is
// delivered and then returned.
func (d *Dispatcher) Dispatch(origin eventloop.WindowID, raw []byte) error {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("%s - decode request: %w: %w", logPrefix, ErrTransport, err)
	}

	w, err := d.app.Windows().GetByOSID(origin)
	if err != nil {
		return fmt.Errorf("%s - %s: %w", logPrefix, req.Method, err)
	}

	h, ok := d.Lookup(req.Method)
	if !ok {
		d.deliver(w, req.Err(StatusError, ErrAPINotFound.Error()))
		return fmt.Errorf("%s - %s: %w", logPrefix, req.Method, ErrAPINotFound)
	}

	slog.Debug(fmt.Sprintf("%s - method=%s window=%d discipline=%s", logPrefix, req.Method, w.ID(), h.Discipline()))

	call := &Call{App: d.app, Window: w, Request: req, Dispatcher: d}
	switch h.Discipline() {
	case Pooled:
		err = d.pool.Run(func() {
			resp, err := d.invoke(h, call)
			if err != nil {
				slog.Warn(fmt.Sprintf("%s - %s failed: %v", logPrefix, req.Method, err))
			}
			d.deliver(w, resp)
		})
		if err != nil {
			d.deliver(w, req.Err(StatusError, err.Error()))
			return fmt.Errorf("%s - queue %s: %w", logPrefix, req.Method, err)
		}
		return nil

	case Event:
		err = d.proxy.Invoke(func(target *eventloop.Target, cf *eventloop.ControlFlow) error {
			c := *call
			c.Target, c.Control = target, cf
			resp, err := d.invoke(h, &c)
			d.deliver(w, resp)
			return err
		})
		if err != nil {
			d.deliver(w, req.Err(StatusError, err.Error()))
			return fmt.Errorf("%s - proxy %s: %w", logPrefix, req.Method, err)
		}
		return nil

	default:
		resp, err := d.invoke(h, call)
		d.deliver(w, resp)
		if err != nil {
			return fmt.Errorf("%s - %s: %w", logPrefix, req.Method, err)
		}
		return nil
	}
}

// invoke runs h and turns its result, error or panic into a Response.
func (d *Dispatcher) invoke(h Handler, c *Call) (resp Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error(fmt.Sprintf("%s - %s panicked: %v\n%s", logPrefix, c.Request.Method, r, debug.Stack()))
			err = fmt.Errorf("%s - %s panicked: %v", logPrefix, c.Request.Method, r)
			resp = c.Request.Err(StatusError, fmt.Sprint(r))
		}
	}()

	payload, err := h.Invoke(c)
	if err != nil {
		return c.Request.Err(StatusError, err.Error()), err
	}
	return c.Request.OK(payload), nil
}

func (d *Dispatcher) deliver(w *window.Window, resp Response) {
	if err := w.SendIPCCallback(resp); err != nil {
		slog.Warn(fmt.Sprintf("%s - deliver response to window %d: %v", logPrefix, w.ID(), err))
	}
}
