package dispatcher

import (
	"github.com/morezero/framehost/pkg/eventloop"
	"github.com/morezero/framehost/pkg/launch"
	"github.com/morezero/framehost/pkg/menu"
	"github.com/morezero/framehost/pkg/shortcut"
	"github.com/morezero/framehost/pkg/tray"
	"github.com/morezero/framehost/pkg/window"
)

// Discipline says where a handler body runs.
type Discipline int

const (
	// Sync handlers run inline on the dispatching goroutine and must not block.
	Sync Discipline = iota + 1
	// Pooled handlers run on a worker pool goroutine and may block.
	Pooled
	// Event handlers run on the loop goroutine with Target and ControlFlow.
	Event
)

func (d Discipline) String() string {
	switch d {
	case Sync:
		return "sync"
	case Pooled:
		return "pooled"
	case Event:
		return "event"
	default:
		return "unknown"
	}
}

// MarshalText renders the discipline name in JSON.
func (d Discipline) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// App is the application handle given to every handler.
type App interface {
	Windows() *window.Manager
	Shortcuts() *shortcut.Manager
	Menus() *menu.Manager
	Trays() *tray.Manager
	Launch() *launch.Info
	// Shutdown runs the application shutdown sequence. Loop goroutine only.
	Shutdown(cf *eventloop.ControlFlow)
}

// Call is everything a handler invocation sees. Target and Control are only
// set for Event handlers.
type Call struct {
	App        App
	Window     *window.Window
	Request    Request
	Dispatcher *Dispatcher
	Target     *eventloop.Target
	Control    *eventloop.ControlFlow
}

// Args returns the request arguments.
func (c *Call) Args() Args {
	return c.Request.Args
}

// Func is a handler body. The returned value becomes the response payload.
type Func func(c *Call) (any, error)

// Handler is a registered method body bound to a discipline.
type Handler interface {
	Discipline() Discipline
	Invoke(c *Call) (any, error)
}

// SyncHandler runs inline.
type SyncHandler Func

func (SyncHandler) Discipline() Discipline          { return Sync }
func (h SyncHandler) Invoke(c *Call) (any, error) { return h(c) }

// PooledHandler runs on the worker pool.
type PooledHandler Func

func (PooledHandler) Discipline() Discipline          { return Pooled }
func (h PooledHandler) Invoke(c *Call) (any, error) { return h(c) }

// EventHandler runs on the loop goroutine.
type EventHandler Func

func (EventHandler) Discipline() Discipline          { return Event }
func (h EventHandler) Invoke(c *Call) (any, error) { return h(c) }
