// Package eventloop is the single-consumer loop that owns all native window,
// menu and tray state. Other goroutines reach it only by sending commands
// through a Proxy.
package eventloop

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
)

const logPrefix = "eventloop:loop"

var (
	// ErrLoopClosed is returned by Proxy.Send once the loop has exited.
	ErrLoopClosed = errors.New("event loop closed")
	// ErrAlreadyRunning is returned when Run is called twice.
	ErrAlreadyRunning = errors.New("event loop already running")
)

// Handler consumes loop events. All calls happen on the goroutine that called Run.
type Handler interface {
	Init(target *Target, cf *ControlFlow)
	Handle(cmd Command, target *Target, cf *ControlFlow)
}

// ControlFlow lets loop-side code request termination.
type ControlFlow struct {
	exit bool
}

// Exit makes Run return after the current command.
func (c *ControlFlow) Exit() {
	c.exit = true
}

// ShouldExit reports whether Exit was called.
func (c *ControlFlow) ShouldExit() bool {
	return c.exit
}

// Target is the loop-side handle passed to callbacks. It is only valid on the
// loop goroutine.
type Target struct {
	loop *Loop
}

// Proxy returns a proxy into the owning loop.
func (t *Target) Proxy() *Proxy {
	return t.loop.Proxy()
}

// Tick is the sequence number of the command being handled, 0 during Init.
func (t *Target) Tick() uint64 {
	return t.loop.ticks.Load()
}

// Proxy submits commands to a loop from any goroutine.
type Proxy struct {
	q *queue
}

// Send enqueues cmd without blocking.
func (p *Proxy) Send(cmd Command) error {
	if err := p.q.push(cmd); err != nil {
		return fmt.Errorf("%s - send %T: %w", logPrefix, cmd, err)
	}
	return nil
}

// Invoke enqueues fn to run on the loop goroutine.
func (p *Proxy) Invoke(fn Callback) error {
	return p.Send(Invoke{Fn: fn})
}

// Loop is the native event loop stand-in: an unbounded command queue drained
// by exactly one goroutine.
type Loop struct {
	q       *queue
	proxy   *Proxy
	running atomic.Bool
	ticks   atomic.Uint64
}

// New creates a loop that is not yet running. Commands sent before Run are kept.
func New() *Loop {
	q := newQueue()
	return &Loop{q: q, proxy: &Proxy{q: q}}
}

// Proxy returns the loop's proxy.
func (l *Loop) Proxy() *Proxy {
	return l.proxy
}

// Pending reports how many commands are waiting.
func (l *Loop) Pending() int {
	return l.q.len()
}

// Run drives h until a callback calls ControlFlow.Exit. It must be called
// from the goroutine that owns native UI state (the locked main thread).
func (l *Loop) Run(h Handler) error {
	if !l.running.CompareAndSwap(false, true) {
		return fmt.Errorf("%s - %w", logPrefix, ErrAlreadyRunning)
	}

	target := &Target{loop: l}
	cf := &ControlFlow{}

	h.Init(target, cf)
	for !cf.ShouldExit() {
		cmd := l.q.wait()
		l.ticks.Add(1)
		h.Handle(cmd, target, cf)
	}

	if dropped := l.q.close(); dropped > 0 {
		slog.Debug(fmt.Sprintf("%s - dropped %d pending commands on exit", logPrefix, dropped))
	}
	return nil
}
