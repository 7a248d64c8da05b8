package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/morezero/framehost/pkg/window"
)

const publisherLogPrefix = "events:publisher"

// EventPublisher is the interface for publishing lifecycle events.
type EventPublisher interface {
	PublishLifecycle(ctx context.Context, event *LifecycleEvent) error
}

// NoOpPublisher is an EventPublisher that does nothing (host bridge disabled).
type NoOpPublisher struct{}

// PublishLifecycle is a no-op.
func (p *NoOpPublisher) PublishLifecycle(_ context.Context, _ *LifecycleEvent) error {
	return nil
}

// CallbackPublisher is an EventPublisher that calls a callback function (for testing).
type CallbackPublisher struct {
	callback func(ctx context.Context, event *LifecycleEvent) error
}

// NewCallbackPublisher creates a new CallbackPublisher.
func NewCallbackPublisher(cb func(ctx context.Context, event *LifecycleEvent) error) *CallbackPublisher {
	return &CallbackPublisher{callback: cb}
}

// PublishLifecycle calls the callback.
func (p *CallbackPublisher) PublishLifecycle(ctx context.Context, event *LifecycleEvent) error {
	return p.callback(ctx, event)
}

// WindowListener turns window manager notifications into lifecycle events.
// Publish failures are logged; window bookkeeping never depends on them.
type WindowListener struct {
	App       string
	Publisher EventPublisher
}

var _ window.Listener = (*WindowListener)(nil)

// WindowOpened publishes window.opened with the window title.
func (l *WindowListener) WindowOpened(w *window.Window) {
	id := w.ID()
	payload := map[string]any{"title": w.Native().Title()}
	l.publish(NewLifecycleEvent(l.App, KindWindowOpened, &id, payload))
}

// WindowClosed publishes window.closed.
func (l *WindowListener) WindowClosed(id uint8) {
	l.publish(NewLifecycleEvent(l.App, KindWindowClosed, &id, nil))
}

func (l *WindowListener) publish(event *LifecycleEvent) {
	if err := l.Publisher.PublishLifecycle(context.Background(), event); err != nil {
		slog.Warn(fmt.Sprintf("%s - failed to publish %s: %v", publisherLogPrefix, event.Kind, err))
	}
}
