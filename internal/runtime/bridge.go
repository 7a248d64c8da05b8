package runtime

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/morezero/framehost/pkg/eventloop"
	"github.com/morezero/framehost/pkg/window"
)

const bridgeLogPrefix = "runtime:bridge"

// bridge is the loop handler. Every branch logs and absorbs its errors; only
// ControlFlow ends the loop.
type bridge struct {
	rt *Runtime
}

func (b *bridge) Init(target *eventloop.Target, cf *eventloop.ControlFlow) {
	if err := b.rt.start(target); err != nil {
		b.rt.fail(err, cf)
	}
}

func (b *bridge) Handle(cmd eventloop.Command, target *eventloop.Target, cf *eventloop.ControlFlow) {
	switch c := cmd.(type) {
	case eventloop.Invoke:
		if err := c.Fn(target, cf); err != nil {
			slog.Warn(fmt.Sprintf("%s - invoke: %v", bridgeLogPrefix, err))
		}
	case eventloop.WindowEvent:
		b.windowEvent(c, cf)
	case eventloop.MenuActivated:
		b.menuActivated(c)
	case eventloop.ShortcutActivated:
		b.shortcutActivated(c)
	case eventloop.ShutdownRequested:
		reason := c.Reason
		if reason == "" {
			reason = "requested"
		}
		b.rt.shutdownRequested(reason, cf)
	default:
		slog.Warn(fmt.Sprintf("%s - unhandled command %T", bridgeLogPrefix, cmd))
	}
}

func (b *bridge) windowEvent(ev eventloop.WindowEvent, cf *eventloop.ControlFlow) {
	w, err := b.rt.windows.GetByOSID(ev.Window)
	if err != nil {
		// Stale events for windows already gone are expected.
		slog.Debug(fmt.Sprintf("%s - %s for unknown window %d", bridgeLogPrefix, ev.Kind, ev.Window))
		return
	}

	switch ev.Kind {
	case eventloop.WindowDestroyed:
		if w.ID() == 0 {
			b.rt.Shutdown(cf)
			return
		}
		if err := b.rt.windows.Close(w.ID()); err != nil {
			slog.Debug(fmt.Sprintf("%s - purge window %d: %v", bridgeLogPrefix, w.ID(), err))
		}
	case eventloop.WindowFocused:
		if ev.Focused {
			b.rt.setLastFocused(w.ID())
		}
		b.emit(w, window.EventFocused, ev.Focused)
	case eventloop.WindowThemeChanged:
		b.emit(w, window.EventThemeChanged, ev.Theme)
	case eventloop.WindowScaleFactorChanged:
		b.emit(w, window.EventScaleFactorChanged, map[string]any{
			"scaleFactor": ev.ScaleFactor,
			"width":       ev.Width,
			"height":      ev.Height,
		})
	case eventloop.WindowCloseRequested:
		switch {
		case w.BlockCloseRequested():
			b.emit(w, window.EventCloseRequested, nil)
		case w.ID() == 0:
			b.rt.Shutdown(cf)
		default:
			if err := b.rt.windows.Close(w.ID()); err != nil {
				slog.Warn(fmt.Sprintf("%s - close window %d: %v", bridgeLogPrefix, w.ID(), err))
			}
		}
	default:
		slog.Debug(fmt.Sprintf("%s - ignored window event %s", bridgeLogPrefix, ev.Kind))
	}
}

func (b *bridge) emit(w *window.Window, name string, payload any) {
	if err := w.SendIPCEvent(name, payload); err != nil && !errors.Is(err, eventloop.ErrLoopClosed) {
		slog.Warn(fmt.Sprintf("%s - emit %s to window %d: %v", bridgeLogPrefix, name, w.ID(), err))
	}
}

// menuActivated posts the item notification to the tray owner when the item
// belongs to a tray, otherwise to the last focused window.
func (b *bridge) menuActivated(ev eventloop.MenuActivated) {
	item, err := b.rt.menus.Get(ev.Item)
	if err != nil {
		slog.Debug(fmt.Sprintf("%s - activation of unknown menu item %d", bridgeLogPrefix, ev.Item))
		return
	}
	payload, ok := item.Notification()
	if !ok {
		return
	}

	target, isTray := b.rt.trays.OwnerOfMenu(item.ID)
	if !isTray {
		target = b.rt.LastFocused()
	}
	w, err := b.rt.windows.Get(target)
	if err != nil {
		slog.Debug(fmt.Sprintf("%s - menu item %d has no live target window %d", bridgeLogPrefix, item.ID, target))
		return
	}
	if err := w.PostMessage(payload); err != nil {
		slog.Warn(fmt.Sprintf("%s - post menu item %d: %v", bridgeLogPrefix, item.ID, err))
	}
}

func (b *bridge) shortcutActivated(ev eventloop.ShortcutActivated) {
	entry, err := b.rt.shortcuts.Get(ev.ID)
	if err != nil {
		slog.Debug(fmt.Sprintf("%s - activation of unknown shortcut %d", bridgeLogPrefix, ev.ID))
		return
	}
	w, err := b.rt.windows.Get(entry.Owner)
	if err != nil {
		slog.Debug(fmt.Sprintf("%s - shortcut %d owner %d is gone", bridgeLogPrefix, ev.ID, entry.Owner))
		return
	}
	b.emit(w, window.EventShortcut, ev.ID)
}
