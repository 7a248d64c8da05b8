package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/morezero/framehost/pkg/api"
	"github.com/morezero/framehost/pkg/commsutil"
	"github.com/morezero/framehost/pkg/eventloop"
	"github.com/morezero/framehost/pkg/window"
)

const hostBridgeLogPrefix = "runtime:hostbridge"

// loopReplyTimeout bounds how long a COMMS reply waits on the event loop.
const loopReplyTimeout = 5 * time.Second

// EmitRequest is the body of <prefix>.<app>.emit.
type EmitRequest struct {
	Window  uint8  `json:"window"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// HostBridge serves host process requests over COMMS.
type HostBridge struct {
	subs []*comms.Subscription
}

// StartHostBridge subscribes the emit, windows and shutdown subjects for rt.
func StartHostBridge(nc *comms.Conn, rt *Runtime, prefix string) (*HostBridge, error) {
	app := rt.info.IDName
	hb := &HostBridge{}
	handlers := []struct {
		suffix string
		fn     func(rt *Runtime, data []byte) (any, error)
	}{
		{commsutil.SuffixEmit, handleEmit},
		{commsutil.SuffixWindows, handleWindows},
		{commsutil.SuffixShutdown, handleShutdown},
	}
	for _, h := range handlers {
		subject := commsutil.BuildAppSubject(prefix, app, h.suffix)
		fn := h.fn
		sub, err := nc.Subscribe(subject, func(msg *comms.Msg) {
			data, err := fn(rt, msg.Data)
			hb.respond(msg, data, err)
		})
		if err != nil {
			hb.Close()
			return nil, fmt.Errorf("%s - failed to subscribe to %s: %w", hostBridgeLogPrefix, subject, err)
		}
		hb.subs = append(hb.subs, sub)
		slog.Info(fmt.Sprintf("%s - Subscribed to %s", hostBridgeLogPrefix, subject))
	}
	return hb, nil
}

// Close unsubscribes every subject.
func (hb *HostBridge) Close() {
	for _, sub := range hb.subs {
		if err := sub.Unsubscribe(); err != nil && !errors.Is(err, comms.ErrConnectionClosed) {
			slog.Warn(fmt.Sprintf("%s - unsubscribe %s: %v", hostBridgeLogPrefix, sub.Subject, err))
		}
	}
	hb.subs = nil
}

func (hb *HostBridge) respond(msg *comms.Msg, data any, err error) {
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - %s: %v", hostBridgeLogPrefix, msg.Subject, err))
	}
	if rerr := commsutil.Respond(msg, data, err); rerr != nil {
		slog.Error(fmt.Sprintf("%s - %v", hostBridgeLogPrefix, rerr))
	}
}

// onLoop runs fn on the loop goroutine and waits for its result. Anything
// that touches native windows from a COMMS callback goes through here.
func onLoop(rt *Runtime, what string, fn func() (any, error)) (any, error) {
	type result struct {
		data any
		err  error
	}
	done := make(chan result, 1)
	err := rt.Proxy().Invoke(func(*eventloop.Target, *eventloop.ControlFlow) error {
		data, err := fn()
		done <- result{data, err}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s - %s: %w", hostBridgeLogPrefix, what, err)
	}
	select {
	case r := <-done:
		return r.data, r.err
	case <-time.After(loopReplyTimeout):
		return nil, fmt.Errorf("%s - %s: event loop did not respond", hostBridgeLogPrefix, what)
	}
}

// handleEmit evaluates the emit script directly in the target webview, so
// the reply carries the evaluation result.
func handleEmit(rt *Runtime, data []byte) (any, error) {
	var req EmitRequest
	if err := commsutil.DecodePayload(data, &req); err != nil {
		return nil, err
	}
	if req.Event == "" {
		return nil, fmt.Errorf("%s - emit: event is required", hostBridgeLogPrefix)
	}
	script, err := window.EmitScript(req.Event, req.Payload)
	if err != nil {
		return nil, err
	}
	return onLoop(rt, "emit", func() (any, error) {
		w, err := rt.windows.Get(req.Window)
		if err != nil {
			return nil, err
		}
		return nil, w.Native().EvaluateScript(script)
	})
}

func handleWindows(rt *Runtime, _ []byte) (any, error) {
	return onLoop(rt, "windows", func() (any, error) {
		return api.Summaries(rt.windows), nil
	})
}

func handleShutdown(rt *Runtime, data []byte) (any, error) {
	reason := "host"
	var body struct {
		Reason string `json:"reason"`
	}
	if len(data) > 0 && commsutil.DecodePayload(data, &body) == nil && body.Reason != "" {
		reason = body.Reason
	}
	return nil, rt.Proxy().Send(eventloop.ShutdownRequested{Reason: reason})
}
