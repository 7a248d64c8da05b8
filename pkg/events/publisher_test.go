package events

import (
	"context"
	"errors"
	"testing"

	"github.com/morezero/framehost/pkg/eventloop"
	"github.com/morezero/framehost/pkg/window"
)

func TestNoOpPublisher(t *testing.T) {
	pub := &NoOpPublisher{}
	err := pub.PublishLifecycle(context.Background(), NewLifecycleEvent("demo", KindAppShutdown, nil, nil))
	if err != nil {
		t.Errorf("events:publisher_test - expected no error, got %v", err)
	}
}

func TestCallbackPublisher(t *testing.T) {
	var captured *LifecycleEvent
	pub := NewCallbackPublisher(func(_ context.Context, event *LifecycleEvent) error {
		captured = event
		return nil
	})

	id := uint8(3)
	if err := pub.PublishLifecycle(context.Background(), NewLifecycleEvent("demo", KindWindowClosed, &id, nil)); err != nil {
		t.Errorf("events:publisher_test - expected no error, got %v", err)
	}
	if captured == nil {
		t.Fatal("events:publisher_test - expected callback to be called")
	}
	if captured.Kind != KindWindowClosed || captured.WindowID == nil || *captured.WindowID != 3 {
		t.Errorf("events:publisher_test - captured = %+v", captured)
	}
	if captured.Timestamp == "" {
		t.Error("events:publisher_test - timestamp not set")
	}
}

func TestWindowListener(t *testing.T) {
	var got []*LifecycleEvent
	listener := &WindowListener{
		App: "demo",
		Publisher: NewCallbackPublisher(func(_ context.Context, event *LifecycleEvent) error {
			got = append(got, event)
			return errors.New("ignored")
		}),
	}

	loop := eventloop.New()
	m := window.NewManager(window.NewHeadlessBinding(), loop.Proxy())
	m.AddListener(listener)

	w, err := m.Open(nil, window.Config{Title: "main"})
	if err != nil {
		t.Fatalf("events:publisher_test - Open: %v", err)
	}
	if err := m.Close(w.ID()); err != nil {
		t.Fatalf("events:publisher_test - Close: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("events:publisher_test - events = %d, want 2", len(got))
	}
	if got[0].Kind != KindWindowOpened || got[1].Kind != KindWindowClosed {
		t.Errorf("events:publisher_test - kinds = %s, %s", got[0].Kind, got[1].Kind)
	}
	payload, _ := got[0].Payload.(map[string]any)
	if payload["title"] != "main" {
		t.Errorf("events:publisher_test - opened payload = %v", got[0].Payload)
	}
}
