package eventloop

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// recordingHandler runs Invoke commands and records everything else.
type recordingHandler struct {
	mu       sync.Mutex
	initTick uint64
	inits    int
	seen     []Command
}

func (h *recordingHandler) Init(target *Target, _ *ControlFlow) {
	h.inits++
	h.initTick = target.Tick()
}

func (h *recordingHandler) Handle(cmd Command, target *Target, cf *ControlFlow) {
	h.mu.Lock()
	h.seen = append(h.seen, cmd)
	h.mu.Unlock()
	if inv, ok := cmd.(Invoke); ok {
		if err := inv.Fn(target, cf); err != nil {
			cf.Exit()
		}
	}
}

func runAsync(t *testing.T, l *Loop, h Handler) chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- l.Run(h) }()
	return done
}

func waitDone(t *testing.T, done chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("eventloop:loop_test - Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("eventloop:loop_test - timeout waiting for loop exit")
	}
}

func TestLoop_InitThenFIFO(t *testing.T) {
	l := New()
	h := &recordingHandler{}
	var order []int

	for i := 1; i <= 3; i++ {
		i := i
		if err := l.Proxy().Invoke(func(_ *Target, _ *ControlFlow) error {
			order = append(order, i)
			return nil
		}); err != nil {
			t.Fatalf("eventloop:loop_test - Invoke: %v", err)
		}
	}
	if err := l.Proxy().Invoke(func(_ *Target, cf *ControlFlow) error {
		cf.Exit()
		return nil
	}); err != nil {
		t.Fatalf("eventloop:loop_test - Invoke exit: %v", err)
	}

	waitDone(t, runAsync(t, l, h))

	if h.inits != 1 {
		t.Errorf("eventloop:loop_test - inits = %d, want 1", h.inits)
	}
	if h.initTick != 0 {
		t.Errorf("eventloop:loop_test - init tick = %d, want 0", h.initTick)
	}
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("eventloop:loop_test - order = %v, want [1 2 3]", order)
	}
}

func TestLoop_SelfProxyDoesNotDeadlock(t *testing.T) {
	l := New()
	h := &recordingHandler{}
	var reached bool

	_ = l.Proxy().Invoke(func(target *Target, _ *ControlFlow) error {
		// Proxying from inside the loop must not block.
		return target.Proxy().Invoke(func(_ *Target, cf *ControlFlow) error {
			reached = true
			cf.Exit()
			return nil
		})
	})

	waitDone(t, runAsync(t, l, h))
	if !reached {
		t.Error("eventloop:loop_test - nested invoke never ran")
	}
}

func TestLoop_SendAfterExit(t *testing.T) {
	l := New()
	_ = l.Proxy().Invoke(func(_ *Target, cf *ControlFlow) error {
		cf.Exit()
		return nil
	})
	waitDone(t, runAsync(t, l, &recordingHandler{}))

	err := l.Proxy().Send(ShutdownRequested{})
	if !errors.Is(err, ErrLoopClosed) {
		t.Errorf("eventloop:loop_test - err = %v, want ErrLoopClosed", err)
	}
}

func TestLoop_RunTwice(t *testing.T) {
	l := New()
	_ = l.Proxy().Invoke(func(_ *Target, cf *ControlFlow) error {
		cf.Exit()
		return nil
	})
	waitDone(t, runAsync(t, l, &recordingHandler{}))

	if err := l.Run(&recordingHandler{}); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("eventloop:loop_test - err = %v, want ErrAlreadyRunning", err)
	}
}

func TestLoop_ConcurrentProducers(t *testing.T) {
	l := New()
	h := &recordingHandler{}
	done := runAsync(t, l, h)

	const producers, perProducer = 8, 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	count := 0
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				_ = l.Proxy().Invoke(func(_ *Target, _ *ControlFlow) error {
					mu.Lock()
					count++
					mu.Unlock()
					return nil
				})
			}
		}()
	}
	wg.Wait()
	_ = l.Proxy().Invoke(func(_ *Target, cf *ControlFlow) error {
		cf.Exit()
		return nil
	})
	waitDone(t, done)

	if count != producers*perProducer {
		t.Errorf("eventloop:loop_test - count = %d, want %d", count, producers*perProducer)
	}
}

func TestLoop_NonInvokeCommandsReachHandler(t *testing.T) {
	l := New()
	h := &recordingHandler{}
	_ = l.Proxy().Send(MenuActivated{Item: 3})
	_ = l.Proxy().Send(WindowEvent{Window: 9, Kind: WindowFocused, Focused: true})
	_ = l.Proxy().Invoke(func(_ *Target, cf *ControlFlow) error {
		cf.Exit()
		return nil
	})
	waitDone(t, runAsync(t, l, h))

	if len(h.seen) != 3 {
		t.Fatalf("eventloop:loop_test - seen %d commands, want 3", len(h.seen))
	}
	if m, ok := h.seen[0].(MenuActivated); !ok || m.Item != 3 {
		t.Errorf("eventloop:loop_test - seen[0] = %#v, want MenuActivated{3}", h.seen[0])
	}
	if w, ok := h.seen[1].(WindowEvent); !ok || w.Kind != WindowFocused {
		t.Errorf("eventloop:loop_test - seen[1] = %#v, want focused WindowEvent", h.seen[1])
	}
}

func TestWindowEventKind_String(t *testing.T) {
	if WindowCloseRequested.String() != "closeRequested" {
		t.Errorf("eventloop:loop_test - String() = %q, want %q", WindowCloseRequested.String(), "closeRequested")
	}
	if WindowEventKind(99).String() != "unknown" {
		t.Errorf("eventloop:loop_test - String() = %q, want unknown", WindowEventKind(99).String())
	}
}
