package workerpool

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestNew_DefaultSize(t *testing.T) {
	p := New(0)
	defer p.Close()
	if p.Size() != DefaultWorkers {
		t.Errorf("workerpool:pool_test - Size() = %d, want %d", p.Size(), DefaultWorkers)
	}
}

func TestRun_ExecutesAll(t *testing.T) {
	p := New(3)
	defer p.Close()

	const n = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	sum := 0
	wg.Add(n)
	for i := 1; i <= n; i++ {
		i := i
		if err := p.Run(func() {
			defer wg.Done()
			mu.Lock()
			sum += i
			mu.Unlock()
		}); err != nil {
			t.Fatalf("workerpool:pool_test - Run: %v", err)
		}
	}
	waitGroup(t, &wg)

	if sum != n*(n+1)/2 {
		t.Errorf("workerpool:pool_test - sum = %d, want %d", sum, n*(n+1)/2)
	}
}

func TestRun_DoesNotBlockWhenWorkersBusy(t *testing.T) {
	p := New(1)
	release := make(chan struct{})
	started := make(chan struct{})
	_ = p.Run(func() {
		close(started)
		<-release
	})
	<-started

	// The only worker is blocked; further Run calls must still return at once.
	returned := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			_ = p.Run(func() {})
		}
		close(returned)
	}()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("workerpool:pool_test - Run blocked while workers were busy")
	}
	if q := p.Stats().Queued; q != 50 {
		t.Errorf("workerpool:pool_test - Queued = %d, want 50", q)
	}
	close(release)
	p.Close()
}

func TestRun_FIFOWithSingleWorker(t *testing.T) {
	p := New(1)
	defer p.Close()

	var wg sync.WaitGroup
	var order []int
	wg.Add(5)
	for i := 0; i < 5; i++ {
		i := i
		_ = p.Run(func() {
			defer wg.Done()
			order = append(order, i)
		})
	}
	waitGroup(t, &wg)

	for i, v := range order {
		if v != i {
			t.Fatalf("workerpool:pool_test - order = %v, want ascending", order)
		}
	}
}

func TestRun_PanicDoesNotKillWorker(t *testing.T) {
	p := New(1)
	defer p.Close()

	_ = p.Run(func() { panic("boom") })

	done := make(chan struct{})
	_ = p.Run(func() { close(done) })
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workerpool:pool_test - worker did not survive panic")
	}
	if got := p.Stats().Panicked; got != 1 {
		t.Errorf("workerpool:pool_test - Panicked = %d, want 1", got)
	}
}

func TestRun_AfterClose(t *testing.T) {
	p := New(2)
	p.Close()
	p.Wait()

	if err := p.Run(func() {}); !errors.Is(err, ErrClosed) {
		t.Errorf("workerpool:pool_test - err = %v, want ErrClosed", err)
	}
	// Close is idempotent.
	p.Close()
}

func waitGroup(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workerpool:pool_test - timeout waiting for tasks")
	}
}
