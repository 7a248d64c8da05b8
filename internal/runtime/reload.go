package runtime

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/morezero/framehost/pkg/eventloop"
	"github.com/morezero/framehost/pkg/window"
)

const reloadLogPrefix = "runtime:reload"

// ReloadDebounce coalesces bursts of file events into one reload.
const ReloadDebounce = 150 * time.Millisecond

// ResourceWatcher reloads every webview when files under a directory change.
type ResourceWatcher struct {
	watcher *fsnotify.Watcher
	proxy   *eventloop.Proxy
	windows *window.Manager

	mu      sync.Mutex
	timer   *time.Timer
	reloads int

	closeCh chan struct{}
	wg      sync.WaitGroup
}

// WatchResources watches root and all its subdirectories.
func WatchResources(root string, proxy *eventloop.Proxy, windows *window.Manager) (*ResourceWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%s - new watcher: %w", reloadLogPrefix, err)
	}
	w := &ResourceWatcher{watcher: fsw, proxy: proxy, windows: windows, closeCh: make(chan struct{})}
	if err := w.addTree(root); err != nil {
		fsw.Close()
		return nil, err
	}
	w.wg.Add(1)
	go w.processLoop()
	slog.Info(fmt.Sprintf("%s - Watching %s for changes", reloadLogPrefix, root))
	return w, nil
}

func (w *ResourceWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("%s - walk %s: %w", reloadLogPrefix, p, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("%s - watch %s: %w", reloadLogPrefix, p, err)
		}
		return nil
	})
}

func (w *ResourceWatcher) processLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.closeCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						slog.Warn(fmt.Sprintf("%s - %v", reloadLogPrefix, err))
					}
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				w.schedule()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn(fmt.Sprintf("%s - watcher error: %v", reloadLogPrefix, err))
		}
	}
}

func (w *ResourceWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(ReloadDebounce, w.reload)
}

func (w *ResourceWatcher) reload() {
	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()
	err := w.proxy.Invoke(func(*eventloop.Target, *eventloop.ControlFlow) error {
		for _, win := range w.windows.List() {
			if err := win.Native().Reload(); err != nil {
				slog.Warn(fmt.Sprintf("%s - reload window %d: %v", reloadLogPrefix, win.ID(), err))
			}
		}
		return nil
	})
	if err != nil {
		slog.Debug(fmt.Sprintf("%s - reload skipped: %v", reloadLogPrefix, err))
	}
}

// Reloads returns how many reloads have been scheduled onto the loop.
func (w *ResourceWatcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

// Close stops watching. Safe to call more than once.
func (w *ResourceWatcher) Close() error {
	w.mu.Lock()
	select {
	case <-w.closeCh:
		w.mu.Unlock()
		return nil
	default:
	}
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.wg.Wait()
	return w.watcher.Close()
}
