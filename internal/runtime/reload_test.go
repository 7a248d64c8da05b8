package runtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/morezero/framehost/pkg/launch"
)

const reloadTestPrefix = "runtime:reload_test"

func TestWatchResources_ReloadsWindows(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "css"), 0o755); err != nil {
		t.Fatal(err)
	}
	h := startHarness(t, testInfo(launch.Options{DebugResource: dir}))

	w, err := WatchResources(dir, h.rt.Proxy(), h.rt.windows)
	if err != nil {
		t.Fatalf("%s - WatchResources: %v", reloadTestPrefix, err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "css", "app.css"), []byte("body{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	main := h.native(t, 0)
	waitFor(t, "webview reload", func() bool { return main.State().Reloads > 0 })
	if w.Reloads() == 0 {
		t.Errorf("%s - Reloads = 0 after a reload", reloadTestPrefix)
	}
}

func TestWatchResources_MissingDir(t *testing.T) {
	h := startHarness(t, testInfo(launch.Options{}))
	if _, err := WatchResources(filepath.Join(t.TempDir(), "missing"), h.rt.Proxy(), h.rt.windows); err == nil {
		t.Errorf("%s - expected error for missing directory", reloadTestPrefix)
	}
}

func TestResourceWatcher_CloseTwice(t *testing.T) {
	h := startHarness(t, testInfo(launch.Options{}))
	w, err := WatchResources(t.TempDir(), h.rt.Proxy(), h.rt.windows)
	if err != nil {
		t.Fatalf("%s - WatchResources: %v", reloadTestPrefix, err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("%s - first Close: %v", reloadTestPrefix, err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("%s - second Close: %v", reloadTestPrefix, err)
	}
}
