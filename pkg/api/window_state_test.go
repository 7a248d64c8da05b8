package api

import (
	"testing"

	"github.com/morezero/framehost/pkg/window"
)

const windowStateTestPrefix = "api:window_state_test"

func TestWindow_NativeCallsStayOnLoop(t *testing.T) {
	f := newFixture(t)
	f.ok(t, "window.setTitle", "x")
	f.ok(t, "window.setVisible", false)
	if got := f.ok(t, "window.title"); got != "x" {
		t.Errorf("%s - title = %v, want x", windowStateTestPrefix, got)
	}
	if got := f.ok(t, "window.isVisible"); got != false {
		t.Errorf("%s - isVisible = %v, want false", windowStateTestPrefix, got)
	}
	f.ok(t, "window.list")
	f.ok(t, "window.setResizable", false)
	f.ok(t, "window.setInnerSize", map[string]float64{"width": 640, "height": 480})

	if n := f.guard.offLoop.Load(); n != 0 {
		t.Errorf("%s - %d native calls off the loop goroutine, last %v", windowStateTestPrefix, n, f.guard.last.Load())
	}
}

func TestWindow_Flags(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		set, get string
		flag     string
	}{
		{"window.setResizable", "window.isResizable", window.FlagResizable},
		{"window.setMinimizable", "window.isMinimizable", window.FlagMinimizable},
		{"window.setMaximizable", "window.isMaximizable", window.FlagMaximizable},
		{"window.setClosable", "window.isClosable", window.FlagClosable},
		{"window.setDecorated", "window.Decorated", window.FlagDecorated},
	}
	for _, tt := range tests {
		if got := f.ok(t, tt.get); got != true {
			t.Errorf("%s - %s default = %v, want true", windowStateTestPrefix, tt.get, got)
		}
		f.ok(t, tt.set, false)
		if got := f.ok(t, tt.get); got != false {
			t.Errorf("%s - %s after set = %v, want false", windowStateTestPrefix, tt.get, got)
		}
		if f.native.State().Flags[tt.flag] {
			t.Errorf("%s - native %s still set", windowStateTestPrefix, tt.flag)
		}
	}

	f.ok(t, "window.setMinimized", true)
	if got := f.ok(t, "window.isMinimized"); got != true {
		t.Errorf("%s - isMinimized = %v", windowStateTestPrefix, got)
	}
	if got := f.ok(t, "window.isFocused"); got != false {
		t.Errorf("%s - isFocused before setFocus = %v", windowStateTestPrefix, got)
	}
	f.ok(t, "window.setFocus")
	if got := f.ok(t, "window.isFocused"); got != true {
		t.Errorf("%s - isFocused after setFocus = %v", windowStateTestPrefix, got)
	}

	for _, method := range []string{"window.setAlwaysOnTop", "window.setContentProtection", "window.setCursorGrab", "window.setIgnoreCursorEvents"} {
		f.ok(t, method, true)
	}
	st := f.native.State()
	if !st.Flags[window.FlagAlwaysOnTop] || !st.Flags[window.FlagContentProtection] || !st.Flags[window.FlagCursorGrab] {
		t.Errorf("%s - flags = %v", windowStateTestPrefix, st.Flags)
	}

	if resp := f.call(t, "window.setResizable"); resp.Succeeded() {
		t.Errorf("%s - setResizable without a value succeeded", windowStateTestPrefix)
	}
}

func TestWindow_Geometry(t *testing.T) {
	f := newFixture(t)
	if got := f.ok(t, "window.scaleFactor"); got != float64(1) {
		t.Errorf("%s - scaleFactor = %v", windowStateTestPrefix, got)
	}

	f.ok(t, "window.setMinInnerSize", map[string]float64{"width": 300, "height": 200})
	f.ok(t, "window.setInnerSize", map[string]float64{"width": 100, "height": 500})
	size := f.ok(t, "window.innerSize").(map[string]any)
	if size["width"] != float64(300) || size["height"] != float64(500) {
		t.Errorf("%s - innerSize = %v, want clamped to min width", windowStateTestPrefix, size)
	}
	outer := f.ok(t, "window.outerSize").(map[string]any)
	if outer["height"].(float64) <= size["height"].(float64) {
		t.Errorf("%s - outerSize = %v, want taller than inner", windowStateTestPrefix, outer)
	}
	if resp := f.call(t, "window.setInnerSize", map[string]float64{"width": -1, "height": 10}); resp.Succeeded() {
		t.Errorf("%s - negative size accepted", windowStateTestPrefix)
	}

	f.ok(t, "window.setOuterPosition", map[string]float64{"x": 40, "y": 50})
	pos := f.ok(t, "window.outerPosition").(map[string]any)
	if pos["x"] != float64(40) || pos["y"] != float64(50) {
		t.Errorf("%s - outerPosition = %v", windowStateTestPrefix, pos)
	}

	f.ok(t, "window.setFullscreen", true)
	if got := f.ok(t, "window.fullscreen"); got != true {
		t.Errorf("%s - fullscreen = %v", windowStateTestPrefix, got)
	}
	if resp := f.call(t, "window.setFullscreen", true, "missing-monitor"); resp.Succeeded() {
		t.Errorf("%s - fullscreen on an unknown monitor succeeded", windowStateTestPrefix)
	}

	if got := f.ok(t, "window.theme"); got != "light" {
		t.Errorf("%s - theme = %v", windowStateTestPrefix, got)
	}
	f.ok(t, "window.requestUserAttention", AttentionCritical)
	if resp := f.call(t, "window.requestUserAttention", "loud"); resp.Succeeded() {
		t.Errorf("%s - unknown attention level accepted", windowStateTestPrefix)
	}
	f.ok(t, "window.setCursorIcon", "crosshair")
	f.ok(t, "window.setCursorPosition", map[string]float64{"x": 3, "y": 4})
	f.ok(t, "window.dragWindow")
	st := f.native.State()
	if st.Attention != AttentionCritical || st.CursorIcon != "crosshair" || st.Cursor != (window.Position{X: 3, Y: 4}) || st.Drags != 1 {
		t.Errorf("%s - state = %+v", windowStateTestPrefix, st)
	}
}

func TestMonitor(t *testing.T) {
	f := newFixture(t)
	list := f.ok(t, "monitor.list").([]any)
	if len(list) != 1 || list[0].(map[string]any)["name"] != window.HeadlessMonitor.Name {
		t.Errorf("%s - monitor.list = %v", windowStateTestPrefix, list)
	}
	primary := f.ok(t, "monitor.primary").(map[string]any)
	if primary["scaleFactor"] != float64(1) {
		t.Errorf("%s - monitor.primary = %v", windowStateTestPrefix, primary)
	}
	if got := f.ok(t, "monitor.fromPoint", 10, 10); got == nil {
		t.Errorf("%s - fromPoint inside the display returned null", windowStateTestPrefix)
	}
	if got := f.ok(t, "monitor.fromPoint", -10, 99999); got != nil {
		t.Errorf("%s - fromPoint outside every display = %v, want null", windowStateTestPrefix, got)
	}
}

func TestWebview_Extras(t *testing.T) {
	f := newFixture(t)
	f.ok(t, "webview.loadHtml", "<p>hi</p>")
	if st := f.native.State(); st.HTML != "<p>hi</p>" {
		t.Errorf("%s - html = %q", windowStateTestPrefix, st.HTML)
	}
	f.ok(t, "webview.zoom", 1.5)
	if st := f.native.State(); st.Zoom != 1.5 {
		t.Errorf("%s - zoom = %v", windowStateTestPrefix, st.Zoom)
	}
	if resp := f.call(t, "webview.zoom", 0); resp.Succeeded() {
		t.Errorf("%s - zero zoom accepted", windowStateTestPrefix)
	}

	f.ok(t, "webview.openDevtools")
	if got := f.ok(t, "webview.isDevtoolsOpen"); got != true {
		t.Errorf("%s - isDevtoolsOpen = %v after open", windowStateTestPrefix, got)
	}
	f.ok(t, "webview.closeDevtools")
	if got := f.ok(t, "webview.isDevtoolsOpen"); got != false {
		t.Errorf("%s - isDevtoolsOpen = %v after close", windowStateTestPrefix, got)
	}
}
