package runtime

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	commsserver "github.com/nats-io/nats-server/v2/server"
	comms "github.com/nats-io/nats.go"

	"github.com/morezero/framehost/pkg/commsutil"
	"github.com/morezero/framehost/pkg/launch"
	"github.com/morezero/framehost/pkg/window"
)

const hostBridgeTestPrefix = "runtime:hostbridge_test"

// startTestServer starts an in-process NATS server for testing.
func startTestServer(t *testing.T, port int) *comms.Conn {
	t.Helper()

	ns, err := commsserver.NewServer(&commsserver.Options{
		Host:   "127.0.0.1",
		Port:   port,
		NoLog:  true,
		NoSigs: true,
	})
	if err != nil {
		t.Fatalf("%s - failed to create server: %v", hostBridgeTestPrefix, err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		t.Fatalf("%s - server failed to start", hostBridgeTestPrefix)
	}
	nc, err := comms.Connect(ns.ClientURL(), comms.Timeout(5*time.Second))
	if err != nil {
		ns.Shutdown()
		t.Fatalf("%s - failed to connect: %v", hostBridgeTestPrefix, err)
	}
	t.Cleanup(func() {
		nc.Close()
		ns.Shutdown()
		ns.WaitForShutdown()
	})
	return nc
}

func request(t *testing.T, nc *comms.Conn, suffix string, body any) commsutil.Reply {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	msg, err := nc.Request(commsutil.BuildAppSubject("frame", "demo_1234abcd", suffix), data, 5*time.Second)
	if err != nil {
		t.Fatalf("%s - request %s: %v", hostBridgeTestPrefix, suffix, err)
	}
	var reply commsutil.Reply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		t.Fatalf("%s - decode reply: %v", hostBridgeTestPrefix, err)
	}
	return reply
}

func TestHostBridge(t *testing.T) {
	nc := startTestServer(t, 14240)
	h := startHarness(t, testInfo(launch.Options{}))

	hb, err := StartHostBridge(nc, h.rt, "frame")
	if err != nil {
		t.Fatalf("%s - StartHostBridge: %v", hostBridgeTestPrefix, err)
	}
	defer hb.Close()

	windows := request(t, nc, commsutil.SuffixWindows, nil)
	list, ok := windows.Data.([]any)
	if !windows.OK || !ok || len(list) != 1 {
		t.Fatalf("%s - windows reply = %+v", hostBridgeTestPrefix, windows)
	}
	if title := list[0].(map[string]any)["title"]; title != "main" {
		t.Errorf("%s - title = %v, want main", hostBridgeTestPrefix, title)
	}

	emitted := request(t, nc, commsutil.SuffixEmit, EmitRequest{Window: 0, Event: "host.ping", Payload: map[string]int{"n": 1}})
	if !emitted.OK {
		t.Fatalf("%s - emit reply = %+v", hostBridgeTestPrefix, emitted)
	}
	// The reply is sent after evaluation, so the script is already there.
	if !hasScript(h.native(t, 0), `FrameHost.__emit__("host.ping",{"n":1})`) {
		t.Errorf("%s - emit replied before the script was evaluated", hostBridgeTestPrefix)
	}

	h.native(t, 0).PostIPC(`[0,"window.open",[{"title":"second"}]]`)
	waitFor(t, "second window", func() bool { return h.rt.windows.Len() == 2 })
	_ = h.native(t, 1).Close()
	failed := request(t, nc, commsutil.SuffixEmit, EmitRequest{Window: 1, Event: "host.ping"})
	if failed.OK || !strings.Contains(failed.Error, window.ErrNativeClosed.Error()) {
		t.Errorf("%s - emit into a dead webview = %+v, want evaluation error", hostBridgeTestPrefix, failed)
	}

	missing := request(t, nc, commsutil.SuffixEmit, EmitRequest{Window: 9, Event: "host.ping"})
	if missing.OK || missing.Error == "" {
		t.Errorf("%s - emit to unknown window = %+v", hostBridgeTestPrefix, missing)
	}
	noEvent := request(t, nc, commsutil.SuffixEmit, EmitRequest{Window: 0})
	if noEvent.OK {
		t.Errorf("%s - emit without event accepted", hostBridgeTestPrefix)
	}

	bye := request(t, nc, commsutil.SuffixShutdown, map[string]string{"reason": "host update"})
	if !bye.OK {
		t.Errorf("%s - shutdown reply = %+v", hostBridgeTestPrefix, bye)
	}
	if err := h.wait(t); err != nil {
		t.Errorf("%s - Run err = %v", hostBridgeTestPrefix, err)
	}
	if h.rt.windows.Len() != 0 {
		t.Errorf("%s - windows left after host shutdown", hostBridgeTestPrefix)
	}
}

func hasScript(w *window.HeadlessWindow, want string) bool {
	for _, s := range w.Scripts() {
		if s == want {
			return true
		}
	}
	return false
}
