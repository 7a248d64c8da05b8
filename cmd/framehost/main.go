// Package main is the entrypoint for the framehost webview shell.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	goruntime "runtime"

	"github.com/morezero/framehost/internal/config"
	"github.com/morezero/framehost/internal/runtime"
	"github.com/morezero/framehost/pkg/launch"
)

const usage = `Usage: framehost [command] [launch options]
       framehost run [json|file]     Start the shell with the given launch options.
       framehost check [json|file]   Resolve launch options and print them without starting.
       framehost version             Print the runtime version.

Commands:
  run       (default) Start the event loop, open the main window and serve the page API.
  check     Load, merge and validate launch options; prints the resolved identity and directories.
  version   Print the runtime version used by process.version and runtimeVersion checks.

Launch options are a JSON object passed as the first argument, a .json or .toml
file path, or FRAME_LAUNCH_FILE. With none, a single blank window is opened.

Environment:
  FRAME_WORKERS          pooled handler workers (default 4)
  FRAME_LAUNCH_FILE      launch options file used when no argument is given
  FRAME_HEADLESS         use the in-memory window binding (default true)
  FRAME_CONTROL_TIMEOUT  control endpoint request timeout (default 5s)
  FRAME_SHUTDOWN_PATH    control endpoint path hit on shutdown (default /server_shutdown)
  FRAME_WATCH_RESOURCES  reload webviews when the debug resource directory changes (default false)
  COMMS_URL              NATS URL for the host bridge; empty disables it
  SERVICE_NAME           NATS connection name (default framehost)
  FRAME_SUBJECT_PREFIX   host bridge subject prefix (default frame)
  LOG_LEVEL              debug, info, warn or error (default info)
`

func init() {
	// The native event loop must own the main thread.
	goruntime.LockOSThread()
}

func main() {
	args := os.Args[1:]
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "help", "-h", "--help":
		fmt.Print(usage)
		return
	case "version", "--version":
		fmt.Println(launch.RuntimeVersion)
		return
	case "check":
		if err := runCheck(args[1:]); err != nil {
			log.Fatalf("framehost check: %v", err)
		}
		return
	case "run":
		args = args[1:]
	}

	if err := runtime.Run(args); err != nil {
		log.Fatalf("framehost: %v", err)
	}
}

type checkOutput struct {
	IDName   string         `json:"idName"`
	DataDir  string         `json:"dataDir"`
	CacheDir string         `json:"cacheDir"`
	TempDir  string         `json:"tempDir"`
	Options  launch.Options `json:"options"`
}

func runCheck(args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	info, err := launch.Load(args, cfg.LaunchFile)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(checkOutput{
		IDName:   info.IDName,
		DataDir:  info.DataDir,
		CacheDir: info.CacheDir,
		TempDir:  info.TempDir,
		Options:  info.Options,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode launch options: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
