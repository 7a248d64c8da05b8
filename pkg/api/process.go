package api

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/morezero/framehost/pkg/dispatcher"
	"github.com/morezero/framehost/pkg/launch"
)

const processLogPrefix = "api:process"

// ExecOptions controls process.exec.
type ExecOptions struct {
	Env        map[string]string `json:"env"`
	CurrentDir string            `json:"currentDir"`
	Detached   bool              `json:"detached"`
}

// ExecResult is the result of a non-detached process.exec.
type ExecResult struct {
	Status int    `json:"status"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

func registerProcess(d *dispatcher.Dispatcher) {
	d.RegisterSync("process.version", processVersion)
	d.RegisterSync("process.pid", processPID)
	d.RegisterSync("process.currentDir", processCurrentDir)
	d.RegisterSync("process.currentExe", processCurrentExe)
	d.RegisterSync("process.env", processEnv)
	d.RegisterSync("process.args", processArgs)
	d.RegisterSync("process.setCurrentDir", processSetCurrentDir)
	d.RegisterEvent("process.exit", processExit)
	d.RegisterPooled("process.exec", processExec)
}

func processVersion(c *dispatcher.Call) (any, error) {
	return launch.RuntimeVersion, nil
}

func processPID(c *dispatcher.Call) (any, error) {
	return os.Getpid(), nil
}

func processCurrentDir(c *dispatcher.Call) (any, error) {
	return os.Getwd()
}

func processCurrentExe(c *dispatcher.Call) (any, error) {
	return os.Executable()
}

func processEnv(c *dispatcher.Call) (any, error) {
	var key string
	ok, err := c.Args().Optional(0, &key)
	if err != nil {
		return nil, err
	}
	if ok {
		return os.Getenv(key), nil
	}
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				env[kv[:i]] = kv[i+1:]
				break
			}
		}
	}
	return env, nil
}

func processArgs(c *dispatcher.Call) (any, error) {
	return os.Args, nil
}

func processSetCurrentDir(c *dispatcher.Call) (any, error) {
	var dir string
	if err := c.Args().Single(&dir); err != nil {
		return nil, err
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("%s - chdir %s: %w", processLogPrefix, dir, err)
	}
	return nil, nil
}

func processExit(c *dispatcher.Call) (any, error) {
	slog.Info(fmt.Sprintf("%s - exit requested by window %d", processLogPrefix, c.Window.ID()))
	c.App.Shutdown(c.Control)
	return nil, nil
}

func processExec(c *dispatcher.Call) (any, error) {
	var name string
	var args []string
	var opts ExecOptions
	if err := c.Args().At(0, &name); err != nil {
		return nil, err
	}
	if _, err := c.Args().Optional(1, &args); err != nil {
		return nil, err
	}
	if _, err := c.Args().Optional(2, &opts); err != nil {
		return nil, err
	}
	return Exec(name, args, opts)
}

// Exec runs name with args. A detached command returns its pid once started;
// otherwise Exec waits and returns an ExecResult. A non-zero exit status is a
// result, not an error.
func Exec(name string, args []string, opts ExecOptions) (any, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = opts.CurrentDir
	if len(opts.Env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range opts.Env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	if opts.Detached {
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("%s - start %s: %w", processLogPrefix, name, err)
		}
		pid := cmd.Process.Pid
		if err := cmd.Process.Release(); err != nil {
			slog.Warn(fmt.Sprintf("%s - release %s: %v", processLogPrefix, name, err))
		}
		return pid, nil
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		return nil, fmt.Errorf("%s - run %s: %w", processLogPrefix, name, err)
	}
	return ExecResult{
		Status: cmd.ProcessState.ExitCode(),
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}, nil
}
