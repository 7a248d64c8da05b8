package api

import (
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/morezero/framehost/pkg/launch"
)

const processTestPrefix = "api:process_test"

func TestProcess_Info(t *testing.T) {
	f := newFixture(t)
	if got := f.ok(t, "process.version"); got != launch.RuntimeVersion {
		t.Errorf("%s - version = %v, want %s", processTestPrefix, got, launch.RuntimeVersion)
	}
	if got := f.ok(t, "process.pid"); got != float64(os.Getpid()) {
		t.Errorf("%s - pid = %v, want %d", processTestPrefix, got, os.Getpid())
	}

	t.Setenv("FRAMEHOST_PROCESS_TEST", "yes")
	if got := f.ok(t, "process.env", "FRAMEHOST_PROCESS_TEST"); got != "yes" {
		t.Errorf("%s - env(key) = %v, want yes", processTestPrefix, got)
	}
	all := f.ok(t, "process.env").(map[string]any)
	if all["FRAMEHOST_PROCESS_TEST"] != "yes" {
		t.Errorf("%s - env() missing test key", processTestPrefix)
	}
}

func TestProcess_Exit(t *testing.T) {
	f := newFixture(t)
	f.ok(t, "process.exit")
	if f.app.shutdowns.Load() != 1 {
		t.Errorf("%s - shutdowns = %d, want 1", processTestPrefix, f.app.shutdowns.Load())
	}
}

func TestExec(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}
	out, err := Exec("sh", []string{"-c", "echo $GREETING; echo oops 1>&2; exit 3"}, ExecOptions{
		Env: map[string]string{"GREETING": "hi"},
	})
	if err != nil {
		t.Fatalf("%s - Exec: %v", processTestPrefix, err)
	}
	res := out.(ExecResult)
	if res.Status != 3 {
		t.Errorf("%s - status = %d, want 3", processTestPrefix, res.Status)
	}
	if strings.TrimSpace(res.Stdout) != "hi" || strings.TrimSpace(res.Stderr) != "oops" {
		t.Errorf("%s - result = %+v", processTestPrefix, res)
	}
}

func TestExec_CurrentDirAndDetached(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("needs sh")
	}
	dir := t.TempDir()
	out, err := Exec("sh", []string{"-c", "pwd"}, ExecOptions{CurrentDir: dir})
	if err != nil {
		t.Fatalf("%s - Exec: %v", processTestPrefix, err)
	}
	if got := strings.TrimSpace(out.(ExecResult).Stdout); !strings.HasSuffix(got, strings.TrimPrefix(dir, "/private")) {
		t.Errorf("%s - pwd = %s, want %s", processTestPrefix, got, dir)
	}

	pid, err := Exec("sh", []string{"-c", "exit 0"}, ExecOptions{Detached: true})
	if err != nil {
		t.Fatalf("%s - detached Exec: %v", processTestPrefix, err)
	}
	if pid.(int) <= 0 {
		t.Errorf("%s - pid = %v", processTestPrefix, pid)
	}
}

func TestExec_MissingBinary(t *testing.T) {
	if _, err := Exec("framehost-no-such-binary", nil, ExecOptions{}); err == nil {
		t.Errorf("%s - missing binary did not fail", processTestPrefix)
	}
}
