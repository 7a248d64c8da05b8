package api

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/morezero/framehost/pkg/dispatcher"
)

// DefaultLocale is reported when the environment names none.
const DefaultLocale = "en-US"

// OSInfo is the os.info result.
type OSInfo struct {
	OS      string `json:"os"`
	Arch    string `json:"arch"`
	Version string `json:"version"`
}

// Dirs is the os.dirs result. App entries are scoped to this application.
type Dirs struct {
	Temp     string `json:"temp"`
	Home     string `json:"home"`
	Config   string `json:"config"`
	Cache    string `json:"cache"`
	AppData  string `json:"appData"`
	AppCache string `json:"appCache"`
	AppTemp  string `json:"appTemp"`
}

func registerOS(d *dispatcher.Dispatcher) {
	d.RegisterSync("os.info", osInfo)
	d.RegisterSync("os.dirs", osDirs)
	d.RegisterSync("os.sep", osSep)
	d.RegisterSync("os.eol", osEOL)
	d.RegisterSync("os.locale", osLocale)
}

func osInfo(c *dispatcher.Call) (any, error) {
	return OSInfo{OS: runtime.GOOS, Arch: runtime.GOARCH, Version: kernelVersion()}, nil
}

func kernelVersion() string {
	if runtime.GOOS != "linux" {
		return ""
	}
	b, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func osDirs(c *dispatcher.Call) (any, error) {
	d := Dirs{Temp: os.TempDir()}
	d.Home, _ = os.UserHomeDir()
	d.Config, _ = os.UserConfigDir()
	d.Cache, _ = os.UserCacheDir()
	if info := c.App.Launch(); info != nil {
		d.AppData = info.DataDir
		d.AppCache = info.CacheDir
		d.AppTemp = info.TempDir
	}
	return d, nil
}

func osSep(c *dispatcher.Call) (any, error) {
	return string(filepath.Separator), nil
}

func osEOL(c *dispatcher.Call) (any, error) {
	if runtime.GOOS == "windows" {
		return "\r\n", nil
	}
	return "\n", nil
}

func osLocale(c *dispatcher.Call) (any, error) {
	return Locale(os.Getenv), nil
}

// Locale derives a BCP 47 tag from LC_ALL, LC_MESSAGES or LANG.
func Locale(getenv func(string) string) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := getenv(key)
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		return strings.ReplaceAll(v, "_", "-")
	}
	return DefaultLocale
}
