package launch

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/morezero/framehost/pkg/menu"
)

const logPrefix = "launch:loader"

// Load picks the launch document from args or file. An argument that looks
// like a JSON object wins, then file, then an argument naming a file, then
// the defaults.
func Load(args []string, file string) (*Info, error) {
	if len(args) > 0 && strings.HasPrefix(strings.TrimSpace(args[0]), "{") {
		slog.Info(fmt.Sprintf("%s - Loaded launch options from arguments", logPrefix))
		return Parse([]byte(args[0]), runtime.GOOS)
	}
	if file == "" && len(args) > 0 {
		file = args[0]
	}
	if file != "" {
		return LoadFile(file)
	}
	slog.Info(fmt.Sprintf("%s - Using default launch options", logPrefix))
	return Default()
}

// LoadFile reads a .json or .toml launch file.
func LoadFile(path string) (*Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s - read %s: %w", logPrefix, path, err)
	}

	var info *Info
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var raw map[string]any
		if _, err := toml.Decode(string(data), &raw); err != nil {
			return nil, fmt.Errorf("%s - parse %s: %w", logPrefix, path, err)
		}
		info, err = fromValue(raw, runtime.GOOS)
	default:
		info, err = Parse(data, runtime.GOOS)
	}
	if err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("%s - Loaded launch options from %s", logPrefix, path))
	return info, nil
}

// Default returns options for a bare run with one blank window.
func Default() (*Info, error) {
	return fromValue(map[string]any{
		"name":   DefaultName,
		"window": map[string]any{"title": DefaultName, "url": "about:blank"},
	}, runtime.GOOS)
}

// Parse decodes a JSON launch document. The section keyed by goos, if any,
// is merged over the top level first.
func Parse(data []byte, goos string) (*Info, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s - parse launch options: %w", logPrefix, err)
	}
	return fromValue(raw, goos)
}

func fromValue(raw map[string]any, goos string) (*Info, error) {
	if raw == nil {
		raw = map[string]any{}
	}
	merged := raw
	if section, ok := raw[goos]; ok {
		if m, ok := MergeValues(raw, section).(map[string]any); ok {
			merged = m
		}
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("%s - encode launch options: %w", logPrefix, err)
	}
	var opts Options
	if err := json.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("%s - decode launch options: %w", logPrefix, err)
	}
	return Resolve(opts)
}

// Resolve fills defaults, validates opts and derives identity and directories.
func Resolve(opts Options) (*Info, error) {
	if opts.Name == "" {
		opts.Name = DefaultName
	}
	if opts.Host == "" {
		opts.Host = DefaultHost
	}
	if opts.Workers < 0 {
		return nil, fmt.Errorf("%s - workers must not be negative, got %d", logPrefix, opts.Workers)
	}

	if opts.UUID == "" {
		opts.UUID = uuid.NewString()
	} else {
		id, err := uuid.Parse(opts.UUID)
		if err != nil {
			return nil, fmt.Errorf("%s - invalid uuid %q: %w", logPrefix, opts.UUID, err)
		}
		opts.UUID = id.String()
	}

	mode, err := menu.ParseMode(string(opts.MenuMode))
	if err != nil {
		return nil, err
	}
	opts.MenuMode = mode

	if opts.DebugDevtools {
		opts.Window.Devtools = true
	}

	if err := CheckRuntimeVersion(opts.RuntimeVersion, RuntimeVersion); err != nil {
		return nil, err
	}

	idName := strings.ToLower(opts.Name) + "_" + opts.UUID[:8]
	info := &Info{
		Options: opts,
		IDName:  idName,
		TempDir: filepath.Join(os.TempDir(), idName),
	}
	if dir, err := os.UserConfigDir(); err == nil {
		info.DataDir = filepath.Join(dir, idName)
	} else {
		slog.Warn(fmt.Sprintf("%s - no user config dir, data dir falls back to temp: %v", logPrefix, err))
		info.DataDir = filepath.Join(info.TempDir, "data")
	}
	if dir, err := os.UserCacheDir(); err == nil {
		info.CacheDir = filepath.Join(dir, idName)
	} else {
		slog.Warn(fmt.Sprintf("%s - no user cache dir, cache dir falls back to temp: %v", logPrefix, err))
		info.CacheDir = filepath.Join(info.TempDir, "cache")
	}
	return info, nil
}
