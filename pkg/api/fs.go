package api

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/morezero/framehost/pkg/dispatcher"
)

const fsLogPrefix = "api:fs"

// Content encodings accepted by fs.read/write/append.
const (
	EncodingUTF8   = "utf8"
	EncodingBase64 = "base64"
)

// ErrExists is returned by copy and move when the destination exists and
// neither overwrite nor skipExist was requested.
var ErrExists = errors.New("destination exists")

// FileStat is the fs.stat result. Times are unix milliseconds.
type FileStat struct {
	Path      string `json:"path"`
	IsDir     bool   `json:"isDir"`
	IsFile    bool   `json:"isFile"`
	IsSymlink bool   `json:"isSymlink"`
	Size      int64  `json:"size"`
	Modified  int64  `json:"modified"`
}

// DirEntry is one fs.readDir result.
type DirEntry struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	IsDir bool   `json:"isDir"`
}

// CopyOptions controls fs.copy and fs.move.
type CopyOptions struct {
	Overwrite bool `json:"overwrite"`
	SkipExist bool `json:"skipExist"`
}

func registerFS(d *dispatcher.Dispatcher) {
	d.RegisterPooled("fs.stat", fsStat)
	d.RegisterPooled("fs.exists", fsExists)
	d.RegisterPooled("fs.read", fsRead)
	d.RegisterPooled("fs.write", fsWrite)
	d.RegisterPooled("fs.append", fsAppend)
	d.RegisterPooled("fs.copy", fsCopy)
	d.RegisterPooled("fs.move", fsMove)
	d.RegisterPooled("fs.remove", fsRemove)
	d.RegisterPooled("fs.createDir", fsCreateDir)
	d.RegisterPooled("fs.createDirAll", fsCreateDirAll)
	d.RegisterPooled("fs.readDir", fsReadDir)
	d.RegisterPooled("fs.readDirAll", fsReadDirAll)
}

// Stat describes path without following a trailing symlink.
func Stat(path string) (FileStat, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return FileStat{}, fmt.Errorf("%s - stat %s: %w", fsLogPrefix, path, err)
	}
	st := FileStat{
		Path:      path,
		IsSymlink: info.Mode()&fs.ModeSymlink != 0,
		Size:      info.Size(),
		Modified:  info.ModTime().UnixMilli(),
	}
	if st.IsSymlink {
		if target, err := os.Stat(path); err == nil {
			info = target
		}
	}
	st.IsDir = info.IsDir()
	st.IsFile = info.Mode().IsRegular()
	return st, nil
}

func decodeContent(content, encoding string) ([]byte, error) {
	switch encoding {
	case "", EncodingUTF8:
		return []byte(content), nil
	case EncodingBase64:
		b, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("%s - decode base64: %w", fsLogPrefix, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%s - unknown encoding %q", fsLogPrefix, encoding)
	}
}

func encodeContent(b []byte, encoding string) (string, error) {
	switch encoding {
	case "", EncodingUTF8:
		return string(b), nil
	case EncodingBase64:
		return base64.StdEncoding.EncodeToString(b), nil
	default:
		return "", fmt.Errorf("%s - unknown encoding %q", fsLogPrefix, encoding)
	}
}

// pathAndEncoding reads the leading (path, ..., encoding) arguments where the
// encoding sits at index enc.
func pathAndEncoding(c *dispatcher.Call, enc int) (string, string, error) {
	var path, encoding string
	if err := c.Args().At(0, &path); err != nil {
		return "", "", err
	}
	if _, err := c.Args().Optional(enc, &encoding); err != nil {
		return "", "", err
	}
	return path, encoding, nil
}

func fsStat(c *dispatcher.Call) (any, error) {
	var path string
	if err := c.Args().Single(&path); err != nil {
		return nil, err
	}
	return Stat(path)
}

func fsExists(c *dispatcher.Call) (any, error) {
	var path string
	if err := c.Args().Single(&path); err != nil {
		return nil, err
	}
	_, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s - exists %s: %w", fsLogPrefix, path, err)
	}
	return true, nil
}

func fsRead(c *dispatcher.Call) (any, error) {
	path, encoding, err := pathAndEncoding(c, 1)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s - read %s: %w", fsLogPrefix, path, err)
	}
	return encodeContent(b, encoding)
}

func fsWrite(c *dispatcher.Call) (any, error) {
	return nil, writeFile(c, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

func fsAppend(c *dispatcher.Call) (any, error) {
	return nil, writeFile(c, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

func writeFile(c *dispatcher.Call, flag int) error {
	path, encoding, err := pathAndEncoding(c, 2)
	if err != nil {
		return err
	}
	var content string
	if err := c.Args().At(1, &content); err != nil {
		return err
	}
	b, err := decodeContent(content, encoding)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, flag, 0o644)
	if err != nil {
		return fmt.Errorf("%s - open %s: %w", fsLogPrefix, path, err)
	}
	if _, err := f.Write(b); err != nil {
		f.Close()
		return fmt.Errorf("%s - write %s: %w", fsLogPrefix, path, err)
	}
	return f.Close()
}

func copyArgs(c *dispatcher.Call) (string, string, CopyOptions, error) {
	var from, to string
	var opts CopyOptions
	if err := c.Args().At(0, &from); err != nil {
		return "", "", opts, err
	}
	if err := c.Args().At(1, &to); err != nil {
		return "", "", opts, err
	}
	if _, err := c.Args().Optional(2, &opts); err != nil {
		return "", "", opts, err
	}
	return from, to, opts, nil
}

// checkDestination reports whether the operation should proceed.
func checkDestination(to string, opts CopyOptions) (bool, error) {
	if _, err := os.Lstat(to); errors.Is(err, fs.ErrNotExist) {
		return true, nil
	}
	switch {
	case opts.Overwrite:
		return true, nil
	case opts.SkipExist:
		return false, nil
	default:
		return false, fmt.Errorf("%s - %s: %w", fsLogPrefix, to, ErrExists)
	}
}

func fsCopy(c *dispatcher.Call) (any, error) {
	from, to, opts, err := copyArgs(c)
	if err != nil {
		return nil, err
	}
	ok, err := checkDestination(to, opts)
	if !ok || err != nil {
		return nil, err
	}
	return nil, CopyPath(from, to)
}

func fsMove(c *dispatcher.Call) (any, error) {
	from, to, opts, err := copyArgs(c)
	if err != nil {
		return nil, err
	}
	ok, err := checkDestination(to, opts)
	if !ok || err != nil {
		return nil, err
	}
	if err := os.Rename(from, to); err == nil {
		return nil, nil
	}
	// Rename fails across devices; fall back to copy and remove.
	if err := CopyPath(from, to); err != nil {
		return nil, err
	}
	return nil, os.RemoveAll(from)
}

// CopyPath copies a file or a directory tree from src to dst.
func CopyPath(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%s - copy %s: %w", fsLogPrefix, src, err)
	}
	if !info.IsDir() {
		return copyFile(src, dst, info.Mode().Perm())
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		return copyFile(path, target, fi.Mode().Perm())
	})
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%s - open %s: %w", fsLogPrefix, src, err)
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("%s - create %s: %w", fsLogPrefix, dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("%s - copy %s: %w", fsLogPrefix, src, err)
	}
	return out.Close()
}

func fsRemove(c *dispatcher.Call) (any, error) {
	var path string
	if err := c.Args().Single(&path); err != nil {
		return nil, err
	}
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("%s - remove %s: %w", fsLogPrefix, path, err)
	}
	return nil, nil
}

func fsCreateDir(c *dispatcher.Call) (any, error) {
	var path string
	if err := c.Args().Single(&path); err != nil {
		return nil, err
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		return nil, fmt.Errorf("%s - mkdir %s: %w", fsLogPrefix, path, err)
	}
	return nil, nil
}

func fsCreateDirAll(c *dispatcher.Call) (any, error) {
	var path string
	if err := c.Args().Single(&path); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("%s - mkdir %s: %w", fsLogPrefix, path, err)
	}
	return nil, nil
}

// fsReadDir lists one directory; the path defaults to the working directory.
func fsReadDir(c *dispatcher.Call) (any, error) {
	path := "."
	if _, err := c.Args().Optional(0, &path); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%s - read dir %s: %w", fsLogPrefix, path, err)
	}
	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, DirEntry{Name: e.Name(), Path: filepath.Join(path, e.Name()), IsDir: e.IsDir()})
	}
	return out, nil
}

func fsReadDirAll(c *dispatcher.Call) (any, error) {
	var root string
	var excludes []string
	if err := c.Args().At(0, &root); err != nil {
		return nil, err
	}
	if _, err := c.Args().Optional(1, &excludes); err != nil {
		return nil, err
	}
	return ReadDirAll(root, excludes)
}

// ReadDirAll walks root and returns every entry below it, skipping names that
// match one of the exclude globs. Excluded directories are not descended.
func ReadDirAll(root string, excludes []string) ([]DirEntry, error) {
	var out []DirEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		for _, pattern := range excludes {
			if ok, _ := filepath.Match(pattern, d.Name()); ok {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		out = append(out, DirEntry{Name: d.Name(), Path: path, IsDir: d.IsDir()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s - walk %s: %w", fsLogPrefix, root, err)
	}
	return out, nil
}
