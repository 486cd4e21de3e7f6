package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates dir and its parents if they do not exist yet.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

// Target resolves where a download named name should be written. When dest
// is an existing directory or ends with a path separator, the file goes
// inside it; otherwise dest is the file path.
func Target(dest, name string) (string, error) {
	if dest == "" {
		dest = "."
	}
	if strings.HasSuffix(dest, string(os.PathSeparator)) || strings.HasSuffix(dest, "/") {
		if err := EnsureDir(dest); err != nil {
			return "", err
		}
		return filepath.Join(dest, safeName(name)), nil
	}
	fi, err := os.Stat(dest)
	switch {
	case err == nil && fi.IsDir():
		return filepath.Join(dest, safeName(name)), nil
	case err == nil || os.IsNotExist(err):
		return dest, nil
	default:
		return "", fmt.Errorf("stat %s: %w", dest, err)
	}
}

func safeName(name string) string {
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." || name == "" {
		return "download"
	}
	return name
}

// WriteAtomic writes data to a temporary file beside path and renames it into
// place, so readers never observe a partial file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
