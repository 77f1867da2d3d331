// Package fileio replaces files atomically so an interrupted release never
// leaves a half-written chart or manifest behind.
package fileio

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

const (
	defaultFileMode os.FileMode = 0o644
	defaultDirMode  os.FileMode = 0o755
)

// WriteFileAtomically writes data to a temp file next to fpath and renames it
// over fpath. An existing file keeps its permission bits; new files get 0644.
func WriteFileAtomically(fpath string, data []byte) error {
	mode := defaultFileMode
	if info, err := os.Stat(fpath); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %q: %w", fpath, err)
	}

	dir := filepath.Dir(fpath)
	if err := os.MkdirAll(dir, defaultDirMode); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	t, err := renameio.TempFile(dir, fpath)
	if err != nil {
		return fmt.Errorf("creating temp file for %q: %w", fpath, err)
	}
	defer func() {
		_ = t.Cleanup()
	}()

	if err := t.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp file for %q: %w", fpath, err)
	}
	w := bufio.NewWriter(t)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %q: %w", fpath, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %q: %w", fpath, err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replacing %q: %w", fpath, err)
	}
	return nil
}
