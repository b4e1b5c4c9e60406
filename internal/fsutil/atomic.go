// Package fsutil holds small filesystem helpers shared by the object store
// and the repository layer.
package fsutil

import (
	"os"
	"path/filepath"

	"github.com/google/renameio"
)

// WriteFile atomically replaces path with data. The temporary file is
// created next to path, so the final rename never crosses a filesystem.
func WriteFile(path string, data []byte, perm os.FileMode) error {
	t, err := renameio.TempFile(filepath.Dir(path), path)
	if err != nil {
		return err
	}
	defer t.Cleanup() //nolint:errcheck

	if _, err := t.Write(data); err != nil {
		return err
	}
	if err := t.Chmod(perm); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}
