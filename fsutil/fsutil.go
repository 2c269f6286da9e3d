// Package fsutil provides the filesystem helpers shared by the config and
// artifact packages: directory creation, size reporting, and atomic writes.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	mlerrors "github.com/randalmurphal/mlkit/errors"
)

// DirPerm and FilePerm are the modes used for created directories and files.
const (
	DirPerm  fs.FileMode = 0o755
	FilePerm fs.FileMode = 0o644
)

// CreateDirectories creates each directory in paths, including missing
// parents. Existing directories are not an error. When verbose is set, one
// info entry is logged per directory.
//
// Creation stops at the first failure. Directories created before it are
// left in place and the returned error names the failing path.
func CreateDirectories(logger *slog.Logger, paths []string, verbose bool) error {
	if logger == nil {
		logger = slog.Default()
	}

	for _, path := range paths {
		if err := os.MkdirAll(path, DirPerm); err != nil {
			return mlerrors.New("create directory", path, KindOf(err), err)
		}
		if verbose {
			logger.Info("created directory", "path", path)
		}
	}

	return nil
}

// FileSize returns the size of the file at path in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, mlerrors.New("stat", path, KindOf(err), err)
	}
	return info.Size(), nil
}

// FileSizeKB returns the file size in kilobytes, rounded to the nearest
// integer with ties to even, formatted as "~ N KB".
func FileSizeKB(path string) (string, error) {
	size, err := FileSize(path)
	if err != nil {
		return "", err
	}
	return FormatKB(size), nil
}

// FormatKB formats a byte count as "~ N KB".
func FormatKB(size int64) string {
	kb := math.RoundToEven(float64(size) / 1024)
	return fmt.Sprintf("~ %d KB", int64(kb))
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// WriteFileAtomic writes data to a temporary file next to path and renames
// it into place, so readers never observe a partially written file.
// Existing files are replaced.
func WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	return WriteAtomic(path, perm, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	})
}

// WriteAtomic streams content produced by write into path atomically.
// The parent directory must exist.
func WriteAtomic(path string, perm fs.FileMode, write func(f *os.File) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Chmod(perm); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// KindOf maps filesystem errors onto the persistence error kinds.
func KindOf(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return mlerrors.ErrNotFound
	case errors.Is(err, fs.ErrPermission):
		return mlerrors.ErrPermissionDenied
	default:
		return nil
	}
}
