package artifact

import (
	"bufio"
	"encoding/gob"
	"os"

	mlerrors "github.com/randalmurphal/mlkit/errors"
	"github.com/randalmurphal/mlkit/fsutil"
)

// SaveObject gob-encodes v to path using the default logger.
func SaveObject(path string, v any) error {
	return NewStore(nil).SaveObject(path, v)
}

// LoadObject decodes the gob file at path into a new T using the default
// logger.
func LoadObject[T any](path string) (T, error) {
	return LoadObjectWith[T](NewStore(nil), path)
}

// LoadObjectWith decodes the gob file at path into a new T through s.
// Interface-typed values must be registered with gob.Register before
// saving and loading.
func LoadObjectWith[T any](s *Store, path string) (T, error) {
	var v T
	err := s.LoadObjectInto(path, &v)
	return v, err
}

// SaveObject gob-encodes v to path, replacing any existing file.
// The parent directory must exist.
func (s *Store) SaveObject(path string, v any) error {
	err := fsutil.WriteAtomic(path, fsutil.FilePerm, func(f *os.File) error {
		w := bufio.NewWriter(f)
		if err := gob.NewEncoder(w).Encode(v); err != nil {
			return err
		}
		return w.Flush()
	})
	if err != nil {
		return mlerrors.New("save object", path, fsutil.KindOf(err), err)
	}

	s.logger.Info("binary file saved", "path", path)
	return nil
}

// LoadObjectInto decodes the gob file at path into ptr.
//
// It fails with ErrNotFound when the file does not exist and with
// ErrDeserialization when the content is empty, corrupt, or does not match
// the type of ptr.
func (s *Store) LoadObjectInto(path string, ptr any) error {
	f, err := os.Open(path)
	if err != nil {
		return mlerrors.New("load object", path, fsutil.KindOf(err), err)
	}
	defer f.Close()

	if err := gob.NewDecoder(bufio.NewReader(f)).Decode(ptr); err != nil {
		return mlerrors.New("load object", path, mlerrors.ErrDeserialization, err)
	}

	s.logger.Info("binary file loaded", "path", path)
	return nil
}
