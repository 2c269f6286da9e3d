package artifact

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	mlerrors "github.com/randalmurphal/mlkit/errors"
)

// ErrInvalidName reports a run ID or artifact name that would resolve
// outside its directory or collide with a stored compressed copy.
var ErrInvalidName = errors.New("invalid artifact name")

const compressedExt = ".gz"

// checkRunID requires runID to be a single local path element.
func checkRunID(op, runID string) error {
	if runID == "" || runID == "." || !filepath.IsLocal(runID) || filepath.Base(runID) != runID {
		return mlerrors.New(op, runID, ErrInvalidName, fmt.Errorf("run id %q is not a single path element", runID))
	}
	return nil
}

// checkName requires name to stay inside the artifacts directory. Names
// ending in .gz are reserved for compressed copies.
func checkName(op, name string) error {
	if !filepath.IsLocal(name) || filepath.Clean(name) == "." {
		return mlerrors.New(op, name, ErrInvalidName, fmt.Errorf("artifact name %q escapes the run directory", name))
	}
	if strings.HasSuffix(strings.ToLower(name), compressedExt) {
		return mlerrors.New(op, name, ErrInvalidName, fmt.Errorf("artifact name %q uses the reserved %s suffix", name, compressedExt))
	}
	return nil
}

// artifactPath validates runID and name and joins them under the run's
// artifacts directory.
func (m *Manager) artifactPath(op, runID, name string) (string, error) {
	if err := checkRunID(op, runID); err != nil {
		return "", err
	}
	if err := checkName(op, name); err != nil {
		return "", err
	}
	return filepath.Join(m.ArtifactDir(runID), name), nil
}
