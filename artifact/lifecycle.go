package artifact

import (
	"archive/tar"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	mlerrors "github.com/randalmurphal/mlkit/errors"
	"github.com/randalmurphal/mlkit/fsutil"
)

const archiveExt = ".tar.gz"

// RetentionConfig defines retention policy
type RetentionConfig struct {
	RetentionDays        int  // Days to keep finished runs
	ArchiveAfterDays     int  // Days before archiving
	ArchiveRetentionDays int  // Days to keep archived runs
	KeepFailed           bool // Never remove failed runs
	KeepMinRuns          int  // Minimum runs to keep regardless of age
}

// DefaultRetentionConfig returns the default policy.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		RetentionDays:        30,
		ArchiveAfterDays:     7,
		ArchiveRetentionDays: 90,
		KeepFailed:           true,
		KeepMinRuns:          20,
	}
}

// LifecycleManager archives and deletes runs under a base directory.
type LifecycleManager struct {
	baseDir string
	config  RetentionConfig
	logger  *slog.Logger
}

// NewLifecycleManager creates a lifecycle manager. A nil logger uses
// slog.Default().
func NewLifecycleManager(baseDir string, config RetentionConfig, logger *slog.Logger) *LifecycleManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &LifecycleManager{
		baseDir: baseDir,
		config:  config,
		logger:  logger,
	}
}

// CleanupResult summarizes cleanup actions
type CleanupResult struct {
	Archived   []string `json:"archived"`
	Deleted    []string `json:"deleted"`
	Kept       []string `json:"kept"`
	Errors     []string `json:"errors,omitempty"`
	SpaceSaved int64    `json:"spaceSaved"`
}

func newCleanupResult() *CleanupResult {
	return &CleanupResult{
		Archived: make([]string, 0),
		Deleted:  make([]string, 0),
		Kept:     make([]string, 0),
		Errors:   make([]string, 0),
	}
}

// Cleanup applies the retention policy to all runs. With dryRun set it only
// reports what would happen.
func (m *LifecycleManager) Cleanup(dryRun bool) (*CleanupResult, error) {
	result := newCleanupResult()

	runsDir := filepath.Join(m.baseDir, "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, mlerrors.New("cleanup runs", runsDir, fsutil.KindOf(err), err)
	}

	now := time.Now()
	archiveThreshold := now.Add(-time.Duration(m.config.ArchiveAfterDays) * 24 * time.Hour)
	deleteThreshold := now.Add(-time.Duration(m.config.RetentionDays) * 24 * time.Hour)

	type runInfo struct {
		id   string
		meta *RunManifest
		size int64
	}

	var runs []runInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		runID := entry.Name()
		runDir := filepath.Join(runsDir, runID)

		meta, err := loadManifestFromDir(runDir)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("load %s: %v", runID, err))
			continue
		}

		runs = append(runs, runInfo{id: runID, meta: meta, size: dirSize(runDir)})
	}

	// Oldest first
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].meta.EndedAt.Before(runs[j].meta.EndedAt)
	})

	removed := 0
	for _, run := range runs {
		if m.config.KeepFailed && run.meta.Status == RunStatusFailed {
			result.Kept = append(result.Kept, run.id)
			continue
		}
		if run.meta.IsActive() {
			result.Kept = append(result.Kept, run.id)
			continue
		}

		remainingAfterThis := len(runs) - removed - 1
		if remainingAfterThis < m.config.KeepMinRuns {
			result.Kept = append(result.Kept, run.id)
			continue
		}

		runDir := filepath.Join(runsDir, run.id)

		switch {
		case run.meta.EndedAt.Before(deleteThreshold):
			if !dryRun {
				if err := os.RemoveAll(runDir); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("delete %s: %v", run.id, err))
					continue
				}
				m.logger.Info("run deleted", "run_id", run.id)
			}
			result.Deleted = append(result.Deleted, run.id)
			result.SpaceSaved += run.size
			removed++

		case run.meta.EndedAt.Before(archiveThreshold):
			if !dryRun {
				if err := m.archiveRun(run.id); err != nil {
					result.Errors = append(result.Errors, fmt.Sprintf("archive %s: %v", run.id, err))
					continue
				}
				m.logger.Info("run archived", "run_id", run.id)
			}
			result.Archived = append(result.Archived, run.id)
			// Rough estimate of compression savings
			result.SpaceSaved += run.size / 2
			removed++

		default:
			result.Kept = append(result.Kept, run.id)
		}
	}

	return result, nil
}

// archiveRun compresses a run into archive/YYYY-MM/<runID>.tar.gz and
// removes the run directory.
func (m *LifecycleManager) archiveRun(runID string) error {
	runDir := filepath.Join(m.baseDir, "runs", runID)

	archiveDir := filepath.Join(m.baseDir, "archive", extractMonthFromRunID(runID))
	if err := os.MkdirAll(archiveDir, fsutil.DirPerm); err != nil {
		return err
	}
	archivePath := filepath.Join(archiveDir, runID+archiveExt)

	err := fsutil.WriteAtomic(archivePath, fsutil.FilePerm, func(f *os.File) error {
		gz := gzip.NewWriter(f)
		tw := tar.NewWriter(gz)

		if err := addTree(tw, runDir, runID); err != nil {
			tw.Close()
			gz.Close()
			return err
		}
		if err := tw.Close(); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()
	})
	if err != nil {
		return err
	}

	return os.RemoveAll(runDir)
}

// addTree writes every entry under root into tw, named relative to prefix.
func addTree(tw *tar.Writer, root, prefix string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(filepath.Join(prefix, relPath))

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		return copyFileTo(tw, path)
	})
}

func copyFileTo(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// RestoreArchive extracts an archived run back into the runs directory.
func (m *LifecycleManager) RestoreArchive(runID string) error {
	archivePath := m.findArchive(runID)
	if archivePath == "" {
		return mlerrors.New("restore archive", runID, mlerrors.ErrNotFound, nil)
	}

	runDir := filepath.Join(m.baseDir, "runs", runID)
	if fsutil.Exists(runDir) {
		return mlerrors.New("restore archive", runDir, nil, fmt.Errorf("run already exists"))
	}

	if err := extractArchive(archivePath, filepath.Dir(runDir)); err != nil {
		return mlerrors.New("restore archive", archivePath, nil, err)
	}

	m.logger.Info("run restored", "run_id", runID, "path", runDir)
	return nil
}

// ListArchives returns all archived run IDs.
func (m *LifecycleManager) ListArchives() ([]string, error) {
	var archives []string
	m.walkArchives(func(_ string, info fs.FileInfo, runID string) {
		archives = append(archives, runID)
	})
	sort.Strings(archives)
	return archives, nil
}

// DeleteArchive removes an archived run.
func (m *LifecycleManager) DeleteArchive(runID string) error {
	archivePath := m.findArchive(runID)
	if archivePath == "" {
		return mlerrors.New("delete archive", runID, mlerrors.ErrNotFound, nil)
	}
	if err := os.Remove(archivePath); err != nil {
		return mlerrors.New("delete archive", archivePath, fsutil.KindOf(err), err)
	}
	return nil
}

// GetArchiveSize returns the size of an archive.
func (m *LifecycleManager) GetArchiveSize(runID string) (int64, error) {
	archivePath := m.findArchive(runID)
	if archivePath == "" {
		return 0, mlerrors.New("stat archive", runID, mlerrors.ErrNotFound, nil)
	}
	return fsutil.FileSize(archivePath)
}

func (m *LifecycleManager) findArchive(runID string) string {
	if checkRunID("find archive", runID) != nil {
		return ""
	}
	path := filepath.Join(m.baseDir, "archive", extractMonthFromRunID(runID), runID+archiveExt)
	if fsutil.Exists(path) {
		return path
	}

	// Fall back to searching every month
	var found string
	m.walkArchives(func(path string, _ fs.FileInfo, id string) {
		if found == "" && id == runID {
			found = path
		}
	})
	return found
}

// walkArchives calls fn for every archive file, ignoring unreadable entries.
func (m *LifecycleManager) walkArchives(fn func(path string, info fs.FileInfo, runID string)) {
	archiveDir := filepath.Join(m.baseDir, "archive")
	filepath.WalkDir(archiveDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(d.Name(), archiveExt) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		fn(path, info, strings.TrimSuffix(d.Name(), archiveExt))
		return nil
	})
}

func extractArchive(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	cleanDest := filepath.Clean(destDir) + string(os.PathSeparator)

	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		target := filepath.Join(destDir, filepath.FromSlash(header.Name))
		if !strings.HasPrefix(filepath.Clean(target)+string(os.PathSeparator), cleanDest) {
			return fmt.Errorf("invalid path in archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, fsutil.DirPerm); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), fsutil.DirPerm); err != nil {
				return err
			}
			if err := writeEntry(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeEntry(target string, r io.Reader, perm os.FileMode) error {
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CleanupArchives removes archives older than the archive retention period.
func (m *LifecycleManager) CleanupArchives(dryRun bool) (*CleanupResult, error) {
	result := newCleanupResult()
	threshold := time.Now().Add(-time.Duration(m.config.ArchiveRetentionDays) * 24 * time.Hour)

	m.walkArchives(func(path string, info fs.FileInfo, runID string) {
		if !info.ModTime().Before(threshold) {
			result.Kept = append(result.Kept, runID)
			return
		}
		if !dryRun {
			if err := os.Remove(path); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("delete archive %s: %v", runID, err))
				return
			}
			m.logger.Info("archive deleted", "run_id", runID)
		}
		result.Deleted = append(result.Deleted, runID)
		result.SpaceSaved += info.Size()
	})

	return result, nil
}

// DiskUsageStats contains disk usage statistics
type DiskUsageStats struct {
	RunCount     int   `json:"runCount"`
	ArchiveCount int   `json:"archiveCount"`
	ActiveSize   int64 `json:"activeSize"`
	ArchiveSize  int64 `json:"archiveSize"`
	TotalSize    int64 `json:"totalSize"`
}

// DiskUsage returns disk usage statistics.
func (m *LifecycleManager) DiskUsage() (*DiskUsageStats, error) {
	stats := &DiskUsageStats{}

	runsDir := filepath.Join(m.baseDir, "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, mlerrors.New("disk usage", runsDir, fsutil.KindOf(err), err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			stats.RunCount++
			stats.ActiveSize += dirSize(filepath.Join(runsDir, entry.Name()))
		}
	}

	m.walkArchives(func(_ string, info fs.FileInfo, _ string) {
		stats.ArchiveSize += info.Size()
		stats.ArchiveCount++
	})

	stats.TotalSize = stats.ActiveSize + stats.ArchiveSize
	return stats, nil
}

func loadManifestFromDir(runDir string) (*RunManifest, error) {
	data, err := os.ReadFile(filepath.Join(runDir, ManifestFile))
	if err != nil {
		return nil, err
	}
	var meta RunManifest
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func extractMonthFromRunID(runID string) string {
	// Expected format: "2025-01-15-..."
	if len(runID) >= 7 {
		if _, err := time.Parse("2006-01", runID[:7]); err == nil {
			return runID[:7]
		}
	}
	return time.Now().Format("2006-01")
}

func dirSize(path string) int64 {
	var size int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			size += info.Size()
		}
		return nil
	})
	return size
}
