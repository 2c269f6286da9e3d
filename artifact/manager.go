package artifact

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/mlkit/document"
	mlerrors "github.com/randalmurphal/mlkit/errors"
	"github.com/randalmurphal/mlkit/fsutil"
	"github.com/randalmurphal/mlkit/notify"
)

// ManagerConfig holds configuration for run artifact management.
type ManagerConfig struct {
	BaseDir       string       // Base directory for storage (default: "artifacts")
	CompressAbove int64        // Compress artifacts at least this large (default: 10KB)
	Logger        *slog.Logger // Defaults to slog.Default()

	// Notifier receives run lifecycle events. Defaults to notify.NopNotifier.
	Notifier notify.Notifier

	// Now stamps run IDs, manifests, and events. Defaults to time.Now.
	Now func() time.Time
}

// Manager stores artifacts grouped by run under <base>/runs/<runID>/.
// Manifest updates are serialized within a process.
type Manager struct {
	baseDir       string
	compressAbove int64
	logger        *slog.Logger
	notifier      notify.Notifier
	now           func() time.Time

	mu sync.Mutex
}

const (
	runIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	runIDLength   = 8
)

// NewManager creates an artifact manager with the given config.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.BaseDir == "" {
		cfg.BaseDir = "artifacts"
	}
	if cfg.CompressAbove == 0 {
		cfg.CompressAbove = 10 * 1024 // 10KB
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = notify.NopNotifier{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{
		baseDir:       cfg.BaseDir,
		compressAbove: cfg.CompressAbove,
		logger:        cfg.Logger,
		notifier:      cfg.Notifier,
		now:           cfg.Now,
	}
}

// NewRunID returns an ID of the form YYYY-MM-DD-<name>-<random>. The date
// prefix lets the lifecycle manager file archives by month.
func NewRunID(name string, now time.Time) (string, error) {
	suffix, err := nanoid.Generate(runIDAlphabet, runIDLength)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}

	parts := []string{now.Format("2006-01-02")}
	if slug := slugify(name); slug != "" {
		parts = append(parts, slug)
	}
	parts = append(parts, suffix)
	return strings.Join(parts, "-"), nil
}

func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// BaseDir returns the base directory.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// RunsDir returns the directory holding all runs.
func (m *Manager) RunsDir() string {
	return filepath.Join(m.baseDir, "runs")
}

// RunDir returns the directory for a run.
func (m *Manager) RunDir(runID string) string {
	return filepath.Join(m.RunsDir(), runID)
}

// ArtifactDir returns the artifacts directory for a run.
func (m *Manager) ArtifactDir(runID string) string {
	return filepath.Join(m.RunDir(runID), "artifacts")
}

// EnsureRunDir creates the run directory structure.
func (m *Manager) EnsureRunDir(runID string) error {
	if err := checkRunID("create run", runID); err != nil {
		return err
	}
	return fsutil.CreateDirectories(m.logger, []string{m.RunDir(runID), m.ArtifactDir(runID)}, false)
}

// NewRun creates a run directory and its manifest with status running.
func (m *Manager) NewRun(name string) (*RunManifest, error) {
	started := m.now()
	id, err := NewRunID(name, started)
	if err != nil {
		return nil, err
	}
	if err := m.EnsureRunDir(id); err != nil {
		return nil, err
	}

	run := &RunManifest{
		ID:        id,
		Name:      name,
		Status:    RunStatusRunning,
		StartedAt: started,
		Artifacts: []Info{},
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeManifest(run); err != nil {
		return nil, err
	}

	m.logger.Info("run started", "run_id", id, "path", m.RunDir(id))
	m.emit(notify.Event{
		Type:     notify.EventRunStarted,
		RunID:    id,
		Message:  "run started",
		Severity: notify.SeverityInfo,
		Metadata: map[string]any{"name": name},
	})
	return run, nil
}

// Manifest returns the manifest of a run.
func (m *Manager) Manifest(runID string) (*RunManifest, error) {
	if err := checkRunID("read manifest", runID); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readManifest(runID)
}

// ListRuns returns the manifests of all runs, newest first. Directories
// without a readable manifest are skipped.
func (m *Manager) ListRuns() ([]*RunManifest, error) {
	entries, err := os.ReadDir(m.RunsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, mlerrors.New("list runs", m.RunsDir(), fsutil.KindOf(err), err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var runs []*RunManifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		run, err := m.readManifest(entry.Name())
		if err != nil {
			m.logger.Warn("skipping run without manifest", "run_id", entry.Name(), "error", err)
			continue
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs, nil
}

// Complete marks a run as completed.
func (m *Manager) Complete(runID string) error {
	err := m.editManifest(runID, false, func(r *RunManifest) {
		r.Status = RunStatusCompleted
		r.EndedAt = m.now()
	})
	if err != nil {
		return err
	}
	m.logger.Info("run completed", "run_id", runID)
	m.emit(notify.Event{
		Type:     notify.EventRunCompleted,
		RunID:    runID,
		Message:  "run completed",
		Severity: notify.SeverityInfo,
	})
	return nil
}

// Fail marks a run as failed and records the cause.
func (m *Manager) Fail(runID string, cause error) error {
	err := m.editManifest(runID, false, func(r *RunManifest) {
		r.Status = RunStatusFailed
		r.EndedAt = m.now()
		if cause != nil {
			r.Error = cause.Error()
		}
	})
	if err != nil {
		return err
	}
	m.logger.Info("run failed", "run_id", runID, "error", cause)
	ev := notify.Event{
		Type:     notify.EventRunFailed,
		RunID:    runID,
		Message:  "run failed",
		Severity: notify.SeverityError,
	}
	if cause != nil {
		ev.Metadata = map[string]any{"error": cause.Error()}
	}
	m.emit(ev)
	return nil
}

// Save stores an artifact, compressing compressible types at or above the
// size threshold, and records its checksum in the run manifest.
func (m *Manager) Save(runID, name string, data []byte) error {
	path, err := m.artifactPath("save artifact", runID, name)
	if err != nil {
		return err
	}
	at := InferType(name)

	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirPerm); err != nil {
		return mlerrors.New("save artifact", path, fsutil.KindOf(err), err)
	}

	compressed := m.shouldCompress(at, int64(len(data)))
	stored := path
	if compressed {
		stored = path + compressedExt
		os.Remove(path)
		err = saveCompressed(stored, data)
	} else {
		os.Remove(path + compressedExt)
		err = fsutil.WriteFileAtomic(path, data, fsutil.FilePerm)
	}
	if err != nil {
		return mlerrors.New("save artifact", stored, fsutil.KindOf(err), err)
	}

	size, err := fsutil.FileSize(stored)
	if err != nil {
		return err
	}

	info := Info{
		Name:       name,
		Size:       size,
		Compressed: compressed,
		Checksum:   Checksum(data),
		CreatedAt:  m.now(),
		Type:       at.Name,
	}
	if err := m.editManifest(runID, true, func(r *RunManifest) { r.upsert(info) }); err != nil {
		return err
	}

	m.logger.Info("artifact saved", "run_id", runID, "name", name, "path", stored, "compressed", compressed)
	m.emit(notify.Event{
		Type:     notify.EventArtifactSaved,
		RunID:    runID,
		Artifact: name,
		Message:  "artifact saved",
		Severity: notify.SeverityInfo,
		Metadata: map[string]any{"size": size, "compressed": compressed, "type": at.Name},
	})
	return nil
}

// Load reads an artifact, decompressing it transparently.
func (m *Manager) Load(runID, name string) ([]byte, error) {
	path, err := m.artifactPath("load artifact", runID, name)
	if err != nil {
		return nil, err
	}

	data, err := loadCompressed(path + compressedExt)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, mlerrors.New("load artifact", path+compressedExt, mlerrors.ErrDeserialization, err)
	}

	data, err = os.ReadFile(path)
	if err != nil {
		return nil, mlerrors.New("load artifact", path, fsutil.KindOf(err), err)
	}
	return data, nil
}

// Delete removes an artifact and its manifest record.
func (m *Manager) Delete(runID, name string) error {
	path, err := m.artifactPath("delete artifact", runID, name)
	if err != nil {
		return err
	}

	gzErr := os.Remove(path + compressedExt)
	err = os.Remove(path)
	if os.IsNotExist(err) && os.IsNotExist(gzErr) {
		return mlerrors.New("delete artifact", path, mlerrors.ErrNotFound, err)
	}
	if err != nil && !os.IsNotExist(err) {
		return mlerrors.New("delete artifact", path, fsutil.KindOf(err), err)
	}

	err = m.editManifest(runID, false, func(r *RunManifest) { r.remove(name) })
	if err != nil && !mlerrors.IsNotFound(err) {
		return err
	}
	m.emit(notify.Event{
		Type:     notify.EventArtifactDelete,
		RunID:    runID,
		Artifact: name,
		Message:  "artifact deleted",
		Severity: notify.SeverityInfo,
	})
	return nil
}

// Has checks if an artifact exists. Invalid names never exist.
func (m *Manager) Has(runID, name string) bool {
	path, err := m.artifactPath("stat artifact", runID, name)
	if err != nil {
		return false
	}
	return fsutil.Exists(path+compressedExt) || fsutil.Exists(path)
}

// List returns all top-level artifacts for a run, sorted by name.
// Checksums come from the manifest when one exists.
func (m *Manager) List(runID string) ([]Info, error) {
	if err := checkRunID("list artifacts", runID); err != nil {
		return nil, err
	}
	dir := m.ArtifactDir(runID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, mlerrors.New("list artifacts", dir, fsutil.KindOf(err), err)
	}

	manifest, _ := m.Manifest(runID)

	var artifacts []Info
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		name := entry.Name()
		compressed := false
		if strings.HasSuffix(name, compressedExt) {
			name = strings.TrimSuffix(name, compressedExt)
			compressed = true
		}

		fi, err := entry.Info()
		if err != nil {
			continue
		}

		info := Info{
			Name:       name,
			Size:       fi.Size(),
			Compressed: compressed,
			CreatedAt:  fi.ModTime(),
			Type:       InferType(name).Name,
		}
		if manifest != nil {
			if rec, ok := manifest.Artifact(name); ok {
				info.Checksum = rec.Checksum
			}
		}
		artifacts = append(artifacts, info)
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Name < artifacts[j].Name
	})

	return artifacts, nil
}

// Info returns info about a specific artifact.
func (m *Manager) Info(runID, name string) (*Info, error) {
	path, err := m.artifactPath("stat artifact", runID, name)
	if err != nil {
		return nil, err
	}

	compressed := true
	fi, err := os.Stat(path + compressedExt)
	if err != nil {
		compressed = false
		fi, err = os.Stat(path)
	}
	if err != nil {
		return nil, mlerrors.New("stat artifact", path, fsutil.KindOf(err), err)
	}

	info := &Info{
		Name:       name,
		Size:       fi.Size(),
		Compressed: compressed,
		CreatedAt:  fi.ModTime(),
		Type:       InferType(name).Name,
	}
	if manifest, err := m.Manifest(runID); err == nil {
		if rec, ok := manifest.Artifact(name); ok {
			info.Checksum = rec.Checksum
		}
	}
	return info, nil
}

// SaveJSON stores v as an indented JSON artifact.
func (m *Manager) SaveJSON(runID, name string, v any) error {
	data, err := marshalJSON(v)
	if err != nil {
		return mlerrors.New("save artifact", filepath.Join(m.ArtifactDir(runID), name), nil, err)
	}
	return m.Save(runID, name, data)
}

// LoadJSON reads a JSON object artifact into a Document.
func (m *Manager) LoadJSON(runID, name string) (*document.Document, error) {
	data, err := m.Load(runID, name)
	if err != nil {
		return nil, err
	}
	return decodeJSONDocument("load artifact", filepath.Join(m.ArtifactDir(runID), name), data)
}

// SaveObject stores v as a gob-encoded artifact.
func (m *Manager) SaveObject(runID, name string, v any) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return mlerrors.New("save artifact", filepath.Join(m.ArtifactDir(runID), name), nil, err)
	}
	return m.Save(runID, name, buf.Bytes())
}

// LoadObjectInto decodes a gob-encoded artifact into ptr.
func (m *Manager) LoadObjectInto(runID, name string, ptr any) error {
	data, err := m.Load(runID, name)
	if err != nil {
		return err
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(ptr); err != nil {
		return mlerrors.New("load artifact", filepath.Join(m.ArtifactDir(runID), name), mlerrors.ErrDeserialization, err)
	}
	return nil
}

// LoadRunObject decodes a gob-encoded run artifact into a new T.
func LoadRunObject[T any](m *Manager, runID, name string) (T, error) {
	var v T
	err := m.LoadObjectInto(runID, name, &v)
	return v, err
}

// Verify recomputes an artifact's checksum and compares it with the manifest.
func (m *Manager) Verify(runID, name string) error {
	path, err := m.artifactPath("verify artifact", runID, name)
	if err != nil {
		return err
	}

	manifest, err := m.Manifest(runID)
	if err != nil {
		return err
	}
	rec, ok := manifest.Artifact(name)
	if !ok || rec.Checksum == "" {
		return mlerrors.New("verify artifact", path, mlerrors.ErrNotFound, fmt.Errorf("no checksum recorded for %s", name))
	}

	data, err := m.Load(runID, name)
	if err != nil {
		return err
	}
	if got := Checksum(data); got != rec.Checksum {
		return mlerrors.New("verify artifact", path, ErrChecksumMismatch,
			fmt.Errorf("recorded %s, computed %s", rec.Checksum, got))
	}
	return nil
}

func (m *Manager) manifestPath(runID string) string {
	return filepath.Join(m.RunDir(runID), ManifestFile)
}

// readManifest must be called with m.mu held.
func (m *Manager) readManifest(runID string) (*RunManifest, error) {
	path := m.manifestPath(runID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mlerrors.New("read manifest", path, fsutil.KindOf(err), err)
	}

	var run RunManifest
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, mlerrors.New("read manifest", path, mlerrors.ErrParse, err)
	}
	return &run, nil
}

// writeManifest must be called with m.mu held.
func (m *Manager) writeManifest(run *RunManifest) error {
	path := m.manifestPath(run.ID)
	data, err := marshalJSON(run)
	if err != nil {
		return mlerrors.New("write manifest", path, nil, err)
	}
	if err := fsutil.WriteFileAtomic(path, data, fsutil.FilePerm); err != nil {
		return mlerrors.New("write manifest", path, fsutil.KindOf(err), err)
	}
	return nil
}

// emit delivers an event. Notifier failures are logged and never fail the
// operation that produced the event.
func (m *Manager) emit(ev notify.Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = m.now()
	}
	if err := m.notifier.Notify(context.Background(), ev); err != nil {
		m.logger.Warn("run event not delivered", "type", ev.Type, "run_id", ev.RunID, "error", err)
	}
}

// editManifest applies fn to a run's manifest. With create set, a missing
// manifest is started fresh.
func (m *Manager) editManifest(runID string, create bool, fn func(*RunManifest)) error {
	if err := checkRunID("write manifest", runID); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	run, err := m.readManifest(runID)
	if err != nil {
		if !create || !mlerrors.IsNotFound(err) {
			return err
		}
		run = &RunManifest{
			ID:        runID,
			Status:    RunStatusRunning,
			StartedAt: m.now(),
			Artifacts: []Info{},
		}
	}

	fn(run)
	return m.writeManifest(run)
}

func (m *Manager) shouldCompress(at Type, size int64) bool {
	if !at.Compressible {
		return false
	}
	return size >= m.compressAbove
}

func saveCompressed(path string, data []byte) error {
	return fsutil.WriteAtomic(path, fsutil.FilePerm, func(f *os.File) error {
		gz := gzip.NewWriter(f)
		if _, err := gz.Write(data); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()
	})
}

func loadCompressed(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	return io.ReadAll(gz)
}
