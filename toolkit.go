package mlkit

import (
	"log/slog"

	"github.com/randalmurphal/mlkit/artifact"
	"github.com/randalmurphal/mlkit/config"
	"github.com/randalmurphal/mlkit/document"
	"github.com/randalmurphal/mlkit/fsutil"
	"github.com/randalmurphal/mlkit/notify"
)

// Toolkit runs config and artifact operations with a shared logger.
type Toolkit struct {
	logger *slog.Logger
	loader *config.Loader
	store  *artifact.Store
}

// New creates a Toolkit. A nil logger uses slog.Default().
func New(logger *slog.Logger) *Toolkit {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toolkit{
		logger: logger,
		loader: config.NewLoader(logger),
		store:  artifact.NewStore(logger),
	}
}

// Logger returns the toolkit's logger.
func (t *Toolkit) Logger() *slog.Logger {
	return t.logger
}

// ReadConfig loads a YAML, TOML, or JSON file whose top level is a mapping.
func (t *Toolkit) ReadConfig(path string) (*document.Document, error) {
	return t.loader.Read(path)
}

// DecodeConfig loads path into a struct and validates it.
func (t *Toolkit) DecodeConfig(path string, v any) error {
	return t.loader.DecodeFile(path, v)
}

// CreateDirectories creates each path and its parents, stopping at the first
// failure.
func (t *Toolkit) CreateDirectories(paths []string, verbose bool) error {
	return fsutil.CreateDirectories(t.logger, paths, verbose)
}

// SaveJSON writes data to path as indented JSON.
func (t *Toolkit) SaveJSON(path string, data any) error {
	return t.store.SaveJSON(path, data)
}

// LoadJSON reads a JSON object from path.
func (t *Toolkit) LoadJSON(path string) (*document.Document, error) {
	return t.store.LoadJSON(path)
}

// SaveArtifact gob-encodes v to path.
func (t *Toolkit) SaveArtifact(path string, v any) error {
	return t.store.SaveObject(path, v)
}

// LoadArtifact decodes the artifact at path into ptr.
func (t *Toolkit) LoadArtifact(path string, ptr any) error {
	return t.store.LoadObjectInto(path, ptr)
}

// LoadArtifactAs decodes the artifact at path into a new T.
func LoadArtifactAs[T any](t *Toolkit, path string) (T, error) {
	return artifact.LoadObjectWith[T](t.store, path)
}

// FileSizeKB reports the size of path as "~ N KB".
func (t *Toolkit) FileSizeKB(path string) (string, error) {
	return fsutil.FileSizeKB(path)
}

// Runs returns a run artifact manager rooted at baseDir. Run events go to
// every given notifier.
func (t *Toolkit) Runs(baseDir string, notifiers ...notify.Notifier) *artifact.Manager {
	cfg := artifact.ManagerConfig{BaseDir: baseDir, Logger: t.logger}
	switch len(notifiers) {
	case 0:
	case 1:
		cfg.Notifier = notifiers[0]
	default:
		multi := notify.NewMultiNotifier(notifiers...)
		multi.Logger = t.logger
		cfg.Notifier = multi
	}
	return artifact.NewManager(cfg)
}
