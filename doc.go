// Package mlkit provides the configuration and artifact persistence layer of
// an ML training and inference pipeline.
//
// The package is organized into subpackages by concern:
//
//   - document: Immutable nested mappings with dotted-path access
//   - config: YAML/TOML/JSON config loading, layered resolution, validation, watching
//   - artifact: JSON and gob artifacts, run directories, retention lifecycle
//   - fsutil: Directory creation, file sizes, atomic writes
//   - errors: Error kinds and CLI error rendering
//   - logging: slog construction
//   - testutil: Test helpers
//
// # Quick Start
//
// A Toolkit bundles the core operations behind one logger:
//
//	tk := mlkit.New(logger)
//
//	cfg, err := tk.ReadConfig("config/config.yaml")
//	if err != nil {
//	    return err
//	}
//	root := cfg.String("artifacts_root")
//	if err := tk.CreateDirectories([]string{root}, true); err != nil {
//	    return err
//	}
//
//	err = tk.SaveJSON(filepath.Join(root, "metrics.json"), metrics)
//	err = tk.SaveArtifact(filepath.Join(root, "model.gob"), model)
//	size, _ := tk.FileSizeKB(filepath.Join(root, "model.gob"))
//
// See individual package documentation for detailed usage.
package mlkit
