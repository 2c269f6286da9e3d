// Package config loads structured configuration documents.
//
// The core operation is Read, which parses a YAML, TOML, or JSON file whose
// top level must be a mapping and returns a *document.Document:
//
//	doc, err := config.Read("config/config.yaml")
//	if err != nil {
//	    return err // ErrNotFound, ErrParse, or ErrInvalidConfig
//	}
//	root := doc.String("data_ingestion.root_dir")
//
// # Layered Resolution
//
// A Resolver merges several layers with clear precedence:
//  1. Explicit overrides (highest priority)
//  2. Environment variables (e.g., MLKIT_TRAINING__EPOCHS=5)
//  3. Config files, later files overriding earlier ones
//  4. Built-in defaults (lowest priority)
//
//	resolver := config.NewResolver(config.ResolverConfig{
//	    Files:     []string{"config/config.yaml", "params.yaml"},
//	    EnvPrefix: "MLKIT_",
//	    Defaults: map[string]any{
//	        "training": map[string]any{"epochs": 10},
//	    },
//	})
//	resolved, err := resolver.Resolve()
//	fmt.Println(resolved.Source("training.epochs")) // "default", "file", "env", or "override"
//
// # Typed Access
//
// Decode maps a document onto a struct and enforces its validate tags.
//
// # Watching
//
// Watcher re-reads a file when it changes and notifies callbacks. A bad edit
// is logged and the last good document stays current.
package config
