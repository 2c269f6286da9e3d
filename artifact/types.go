package artifact

import (
	"path/filepath"
	"strings"
)

// Type describes how a kind of artifact is stored.
type Type struct {
	Name         string
	Extensions   []string
	Compressible bool
}

// Standard artifact names written by pipeline stages.
const (
	ArtifactMetrics  = "metrics.json"
	ArtifactParams   = "params.json"
	ArtifactSchema   = "schema.yaml"
	ArtifactModel    = "model.gob"
	ArtifactRunLog   = "run.log"
	ArtifactSplitLog = "split.log"
)

// KnownTypes maps type names to their definitions.
var KnownTypes = map[string]Type{
	"json":   {"json", []string{".json"}, true},
	"config": {"config", []string{".yaml", ".yml", ".toml"}, true},
	"text":   {"text", []string{".txt", ".log", ".md"}, true},
	"table":  {"table", []string{".csv", ".tsv"}, true},
	"object": {"object", []string{".gob", ".bin", ".joblib", ".pkl"}, false},
	"binary": {"binary", []string{".png", ".jpg", ".jpeg", ".parquet", ".zip", ".tar"}, false},
}

// InferType infers the artifact type from a file name. Unknown extensions
// are treated as compressible text.
func InferType(name string) Type {
	ext := strings.ToLower(filepath.Ext(name))

	for _, t := range KnownTypes {
		for _, e := range t.Extensions {
			if e == ext {
				return t
			}
		}
	}

	return Type{Name: "unknown", Compressible: true}
}
