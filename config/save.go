package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/mlkit/document"
	mlerrors "github.com/randalmurphal/mlkit/errors"
	"github.com/randalmurphal/mlkit/fsutil"
)

// Write serializes v to path in the format implied by its extension,
// creating parent directories and replacing any existing file atomically.
// v may be a *document.Document, a map, or a tagged struct.
func Write(path string, v any) error {
	data, err := Marshal(v, FormatOf(path))
	if err != nil {
		return mlerrors.New("write config", path, nil, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirPerm); err != nil {
		return mlerrors.New("write config", path, fsutil.KindOf(err), err)
	}
	if err := fsutil.WriteFileAtomic(path, data, fsutil.FilePerm); err != nil {
		return mlerrors.New("write config", path, fsutil.KindOf(err), err)
	}
	return nil
}

// Marshal encodes v in the given format.
func Marshal(v any, format Format) ([]byte, error) {
	if doc, ok := v.(*document.Document); ok {
		v = doc.Map()
	}

	switch format {
	case FormatTOML:
		return toml.Marshal(v)
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return yaml.Marshal(v)
	}
}

// SetValue updates a single dotted key in the config file at path, creating
// the file if it does not exist. Other keys are preserved.
func SetValue(path, key, value string) error {
	existing, err := readOrEmpty(path)
	if err != nil {
		return err
	}

	m := newMerger()
	m.merge("", m.root, existing, SourceFile)
	m.set(key, parseScalar(value), SourceOverride)

	return Write(path, m.root)
}

// DeleteKey removes a dotted key from the config file at path.
// A missing file or key is not an error.
func DeleteKey(path, key string) error {
	existing, err := readOrEmpty(path)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}

	segments := strings.Split(key, ".")
	parent := existing
	for _, seg := range segments[:len(segments)-1] {
		next, ok := parent[seg].(map[string]any)
		if !ok {
			return nil
		}
		parent = next
	}
	if _, ok := parent[segments[len(segments)-1]]; !ok {
		return nil
	}
	delete(parent, segments[len(segments)-1])

	return Write(path, existing)
}

func readOrEmpty(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, mlerrors.New("read config", path, fsutil.KindOf(err), err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return map[string]any{}, nil
	}

	doc, err := Parse(data, FormatOf(path))
	if errors.Is(err, errEmptyDocument) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, mlerrors.New("read config", path, mlerrors.Classify(err), unwrapKind(err))
	}
	return doc.Map(), nil
}
