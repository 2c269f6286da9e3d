package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/mlkit/document"
	mlerrors "github.com/randalmurphal/mlkit/errors"
	"github.com/randalmurphal/mlkit/fsutil"
)

// Format identifies a config file syntax.
type Format string

// Supported config formats.
const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatOf picks the format from a path's extension. Unknown extensions are
// treated as YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Loader reads config documents and logs through its logger.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil logger uses slog.Default().
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Read loads the config file at path using the default logger.
func Read(path string) (*document.Document, error) {
	return NewLoader(nil).Read(path)
}

// Read parses the file at path into a Document.
//
// It fails with ErrNotFound when the file does not exist, ErrParse when the
// content is not valid in its format, and ErrInvalidConfig when the content
// is empty or its top level is not a mapping.
func (l *Loader) Read(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		kind := fsutil.KindOf(err)
		if kind == mlerrors.ErrNotFound {
			l.logger.Error("config file does not exist", "path", path)
		} else {
			l.logger.Error("could not read config file", "path", path, "error", err)
		}
		return nil, mlerrors.New("read config", path, kind, err)
	}

	doc, err := Parse(data, FormatOf(path))
	if err != nil {
		l.logger.Error("could not load config file", "path", path, "error", err)
		return nil, mlerrors.New("read config", path, mlerrors.Classify(err), unwrapKind(err))
	}

	l.logger.Info("config file loaded", "path", path)
	return doc, nil
}

// Parse decodes data in the given format. Errors wrap ErrParse or
// ErrInvalidConfig.
func Parse(data []byte, format Format) (*document.Document, error) {
	var (
		raw any
		err error
	)

	switch format {
	case FormatTOML:
		var m map[string]any
		err = toml.Unmarshal(data, &m)
		raw = m
	case FormatJSON:
		if len(strings.TrimSpace(string(data))) == 0 {
			break
		}
		err = json.Unmarshal(data, &raw)
	default:
		raw, err = decodeYAML(data)
	}
	if err != nil {
		return nil, &kindError{kind: mlerrors.ErrParse, err: err}
	}

	return shape(raw)
}

// decodeYAML decodes a single YAML document. A stream holding more than one
// document is a parse error.
func decodeYAML(data []byte) (any, error) {
	var raw any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, errMultiDocument
	}
	return raw, nil
}

// shape enforces the top-level mapping invariant on a decoded value.
func shape(raw any) (*document.Document, error) {
	if raw == nil {
		return nil, &kindError{kind: mlerrors.ErrInvalidConfig, err: errEmptyDocument}
	}
	doc, ok := document.FromValue(raw)
	if !ok {
		return nil, &kindError{
			kind: mlerrors.ErrInvalidConfig,
			err:  fmt.Errorf("top level is %s, expected a mapping", describe(raw)),
		}
	}
	if doc.Len() == 0 {
		return nil, &kindError{kind: mlerrors.ErrInvalidConfig, err: errEmptyDocument}
	}
	return doc, nil
}

func describe(v any) string {
	switch v.(type) {
	case []any:
		return "a sequence"
	default:
		return fmt.Sprintf("a scalar (%T)", v)
	}
}

var (
	errEmptyDocument = errors.New("document is empty")
	errMultiDocument = errors.New("expected a single document, found several")
)

// kindError pairs a parse failure with its kind so Parse callers can use
// errors.Is without an OpError.
type kindError struct {
	kind error
	err  error
}

func (e *kindError) Error() string   { return e.kind.Error() + ": " + e.err.Error() }
func (e *kindError) Unwrap() []error { return []error{e.kind, e.err} }

func unwrapKind(err error) error {
	if ke, ok := err.(*kindError); ok {
		return ke.err
	}
	return err
}
