package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/randalmurphal/mlkit/document"
	mlerrors "github.com/randalmurphal/mlkit/errors"
	"github.com/randalmurphal/mlkit/fsutil"
)

// jsonIndent matches the layout produced by the training pipeline's reports.
const jsonIndent = "    "

// Store reads and writes standalone artifact files.
type Store struct {
	logger *slog.Logger
}

// NewStore creates a Store. A nil logger uses slog.Default().
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{logger: logger}
}

// SaveJSON writes data to path using the default logger.
func SaveJSON(path string, data any) error {
	return NewStore(nil).SaveJSON(path, data)
}

// LoadJSON reads the JSON object at path using the default logger.
func LoadJSON(path string) (*document.Document, error) {
	return NewStore(nil).LoadJSON(path)
}

// LoadJSONInto decodes the JSON file at path into v using the default logger.
func LoadJSONInto(path string, v any) error {
	return NewStore(nil).LoadJSONInto(path, v)
}

// SaveJSON writes data as indented JSON, replacing any existing file.
// The parent directory must exist.
func (s *Store) SaveJSON(path string, data any) error {
	encoded, err := marshalJSON(data)
	if err != nil {
		return mlerrors.New("save json", path, nil, err)
	}
	if err := fsutil.WriteFileAtomic(path, encoded, fsutil.FilePerm); err != nil {
		return mlerrors.New("save json", path, fsutil.KindOf(err), err)
	}

	s.logger.Info("json file saved", "path", path)
	return nil
}

// LoadJSON reads a JSON object into a Document.
//
// It fails with ErrNotFound when the file does not exist, ErrParse when the
// content is not JSON, and ErrInvalidConfig when the top level is not an
// object.
func (s *Store) LoadJSON(path string) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, mlerrors.New("load json", path, fsutil.KindOf(err), err)
	}

	doc, err := decodeJSONDocument("load json", path, data)
	if err != nil {
		return nil, err
	}

	s.logger.Info("json file loaded", "path", path)
	return doc, nil
}

// LoadJSONInto decodes the JSON file at path into v. Values whose shape does
// not fit v fail with ErrInvalidConfig.
func (s *Store) LoadJSONInto(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return mlerrors.New("load json", path, fsutil.KindOf(err), err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return mlerrors.New("load json", path, jsonErrorKind(err), err)
	}

	s.logger.Info("json file loaded", "path", path)
	return nil
}

// marshalJSON indents with four spaces, leaves <, > and & unescaped, and
// ends with a newline.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", jsonIndent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeJSONDocument(op, path string, data []byte) (*document.Document, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, mlerrors.New(op, path, jsonErrorKind(err), err)
	}

	doc, ok := document.FromValue(raw)
	if !ok {
		return nil, mlerrors.New(op, path, mlerrors.ErrInvalidConfig,
			fmt.Errorf("top level is %T, expected an object", raw))
	}
	return doc, nil
}

func jsonErrorKind(err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return mlerrors.ErrInvalidConfig
	}
	return mlerrors.ErrParse
}
