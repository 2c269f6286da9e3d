package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/mlkit/document"
	mlerrors "github.com/randalmurphal/mlkit/errors"
	"github.com/randalmurphal/mlkit/testutil"
)

func TestWrite_RoundTrip(t *testing.T) {
	src := document.New(map[string]any{
		"root_dir": "artifacts",
		"training": map[string]any{"epochs": 5, "lr": 0.01},
	})

	for _, name := range []string{"out.yaml", "out.toml", "out.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Write(path, src))

			doc, err := Read(path)
			require.NoError(t, err)
			assert.Equal(t, "artifacts", doc.String("root_dir"))
			assert.Equal(t, 5, doc.Int("training.epochs"))
			assert.InDelta(t, 0.01, doc.Float("training.lr"), 1e-12)
		})
	}
}

func TestMarshal_JSONIndent(t *testing.T) {
	data, err := Marshal(map[string]any{"a": 1}, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": 1\n}\n", string(data))
}

func TestSetValue(t *testing.T) {
	path := testutil.TempFileString(t, "params.yaml", "model:\n  alpha: 0.5\n  l1_ratio: 0.1\n")

	require.NoError(t, SetValue(path, "model.alpha", "0.9"))

	doc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, doc.Float("model.alpha"))
	assert.Equal(t, 0.1, doc.Float("model.l1_ratio"))
}

func TestSetValue_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "params.yaml")

	require.NoError(t, SetValue(path, "training.epochs", "3"))

	doc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, 3, doc.Int("training.epochs"))
}

func TestSetValue_EmptyFile(t *testing.T) {
	path := testutil.TempFileString(t, "params.yaml", "{}\n")

	require.NoError(t, SetValue(path, "a", "b"))

	doc, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, "b", doc.String("a"))
}

func TestSetValue_InvalidExisting(t *testing.T) {
	path := testutil.TempFileString(t, "params.yaml", "a: [1\n")

	err := SetValue(path, "a", "b")
	assert.True(t, mlerrors.IsParse(err), "got %v", err)
}

func TestDeleteKey(t *testing.T) {
	path := testutil.TempFileString(t, "params.yaml", "model:\n  alpha: 0.5\n  l1_ratio: 0.1\nseed: 1\n")

	require.NoError(t, DeleteKey(path, "model.alpha"))

	doc, err := Read(path)
	require.NoError(t, err)
	assert.False(t, doc.Has("model.alpha"))
	assert.True(t, doc.Has("model.l1_ratio"))
	assert.Equal(t, 1, doc.Int("seed"))
}

func TestDeleteKey_MissingIsNoop(t *testing.T) {
	path := testutil.TempFileString(t, "params.yaml", "seed: 1\n")
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, DeleteKey(path, "model.alpha"))
	require.NoError(t, DeleteKey(filepath.Join(t.TempDir(), "none.yaml"), "a"))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
