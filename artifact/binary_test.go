package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mlerrors "github.com/randalmurphal/mlkit/errors"
	"github.com/randalmurphal/mlkit/testutil"
)

type linearModel struct {
	Alpha        float64
	L1Ratio      float64
	Coefficients []float64
	Intercept    float64
	Features     []string
}

func TestObject_RoundTrip(t *testing.T) {
	logger, buf := testutil.CaptureLogger(t)
	store := NewStore(logger)
	path := filepath.Join(t.TempDir(), "model.gob")

	model := linearModel{
		Alpha:        0.2,
		L1Ratio:      0.1,
		Coefficients: []float64{0.03, -1.2, 0.4},
		Intercept:    5.6,
		Features:     []string{"fixed acidity", "volatile acidity", "alcohol"},
	}

	require.NoError(t, store.SaveObject(path, model))

	got, err := LoadObjectWith[linearModel](store, path)
	require.NoError(t, err)
	assert.Equal(t, model, got)
	assert.Contains(t, buf.String(), "binary file saved")
	assert.Contains(t, buf.String(), "binary file loaded")
}

func TestObject_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")

	require.NoError(t, SaveObject(path, linearModel{Alpha: 0.1}))
	require.NoError(t, SaveObject(path, linearModel{Alpha: 0.9}))

	got, err := LoadObject[linearModel](path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.Alpha)
}

func TestObject_LoadInto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.gob")
	require.NoError(t, SaveObject(path, map[string]float64{"rmse": 0.61}))

	var scores map[string]float64
	require.NoError(t, NewStore(nil).LoadObjectInto(path, &scores))
	assert.Equal(t, 0.61, scores["rmse"])
}

func TestObject_NotFound(t *testing.T) {
	_, err := LoadObject[linearModel](filepath.Join(t.TempDir(), "missing.gob"))
	assert.True(t, mlerrors.IsNotFound(err))
	assert.False(t, mlerrors.IsDeserialization(err))
}

func TestObject_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"garbage", []byte("definitely not a gob stream")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "model.gob")
			require.NoError(t, os.WriteFile(path, tt.content, 0o644))

			_, err := LoadObject[linearModel](path)
			assert.True(t, mlerrors.IsDeserialization(err), "got %v", err)
		})
	}
}

func TestObject_TypeMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, SaveObject(path, linearModel{Alpha: 0.5}))

	_, err := LoadObject[[]string](path)
	assert.True(t, mlerrors.IsDeserialization(err), "got %v", err)
}
