package mlkit

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/mlkit/notify"
	"github.com/randalmurphal/mlkit/testutil"
)

type model struct {
	Alpha   float64
	Weights []float64
}

func TestToolkit_Pipeline(t *testing.T) {
	logger, buf := testutil.CaptureLogger(t)
	tk := New(logger)
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "config.yaml")
	testutil.WriteTree(t, dir, map[string]string{
		"config.yaml": "artifacts_root: " + filepath.ToSlash(filepath.Join(dir, "artifacts")) + "\nmodel_trainer:\n  alpha: 0.2\n",
	})

	cfg, err := tk.ReadConfig(cfgPath)
	require.NoError(t, err)
	root := cfg.String("artifacts_root")

	require.NoError(t, tk.CreateDirectories([]string{root}, true))

	metricsPath := filepath.Join(root, "metrics.json")
	require.NoError(t, tk.SaveJSON(metricsPath, map[string]any{"rmse": 0.61}))

	metrics, err := tk.LoadJSON(metricsPath)
	require.NoError(t, err)
	assert.Equal(t, 0.61, metrics.Float("rmse"))

	modelPath := filepath.Join(root, "model.gob")
	want := model{Alpha: cfg.Float("model_trainer.alpha"), Weights: []float64{1, 2, 3}}
	require.NoError(t, tk.SaveArtifact(modelPath, want))

	var got model
	require.NoError(t, tk.LoadArtifact(modelPath, &got))
	assert.Equal(t, want, got)

	typed, err := LoadArtifactAs[model](tk, modelPath)
	require.NoError(t, err)
	assert.Equal(t, want, typed)

	size, err := tk.FileSizeKB(modelPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(size, "~ "), size)

	for _, msg := range []string{"config file loaded", "created directory", "json file saved", "binary file saved"} {
		assert.Contains(t, buf.String(), msg)
	}
}

func TestToolkit_ErrorKinds(t *testing.T) {
	tk := New(nil)
	dir := t.TempDir()

	_, err := tk.ReadConfig(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = tk.ReadConfig(testutil.TempFileString(t, "list.yaml", "- a\n"))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = tk.LoadJSON(testutil.TempFileString(t, "bad.json", "{"))
	assert.True(t, errors.Is(err, ErrParse))

	var m model
	err = tk.LoadArtifact(testutil.TempFileString(t, "bad.gob", "xx"), &m)
	assert.True(t, errors.Is(err, ErrDeserialization))
}

func TestToolkit_Runs(t *testing.T) {
	tk := New(nil)
	mgr := tk.Runs(t.TempDir())

	run, err := mgr.NewRun("eval")
	require.NoError(t, err)
	require.NoError(t, mgr.SaveJSON(run.ID, "metrics.json", map[string]float64{"r2": 0.4}))
	assert.NoError(t, mgr.Verify(run.ID, "metrics.json"))
}

type countingNotifier struct{ n int }

func (c *countingNotifier) Notify(context.Context, notify.Event) error {
	c.n++
	return nil
}

func TestToolkit_RunsNotifiers(t *testing.T) {
	logger, buf := testutil.CaptureLogger(t)
	tk := New(logger)
	a, b := &countingNotifier{}, &countingNotifier{}
	mgr := tk.Runs(t.TempDir(), a, notify.NewLogNotifier(logger), b)

	run, err := mgr.NewRun("notified")
	require.NoError(t, err)
	require.NoError(t, mgr.Complete(run.ID))

	assert.Equal(t, 2, a.n)
	assert.Equal(t, 2, b.n)
	assert.Contains(t, buf.String(), "type=run_completed")
}

func TestContextInjection(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, FromContext(ctx))
	assert.Panics(t, func() { MustFromContext(ctx) })

	tk := New(nil)
	ctx = WithToolkit(ctx, tk)
	assert.Same(t, tk, FromContext(ctx))
	assert.Same(t, tk, MustFromContext(ctx))
}
