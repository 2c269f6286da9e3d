package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestTempFile(t *testing.T) {
	path := TempFileString(t, "config.yaml", "key: value\n")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "key: value\n" {
		t.Errorf("content = %q", data)
	}
	if filepath.Base(path) != "config.yaml" {
		t.Errorf("name = %q, want config.yaml", filepath.Base(path))
	}
}

func TestWriteTree(t *testing.T) {
	dir := t.TempDir()
	WriteTree(t, dir, map[string]string{
		"config/config.yaml": "a: 1\n",
		"params.yaml":        "alpha: 0.5\n",
	})

	for _, rel := range []string{"config/config.yaml", "params.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Errorf("%s missing: %v", rel, err)
		}
	}
}

func TestReadJSON(t *testing.T) {
	path := TempFileString(t, "m.json", `{"rmse": 0.5}`)

	got := ReadJSON[map[string]float64](t, path)
	if got["rmse"] != 0.5 {
		t.Errorf("rmse = %v, want 0.5", got["rmse"])
	}
}

func TestCaptureLogger(t *testing.T) {
	logger, buf := CaptureLogger(t)
	logger.Debug("hello", "k", "v")

	if !strings.Contains(buf.String(), "hello") || !strings.Contains(buf.String(), "k=v") {
		t.Errorf("unexpected log output %q", buf.String())
	}
}
