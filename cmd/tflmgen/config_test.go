package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `tflite_path: /opt/tflite-micro
output_dir: build
python: python3
tensor_arena_size: 81920
inferences_per_cycle: 8
strict_include: true
log_level: debug
log_format: json
server_address: 0.0.0.0:9090
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	arena, inferences, strict := 81920, 8, true
	want := Config{
		TFLitePath:         "/opt/tflite-micro",
		OutputDir:          "build",
		Python:             "python3",
		TensorArenaSize:    &arena,
		InferencesPerCycle: &inferences,
		StrictInclude:      &strict,
		LogLevel:           "debug",
		LogFormat:          "json",
		ServerAddress:      "0.0.0.0:9090",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("config (-want +got):\n%s", diff)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("tensor_arena_size: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadConfigMissingDefault(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	got, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if diff := cmp.Diff(Config{}, got); diff != "" {
		t.Fatalf("expected zero config (-want +got):\n%s", diff)
	}
}
