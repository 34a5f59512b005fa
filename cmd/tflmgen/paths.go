package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	envOutDir = "TFLMGEN_OUT_DIR"
	envConfig = "TFLMGEN_CONFIG"
)

// resolveModelArg picks the model from --model or the first positional
// argument.
func resolveModelArg(flagValue, positional string) (string, error) {
	flagValue = strings.TrimSpace(flagValue)
	positional = strings.TrimSpace(positional)
	switch {
	case flagValue != "" && positional != "" && filepath.Clean(flagValue) != filepath.Clean(positional):
		return "", fmt.Errorf("model given twice: --model %q and argument %q", flagValue, positional)
	case flagValue != "":
		return filepath.Clean(flagValue), nil
	case positional != "":
		return filepath.Clean(positional), nil
	default:
		return "", fmt.Errorf("a model file is required (tflmgen generate <model.tflite>)")
	}
}

// resolveOutDir applies --out, then TFLMGEN_OUT_DIR, then the config file,
// then the working directory.
func resolveOutDir(outFlag, configured string) (string, error) {
	dir := strings.TrimSpace(outFlag)
	if dir == "" {
		dir = strings.TrimSpace(os.Getenv(envOutDir))
	}
	if dir == "" {
		dir = strings.TrimSpace(configured)
	}
	if dir == "" {
		dir = "."
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func checkModelFile(path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}
	if st.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
