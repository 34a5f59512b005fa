// Package manifest records what one generation run produced.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// FileName is written into the project directory.
const FileName = "tflmgen.json"

// Manifest describes a generated project.
type Manifest struct {
	RunID          string    `json:"run_id"`
	GeneratedAt    time.Time `json:"generated_at"`
	Generator      string    `json:"generator"`
	Model          string    `json:"model"`
	Stem           string    `json:"stem"`
	Symbol         string    `json:"symbol"`
	OperationCount int       `json:"operation_count"`
	Operations     []string  `json:"operations"`
	ArrayElements  int       `json:"array_elements"`
	SchemaVersion  uint32    `json:"schema_version,omitempty"`
	Files          []string  `json:"files"`
	Warnings       []string  `json:"warnings,omitempty"`
}

// New starts a manifest with a fresh run id.
func New(generator string, now time.Time) *Manifest {
	return &Manifest{
		RunID:       uuid.NewString(),
		GeneratedAt: now.UTC(),
		Generator:   generator,
	}
}

// Encode returns indented JSON terminated by a newline.
func (m *Manifest) Encode() ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

// Write stores the manifest in dir and returns its path.
func (m *Manifest) Write(dir string) (string, error) {
	b, err := m.Encode()
	if err != nil {
		return "", fmt.Errorf("manifest: encode: %w", err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("manifest: write: %w", err)
	}
	return path, nil
}

// Read loads a manifest written by Write.
func Read(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("manifest: decode %s: %w", path, err)
	}
	if _, err := uuid.Parse(m.RunID); err != nil {
		return nil, fmt.Errorf("manifest: invalid run id %q: %w", m.RunID, err)
	}
	return &m, nil
}
