// Package artifact persists rendered project files.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

var ErrIncludeLineNotFound = errors.New("artifact: include line not found")

// Artifact is the final content of one output file. Path is relative to the
// writer root and uses forward slashes.
type Artifact struct {
	Path    string
	Content string
}

// Writer writes artifacts below Root, replacing existing files.
type Writer struct {
	Root string
	Perm os.FileMode
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{Root: dir, Perm: 0o644}
}

// Target returns the on-disk path of a relative artifact path.
func (w *Writer) Target(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("artifact: path escapes output root: %q", rel)
	}
	return filepath.Join(w.Root, clean), nil
}

// Write persists a single artifact and returns its on-disk path.
func (w *Writer) Write(a Artifact) (string, error) {
	target, err := w.Target(a.Path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	perm := w.Perm
	if perm == 0 {
		perm = 0o644
	}
	if err := os.WriteFile(target, []byte(a.Content), perm); err != nil {
		return "", fmt.Errorf("artifact: write %s: %w", target, err)
	}
	return target, nil
}

// WriteAll writes artifacts in order and stops at the first failure. Files
// already written are left in place.
func (w *Writer) WriteAll(artifacts []Artifact) ([]string, error) {
	written := make([]string, 0, len(artifacts))
	for _, a := range artifacts {
		p, err := w.Write(a)
		if err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

// IncludeDirective formats a quoted include line.
func IncludeDirective(header string) string {
	return `#include "` + header + `"`
}

// PatchInclude replaces every line starting with from by to. It reports
// whether any line matched; the text is returned unchanged otherwise.
func PatchInclude(text, from, to string) (string, bool) {
	lines := strings.SplitAfter(text, "\n")
	matched := false
	for i, line := range lines {
		if !strings.HasPrefix(line, from) {
			continue
		}
		matched = true
		if strings.HasSuffix(line, "\n") {
			lines[i] = to + "\n"
		} else {
			lines[i] = to
		}
	}
	if !matched {
		return text, false
	}
	return strings.Join(lines, ""), true
}

// PatchModelInclude rewrites the generator's prefixed include of the model
// data header to the bare file name used inside the component directory.
func PatchModelInclude(text, stem string) (string, error) {
	return PatchModelIncludeAt(text, stem+"/main", stem)
}

// PatchModelIncludeAt is PatchModelInclude for a generator that was given
// outDir (slash separated, as passed on its command line).
func PatchModelIncludeAt(text, outDir, stem string) (string, error) {
	header := ModelHeader(stem)
	from := IncludeDirective(path.Join(outDir, header))
	out, ok := PatchInclude(text, from, IncludeDirective(header))
	if !ok {
		return text, fmt.Errorf("%w: %s", ErrIncludeLineNotFound, from)
	}
	return out, nil
}

// ModelHeader is the header generate_cc_arrays.py emits for a model stem.
func ModelHeader(stem string) string { return stem + "_model_data.h" }

// ModelSource is the matching source file.
func ModelSource(stem string) string { return stem + "_model_data.cc" }
