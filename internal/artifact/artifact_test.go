package artifact

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestPatchModelInclude(t *testing.T) {
	t.Parallel()

	in := "#include <cstdint>\n\n#include \"model/main/model_model_data.h\"\n\nconst int x = 1;\n"
	got, err := PatchModelInclude(in, "model")
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	want := "#include <cstdint>\n\n#include \"model_model_data.h\"\n\nconst int x = 1;\n"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPatchModelIncludeLeavesOtherIncludes(t *testing.T) {
	t.Parallel()

	in := "#include \"other/main/other_model_data.h\"\n#include \"model_model_data.h\"\n"
	got, err := PatchModelInclude(in, "model")
	if !errors.Is(err, ErrIncludeLineNotFound) {
		t.Fatalf("expected ErrIncludeLineNotFound, got %v", err)
	}
	if got != in {
		t.Fatalf("text changed without a match: %q", got)
	}
}

func TestPatchModelIncludeAt(t *testing.T) {
	t.Parallel()

	in := "#include \"../build/kws/main/kws_model_data.h\"\n"
	got, err := PatchModelIncludeAt(in, "../build/kws/main", "kws")
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if want := "#include \"kws_model_data.h\"\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestPatchIncludeLastLineWithoutNewline(t *testing.T) {
	t.Parallel()

	got, ok := PatchInclude("a\n#include \"x/main/x.h\"", `#include "x/main/x.h"`, `#include "x.h"`)
	if !ok {
		t.Fatalf("expected a match")
	}
	if got != "a\n#include \"x.h\"" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestPatchIncludeIndentedLineIgnored(t *testing.T) {
	t.Parallel()

	in := "  #include \"m/main/m_model_data.h\"\n"
	if _, ok := PatchInclude(in, `#include "m/main/m_model_data.h"`, `#include "m_model_data.h"`); ok {
		t.Fatalf("indented include should not match")
	}
}

func TestWriterWriteAll(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w := NewWriter(root)
	if err := os.MkdirAll(filepath.Join(root, "main"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "main", "main.cc"), []byte("old"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	written, err := w.WriteAll([]Artifact{
		{Path: "main/main.cc", Content: "new"},
		{Path: "CMakeLists.txt", Content: "project(x)\n"},
	})
	if err != nil {
		t.Fatalf("write all: %v", err)
	}
	if len(written) != 2 {
		t.Fatalf("expected 2 paths, got %v", written)
	}
	b, err := os.ReadFile(filepath.Join(root, "main", "main.cc"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "new" {
		t.Fatalf("expected overwrite, got %q", b)
	}
	if _, err := os.Stat(filepath.Join(root, "CMakeLists.txt")); err != nil {
		t.Fatalf("top level file missing: %v", err)
	}
}

func TestWriterRejectsEscapingPaths(t *testing.T) {
	t.Parallel()

	w := NewWriter(t.TempDir())
	for _, p := range []string{"../x", "/etc/passwd", "main/../../x"} {
		if _, err := w.Write(Artifact{Path: p, Content: "x"}); err == nil {
			t.Fatalf("expected error for %q", p)
		}
	}
}
