package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWriteRead(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	m := New("tflmgen test", now)
	m.Model = "hello_world.tflite"
	m.Stem = "hello_world"
	m.Symbol = "g_hello_world_model_data"
	m.Operations = []string{"micro_op_resolver.AddFullyConnected();"}
	m.OperationCount = 1
	m.Files = []string{"main/main.cc"}

	dir := t.TempDir()
	path, err := m.Write(dir)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Fatalf("unexpected path %q", path)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.RunID != m.RunID || got.Symbol != m.Symbol || got.OperationCount != 1 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if !got.GeneratedAt.Equal(now) {
		t.Fatalf("generated_at mismatch: got %v want %v", got.GeneratedAt, now)
	}
	if got.GeneratedAt.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", got.GeneratedAt.Location())
	}
}

func TestNewAssignsUniqueRunIDs(t *testing.T) {
	t.Parallel()

	a := New("x", time.Now())
	b := New("x", time.Now())
	if a.RunID == b.RunID {
		t.Fatalf("expected distinct run ids")
	}
	if _, err := uuid.Parse(a.RunID); err != nil {
		t.Fatalf("run id is not a uuid: %v", err)
	}
}

func TestEncodeOmitsEmptyWarnings(t *testing.T) {
	t.Parallel()

	b, err := New("x", time.Now()).Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(b), "warnings") {
		t.Fatalf("expected warnings to be omitted: %s", b)
	}
	if !strings.HasSuffix(string(b), "}\n") {
		t.Fatalf("expected trailing newline: %q", b)
	}
}

func TestReadRejectsBadRunID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(`{"run_id":"nope"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Read(path); err == nil {
		t.Fatalf("expected invalid run id error")
	}
}
