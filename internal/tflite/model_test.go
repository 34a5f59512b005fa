package tflite

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/google/go-cmp/cmp"
)

type testOp struct {
	builtin int32
	custom  string
	version int32
}

// buildModel assembles a minimal Model flatbuffer with the given operator
// codes, one empty subgraph and two buffers.
func buildModel(t *testing.T, version uint32, desc string, ops []testOp) []byte {
	t.Helper()

	b := flatbuffers.NewBuilder(256)
	descOff := b.CreateString(desc)

	opOffs := make([]flatbuffers.UOffsetT, len(ops))
	for i, op := range ops {
		var customOff flatbuffers.UOffsetT
		if op.custom != "" {
			customOff = b.CreateString(op.custom)
		}
		b.StartObject(4)
		deprecated := op.builtin
		if deprecated > 127 {
			deprecated = 127
		}
		b.PrependInt8Slot(0, int8(deprecated), 0)
		if customOff != 0 {
			b.PrependUOffsetTSlot(1, customOff, 0)
		}
		b.PrependInt32Slot(2, op.version, 1)
		b.PrependInt32Slot(3, op.builtin, 0)
		opOffs[i] = b.EndObject()
	}

	b.StartVector(4, len(opOffs), 4)
	for i := len(opOffs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(opOffs[i])
	}
	opsVec := b.EndVector(len(opOffs))

	b.StartObject(0)
	subgraph := b.EndObject()
	b.StartVector(4, 1, 4)
	b.PrependUOffsetT(subgraph)
	subgraphs := b.EndVector(1)

	bufOffs := make([]flatbuffers.UOffsetT, 2)
	for i := range bufOffs {
		b.StartObject(0)
		bufOffs[i] = b.EndObject()
	}
	b.StartVector(4, len(bufOffs), 4)
	for i := len(bufOffs) - 1; i >= 0; i-- {
		b.PrependUOffsetT(bufOffs[i])
	}
	buffers := b.EndVector(len(bufOffs))

	b.StartObject(5)
	b.PrependUint32Slot(0, version, 0)
	b.PrependUOffsetTSlot(1, opsVec, 0)
	b.PrependUOffsetTSlot(2, subgraphs, 0)
	b.PrependUOffsetTSlot(3, descOff, 0)
	b.PrependUOffsetTSlot(4, buffers, 0)
	model := b.EndObject()
	b.FinishWithFileIdentifier(model, []byte(Identifier))
	return b.FinishedBytes()
}

func TestParse(t *testing.T) {
	t.Parallel()

	data := buildModel(t, 3, "TOCO Converted.", []testOp{
		{builtin: 6, version: 1},
		{builtin: 9, version: 4},
		{builtin: BuiltinCustom, custom: "TFLite_Detection_PostProcess", version: 1},
	})
	info, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Info{
		Size:        len(data),
		Version:     3,
		Description: "TOCO Converted.",
		OperatorCodes: []OperatorCode{
			{Builtin: 6, Version: 1},
			{Builtin: 9, Version: 4},
			{Builtin: BuiltinCustom, Custom: "TFLite_Detection_PostProcess", Version: 1},
		},
		Subgraphs: 1,
		Buffers:   2,
	}
	if diff := cmp.Diff(want, info); diff != "" {
		t.Fatalf("info mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"TFLite_Detection_PostProcess"}, info.CustomOperators()); diff != "" {
		t.Fatalf("custom ops mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBuiltinAboveDeprecatedRange(t *testing.T) {
	t.Parallel()

	data := buildModel(t, 3, "", []testOp{{builtin: 150, version: 1}})
	info, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if info.OperatorCodes[0].Builtin != 150 {
		t.Fatalf("expected builtin 150, got %d", info.OperatorCodes[0].Builtin)
	}
}

func TestParseRejectsOtherFiles(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("BM\x00\x00\x00\x00\x00\x00\x00\x00")); !errors.Is(err, ErrNotTFLite) {
		t.Fatalf("expected ErrNotTFLite, got %v", err)
	}
	if _, err := Parse([]byte{1, 2}); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
	bad := []byte{0xff, 0xff, 0, 0, 'T', 'F', 'L', '3'}
	if _, err := Parse(bad); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for out of range root, got %v", err)
	}
}

// oversizedOpcodes is a model whose operator_codes vector claims
// 0xFFFFFFFF entries inside a 32 byte file.
func oversizedOpcodes() []byte {
	b := make([]byte, 32)
	binary.LittleEndian.PutUint32(b[0:], 16) // root table
	copy(b[4:], Identifier)
	// vtable: size, table size, version slot, operator_codes slot
	binary.LittleEndian.PutUint16(b[8:], 8)
	binary.LittleEndian.PutUint16(b[10:], 8)
	binary.LittleEndian.PutUint16(b[12:], 0)
	binary.LittleEndian.PutUint16(b[14:], 4)
	binary.LittleEndian.PutUint32(b[16:], 8) // soffset back to the vtable
	binary.LittleEndian.PutUint32(b[20:], 4) // operator_codes -> 24
	binary.LittleEndian.PutUint32(b[24:], 0xFFFFFFFF)
	return b
}

func TestParseRejectsOversizedVector(t *testing.T) {
	t.Parallel()

	_, err := Parse(oversizedOpcodes())
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestInspectFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "hello_world.tflite")
	data := buildModel(t, 3, "hello", []testOp{{builtin: 9, version: 1}})
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	info, err := Inspect(path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if info.Version != SchemaVersion || len(info.OperatorCodes) != 1 || info.Size != len(data) {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestOpenTooSmall(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tiny.tflite")
	if err := os.WriteFile(path, []byte("TFL"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "m.tflite")
	if err := os.WriteFile(path, buildModel(t, 3, "", nil), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, err := f.Info(); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt after close, got %v", err)
	}
}
