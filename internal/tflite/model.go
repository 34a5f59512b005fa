// Package tflite reads the header fields of a TensorFlow Lite flatbuffer
// model needed to sanity check generator output.
package tflite

import (
	"bytes"
	"fmt"

	flatbuffers "github.com/google/flatbuffers/go"
)

const (
	// Identifier is the flatbuffer file identifier of TFLite models.
	Identifier = "TFL3"
	// SchemaVersion is the schema version TFLite Micro accepts.
	SchemaVersion = 3

	minSize = 8
)

// vtable slots of the Model table.
const (
	slotVersion       flatbuffers.VOffsetT = 4
	slotOperatorCodes flatbuffers.VOffsetT = 6
	slotSubgraphs     flatbuffers.VOffsetT = 8
	slotDescription   flatbuffers.VOffsetT = 10
	slotBuffers       flatbuffers.VOffsetT = 12
)

// vtable slots of the OperatorCode table.
const (
	slotDeprecatedBuiltin flatbuffers.VOffsetT = 4
	slotCustomCode        flatbuffers.VOffsetT = 6
	slotOpVersion         flatbuffers.VOffsetT = 8
	slotBuiltinCode       flatbuffers.VOffsetT = 10
)

// BuiltinCustom is the builtin code of custom operators.
const BuiltinCustom = 32

// OperatorCode is one entry of the model's operator table.
type OperatorCode struct {
	Builtin int32  `json:"builtin"`
	Custom  string `json:"custom,omitempty"`
	Version int32  `json:"version"`
}

// Info summarizes a model.
type Info struct {
	Size          int            `json:"size"`
	Version       uint32         `json:"version"`
	Description   string         `json:"description,omitempty"`
	OperatorCodes []OperatorCode `json:"operator_codes"`
	Subgraphs     int            `json:"subgraphs"`
	Buffers       int            `json:"buffers"`
}

// CustomOperators returns the names of custom operators in table order.
func (i Info) CustomOperators() []string {
	var out []string
	for _, oc := range i.OperatorCodes {
		if oc.Builtin == BuiltinCustom && oc.Custom != "" {
			out = append(out, oc.Custom)
		}
	}
	return out
}

// HasIdentifier reports whether data carries the TFL3 file identifier.
func HasIdentifier(data []byte) bool {
	return len(data) >= minSize && bytes.Equal(data[4:8], []byte(Identifier))
}

// Parse decodes the Model table of a flatbuffer.
func Parse(data []byte) (info Info, err error) {
	if len(data) < minSize {
		return Info{}, ErrCorrupt
	}
	if !HasIdentifier(data) {
		return Info{}, ErrNotTFLite
	}
	root := flatbuffers.GetUOffsetT(data)
	if int(root)+4 > len(data) {
		return Info{}, ErrCorrupt
	}

	// flatbuffers accessors index without bounds checks.
	defer func() {
		if r := recover(); r != nil {
			info = Info{}
			err = fmt.Errorf("%w: %v", ErrCorrupt, r)
		}
	}()

	t := &flatbuffers.Table{Bytes: data, Pos: root}
	info.Size = len(data)
	if o := flatbuffers.UOffsetT(t.Offset(slotVersion)); o != 0 {
		info.Version = t.GetUint32(o + t.Pos)
	}
	if o := flatbuffers.UOffsetT(t.Offset(slotDescription)); o != 0 {
		info.Description = string(t.ByteVector(o + t.Pos))
	}
	info.Subgraphs = vectorLen(t, slotSubgraphs)
	info.Buffers = vectorLen(t, slotBuffers)

	if o := flatbuffers.UOffsetT(t.Offset(slotOperatorCodes)); o != 0 {
		n := t.VectorLen(o)
		start := t.Vector(o)
		if uint64(start)+uint64(n)*flatbuffers.SizeUOffsetT > uint64(len(data)) {
			return Info{}, fmt.Errorf("%w: operator code vector of %d entries exceeds file size", ErrCorrupt, n)
		}
		info.OperatorCodes = make([]OperatorCode, 0, n)
		for i := range n {
			pos := t.Indirect(start + flatbuffers.UOffsetT(i)*flatbuffers.SizeUOffsetT)
			info.OperatorCodes = append(info.OperatorCodes, operatorCode(&flatbuffers.Table{Bytes: data, Pos: pos}))
		}
	}
	return info, nil
}

func vectorLen(t *flatbuffers.Table, slot flatbuffers.VOffsetT) int {
	if o := flatbuffers.UOffsetT(t.Offset(slot)); o != 0 {
		return t.VectorLen(o)
	}
	return 0
}

// operatorCode resolves the builtin code the way the TFLite runtime does:
// the larger of the deprecated int8 field and the int32 field.
func operatorCode(t *flatbuffers.Table) OperatorCode {
	var oc OperatorCode
	var deprecated int32
	if o := flatbuffers.UOffsetT(t.Offset(slotDeprecatedBuiltin)); o != 0 {
		deprecated = int32(t.GetInt8(o + t.Pos))
	}
	if o := flatbuffers.UOffsetT(t.Offset(slotBuiltinCode)); o != 0 {
		oc.Builtin = t.GetInt32(o + t.Pos)
	}
	oc.Builtin = max(oc.Builtin, deprecated)
	if o := flatbuffers.UOffsetT(t.Offset(slotCustomCode)); o != 0 {
		oc.Custom = string(t.ByteVector(o + t.Pos))
	}
	oc.Version = 1
	if o := flatbuffers.UOffsetT(t.Offset(slotOpVersion)); o != 0 {
		oc.Version = t.GetInt32(o + t.Pos)
	}
	return oc
}
