package reformat

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/samcharles93/tflmgen/internal/scan"
)

func TestNormalizeElement(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"0x0", "0x00"},
		{"0x4", "0x04"},
		{"0xA", "0x0A"},
		{"0xf", "0x0f"},
		{"0xFF", "0xFF"},
		{"0x1c", "0x1c"},
		{"abc", "ab0c"},
		{"12", "12"},
		{"", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeElement(tc.in); got != tc.want {
				t.Fatalf("NormalizeElement(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestElementsHexShape(t *testing.T) {
	t.Parallel()

	hexRe := regexp.MustCompile(`^0x[0-9a-fA-F]{2}$`)
	var raw []string
	for i := range 256 {
		raw = append(raw, fmt.Sprintf("%#x", i))
	}
	got := Elements(strings.Join(raw, ","))
	if len(got) != 256 {
		t.Fatalf("expected 256 elements, got %d", len(got))
	}
	for i, el := range got {
		if !hexRe.MatchString(el) {
			t.Fatalf("element %d = %q does not have two hex digits", i, el)
		}
	}
}

func TestElementsTrimsAndDropsEmpty(t *testing.T) {
	t.Parallel()

	got := Elements("\n    0x1, 0x22 ,\t0x0,\n")
	want := []string{"0x01", "0x22", "0x00"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("elements mismatch (-want +got):\n%s", diff)
	}
}

func TestChunk(t *testing.T) {
	t.Parallel()

	elements := make([]string, 25)
	for i := range elements {
		elements[i] = "0x01"
	}
	rows := Chunk(elements, RowWidth)
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for i, want := range []int{12, 12, 1} {
		if got := len(strings.Split(rows[i], ", ")); got != want {
			t.Fatalf("row %d has %d elements, want %d", i, got, want)
		}
	}
	grid := Grid(rows)
	if strings.Count(grid, ",\n") != 2 {
		t.Fatalf("expected rows joined by \",\\n\", got %q", grid)
	}
}

func TestChunkEmpty(t *testing.T) {
	t.Parallel()

	if rows := Chunk(nil, RowWidth); len(rows) != 0 {
		t.Fatalf("expected no rows, got %v", rows)
	}
}

const generated = `#include <cstdint>

#include "model_model_data.h"

const unsigned int g_model_model_data_size = 14;
alignas(16) const unsigned char g_model_model_data[] = {0x1c,0x0,0x0,0x0,0x54,0x46,0x4c,0x33,0x14,0x0,0x20,0x0,0x1c,0x4};
`

func TestReformat(t *testing.T) {
	t.Parallel()

	res, err := Reformat(scan.New(), generated)
	if err != nil {
		t.Fatalf("reformat: %v", err)
	}
	want := `#include <cstdint>

#include "model_model_data.h"

const unsigned int g_model_model_data_size = 14;
alignas(16) const unsigned char g_model_model_data[] = {
    0x1c, 0x00, 0x00, 0x00, 0x54, 0x46, 0x4c, 0x33, 0x14, 0x00, 0x20, 0x00,
    0x1c, 0x04
};
`
	if diff := cmp.Diff(want, res.Source); diff != "" {
		t.Fatalf("reformatted source mismatch (-want +got):\n%s", diff)
	}
	if res.Elements != 14 || res.Rows != 2 {
		t.Fatalf("unexpected counts: elements=%d rows=%d", res.Elements, res.Rows)
	}
}

func TestReformatIdempotent(t *testing.T) {
	t.Parallel()

	first, err := Reformat(scan.New(), generated)
	if err != nil {
		t.Fatalf("first pass: %v", err)
	}
	second, err := Reformat(scan.New(), first.Source)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if diff := cmp.Diff(first.Source, second.Source); diff != "" {
		t.Fatalf("reformat is not idempotent (-first +second):\n%s", diff)
	}
}

func TestReformatMissingMarker(t *testing.T) {
	t.Parallel()

	_, err := Reformat(scan.New(), "const unsigned int size = 0;\n")
	if !errors.Is(err, scan.ErrArrayMarkerNotFound) {
		t.Fatalf("expected ErrArrayMarkerNotFound, got %v", err)
	}
}

func TestReformatPassesThroughOddTokens(t *testing.T) {
	t.Parallel()

	res, err := Reformat(scan.New(), "alignas(16) const unsigned char x[] = {zz,0x1,12345};")
	if err != nil {
		t.Fatalf("reformat: %v", err)
	}
	if !strings.Contains(res.Source, "    zz, 0x01, 12345\n};") {
		t.Fatalf("unexpected output %q", res.Source)
	}
}
