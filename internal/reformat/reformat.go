// Package reformat rewrites the model byte array emitted by
// generate_cc_arrays.py into a fixed-width grid.
package reformat

import (
	"strings"

	"github.com/samcharles93/tflmgen/internal/scan"
)

const (
	// RowWidth is the number of elements per output row.
	RowWidth = 12
	indent   = "    "
)

// NormalizeElement pads three character hex literals to two digits.
// Other shapes pass through unchanged.
func NormalizeElement(el string) string {
	if len(el) != 3 {
		return el
	}
	if el == "0x0" {
		return "0x00"
	}
	return el[:2] + "0" + el[2:]
}

// Elements splits a raw element list, trimming whitespace, dropping empty
// entries and normalizing each literal.
func Elements(body string) []string {
	parts := strings.Split(body, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, NormalizeElement(p))
	}
	return out
}

// Chunk groups elements into rows of at most width entries joined by ", ".
func Chunk(elements []string, width int) []string {
	if width <= 0 {
		width = RowWidth
	}
	rows := make([]string, 0, (len(elements)+width-1)/width)
	for i := 0; i < len(elements); i += width {
		end := min(i+width, len(elements))
		rows = append(rows, strings.Join(elements[i:end], ", "))
	}
	return rows
}

// Grid joins rows with ",\n".
func Grid(rows []string) string {
	return strings.Join(rows, ",\n")
}

// Result is the outcome of reformatting one source file.
type Result struct {
	Source   string
	Elements int
	Rows     int
}

// Reformat rewrites the array found by ex. The declaration keeps its own line
// ending in "{", each row is indented and the closing marker gets its own
// line. Text outside the span is untouched.
func Reformat(ex scan.ArrayExtractor, source string) (Result, error) {
	span, err := ex.LocateArray(source)
	if err != nil {
		return Result{}, err
	}
	elements := Elements(span.Body(source))
	rows := Chunk(elements, RowWidth)

	var b strings.Builder
	b.Grow(len(source) + len(rows)*(len(indent)+2))
	b.WriteString(source[:span.BodyStart])
	b.WriteByte('\n')
	for i, row := range rows {
		b.WriteString(indent)
		b.WriteString(row)
		if i < len(rows)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString(source[span.BodyEnd:])

	return Result{Source: b.String(), Elements: len(elements), Rows: len(rows)}, nil
}
