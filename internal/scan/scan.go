// Package scan recovers identifiers and the model byte array from source
// emitted by the TFLM code generators. It matches text patterns rather than
// parsing C++; the generator output has one fixed shape.
package scan

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrIdentifierNotFound  = errors.New("scan: model array identifier not found")
	ErrArrayMarkerNotFound = errors.New("scan: byte array markers not found")
)

const (
	// DefaultOpenMarker opens the model data declaration in generate_cc_arrays output.
	DefaultOpenMarker = "alignas(16) const unsigned char"
	// DefaultCloseMarker ends the array initializer.
	DefaultCloseMarker = "};"
	// ResolverMarker appears on every operation registration line.
	ResolverMarker = "micro_op_resolver."
)

var (
	symbolRe = regexp.MustCompile(`const\s+unsigned\s+char\s+(\w+)\[\]`)
	numOpsRe = regexp.MustCompile(`kNumberOperators\s*=\s*(\d+)\s*;`)
)

// IdentifierExtractor recovers symbolic names from generated source.
type IdentifierExtractor interface {
	ModelSymbol(source string) (string, error)
	Operations(header string) []string
}

// ArrayExtractor finds the bounded byte array inside generated source.
type ArrayExtractor interface {
	LocateArray(source string) (ArraySpan, error)
}

// ArraySpan describes where the element list of the model array lives.
// Body is source[BodyStart:BodyEnd]; the closing marker starts at BodyEnd.
type ArraySpan struct {
	DeclStart int
	BodyStart int
	BodyEnd   int
	CloseEnd  int
}

// Body returns the raw element list of the span.
func (s ArraySpan) Body(source string) string {
	return source[s.BodyStart:s.BodyEnd]
}

// Identifiers is the set of values recovered from one generator run.
type Identifiers struct {
	Symbol         string
	Stem           string
	Operations     []string
	OperationCount int
	// DeclaredOperators is kNumberOperators from the resolver header, or -1.
	DeclaredOperators int
}

// Scanner implements both extractor interfaces with text patterns.
type Scanner struct {
	OpenMarker  string
	CloseMarker string
}

// New returns a Scanner using the markers emitted by generate_cc_arrays.py.
func New() *Scanner {
	return &Scanner{OpenMarker: DefaultOpenMarker, CloseMarker: DefaultCloseMarker}
}

func (s *Scanner) ModelSymbol(source string) (string, error) {
	m := symbolRe.FindStringSubmatch(source)
	if m == nil {
		return "", ErrIdentifierNotFound
	}
	return m[1], nil
}

// Operations returns every line carrying the resolver marker with all
// whitespace removed, in source order.
func (s *Scanner) Operations(header string) []string {
	var ops []string
	for _, line := range strings.Split(header, "\n") {
		if !strings.Contains(line, ResolverMarker) {
			continue
		}
		ops = append(ops, strings.Join(strings.Fields(line), ""))
	}
	return ops
}

func (s *Scanner) LocateArray(source string) (ArraySpan, error) {
	open, closing := s.markers()
	decl := strings.Index(source, open)
	if decl < 0 {
		return ArraySpan{}, ErrArrayMarkerNotFound
	}
	// The initializer must open before the declaration ends.
	rest := source[decl:]
	if semi := strings.IndexByte(rest, ';'); semi >= 0 {
		rest = rest[:semi]
	}
	brace := strings.IndexByte(rest, '{')
	if brace < 0 {
		return ArraySpan{}, ErrArrayMarkerNotFound
	}
	bodyStart := decl + brace + 1
	end := strings.Index(source[bodyStart:], closing)
	if end < 0 {
		return ArraySpan{}, ErrArrayMarkerNotFound
	}
	bodyEnd := bodyStart + end
	return ArraySpan{
		DeclStart: decl,
		BodyStart: bodyStart,
		BodyEnd:   bodyEnd,
		CloseEnd:  bodyEnd + len(closing),
	}, nil
}

func (s *Scanner) markers() (string, string) {
	open, closing := s.OpenMarker, s.CloseMarker
	if open == "" {
		open = DefaultOpenMarker
	}
	if closing == "" {
		closing = DefaultCloseMarker
	}
	return open, closing
}

// DeclaredOperators reads the kNumberOperators constant of a resolver header.
func DeclaredOperators(header string) (int, bool) {
	m := numOpsRe.FindStringSubmatch(header)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Extract builds the identifier set from the model data source and the
// resolver header. A missing model symbol is fatal.
func Extract(ex IdentifierExtractor, modelSource, resolverHeader, stem string) (Identifiers, error) {
	symbol, err := ex.ModelSymbol(modelSource)
	if err != nil {
		return Identifiers{}, err
	}
	ops := ex.Operations(resolverHeader)
	declared := -1
	if n, ok := DeclaredOperators(resolverHeader); ok {
		declared = n
	}
	return Identifiers{
		Symbol:            symbol,
		Stem:              stem,
		Operations:        ops,
		OperationCount:    len(ops),
		DeclaredOperators: declared,
	}, nil
}
