// Package tmpl renders the fixed set of project skeleton files.
//
// Placeholders use the $name / ${name} syntax; "$$" renders a literal "$".
// Substitution is non-strict: a placeholder without a parameter, or a "$"
// that does not start a valid placeholder, is copied through verbatim. The
// top-level CMakeLists.txt relies on this for $ENV{IDF_PATH}, and older
// template overrides keep rendering when new parameters are introduced.
package tmpl

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

var ErrUnknownTemplate = errors.New("tmpl: unknown template")

//go:embed templates
var embedded embed.FS

const root = "templates"

// Parameter keys understood by the embedded templates.
const (
	KeyYear               = "current_year"
	KeyModelName          = "model_name"
	KeyNumOperations      = "num_of_operations"
	KeyResolver           = "resolver"
	KeyModelNameHeader    = "model_name_header"
	KeyTensorArenaSize    = "tensor_arena_size"
	KeyInferencesPerCycle = "inferences_per_cycle"
	KeyProjectName        = "project_name"
)

// Names lists every template in render order. A name is also the output path
// relative to the project directory.
var Names = []string{
	"main/main_functions.cc",
	"main/CMakeLists.txt",
	"main/main.cc",
	"main/main_functions.h",
	"main/output_handler.cc",
	"main/output_handler.h",
	"main/constants.h",
	"main/constants.cc",
	"CMakeLists.txt",
}

// Params maps placeholder names to their values.
type Params map[string]string

var placeholderRe = regexp.MustCompile(`\$(?:\$|[_a-zA-Z][_a-zA-Z0-9]*|\{[_a-zA-Z][_a-zA-Z0-9]*\})`)

// Substitute replaces known placeholders in text.
func Substitute(text string, params Params) string {
	return placeholderRe.ReplaceAllStringFunc(text, func(m string) string {
		if m == "$$" {
			return "$"
		}
		if v, ok := params[placeholderName(m)]; ok {
			return v
		}
		return m
	})
}

// Unresolved returns the distinct placeholder names in text that params
// does not define, in order of first appearance.
func Unresolved(text string, params Params) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range placeholderRe.FindAllString(text, -1) {
		if m == "$$" {
			continue
		}
		name := placeholderName(m)
		if _, ok := params[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func placeholderName(m string) string {
	if strings.HasPrefix(m, "${") {
		return m[2 : len(m)-1]
	}
	return m[1:]
}

// Rendered is the output of one template.
type Rendered struct {
	Name       string
	Text       string
	Unresolved []string
}

// Set resolves template sources, preferring an override directory over the
// embedded skeletons.
type Set struct {
	base     fs.FS
	override fs.FS
}

// Default returns the embedded template set.
func Default() *Set {
	sub, err := fs.Sub(embedded, root)
	if err != nil {
		panic(err)
	}
	return &Set{base: sub}
}

// WithOverrideDir layers dir over the embedded templates. An empty dir
// returns the embedded set.
func WithOverrideDir(dir string) (*Set, error) {
	s := Default()
	if strings.TrimSpace(dir) == "" {
		return s, nil
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("tmpl: templates path is not a directory: %s", dir)
	}
	s.override = os.DirFS(dir)
	return s, nil
}

func known(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// Source returns the raw text of the named template.
func (s *Set) Source(name string) (string, error) {
	name = path.Clean(name)
	if !known(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}
	if s.override != nil {
		b, err := fs.ReadFile(s.override, name)
		if err == nil {
			return string(b), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("tmpl: read override %s: %w", name, err)
		}
	}
	b, err := fs.ReadFile(s.base, name)
	if err != nil {
		return "", fmt.Errorf("tmpl: read %s: %w", name, err)
	}
	return string(b), nil
}

// Render substitutes params into the named template.
func (s *Set) Render(name string, params Params) (Rendered, error) {
	src, err := s.Source(name)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{
		Name:       path.Clean(name),
		Text:       Substitute(src, params),
		Unresolved: Unresolved(src, params),
	}, nil
}

// RenderAll renders every template in Names order.
func (s *Set) RenderAll(params Params) ([]Rendered, error) {
	out := make([]Rendered, 0, len(Names))
	for _, name := range Names {
		r, err := s.Render(name, params)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
