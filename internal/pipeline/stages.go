package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samcharles93/tflmgen/internal/artifact"
	"github.com/samcharles93/tflmgen/internal/reformat"
	"github.com/samcharles93/tflmgen/internal/scan"
	"github.com/samcharles93/tflmgen/internal/tflite"
	"github.com/samcharles93/tflmgen/internal/tmpl"
)

// ErrEmptyStem is returned for model paths whose base name starts with ".".
var ErrEmptyStem = errors.New("pipeline: model file name has an empty stem")

const (
	// ResolverHeader is written by the op resolver generator.
	ResolverHeader = "gen_micro_mutable_op_resolver.h"
	// ResolverVariable is the resolver instance name used by the templates.
	ResolverVariable = "micro_op_resolver"

	DefaultTensorArenaSize    = 50000
	DefaultInferencesPerCycle = 20
)

// Stem returns the model file's base name up to the first ".".
func Stem(model string) (string, error) {
	base := filepath.Base(model)
	stem, _, _ := strings.Cut(base, ".")
	if stem == "" || stem == string(filepath.Separator) {
		return "", fmt.Errorf("%w: %q", ErrEmptyStem, model)
	}
	return stem, nil
}

// ModelSource is the processed <stem>_model_data.cc.
type ModelSource struct {
	Text     string
	Symbol   string
	Reformat reformat.Result
	// Patched is false when the include directive was not found.
	Patched bool
}

// ProcessModelSource patches the model header include, recovers the array
// symbol and reformats the array. toolOutDir is the output directory as the
// array generator saw it. A missing include line is returned as an
// ErrIncludeLineNotFound error only when strict is set.
func ProcessModelSource(ex *scan.Scanner, text, toolOutDir, stem string, strict bool) (ModelSource, error) {
	var out ModelSource

	patched, err := artifact.PatchModelIncludeAt(text, toolOutDir, stem)
	switch {
	case err == nil:
		out.Patched = true
	case errors.Is(err, artifact.ErrIncludeLineNotFound) && !strict:
	default:
		return ModelSource{}, err
	}

	symbol, err := ex.ModelSymbol(patched)
	if err != nil {
		return ModelSource{}, err
	}
	res, err := reformat.Reformat(ex, patched)
	if err != nil {
		return ModelSource{}, err
	}
	out.Text = res.Source
	out.Symbol = symbol
	out.Reformat = res
	return out, nil
}

// ParamInput carries the non-extracted template values.
type ParamInput struct {
	Year               int
	TensorArenaSize    int
	InferencesPerCycle int
	ProjectName        string
}

// Params builds the template parameter set.
func Params(ids scan.Identifiers, in ParamInput) tmpl.Params {
	arena := in.TensorArenaSize
	if arena <= 0 {
		arena = DefaultTensorArenaSize
	}
	inferences := in.InferencesPerCycle
	if inferences <= 0 {
		inferences = DefaultInferencesPerCycle
	}
	project := in.ProjectName
	if project == "" {
		project = ids.Stem
	}
	return tmpl.Params{
		tmpl.KeyYear:               strconv.Itoa(in.Year),
		tmpl.KeyModelName:          ids.Symbol,
		tmpl.KeyNumOperations:      strconv.Itoa(ids.OperationCount),
		tmpl.KeyResolver:           ResolverVariable,
		tmpl.KeyModelNameHeader:    ids.Stem,
		tmpl.KeyTensorArenaSize:    strconv.Itoa(arena),
		tmpl.KeyInferencesPerCycle: strconv.Itoa(inferences),
		tmpl.KeyProjectName:        project,
	}
}

// Artifacts converts rendered templates into project files.
func Artifacts(rendered []tmpl.Rendered) []artifact.Artifact {
	out := make([]artifact.Artifact, len(rendered))
	for i, r := range rendered {
		out[i] = artifact.Artifact{Path: r.Name, Content: r.Text}
	}
	return out
}

// CrossCheck compares the extracted operation count with the resolver
// header's declared count and the model's operator table. Mismatches are
// reported as warnings; none of them stop a run.
func CrossCheck(ids scan.Identifiers, info *tflite.Info) []string {
	var warnings []string
	if ids.DeclaredOperators >= 0 && ids.DeclaredOperators != ids.OperationCount {
		warnings = append(warnings, fmt.Sprintf(
			"resolver header declares %d operators but %d resolver lines were found",
			ids.DeclaredOperators, ids.OperationCount))
	}
	if info == nil {
		return warnings
	}
	if info.Version != tflite.SchemaVersion {
		warnings = append(warnings, fmt.Sprintf("model schema version %d, expected %d", info.Version, tflite.SchemaVersion))
	}
	if n := len(info.OperatorCodes); n != ids.OperationCount {
		warnings = append(warnings, fmt.Sprintf(
			"model has %d operator codes but %d resolver lines were found", n, ids.OperationCount))
	}
	return warnings
}
