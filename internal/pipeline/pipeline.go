// Package pipeline runs one code generation: external tools, source patching,
// array reformatting, template rendering and artifact output.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samcharles93/tflmgen/internal/artifact"
	"github.com/samcharles93/tflmgen/internal/logger"
	"github.com/samcharles93/tflmgen/internal/manifest"
	"github.com/samcharles93/tflmgen/internal/metrics"
	"github.com/samcharles93/tflmgen/internal/scan"
	"github.com/samcharles93/tflmgen/internal/tflite"
	"github.com/samcharles93/tflmgen/internal/tmpl"
	"github.com/samcharles93/tflmgen/internal/toolchain"
)

// Options configures a run. Zero values fall back to the defaults noted on
// each field.
type Options struct {
	Model string
	// OutDir holds the <stem> project directory. Defaults to ".".
	OutDir string

	ToolRoot string
	Python   string
	Runner   toolchain.Runner
	// SkipTools reuses generated sources already present in the main dir.
	SkipTools bool

	StrictInclude      bool
	TensorArenaSize    int
	InferencesPerCycle int
	// Year defaults to the current year.
	Year        int
	ProjectName string

	Templates  *tmpl.Set
	Scanner    *scan.Scanner
	NoManifest bool
	Generator  string

	Now func() time.Time
}

// Result describes a finished run.
type Result struct {
	Stem       string
	ProjectDir string
	MainDir    string

	Identifiers scan.Identifiers
	Model       *tflite.Info
	Source      ModelSource

	// Files are project-relative, slash separated.
	Files    []string
	Manifest string
	Warnings []string
}

type layout struct {
	stem       string
	model      string
	modelDir   string
	projectDir string
	mainDir    string
	// toolOutDir is mainDir relative to modelDir, the form both generators
	// receive and the array generator embeds in its include line.
	toolOutDir string
}

func resolveLayout(model, outDir string) (layout, error) {
	stem, err := Stem(model)
	if err != nil {
		return layout{}, err
	}
	if outDir == "" {
		outDir = "."
	}
	absModel, err := filepath.Abs(model)
	if err != nil {
		return layout{}, err
	}
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return layout{}, err
	}
	l := layout{
		stem:       stem,
		model:      absModel,
		modelDir:   filepath.Dir(absModel),
		projectDir: filepath.Join(absOut, stem),
	}
	l.mainDir = filepath.Join(l.projectDir, "main")
	rel, err := filepath.Rel(l.modelDir, l.mainDir)
	if err != nil {
		rel = l.mainDir
	}
	l.toolOutDir = filepath.ToSlash(rel)
	return l, nil
}

// Run executes the whole generation. Files written before a failure are left
// in place.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := logger.FromContext(ctx)
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	started := now()

	l, err := resolveLayout(opts.Model, opts.OutDir)
	if err != nil {
		return nil, err
	}
	log = log.With("stem", l.stem)
	res := &Result{Stem: l.stem, ProjectDir: l.projectDir, MainDir: l.mainDir}
	warn := func(msg string) {
		res.Warnings = append(res.Warnings, msg)
		log.Warn(msg)
	}

	if strings.EqualFold(filepath.Ext(l.model), ".tflite") {
		info, err := tflite.Inspect(l.model)
		metrics.ObserveStage("inspect", err)
		switch {
		case err == nil:
			res.Model = &info
			log.Debug("inspected model", "version", info.Version, "operator_codes", len(info.OperatorCodes), "subgraphs", info.Subgraphs)
		case errors.Is(err, fs.ErrNotExist) && !opts.SkipTools:
			return nil, fmt.Errorf("model %s: %w", opts.Model, err)
		case !errors.Is(err, fs.ErrNotExist):
			warn(fmt.Sprintf("model inspection failed: %v", err))
		}
	}

	if err := os.MkdirAll(l.mainDir, 0o755); err != nil {
		return nil, err
	}

	if !opts.SkipTools {
		if err := runTools(ctx, opts, l); err != nil {
			return nil, err
		}
	}

	sc := opts.Scanner
	if sc == nil {
		sc = scan.New()
	}

	modelPath := filepath.Join(l.mainDir, artifact.ModelSource(l.stem))
	raw, err := os.ReadFile(modelPath)
	if err != nil {
		metrics.ObserveStage("reformat", err)
		return nil, fmt.Errorf("read generated model source: %w", err)
	}
	src, err := ProcessModelSource(sc, string(raw), l.toolOutDir, l.stem, opts.StrictInclude)
	metrics.ObserveStage("reformat", err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", modelPath, err)
	}
	if !src.Patched {
		warn(fmt.Sprintf("include line %q not found in %s", artifact.IncludeDirective(l.toolOutDir+"/"+artifact.ModelHeader(l.stem)), filepath.Base(modelPath)))
	}
	if err := os.WriteFile(modelPath, []byte(src.Text), 0o644); err != nil {
		return nil, fmt.Errorf("write model source: %w", err)
	}
	metrics.ArrayElements.Observe(float64(src.Reformat.Elements))
	res.Source = src
	log.Info("reformatted model array", "symbol", src.Symbol, "elements", src.Reformat.Elements, "rows", src.Reformat.Rows)

	header, err := os.ReadFile(filepath.Join(l.mainDir, ResolverHeader))
	if err != nil {
		metrics.ObserveStage("extract", err)
		return nil, fmt.Errorf("read resolver header: %w", err)
	}
	ids, err := scan.Extract(sc, src.Text, string(header), l.stem)
	metrics.ObserveStage("extract", err)
	if err != nil {
		return nil, err
	}
	res.Identifiers = ids
	log.Info("extracted operations", "count", ids.OperationCount)
	for _, op := range ids.Operations {
		log.Debug("operation", "line", op)
	}
	for _, w := range CrossCheck(ids, res.Model) {
		warn(w)
	}

	year := opts.Year
	if year <= 0 {
		year = started.Year()
	}
	params := Params(ids, ParamInput{
		Year:               year,
		TensorArenaSize:    opts.TensorArenaSize,
		InferencesPerCycle: opts.InferencesPerCycle,
		ProjectName:        opts.ProjectName,
	})

	set := opts.Templates
	if set == nil {
		set = tmpl.Default()
	}
	rendered, err := set.RenderAll(params)
	metrics.ObserveStage("render", err)
	if err != nil {
		return nil, err
	}
	for _, r := range rendered {
		if len(r.Unresolved) > 0 {
			log.Debug("placeholders left verbatim", "template", r.Name, "names", r.Unresolved)
		}
	}

	w := artifact.NewWriter(l.projectDir)
	written, err := w.WriteAll(Artifacts(rendered))
	metrics.ObserveStage("write", err)
	metrics.ArtifactsWritten.Add(float64(len(written)))
	if err != nil {
		return nil, err
	}
	res.Files = append(res.Files, "main/"+artifact.ModelSource(l.stem))
	for _, r := range rendered {
		res.Files = append(res.Files, r.Name)
	}
	log.Info("wrote project", "dir", l.projectDir, "files", len(written))

	if !opts.NoManifest {
		path, err := writeManifest(opts, res, started)
		metrics.ObserveStage("manifest", err)
		if err != nil {
			return nil, err
		}
		res.Manifest = path
	}
	return res, nil
}

func runTools(ctx context.Context, opts Options, l layout) error {
	log := logger.FromContext(ctx)
	tc, err := toolchain.New(opts.ToolRoot, opts.Python, opts.Runner)
	if err != nil {
		return err
	}
	model := filepath.Base(l.model)

	log.Info("generating model arrays", "tool_root", tc.Root)
	err = tc.GenerateArrays(ctx, l.modelDir, l.toolOutDir, model)
	metrics.ObserveStage("generate_arrays", err)
	if err != nil {
		return err
	}

	log.Info("generating op resolver")
	err = tc.GenerateResolver(ctx, l.modelDir, l.toolOutDir, model)
	metrics.ObserveStage("generate_resolver", err)
	return err
}

func writeManifest(opts Options, res *Result, started time.Time) (string, error) {
	generator := opts.Generator
	if generator == "" {
		generator = "tflmgen"
	}
	m := manifest.New(generator, started)
	m.Model = opts.Model
	m.Stem = res.Stem
	m.Symbol = res.Identifiers.Symbol
	m.OperationCount = res.Identifiers.OperationCount
	m.Operations = res.Identifiers.Operations
	m.ArrayElements = res.Source.Reformat.Elements
	if res.Model != nil {
		m.SchemaVersion = res.Model.Version
	}
	m.Files = res.Files
	m.Warnings = res.Warnings
	return m.Write(res.ProjectDir)
}
