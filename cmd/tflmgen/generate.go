package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tflmgen/internal/logger"
	"github.com/samcharles93/tflmgen/internal/pipeline"
	"github.com/samcharles93/tflmgen/internal/tmpl"
	"github.com/samcharles93/tflmgen/internal/toolchain"
	"github.com/samcharles93/tflmgen/internal/version"
)

type generateOptions struct {
	model         string
	out           string
	toolRoot      string
	python        string
	skipTools     bool
	strictInclude bool
	arenaSize     int
	inferences    int
	year          int
	projectName   string
	noManifest    bool
	jsonOut       bool
}

type generateSummary struct {
	Project        string   `json:"project"`
	Stem           string   `json:"stem"`
	Symbol         string   `json:"symbol"`
	OperationCount int      `json:"operation_count"`
	ArrayElements  int      `json:"array_elements"`
	Files          []string `json:"files"`
	Manifest       string   `json:"manifest,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
}

func generateCmd() *cli.Command {
	var o generateOptions

	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"gen"},
		Usage:     "Run the TFLM generators and write a complete ESP-IDF project",
		ArgsUsage: "<model.tflite>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "model",
				Aliases:     []string{"m"},
				Usage:       "path to the .tflite model (or pass it as the first argument)",
				Destination: &o.model,
			},
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "directory receiving the <stem> project (default: $" + envOutDir + " or .)",
				Destination: &o.out,
			},
			toolRootFlag(&o.toolRoot),
			&cli.StringFlag{
				Name:        "python",
				Usage:       "python interpreter used to run the generator scripts",
				Value:       "python",
				Destination: &o.python,
			},
			&cli.BoolFlag{
				Name:        "skip-tools",
				Usage:       "reuse generated sources already present in <out>/<stem>/main",
				Destination: &o.skipTools,
			},
			&cli.BoolFlag{
				Name:        "strict-include",
				Usage:       "fail when the model data include line cannot be patched",
				Destination: &o.strictInclude,
			},
			&cli.IntFlag{
				Name:        "tensor-arena-size",
				Usage:       "kTensorArenaSize of the generated main_functions.cc",
				Value:       pipeline.DefaultTensorArenaSize,
				Destination: &o.arenaSize,
			},
			&cli.IntFlag{
				Name:        "inferences-per-cycle",
				Usage:       "kInferencesPerCycle of the generated constants.cc",
				Value:       pipeline.DefaultInferencesPerCycle,
				Destination: &o.inferences,
			},
			&cli.IntFlag{
				Name:        "year",
				Usage:       "copyright year in generated headers (default: current year)",
				Destination: &o.year,
			},
			&cli.StringFlag{
				Name:        "project-name",
				Usage:       "ESP-IDF project name (default: model stem)",
				Destination: &o.projectName,
			},
			templatesDirFlag(),
			&cli.BoolFlag{
				Name:        "no-manifest",
				Usage:       "do not write tflmgen.json",
				Destination: &o.noManifest,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print the run summary as JSON",
				Destination: &o.jsonOut,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyGenerateConfig(cmd, cfg, &o)

			model, err := resolveModelArg(o.model, cmd.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if !o.skipTools {
				if err := checkModelFile(model); err != nil {
					return cli.Exit(fmt.Sprintf("error: model: %v", err), 1)
				}
			}
			outDir, err := resolveOutDir(o.out, cfg.OutputDir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: output directory: %v", err), 1)
			}
			set, err := tmpl.WithOverrideDir(templatesDir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: templates: %v", err), 1)
			}

			log.Debug("generating", "model", model, "out", outDir, "skip_tools", o.skipTools)
			res, err := pipeline.Run(ctx, pipeline.Options{
				Model:              model,
				OutDir:             outDir,
				ToolRoot:           o.toolRoot,
				Python:             o.python,
				Runner:             toolchain.ExecRunner{},
				SkipTools:          o.skipTools,
				StrictInclude:      o.strictInclude,
				TensorArenaSize:    o.arenaSize,
				InferencesPerCycle: o.inferences,
				Year:               o.year,
				ProjectName:        o.projectName,
				Templates:          set,
				NoManifest:         o.noManifest,
				Generator:          "tflmgen " + version.String(),
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			summary := generateSummary{
				Project:        res.ProjectDir,
				Stem:           res.Stem,
				Symbol:         res.Identifiers.Symbol,
				OperationCount: res.Identifiers.OperationCount,
				ArrayElements:  res.Source.Reformat.Elements,
				Files:          res.Files,
				Manifest:       res.Manifest,
				Warnings:       res.Warnings,
			}
			w := cmd.Root().Writer
			if o.jsonOut {
				return printJSON(w, summary)
			}
			printGenerateSummary(w, summary)
			return nil
		},
	}
}

func printGenerateSummary(w io.Writer, s generateSummary) {
	_, _ = fmt.Fprintf(w, "project:    %s\n", s.Project)
	_, _ = fmt.Fprintf(w, "model:      %s (%d bytes)\n", s.Symbol, s.ArrayElements)
	_, _ = fmt.Fprintf(w, "operations: %d\n", s.OperationCount)
	for _, f := range s.Files {
		_, _ = fmt.Fprintf(w, "  %s\n", f)
	}
	if len(s.Warnings) > 0 {
		_, _ = fmt.Fprintf(w, "warnings:   %d\n", len(s.Warnings))
	}
}
