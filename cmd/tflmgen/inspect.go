package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tflmgen/internal/tflite"
)

type inspectReport struct {
	Path string `json:"path"`
	tflite.Info
	Operators []string `json:"operators"`
}

func inspectCmd() *cli.Command {
	var (
		modelPath string
		jsonOut   bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show the schema version and operator table of a .tflite model",
		ArgsUsage: "<model.tflite>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "model",
				Aliases:     []string{"m"},
				Usage:       "path to the .tflite model",
				Destination: &modelPath,
			},
			&cli.BoolFlag{Name: "json", Usage: "print JSON", Destination: &jsonOut},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := resolveModelArg(modelPath, cmd.Args().First())
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			info, err := tflite.Inspect(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: inspect %s: %v", path, err), 1)
			}
			report := inspectReport{Path: path, Info: info, Operators: make([]string, 0, len(info.OperatorCodes))}
			for _, oc := range info.OperatorCodes {
				report.Operators = append(report.Operators, oc.Name())
			}
			if jsonOut {
				return printJSON(cmd.Root().Writer, report)
			}
			printInspectReport(cmd.Root().Writer, report)
			return nil
		},
	}
}

func printInspectReport(w io.Writer, r inspectReport) {
	_, _ = fmt.Fprintf(w, "file:        %s (%d bytes)\n", r.Path, r.Size)
	_, _ = fmt.Fprintf(w, "schema:      %d\n", r.Version)
	if r.Description != "" {
		_, _ = fmt.Fprintf(w, "description: %s\n", r.Description)
	}
	_, _ = fmt.Fprintf(w, "subgraphs:   %d\n", r.Subgraphs)
	_, _ = fmt.Fprintf(w, "buffers:     %d\n", r.Buffers)
	_, _ = fmt.Fprintf(w, "operators:   %d\n", len(r.OperatorCodes))
	for i, oc := range r.OperatorCodes {
		_, _ = fmt.Fprintf(w, "  %3d  %-32s v%d\n", i, r.Operators[i], oc.Version)
	}
}
