package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tflmgen/internal/logger"
	"github.com/samcharles93/tflmgen/internal/reformat"
	"github.com/samcharles93/tflmgen/internal/scan"
)

func reformatCmd() *cli.Command {
	var (
		inPlace     bool
		openMarker  string
		closeMarker string
	)

	return &cli.Command{
		Name:      "reformat",
		Usage:     "Rewrite the byte array of a generated model source into rows of 12",
		ArgsUsage: "<model_data.cc>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "write",
				Aliases:     []string{"w"},
				Usage:       "rewrite the file instead of printing to stdout",
				Destination: &inPlace,
			},
			&cli.StringFlag{
				Name:        "open-marker",
				Usage:       "text that starts the array declaration",
				Value:       scan.DefaultOpenMarker,
				Destination: &openMarker,
			},
			&cli.StringFlag{
				Name:        "close-marker",
				Usage:       "text that ends the array",
				Value:       scan.DefaultCloseMarker,
				Destination: &closeMarker,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			path := cmd.Args().First()
			if path == "" {
				return cli.Exit("error: a source file is required", 1)
			}
			src, err := os.ReadFile(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			res, err := reformat.Reformat(&scan.Scanner{OpenMarker: openMarker, CloseMarker: closeMarker}, string(src))
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %s: %v", path, err), 1)
			}
			if !inPlace {
				_, err := fmt.Fprint(cmd.Root().Writer, res.Source)
				return err
			}
			st, err := os.Stat(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := os.WriteFile(path, []byte(res.Source), st.Mode().Perm()); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			log.Info("reformatted", "file", path, "elements", res.Elements, "rows", res.Rows)
			return nil
		},
	}
}
