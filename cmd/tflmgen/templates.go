package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tflmgen/internal/tmpl"
)

func templatesCmd() *cli.Command {
	var render bool

	return &cli.Command{
		Name:      "templates",
		Usage:     "List the project templates or print one of them",
		ArgsUsage: "[name]",
		Flags: []cli.Flag{
			templatesDirFlag(),
			&cli.BoolFlag{
				Name:        "render",
				Usage:       "substitute --param values instead of printing the raw template",
				Destination: &render,
			},
			&cli.StringMapFlag{
				Name:  "param",
				Usage: "template parameter as key=value (repeatable)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyTemplatesConfig(cmd, cfg)
			set, err := tmpl.WithOverrideDir(templatesDir)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: templates: %v", err), 1)
			}
			w := cmd.Root().Writer

			name := cmd.Args().First()
			if name == "" {
				for _, n := range tmpl.Names {
					_, _ = fmt.Fprintln(w, n)
				}
				return nil
			}
			if !render {
				src, err := set.Source(name)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				_, err = fmt.Fprint(w, src)
				return err
			}

			params := tmpl.Params{tmpl.KeyYear: strconv.Itoa(time.Now().Year())}
			for k, v := range cmd.StringMap("param") {
				params[k] = v
			}
			r, err := set.Render(name, params)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			_, err = fmt.Fprint(w, r.Text)
			return err
		},
	}
}
