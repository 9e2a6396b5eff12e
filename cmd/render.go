package cmd

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"rarefeed/render"
)

func renderCmd() *cli.Command {
	return &cli.Command{
		Name:  "render",
		Usage: "Render a feed snapshot as a static HTML page",
		Description: `Fetches a feed snapshot over HTTP and writes the card page as a
static HTML file.

Useful when the snapshots are published on static hosting and the page
should be regenerated alongside them. Pass "-" as the output to write
to stdout.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "feed-url",
				Usage:    "URL of the feed snapshot to render",
				EnvVars:  []string{"RAREFEED_FEED_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "index.html",
				Usage:   "Output file",
			},
		},
		Action: func(ctx *cli.Context) error {
			loader := render.NewLoader(ctx.String("feed-url"))
			page := loader.Load(ctx.Context)

			out := ctx.String("out")
			if out == "-" {
				return page.Render(os.Stdout)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()

			if err := page.Render(f); err != nil {
				return fmt.Errorf("failed to render page: %w", err)
			}

			fmt.Println("Wrote:", out)
			return nil
		},
	}
}
