package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "rarefeed",
		Usage: "A feed of rarely seen Fortnite shop cosmetics",
		Description: `Rarefeed tracks how long every Fortnite BR cosmetic has been
		out of the item shop.

		It periodically fetches all cosmetics with their shop history from
		fortnite-api.com, derives a days-since-last-seen count per item,
		stores the result in an SQLite database and exports JSON snapshots.
		The HTTP server renders the rarest items as a card page and serves
		the snapshots and paginated feeds.

		Flags can generally be set via environment variables, e.g.:

		--database => RAREFEED_DATABASE=rares.db
		--port => RAREFEED_PORT=3000
		`,
		Commands: []*cli.Command{
			serveCmd(),
			updateCmd(),
			exportCmd(),
			renderCmd(),
			migrateCmd(),
			rollbackCmd(),
			tidyCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
