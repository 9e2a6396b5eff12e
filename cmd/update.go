package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"rarefeed/config"
	"rarefeed/db"
	"rarefeed/feeds"
	"rarefeed/fortnite"
	"rarefeed/ingest"
)

func updateCmd() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Fetch cosmetics and rebuild the feed once",
		Description: `Fetches all cosmetics from fortnite-api.com, rebuilds the feed,
stores it in the SQLite database and writes the JSON snapshots.

Can be run as a cron job instead of the built-in updater when the
snapshots are hosted statically.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "rares.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"RAREFEED_DATABASE"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config/rares.toml",
				Usage:   "Path to feeds configuration file",
				EnvVars: []string{"RAREFEED_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Value:   "data",
				Usage:   "Directory for the JSON snapshots",
				EnvVars: []string{"RAREFEED_DATA_DIR"},
			},
			&cli.StringFlag{
				Name:    "api-host",
				Value:   fortnite.DefaultAPIHost,
				Usage:   "Upstream cosmetics API host",
				EnvVars: []string{"RAREFEED_API_HOST"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Upstream cosmetics API key (optional)",
				EnvVars: []string{"RAREFEED_API_KEY"},
			},
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")

			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			updater := ingest.New(ingest.Config{
				Client:   fortnite.NewClient(ctx.String("api-host"), ctx.String("api-key")),
				Writer:   db.NewWriter(database),
				DataDir:  ctx.String("data-dir"),
				TopLimit: cfg.TopLimit,
				Buckets:  feeds.BucketsFromConfig(cfg),
			})

			return updater.RunOnce(ctx.Context)
		},
	}
}
