package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"rarefeed/config"
	"rarefeed/db"
	"rarefeed/ingest"
)

func exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write the JSON snapshots from the database",
		Description: `Rebuilds rares.json and rares_top.json from the SQLite database
without fetching from the upstream API. The snapshots are stamped with
the stored refresh time.`,
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
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			reader := db.NewReader(ctx.String("database"))
			return ingest.ExportFromDB(reader, ctx.String("data-dir"), cfg.TopLimit)
		},
	}
}
