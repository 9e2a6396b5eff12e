package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/cqroot/prompt"
	"github.com/urfave/cli/v2"

	"rarefeed/db"
)

func tidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the database",
		Description: `Tidy up the database by removing stale cosmetics.

		Removes rows that have not been refreshed within the given number
		of days. Items disappear from the upstream API now and then, this
		keeps the feed from serving them forever.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Value:   "rares.db",
				Usage:   "SQLite database file location",
				EnvVars: []string{"RAREFEED_DATABASE"},
			},
			&cli.IntFlag{
				Name:  "days",
				Value: 90,
				Usage: "Remove rows not refreshed within this many days",
			},
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Skip the confirmation prompt",
			},
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")
			days := ctx.Int("days")
			fmt.Println("Database configured: ", database)

			if !ctx.Bool("yes") {
				answer, err := prompt.New().Ask(fmt.Sprintf("Remove rows not refreshed in %d days? (yes/no)", days)).Input("no")
				if err != nil {
					return err
				}
				if strings.ToLower(strings.TrimSpace(answer)) != "yes" {
					fmt.Println("Aborted")
					return nil
				}
			}

			removed, err := db.Tidy(database, time.Duration(days)*24*time.Hour)
			if err != nil {
				return err
			}

			fmt.Printf("Removed %d rows\n", removed)
			return nil
		},
	}
}
