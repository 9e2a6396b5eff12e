package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"rarefeed/config"
	"rarefeed/db"
	"rarefeed/feeds"
	"rarefeed/fortnite"
	"rarefeed/ingest"
	"rarefeed/models"
	"rarefeed/render"
	"rarefeed/server"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the rarefeed page and API",
		Description: `Starts the rarefeed HTTP server and the periodic updater.

The updater refreshes the feed immediately and then on every interval:
it fetches all cosmetics from fortnite-api.com, stores the enriched
items in the SQLite database and writes the JSON snapshots to the data
dir. The server renders the card page, serves the snapshots and the
paginated feed API, and streams refresh events over SSE.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "hostname",
				Aliases: []string{"n"},
				Usage:   "The hostname where the server is running",
				EnvVars: []string{"RAREFEED_HOSTNAME"},
				Value:   "localhost",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "The port to listen on",
				EnvVars: []string{"RAREFEED_PORT"},
				Value:   3000,
			},
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
			&cli.DurationFlag{
				Name:    "update-interval",
				Value:   6 * time.Hour,
				Usage:   "How often to refresh the feed",
				EnvVars: []string{"RAREFEED_UPDATE_INTERVAL"},
			},
			&cli.StringFlag{
				Name:    "feed-url",
				Usage:   "Feed snapshot URL for the card page, defaults to the local snapshot",
				EnvVars: []string{"RAREFEED_FEED_URL"},
			},
		},
		Action: func(ctx *cli.Context) error {
			database := ctx.String("database")

			// Make sure the schema exists before opening readers
			if err := db.Migrate(database); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}

			cfg, err := config.LoadConfig(ctx.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			feedURL := ctx.String("feed-url")
			if feedURL == "" {
				feedURL = fmt.Sprintf("http://127.0.0.1:%d/data/%s", ctx.Int("port"), ingest.TopFile)
			}

			reader := db.NewReader(database)
			writer := db.NewWriter(database)
			broadcaster := server.NewBroadcaster()
			events := make(chan models.FeedRefreshedEvent, 10)

			updater := ingest.New(ingest.Config{
				Client:   fortnite.NewClient(ctx.String("api-host"), ctx.String("api-key")),
				Writer:   writer,
				DataDir:  ctx.String("data-dir"),
				TopLimit: cfg.TopLimit,
				Buckets:  feeds.BucketsFromConfig(cfg),
				Interval: ctx.Duration("update-interval"),
				Events:   events,
			})

			app := server.Server(&server.ServerConfig{
				Hostname:    ctx.String("hostname"),
				Reader:      reader,
				Broadcaster: broadcaster,
				Feeds:       feeds.FromConfig(cfg),
				DataDir:     ctx.String("data-dir"),
				Loader:      render.NewLoader(feedURL),
			})

			updaterCtx, cancel := context.WithCancel(ctx.Context)
			defer cancel()

			// Graceful shutdown
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt)
			go func() {
				<-quit
				log.Info("Gracefully shutting down...")
				cancel()
				if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
					log.Errorf("Error shutting down server: %v", err)
				}
				broadcaster.Shutdown()
			}()

			go updater.Run(updaterCtx)

			go func() {
				// Forward refresh events to the SSE clients
				for event := range events {
					broadcaster.BroadcastRefresh(event)
				}
			}()

			log.Info("Starting server...")
			if err := app.Listen(fmt.Sprintf(":%d", ctx.Int("port"))); err != nil {
				return err
			}

			log.Info("Done!")
			return nil
		},
	}
}
