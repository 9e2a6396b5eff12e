package ingest

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"rarefeed/db"
	"rarefeed/feeds"
	"rarefeed/fortnite"
	"rarefeed/models"
)

var feedRefreshes = promauto.NewCounter(prometheus.CounterOpts{
	Name: "rarefeed_feed_refreshes_total",
	Help: "The total number of successful feed refreshes",
})

// Config holds everything one refresh needs. Writer and DataDir may
// be left empty to skip storing or exporting respectively.
type Config struct {
	Client   *fortnite.Client
	Writer   *db.Writer
	DataDir  string
	TopLimit int
	Buckets  []feeds.Bucket
	Interval time.Duration
	Events   chan<- models.FeedRefreshedEvent
}

type Updater struct {
	config Config
}

func New(config Config) *Updater {
	if config.TopLimit <= 0 {
		config.TopLimit = 60
	}
	if config.Interval <= 0 {
		config.Interval = 6 * time.Hour
	}
	return &Updater{config: config}
}

// Run refreshes the feed immediately and then on every tick until the
// context is cancelled. Failed refreshes are logged and retried on
// the next tick.
func (u *Updater) Run(ctx context.Context) {
	if err := u.RunOnce(ctx); err != nil {
		log.Errorf("Feed refresh failed: %v", err)
	}

	ticker := time.NewTicker(u.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping updater")
			return
		case <-ticker.C:
			if err := u.RunOnce(ctx); err != nil {
				log.Errorf("Feed refresh failed: %v", err)
			}
		}
	}
}

// RunOnce fetches the cosmetics, rebuilds the feed, stores it and
// writes the JSON snapshots.
func (u *Updater) RunOnce(ctx context.Context) error {
	cosmetics, err := u.config.Client.FetchCosmetics(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()

	upstream := lo.Map(cosmetics, func(c fortnite.Cosmetic, _ int) feeds.Cosmetic {
		return feeds.Cosmetic{
			Id:          c.Id,
			Name:        c.Name,
			Type:        c.TypeValue(),
			Rarity:      c.RarityValue(),
			Icon:        c.IconURL(),
			ShopHistory: c.ShopHistory,
		}
	})

	items := feeds.Build(upstream, now, u.config.Buckets)

	if u.config.Writer != nil {
		if err := u.config.Writer.UpsertSnapshot(ctx, items, now); err != nil {
			return err
		}
	}

	if u.config.DataDir != "" {
		if err := WriteSnapshots(u.config.DataDir, items, u.config.TopLimit, now); err != nil {
			return err
		}
	}

	feedRefreshes.Inc()

	log.WithFields(log.Fields{
		"count": len(items),
	}).Info("Feed refreshed")

	if u.config.Events != nil {
		event := models.FeedRefreshedEvent{
			UpdatedUtc: now.Format(time.RFC3339),
			Count:      len(items),
		}
		select {
		case u.config.Events <- event: // Non-blocking send
		default:
			log.Warn("Event channel full, skipping refresh event")
		}
	}

	return nil
}
