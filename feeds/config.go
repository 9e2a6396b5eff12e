package feeds

import (
	"github.com/samber/lo"

	"rarefeed/config"
)

// FromConfig turns the TOML feed definitions into runnable feeds.
func FromConfig(cfg *config.TomlConfig) map[string]Feed {
	feeds := make(map[string]Feed, len(cfg.Feeds))
	for _, f := range cfg.Feeds {
		feeds[f.Id] = NewFeed(f.Id, f.DisplayName, f.Description, f.MinDays)
	}
	return feeds
}

// BucketsFromConfig returns the configured bucket thresholds, falling
// back to the defaults when the config defines none.
func BucketsFromConfig(cfg *config.TomlConfig) []Bucket {
	if len(cfg.Buckets) == 0 {
		return DefaultBuckets
	}
	return lo.Map(cfg.Buckets, func(b config.TomlBucket, _ int) Bucket {
		return Bucket{Name: b.Name, MinDays: b.MinDays}
	})
}
