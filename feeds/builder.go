package feeds

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"rarefeed/models"
)

// Cosmetic is the slice of upstream cosmetic data the builder needs.
// The fortnite package maps its API types onto this before building.
type Cosmetic struct {
	Id          string
	Name        string
	Type        string
	Rarity      string
	Icon        string
	ShopHistory []time.Time
}

// Bucket labels a minimum day count, e.g. {"365+", 365}.
type Bucket struct {
	Name    string
	MinDays int
}

// DefaultBuckets mirror the thresholds the exported feed has always
// used. Buckets must be ordered from largest threshold to smallest.
var DefaultBuckets = []Bucket{
	{Name: "365+", MinDays: 365},
	{Name: "180+", MinDays: 180},
	{Name: "90+", MinDays: 90},
	{Name: "30+", MinDays: 30},
	{Name: "7+", MinDays: 7},
}

const (
	BucketRecent      = "0-6"
	BucketUnknown     = "unknown"
	BucketNeverInShop = "never-in-shop"
)

// BucketFor picks the bucket label for a day count. A nil count maps
// to "unknown" unless the item never appeared in the shop at all.
func BucketFor(days *int, neverInShop bool, buckets []Bucket) string {
	if neverInShop {
		return BucketNeverInShop
	}
	if days == nil {
		return BucketUnknown
	}
	for _, bucket := range buckets {
		if *days >= bucket.MinDays {
			return bucket.Name
		}
	}
	return BucketRecent
}

// LastSeen returns the most recent shop history date as an ISO date
// string, or "" when the history is empty.
func LastSeen(history []time.Time) string {
	if len(history) == 0 {
		return ""
	}
	latest := lo.MaxBy(history, func(a time.Time, b time.Time) bool {
		return a.After(b)
	})
	return latest.UTC().Format(time.DateOnly)
}

// DaysSince counts whole UTC days between an ISO date and now.
func DaysSince(isoDate string, now time.Time) *int {
	if isoDate == "" {
		return nil
	}
	last, err := time.ParseInLocation(time.DateOnly, isoDate, time.UTC)
	if err != nil {
		return nil
	}
	nowDate := now.UTC().Truncate(24 * time.Hour)
	days := int(nowDate.Sub(last).Hours() / 24)
	if days < 0 {
		// Upstream dates in the future would mean clock skew, clamp
		// so the formatter never sees a negative count.
		days = 0
	}
	return &days
}

// Build derives the enriched feed items from upstream cosmetics and
// sorts them rarest first. Items with an unknown last-seen date sort
// below every dated item, never-in-shop items below those.
func Build(cosmetics []Cosmetic, now time.Time, buckets []Bucket) []models.ShopItem {
	if len(buckets) == 0 {
		buckets = DefaultBuckets
	}

	items := lo.Map(cosmetics, func(c Cosmetic, _ int) models.ShopItem {
		neverInShop := len(c.ShopHistory) == 0
		lastSeen := LastSeen(c.ShopHistory)
		days := DaysSince(lastSeen, now)

		return models.ShopItem{
			Id:          c.Id,
			Name:        c.Name,
			Type:        c.Type,
			Rarity:      c.Rarity,
			Icon:        c.Icon,
			LastSeen:    lastSeen,
			DaysSince:   days,
			Bucket:      BucketFor(days, neverInShop, buckets),
			NeverInShop: neverInShop,
		}
	})

	sort.SliceStable(items, func(i, j int) bool {
		return sortRank(items[i]) < sortRank(items[j])
	})

	return items
}

// sortRank orders items so higher day counts come first and the
// unknown and never-in-shop groups sink to the bottom.
func sortRank(item models.ShopItem) int64 {
	if item.NeverInShop {
		return 2 << 32
	}
	if item.DaysSince == nil {
		return 1 << 32
	}
	return -int64(*item.DaysSince)
}

// Top returns the first n dated items, skipping anything that was
// never in the shop or has no known last-seen date.
func Top(items []models.ShopItem, n int) []models.ShopItem {
	dated := lo.Filter(items, func(item models.ShopItem, _ int) bool {
		return !item.NeverInShop && item.DaysSince != nil
	})
	if len(dated) > n {
		dated = dated[:n]
	}
	return dated
}
