package feeds_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rarefeed/feeds"
)

func day(value string) time.Time {
	t, err := time.ParseInLocation(time.DateOnly, value, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		name        string
		days        *int
		neverInShop bool
		expected    string
	}{
		{
			name:        "never in shop wins over day count",
			days:        intPtr(500),
			neverInShop: true,
			expected:    "never-in-shop",
		},
		{
			name:     "unknown",
			days:     nil,
			expected: "unknown",
		},
		{
			name:     "a year or more",
			days:     intPtr(365),
			expected: "365+",
		},
		{
			name:     "half a year",
			days:     intPtr(200),
			expected: "180+",
		},
		{
			name:     "a week",
			days:     intPtr(7),
			expected: "7+",
		},
		{
			name:     "recent",
			days:     intPtr(6),
			expected: "0-6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := feeds.BucketFor(tt.days, tt.neverInShop, feeds.DefaultBuckets)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLastSeen(t *testing.T) {
	assert.Equal(t, "", feeds.LastSeen(nil))

	history := []time.Time{
		day("2022-03-01"),
		day("2024-11-20"),
		day("2019-12-19"),
	}
	assert.Equal(t, "2024-11-20", feeds.LastSeen(history))
}

func TestDaysSince(t *testing.T) {
	now := day("2026-08-25")

	assert.Nil(t, feeds.DaysSince("", now))
	assert.Nil(t, feeds.DaysSince("not-a-date", now))

	days := feeds.DaysSince("2026-08-20", now)
	require.NotNil(t, days)
	assert.Equal(t, 5, *days)

	// Future dates clamp to zero instead of going negative
	days = feeds.DaysSince("2026-08-30", now)
	require.NotNil(t, days)
	assert.Equal(t, 0, *days)
}

func TestBuildSortsRarestFirst(t *testing.T) {
	now := day("2026-08-25")

	cosmetics := []feeds.Cosmetic{
		{Id: "recent", Name: "Recent", ShopHistory: []time.Time{day("2026-08-20")}},
		{Id: "never", Name: "Never"},
		{Id: "vaulted", Name: "Vaulted", ShopHistory: []time.Time{day("2024-01-01")}},
		{Id: "month", Name: "Month", ShopHistory: []time.Time{day("2026-07-15")}},
	}

	items := feeds.Build(cosmetics, now, nil)
	require.Len(t, items, 4)

	assert.Equal(t, "vaulted", items[0].Id)
	assert.Equal(t, "month", items[1].Id)
	assert.Equal(t, "recent", items[2].Id)
	assert.Equal(t, "never", items[3].Id)

	assert.Equal(t, "365+", items[0].Bucket)
	assert.Equal(t, "30+", items[1].Bucket)
	assert.Equal(t, "0-6", items[2].Bucket)
	assert.Equal(t, "never-in-shop", items[3].Bucket)
	assert.True(t, items[3].NeverInShop)
	assert.Nil(t, items[3].DaysSince)
}

func TestTopSkipsUndatedItems(t *testing.T) {
	now := day("2026-08-25")

	cosmetics := []feeds.Cosmetic{
		{Id: "a", ShopHistory: []time.Time{day("2024-01-01")}},
		{Id: "never"},
		{Id: "b", ShopHistory: []time.Time{day("2025-01-01")}},
		{Id: "c", ShopHistory: []time.Time{day("2026-01-01")}},
	}

	items := feeds.Build(cosmetics, now, nil)

	top := feeds.Top(items, 2)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].Id)
	assert.Equal(t, "b", top[1].Id)

	// A limit beyond the dated items just returns all of them
	top = feeds.Top(items, 10)
	assert.Len(t, top, 3)
}
