package feeds_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rarefeed/feeds"
)

func intPtr(n int) *int {
	return &n
}

func TestFormatDays(t *testing.T) {
	tests := []struct {
		name     string
		days     *int
		expected string
	}{
		{
			name:     "unknown",
			days:     nil,
			expected: "Unknown",
		},
		{
			name:     "zero days",
			days:     intPtr(0),
			expected: "0 days ago",
		},
		{
			name:     "a few days",
			days:     intPtr(5),
			expected: "5 days ago",
		},
		{
			name:     "just below a month",
			days:     intPtr(29),
			expected: "29 days ago",
		},
		{
			name:     "exactly a month",
			days:     intPtr(30),
			expected: "1m 0d ago",
		},
		{
			name:     "a month and some days",
			days:     intPtr(40),
			expected: "1m 10d ago",
		},
		{
			name:     "just below a year",
			days:     intPtr(364),
			expected: "12m 4d ago",
		},
		{
			name:     "exactly a year",
			days:     intPtr(365),
			expected: "1y 0d ago",
		},
		{
			name:     "a year and some days",
			days:     intPtr(400),
			expected: "1y 35d ago",
		},
		{
			name:     "several years",
			days:     intPtr(1000),
			expected: "2y 270d ago",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := feeds.FormatDays(tt.days)
			assert.Equal(t, tt.expected, result)
		})
	}
}
