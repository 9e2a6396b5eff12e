package feeds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeParseCursor(t *testing.T) {
	tests := []struct {
		name      string
		cursor    string
		days      int
		seq       int64
		hasCursor bool
	}{
		{
			name:   "empty cursor",
			cursor: "",
		},
		{
			name:      "valid cursor",
			cursor:    "365:42",
			days:      365,
			seq:       42,
			hasCursor: true,
		},
		{
			name:   "missing separator",
			cursor: "365",
		},
		{
			name:   "non-numeric days",
			cursor: "abc:42",
		},
		{
			name:   "non-numeric seq",
			cursor: "365:xyz",
		},
		{
			name:   "negative days",
			cursor: "-1:42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, seq, hasCursor := safeParseCursor(tt.cursor)
			assert.Equal(t, tt.days, days)
			assert.Equal(t, tt.seq, seq)
			assert.Equal(t, tt.hasCursor, hasCursor)
		})
	}
}
