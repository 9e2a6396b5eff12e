package feeds

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"rarefeed/db"
	"rarefeed/models"
)

type Algorithm func(reader *db.Reader, cursor string, limit int) (*models.FeedResponse, error)

// Feed is one published view over the cosmetics table, keyed by id.
type Feed struct {
	Id          string
	DisplayName string
	Description string
	MinDays     int
	Algorithm   Algorithm
}

// genericAlgo pages through dated items rarest first using a keyset
// cursor of the form "<days>:<seq>".
func genericAlgo(reader *db.Reader, cursor string, limit int, minDays int) (*models.FeedResponse, error) {
	curDays, curSeq, hasCursor := safeParseCursor(cursor)

	items, err := reader.GetRares(minDays, curDays, curSeq, hasCursor, limit+1)
	if err != nil {
		log.Error("Error getting rares", err)
		return nil, err
	}

	if items == nil {
		items = []models.RareItem{}
	}

	var nextCursor *string

	// Only set cursor if we have more results
	if len(items) > limit {
		items = items[:len(items)-1]
		last := items[len(items)-1]
		days := 0
		if last.DaysSince != nil {
			days = *last.DaysSince
		}
		parsed := fmt.Sprintf("%d:%d", days, last.Seq)
		nextCursor = &parsed
	}

	return &models.FeedResponse{
		Feed:   items,
		Cursor: nextCursor, // Will be nil if no more results
	}, nil
}

// safeParseCursor parses a "<days>:<seq>" cursor. An empty or
// malformed cursor means start from the top.
func safeParseCursor(cursor string) (int, int64, bool) {
	if cursor == "" {
		return 0, 0, false
	}
	parts := strings.SplitN(cursor, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	days, err := strconv.Atoi(parts[0])
	if err != nil || days < 0 {
		return 0, 0, false
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || seq < 0 {
		return 0, 0, false
	}
	return days, seq, true
}

// NewFeed builds a Feed whose algorithm filters on a minimum day count.
func NewFeed(id string, displayName string, description string, minDays int) Feed {
	return Feed{
		Id:          id,
		DisplayName: displayName,
		Description: description,
		MinDays:     minDays,
		Algorithm: func(reader *db.Reader, cursor string, limit int) (*models.FeedResponse, error) {
			return genericAlgo(reader, cursor, limit, minDays)
		},
	}
}
