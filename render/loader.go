package render

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"

	"rarefeed/models"
)

// Status messages shown in place of the updated timestamp. Load
// failures are non-fatal, the page renders with the message and no
// cards.
const (
	StatusLoadFailed = "Failed to load data."
	StatusLoadError  = "Error loading data."
	StatusEmpty      = "No rare items right now."
)

// Loader fetches a feed snapshot over HTTP and turns it into a page.
type Loader struct {
	url    string
	client *http.Client
}

func NewLoader(url string) *Loader {
	return &Loader{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewLoaderWithClient is used by tests and callers that need their
// own transport.
func NewLoaderWithClient(url string, client *http.Client) *Loader {
	return &Loader{url: url, client: client}
}

// Load fetches the feed and builds the page. It always returns a
// renderable page: failures surface as a status message, the error
// detail only goes to the log.
func (l *Loader) Load(ctx context.Context) *Page {
	page := &Page{Title: "Rare cosmetics"}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		log.WithFields(log.Fields{
			"url":   l.url,
			"error": err,
		}).Error("Error building feed request")
		page.Status = StatusLoadError
		return page
	}

	// The snapshot changes on every refresh, never serve it stale
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := l.client.Do(req)
	if err != nil {
		log.WithFields(log.Fields{
			"url":   l.url,
			"error": err,
		}).Error("Error loading feed")
		page.Status = StatusLoadError
		return page
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.WithFields(log.Fields{
			"url":    l.url,
			"status": resp.StatusCode,
		}).Warn("Feed request failed")
		page.Status = StatusLoadFailed
		return page
	}

	var feed models.ShopFeed
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		log.WithFields(log.Fields{
			"url":   l.url,
			"error": err,
		}).Error("Error decoding feed")
		page.Status = StatusLoadError
		return page
	}

	if len(feed.Items) == 0 {
		page.Status = StatusEmpty
		return page
	}

	page.Cards = lo.Map(feed.Items, func(item models.ShopItem, _ int) Card {
		return BuildCard(item)
	})
	page.Updated = FormatUpdated(feed.UpdatedUtc)

	return page
}

// FormatUpdated renders the feed timestamp, or "" when absent. An
// unparsable timestamp is shown as-is rather than dropped.
func FormatUpdated(updatedUtc string) string {
	if updatedUtc == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, updatedUtc)
	if err != nil {
		return "Updated " + updatedUtc
	}
	return "Updated " + t.UTC().Format("2006-01-02 15:04 UTC")
}
