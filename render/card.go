package render

import (
	"net/url"

	"rarefeed/feeds"
	"rarefeed/models"
)

const detailBaseURL = "https://fnbr.co/cosmetics?id="

// Card is one renderable unit of the feed page.
type Card struct {
	DetailURL string
	Icon      string
	Name      string
	DaysLabel string
}

// BuildCard maps a feed item to a card. Missing names render as
// "Unknown", a missing id just links to the detail page root.
func BuildCard(item models.ShopItem) Card {
	name := item.Name
	if name == "" {
		name = "Unknown"
	}

	return Card{
		DetailURL: detailBaseURL + url.QueryEscape(item.Id),
		Icon:      item.Icon,
		Name:      name,
		DaysLabel: feeds.FormatDays(item.DaysSince),
	}
}
