package models

// ShopItem is one cosmetic in a feed snapshot. The feed is untrusted
// input: every field is optional on the wire and consumers default the
// zero values. DaysSince is nil when the shop history gives no answer.
type ShopItem struct {
	Id          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Type        string `json:"type,omitempty"`
	Rarity      string `json:"rarity,omitempty"`
	Icon        string `json:"icon,omitempty"`
	LastSeen    string `json:"last_seen,omitempty"`
	DaysSince   *int   `json:"days_since_last_seen,omitempty"`
	Bucket      string `json:"bucket,omitempty"`
	NeverInShop bool   `json:"never_in_shop,omitempty"`
}

// ShopFeed is the JSON document written to the data dir and consumed
// by the card renderer.
type ShopFeed struct {
	UpdatedUtc string     `json:"updated_utc,omitempty"`
	Count      int        `json:"count"`
	Items      []ShopItem `json:"items"`
}

// RareItem is one row of a paginated feed page. Seq is the database
// row sequence used for keyset cursors, not serialized.
type RareItem struct {
	Seq int64 `json:"-"`
	ShopItem
}

type FeedResponse struct {
	Feed   []RareItem `json:"feed"`
	Cursor *string    `json:"cursor"`
}

// FeedRefreshedEvent fired after each successful feed rebuild
type FeedRefreshedEvent struct {
	UpdatedUtc string `json:"updated_utc"`
	Count      int    `json:"count"`
}
