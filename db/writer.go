package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"rarefeed/models"
)

type Writer struct {
	db *sql.DB
}

func NewWriter(database string) *Writer {
	db, err := connection(database)
	if err != nil {
		panic("failed to connect database")
	}
	return &Writer{
		db: db,
	}
}

// UpsertSnapshot writes one refresh of the cosmetics table in a
// single transaction. Existing rows are updated in place so the seq
// column stays stable across refreshes.
func (writer *Writer) UpsertSnapshot(ctx context.Context, items []models.ShopItem, refreshedAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	tx, err := writer.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin error: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cosmetics (id, name, type, rarity, icon, last_seen, days_since, bucket, never_in_shop, refreshed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			rarity = excluded.rarity,
			icon = excluded.icon,
			last_seen = excluded.last_seen,
			days_since = excluded.days_since,
			bucket = excluded.bucket,
			never_in_shop = excluded.never_in_shop,
			refreshed_at = excluded.refreshed_at`)
	if err != nil {
		return fmt.Errorf("prepare error: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if item.Id == "" {
			log.WithFields(log.Fields{
				"name": item.Name,
			}).Warn("Skipping item without id")
			continue
		}

		var lastSeen interface{}
		if item.LastSeen != "" {
			lastSeen = item.LastSeen
		}
		var daysSince interface{}
		if item.DaysSince != nil {
			daysSince = *item.DaysSince
		}

		if _, err := stmt.ExecContext(ctx,
			item.Id, item.Name, item.Type, item.Rarity, item.Icon,
			lastSeen, daysSince, item.Bucket, item.NeverInShop, refreshedAt.Unix(),
		); err != nil {
			return fmt.Errorf("insert error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit error: %w", err)
	}

	log.WithFields(log.Fields{
		"count":       len(items),
		"refreshedAt": refreshedAt.UTC().Format(time.RFC3339),
	}).Info("Stored cosmetics snapshot")

	return nil
}
