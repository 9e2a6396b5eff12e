package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rarefeed/db"
	"rarefeed/feeds"
	"rarefeed/models"
)

// Snapshot file names, also served by the HTTP server under /data.
const (
	RaresFile = "rares.json"
	TopFile   = "rares_top.json"
)

// WriteSnapshots writes the full and top feed snapshots to the data
// dir. Files are written to a temp file and renamed so readers never
// see a partial document.
func WriteSnapshots(dataDir string, items []models.ShopItem, topLimit int, updated time.Time) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	updatedUtc := updated.UTC().Format(time.RFC3339)

	all := models.ShopFeed{
		UpdatedUtc: updatedUtc,
		Count:      len(items),
		Items:      items,
	}
	if err := writeJSON(filepath.Join(dataDir, RaresFile), all); err != nil {
		return err
	}

	topItems := feeds.Top(items, topLimit)
	top := models.ShopFeed{
		UpdatedUtc: updatedUtc,
		Count:      len(topItems),
		Items:      topItems,
	}
	return writeJSON(filepath.Join(dataDir, TopFile), top)
}

// ExportFromDB rebuilds the snapshots from the database without
// fetching, stamped with the stored refresh time.
func ExportFromDB(reader *db.Reader, dataDir string, topLimit int) error {
	items, err := reader.GetAll()
	if err != nil {
		return err
	}

	updated, err := reader.GetLatestRefreshTime()
	if err != nil {
		return err
	}
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	return WriteSnapshots(dataDir, items, topLimit, updated)
}

func writeJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to rename %s: %w", tmp, err)
	}

	return nil
}
