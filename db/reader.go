package db

import (
	"database/sql"
	"fmt"
	"time"

	sqlbuilder "github.com/huandu/go-sqlbuilder"

	"rarefeed/models"
)

type Reader struct {
	db *sql.DB
}

func NewReader(database string) *Reader {
	// Open in read-only mode with optimized settings
	db, err := sql.Open("sqlite", fmt.Sprintf("%s?mode=ro&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", database))
	if err != nil {
		panic("failed to connect database")
	}

	// Set connection pool settings for reader
	db.SetMaxOpenConns(4)            // Allow multiple concurrent readers
	db.SetMaxIdleConns(2)            // Keep some connections ready
	db.SetConnMaxLifetime(time.Hour) // Recreate connections after an hour
	db.SetConnMaxIdleTime(time.Hour) // Close idle connections after an hour

	// Configure additional pragmas for better read performance
	if _, err := db.Exec(`
		PRAGMA busy_timeout = 5000;
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -32000; -- 32MB cache
		PRAGMA temp_store = MEMORY;
		PRAGMA mmap_size = 268435456; -- 256MB memory mapped I/O
	`); err != nil {
		panic(fmt.Sprintf("failed to set pragmas: %v", err))
	}

	return &Reader{
		db: db,
	}
}

var itemColumns = []string{
	"seq", "id", "name", "type", "rarity", "icon",
	"last_seen", "days_since", "bucket", "never_in_shop",
}

// GetRares returns dated items rarest first. The keyset cursor
// (curDays, curSeq) resumes after the last row of the previous page.
func (reader *Reader) GetRares(minDays int, curDays int, curSeq int64, hasCursor bool, limit int) ([]models.RareItem, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(itemColumns...).From("cosmetics")
	sb.Where(sb.IsNotNull("days_since"))
	sb.Where(sb.Equal("never_in_shop", 0))

	if minDays > 0 {
		sb.Where(sb.GreaterEqualThan("days_since", minDays))
	}

	if hasCursor {
		sb.Where(sb.Or(
			sb.LessThan("days_since", curDays),
			sb.And(sb.Equal("days_since", curDays), sb.GreaterThan("seq", curSeq)),
		))
	}

	sb.OrderBy("days_since DESC", "seq ASC")
	sb.Limit(limit)

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := reader.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var items []models.RareItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// GetTop returns the n rarest dated items for the top snapshot.
func (reader *Reader) GetTop(n int) ([]models.ShopItem, error) {
	rares, err := reader.GetRares(0, 0, 0, false, n)
	if err != nil {
		return nil, err
	}

	items := make([]models.ShopItem, 0, len(rares))
	for _, rare := range rares {
		items = append(items, rare.ShopItem)
	}
	return items, nil
}

// GetAll returns every stored item in export order: dated items
// rarest first, then unknown, then never-in-shop.
func (reader *Reader) GetAll() ([]models.ShopItem, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(itemColumns...).From("cosmetics")
	sb.OrderBy("never_in_shop", "days_since IS NULL", "days_since DESC", "seq ASC")

	query, args := sb.BuildWithFlavor(sqlbuilder.SQLite)

	rows, err := reader.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var items []models.ShopItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		items = append(items, item.ShopItem)
	}

	return items, rows.Err()
}

// GetLatestRefreshTime returns the time of the most recent snapshot,
// or the zero time when the table is empty.
func (reader *Reader) GetLatestRefreshTime() (time.Time, error) {
	var unix int64
	err := reader.db.QueryRow("SELECT refreshed_at FROM cosmetics ORDER BY refreshed_at DESC LIMIT 1").Scan(&unix)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query error: %w", err)
	}
	return time.Unix(unix, 0).UTC(), nil
}

func scanItem(rows *sql.Rows) (models.RareItem, error) {
	var item models.RareItem
	var lastSeen sql.NullString
	var daysSince sql.NullInt64
	var neverInShop int

	if err := rows.Scan(
		&item.Seq, &item.Id, &item.Name, &item.Type, &item.Rarity, &item.Icon,
		&lastSeen, &daysSince, &item.Bucket, &neverInShop,
	); err != nil {
		return models.RareItem{}, err
	}

	if lastSeen.Valid {
		item.LastSeen = lastSeen.String
	}
	if daysSince.Valid {
		days := int(daysSince.Int64)
		item.DaysSince = &days
	}
	item.NeverInShop = neverInShop != 0

	return item, nil
}
