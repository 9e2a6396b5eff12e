package db

import (
	"database/sql"
	"time"

	sb "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

// Tidy removes cosmetics that have not been refreshed within maxAge.
// Rows go stale when the upstream API stops returning an item.
func Tidy(database string, maxAge time.Duration) (int64, error) {
	db, err := connection(database)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	return tidy(db, maxAge)
}

func tidy(db *sql.DB, maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge).Unix()
	deleteStale := sb.NewDeleteBuilder()
	query, args := deleteStale.DeleteFrom("cosmetics").Where(deleteStale.LessEqualThan("refreshed_at", cutoff)).Build()

	log.WithFields(log.Fields{
		"sql":  query,
		"args": args,
	}).Info("Tidying database")

	res, err := db.Exec(query, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}
