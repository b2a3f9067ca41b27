package store

import (
	"database/sql"
)

// LeagueStore reads and writes the engine tables. Every method takes the
// executor explicitly so callers decide what runs inside a transaction:
// pass the *sqlx.DB for one-off reads and the *sqlx.Tx for writes.
// Queries use ? placeholders and are rebound for the active driver.
type LeagueStore struct{}

func NewLeagueStore() *LeagueStore {
	return &LeagueStore{}
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
