package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ActivityLimit is the number of newest activity entries kept
const ActivityLimit = 100

// ActivityEntry is a single audit record of a user action
type ActivityEntry struct {
	Action    string    `json:"action"`
	User      string    `json:"user"`
	Timestamp time.Time `json:"timestamp"`
}

// AddActivity appends entry and evicts the oldest ones above ActivityLimit
func (s *SQLiteStore) AddActivity(ctx context.Context, e ActivityEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO activity (action, actor, ts) VALUES (?, ?, ?)`,
			e.Action, e.User, unixMilli(e.Timestamp)); err != nil {
			return fmt.Errorf("failed to add activity: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM activity WHERE id NOT IN
			(SELECT id FROM activity ORDER BY id DESC LIMIT ?)`, ActivityLimit); err != nil {
			return fmt.Errorf("failed to trim activity: %w", err)
		}
		return nil
	})
}

// LogActivity records action made by user now
func (s *SQLiteStore) LogActivity(ctx context.Context, action, user string) error {
	return s.AddActivity(ctx, ActivityEntry{Action: action, User: user, Timestamp: time.Now()})
}

// ListActivity returns kept entries, oldest first
func (s *SQLiteStore) ListActivity(ctx context.Context) ([]ActivityEntry, error) {
	rows := []struct {
		Action string `db:"action"`
		Actor  string `db:"actor"`
		TS     int64  `db:"ts"`
	}{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT action, actor, ts FROM activity ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	res := make([]ActivityEntry, 0, len(rows))
	for _, r := range rows {
		res = append(res, ActivityEntry{Action: r.Action, User: r.Actor, Timestamp: fromUnixMilli(r.TS)})
	}
	return res, nil
}
