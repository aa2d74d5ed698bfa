// Package store keeps operator diagnostics in SQLite: privacy-hashed visitor
// metrics and contact delivery outcomes. Contact form contents are never
// written.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases shared and serialises writes.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visitors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			hashed_ip TEXT NOT NULL,  -- hashed, never the raw address
			user_agent TEXT,
			path TEXT,
			timestamp DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS visitors_timestamp ON visitors (timestamp)`,
		`CREATE TABLE IF NOT EXISTS deliveries (
			id TEXT PRIMARY KEY,
			outcome TEXT NOT NULL,
			detail TEXT,
			timestamp DATETIME NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

type Visitor struct {
	ID        int       `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

type Delivery struct {
	ID        string    `json:"id"`
	Outcome   string    `json:"outcome"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *Store) RecordVisit(hashedIP, userAgent, path string, at time.Time) error {
	_, err := s.db.Exec(`
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, hashedIP, userAgent, path, at.UTC())
	return err
}

func (s *Store) RecordDelivery(d Delivery) error {
	_, err := s.db.Exec(`
		INSERT INTO deliveries (id, outcome, detail, timestamp)
		VALUES (?, ?, ?, ?)
	`, d.ID, d.Outcome, d.Detail, d.Timestamp.UTC())
	return err
}

// CleanupVisits removes visitor rows older than maxAge.
func (s *Store) CleanupVisits(maxAge time.Duration, now time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM visitors WHERE timestamp < ?`, now.Add(-maxAge).UTC())
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		log.Printf("Privacy cleanup: Removed %d visitor records", n)
	}
	return n, nil
}

func (s *Store) RecentVisitors(limit int) ([]Visitor, error) {
	rows, err := s.db.Query(`
		SELECT id, hashed_ip, user_agent, path, timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var visitors []Visitor
	for rows.Next() {
		var v Visitor
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &v.Timestamp); err != nil {
			return nil, err
		}
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}

func (s *Store) RecentDeliveries(limit int, outcome string) ([]Delivery, error) {
	query := `SELECT id, outcome, COALESCE(detail, ''), timestamp FROM deliveries`
	args := []any{}
	if outcome != "" {
		query += ` WHERE outcome = ?`
		args = append(args, outcome)
	}
	query += ` ORDER BY timestamp DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.ID, &d.Outcome, &d.Detail, &d.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type Stats struct {
	TotalVisitors    int64      `json:"total_visitors"`
	UniqueVisitors   int64      `json:"unique_visitors"`
	VisitorsToday    int64      `json:"visitors_today"`
	VisitorsThisWeek int64      `json:"visitors_this_week"`
	DeliveriesSent   int64      `json:"deliveries_sent"`
	DeliveriesFailed int64      `json:"deliveries_failed"`
	RecentVisitors   []Visitor  `json:"recent_visitors"`
	RecentFailures   []Delivery `json:"recent_failures"`
}

// Stats aggregates the dashboard numbers as of now.
func (s *Store) Stats(now time.Time) (*Stats, error) {
	stats := &Stats{}
	now = now.UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{startOfDay}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{now.AddDate(0, 0, -7)}},
		{&stats.DeliveriesSent, `SELECT COUNT(*) FROM deliveries WHERE outcome = ?`, []any{OutcomeSent}},
		{&stats.DeliveriesFailed, `SELECT COUNT(*) FROM deliveries WHERE outcome = ?`, []any{OutcomeFailed}},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query, c.args...).Scan(c.dst); err != nil {
			return nil, err
		}
	}

	var err error
	if stats.RecentVisitors, err = s.RecentVisitors(50); err != nil {
		return nil, err
	}
	if stats.RecentFailures, err = s.RecentDeliveries(10, OutcomeFailed); err != nil {
		return nil, err
	}
	return stats, nil
}
