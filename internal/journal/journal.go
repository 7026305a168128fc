// Package journal keeps a durable history of routing decisions and domain
// handoffs in SQLite. The journal is advisory: routing consults it for
// inspection commands only, so recording failures degrade to warnings
// rather than errors on the request path.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"switchboard/internal/logging"
	"switchboard/internal/session"
)

// DecisionRecord is one journaled routing decision.
type DecisionRecord struct {
	ID             string
	SessionKey     string
	Request        string
	SelectedDomain string // empty when the session stayed idle
	Confidence     float64
	Switched       bool
	Reason         string
	DecidedAt      time.Time
}

// Journal wraps the SQLite decision history.
type Journal struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
}

// maxRequestLen bounds how much request text is journaled per decision.
const maxRequestLen = 2000

// Open initializes the journal database at the given path, creating the
// schema on first use.
func Open(path string) (*Journal, error) {
	timer := logging.StartTimer(logging.CategoryJournal, "Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.JournalWarn("cannot set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.JournalWarn("cannot set sqlite journal_mode=WAL: %v", err)
	}

	j := &Journal{db: db, path: path}
	if err := j.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Journal("journal open at %s", path)
	return j, nil
}

// initialize creates the journal tables.
func (j *Journal) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		session_key TEXT NOT NULL,
		request TEXT NOT NULL,
		selected_domain TEXT,
		confidence REAL NOT NULL,
		switched INTEGER NOT NULL DEFAULT 0,
		reason TEXT NOT NULL,
		decided_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_session ON decisions(session_key, decided_at);

	CREATE TABLE IF NOT EXISTS handoffs (
		id TEXT PRIMARY KEY,
		session_key TEXT NOT NULL,
		from_domain TEXT,
		to_domain TEXT NOT NULL,
		reason TEXT NOT NULL,
		occurred_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_handoffs_session ON handoffs(session_key, occurred_at);
	`
	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("create journal schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Path returns the journal database path.
func (j *Journal) Path() string {
	return j.path
}

// RecordDecision journals one routing decision. Uses INSERT OR IGNORE
// keyed on the decision ID, so replaying the same decision is a no-op.
func (j *Journal) RecordDecision(rec DecisionRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	request := rec.Request
	if len(request) > maxRequestLen {
		request = request[:maxRequestLen]
	}

	domain := sql.NullString{String: rec.SelectedDomain, Valid: rec.SelectedDomain != ""}
	_, err := j.db.Exec(
		`INSERT OR IGNORE INTO decisions (id, session_key, request, selected_domain, confidence, switched, reason, decided_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionKey, request, domain, rec.Confidence, rec.Switched, rec.Reason, rec.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}

	logging.JournalDebug("recorded decision %s (domain=%q switched=%v)", rec.ID, rec.SelectedDomain, rec.Switched)
	return nil
}

// RecordHandoff journals one handoff event. Handoff IDs come from the
// session state, so re-journaling a chain after a retry stays idempotent.
func (j *Journal) RecordHandoff(sessionKey string, ev session.HandoffEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	from := sql.NullString{String: ev.From, Valid: ev.From != ""}
	_, err := j.db.Exec(
		`INSERT OR IGNORE INTO handoffs (id, session_key, from_domain, to_domain, reason, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		ev.ID, sessionKey, from, ev.To, ev.Reason, ev.At,
	)
	if err != nil {
		return fmt.Errorf("record handoff: %w", err)
	}
	return nil
}

// RecentDecisions returns the newest decisions for a session, most recent
// first. A sessionKey of "" returns decisions across all sessions.
func (j *Journal) RecentDecisions(sessionKey string, limit int) ([]DecisionRecord, error) {
	timer := logging.StartTimer(logging.CategoryJournal, "RecentDecisions")
	defer timer.Stop()

	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, session_key, request, selected_domain, confidence, switched, reason, decided_at
		 FROM decisions`
	args := []interface{}{}
	if sessionKey != "" {
		query += ` WHERE session_key = ?`
		args = append(args, sessionKey)
	}
	query += ` ORDER BY decided_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var records []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var domain sql.NullString
		if err := rows.Scan(&rec.ID, &rec.SessionKey, &rec.Request, &domain,
			&rec.Confidence, &rec.Switched, &rec.Reason, &rec.DecidedAt); err != nil {
			continue
		}
		rec.SelectedDomain = domain.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// HandoffHistory returns a session's handoffs in chronological order.
func (j *Journal) HandoffHistory(sessionKey string, limit int) ([]session.HandoffEvent, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	rows, err := j.db.Query(
		`SELECT id, from_domain, to_domain, reason, occurred_at
		 FROM handoffs
		 WHERE session_key = ?
		 ORDER BY occurred_at, id
		 LIMIT ?`,
		sessionKey, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query handoffs: %w", err)
	}
	defer rows.Close()

	var events []session.HandoffEvent
	for rows.Next() {
		var ev session.HandoffEvent
		var from sql.NullString
		if err := rows.Scan(&ev.ID, &from, &ev.To, &ev.Reason, &ev.At); err != nil {
			continue
		}
		ev.From = from.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

// DomainTotals counts journaled decisions per selected domain. Idle
// decisions (no domain) are not counted.
func (j *Journal) DomainTotals() (map[string]int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	rows, err := j.db.Query(
		`SELECT selected_domain, COUNT(*)
		 FROM decisions
		 WHERE selected_domain IS NOT NULL
		 GROUP BY selected_domain`,
	)
	if err != nil {
		return nil, fmt.Errorf("query domain totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var domain string
		var count int
		if err := rows.Scan(&domain, &count); err != nil {
			continue
		}
		totals[domain] = count
	}
	return totals, rows.Err()
}

// Prune deletes journal rows older than the cutoff and reports how many
// decisions were removed.
func (j *Journal) Prune(before time.Time) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	res, err := j.db.Exec(`DELETE FROM decisions WHERE decided_at < ?`, before)
	if err != nil {
		return 0, fmt.Errorf("prune decisions: %w", err)
	}
	removed, _ := res.RowsAffected()

	if _, err := j.db.Exec(`DELETE FROM handoffs WHERE occurred_at < ?`, before); err != nil {
		return removed, fmt.Errorf("prune handoffs: %w", err)
	}

	if removed > 0 {
		logging.Journal("pruned %d journaled decisions older than %s", removed, before.Format(time.RFC3339))
	}
	return removed, nil
}
