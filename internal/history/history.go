package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/revpol/tapealert/internal/tapealert"
)

// DefaultPath is the default database location
const DefaultPath = "/var/lib/tapealert/history.db"

// Check statuses
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
}

// Check is one recorded run against a drive
type Check struct {
	ID         string    `json:"id"`
	JobID      string    `json:"jobid,omitempty"`
	Device     string    `json:"device"`
	SGNode     string    `json:"sg_node,omitempty"`
	Status     string    `json:"status"`
	Failure    string    `json:"failure,omitempty"`
	AlertCount int       `json:"alert_count"`
	CreatedAt  time.Time `json:"created_at"`
	Codes      []int     `json:"codes,omitempty"`
}

// New opens or creates the SQLite database at the given path
func New(path string) (*DB, error) {
	if path == "" {
		path = DefaultPath
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys and WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	db := &DB{conn: conn, path: path}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (d *DB) Close() error {
	return d.conn.Close()
}

// Path returns the database file path
func (d *DB) Path() string {
	return d.path
}

// migrate runs the database schema migrations
func (d *DB) migrate() error {
	// Create schema version table
	_, err := d.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	// Get current version
	var version int
	err = d.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return err
	}

	// Run migrations
	migrations := []string{
		migrationV1,
	}

	for i, migration := range migrations {
		v := i + 1
		if v <= version {
			continue
		}

		tx, err := d.conn.Begin()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(migration); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration v%d failed: %w", v, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", v); err != nil {
			tx.Rollback()
			return err
		}

		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

// migrationV1 creates the initial schema
const migrationV1 = `
-- One row per drive check, failed or not
CREATE TABLE IF NOT EXISTS checks (
    id TEXT PRIMARY KEY,
    jobid TEXT,
    device TEXT NOT NULL,
    sg_node TEXT,
    status TEXT NOT NULL,
    failure TEXT,
    alert_count INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_checks_device ON checks(device);
CREATE INDEX IF NOT EXISTS idx_checks_time ON checks(created_at);

-- Per-flag alert rows for each check
CREATE TABLE IF NOT EXISTS alerts (
    id INTEGER PRIMARY KEY,
    check_id TEXT NOT NULL REFERENCES checks(id),
    code INTEGER NOT NULL,
    name TEXT NOT NULL,
    severity TEXT NOT NULL,
    detail TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_alerts_check ON alerts(check_id);
CREATE INDEX IF NOT EXISTS idx_alerts_code ON alerts(code);
`

// RecordCheck stores a check and its alerts in one transaction
func (d *DB) RecordCheck(check *Check, alerts []tapealert.Alert) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	check.AlertCount = len(alerts)
	_, err = tx.Exec(`
		INSERT INTO checks (id, jobid, device, sg_node, status, failure, alert_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, check.ID, nullString(check.JobID), check.Device, nullString(check.SGNode),
		check.Status, nullString(check.Failure), check.AlertCount)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record check: %w", err)
	}

	for _, a := range alerts {
		if _, err := tx.Exec(`
			INSERT INTO alerts (check_id, code, name, severity, detail)
			VALUES (?, ?, ?, ?, ?)
		`, check.ID, a.Code, a.Name, string(a.Severity), nullString(a.Detail)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record alert %d: %w", a.Code, err)
		}
	}

	return tx.Commit()
}

// RecentChecks returns checks newest first, optionally filtered by device
func (d *DB) RecentChecks(device string, limit int) ([]*Check, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows *sql.Rows
	var err error

	if device != "" {
		rows, err = d.conn.Query(`
			SELECT id, jobid, device, sg_node, status, failure, alert_count, created_at
			FROM checks
			WHERE device = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		`, device, limit)
	} else {
		rows, err = d.conn.Query(`
			SELECT id, jobid, device, sg_node, status, failure, alert_count, created_at
			FROM checks
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		`, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query checks: %w", err)
	}
	defer rows.Close()

	var checks []*Check
	for rows.Next() {
		var c Check
		var jobid, sgNode, failure sql.NullString
		if err := rows.Scan(&c.ID, &jobid, &c.Device, &sgNode, &c.Status, &failure,
			&c.AlertCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan check: %w", err)
		}
		c.JobID = jobid.String
		c.SGNode = sgNode.String
		c.Failure = failure.String
		checks = append(checks, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, c := range checks {
		codes, err := d.codesFor(c.ID)
		if err != nil {
			return nil, err
		}
		c.Codes = codes
	}

	return checks, nil
}

// codesFor returns the alert codes recorded for one check, ascending
func (d *DB) codesFor(checkID string) ([]int, error) {
	rows, err := d.conn.Query(`
		SELECT code FROM alerts WHERE check_id = ? ORDER BY code
	`, checkID)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert codes: %w", err)
	}
	defer rows.Close()

	var codes []int
	for rows.Next() {
		var code int
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan alert code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
