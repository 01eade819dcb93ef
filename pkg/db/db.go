// Package db pkg/db/db.go provides SQLite storage for DOM snapshots and hub alerts.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/sirupsen/logrus"

	"github.com/domhub/hubmoni/pkg/logger"
	"github.com/domhub/hubmoni/pkg/moni"
)

const (
	// Maximum number of history points returned per DOM.
	maxHistoryPoints = 1000

	createTablesSQL = `
	-- One row per DOM per poll
	CREATE TABLE IF NOT EXISTS dom_snapshots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hub TEXT NOT NULL,
		cwd TEXT NOT NULL,
		omkey TEXT NOT NULL,
		mbid TEXT,
		timestamp TIMESTAMP NOT NULL,
		plugged BOOLEAN NOT NULL DEFAULT 0,
		current INTEGER NOT NULL,
		voltage REAL NOT NULL,
		pwr_check TEXT,
		communicating BOOLEAN NOT NULL DEFAULT 0,
		rx_bytes INTEGER,
		tx_bytes INTEGER,
		badpkt INTEGER,
		nretxb INTEGER
	);

	-- Alerts raised by the monitor; cleared_at stays NULL while active
	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hub TEXT NOT NULL,
		cluster TEXT NOT NULL,
		condition TEXT NOT NULL,
		description TEXT NOT NULL,
		raised_at TIMESTAMP NOT NULL,
		cleared_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_dom_snapshots_cwd_time
		ON dom_snapshots(cwd, timestamp);
	CREATE INDEX IF NOT EXISTS idx_alerts_raised
		ON alerts(raised_at);
	`
)

// DB represents the database connection and operations.
type DB struct {
	*sql.DB
	logger *logrus.Logger
}

// DOMHistoryPoint is one stored snapshot of a DOM.
type DOMHistoryPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Hub           string    `json:"hub"`
	OMKey         string    `json:"omkey"`
	MBID          string    `json:"mbid,omitempty"`
	Plugged       bool      `json:"plugged"`
	Current       int       `json:"current"`
	Voltage       float64   `json:"voltage"`
	PowerCheck    string    `json:"pwr_check,omitempty"`
	Communicating bool      `json:"communicating"`
	RXBytes       *int64    `json:"rx_bytes,omitempty"`
	TXBytes       *int64    `json:"tx_bytes,omitempty"`
	BadPkt        *int64    `json:"badpkt,omitempty"`
	NRetxB        *int64    `json:"nretxb,omitempty"`
}

// AlertRecord is a stored alert.
type AlertRecord struct {
	ID        int64      `json:"id"`
	Hub       string     `json:"hub"`
	Cluster   string     `json:"cluster"`
	Condition string     `json:"condition"`
	Desc      string     `json:"desc"`
	RaisedAt  time.Time  `json:"raised_at"`
	ClearedAt *time.Time `json:"cleared_at,omitempty"`
}

// Active reports whether the alert has not been cleared.
func (a *AlertRecord) Active() bool {
	return a.ClearedAt == nil
}

// New creates a new database connection and initializes the schema.
func New(dbPath string, log *logrus.Logger) (Service, error) {
	if log == nil {
		log = logger.Discard()
	}

	sqlDB, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFailedOpenDB, err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToEnableWAL, err)
	}

	db := &DB{DB: sqlDB, logger: log}
	if err := db.initSchema(); err != nil {
		_ = sqlDB.Close()

		return nil, fmt.Errorf("%w: %w", ErrFailedToInit, err)
	}

	return db, nil
}

func (db *DB) initSchema() error {
	_, err := db.Exec(createTablesSQL)

	return err
}

// StoreSnapshots writes one poll of DOM snapshots in a single transaction.
func (db *DB) StoreSnapshots(snaps []*moni.Snapshot) (err error) {
	if len(snaps) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}
	defer func() { db.rollbackOnError(tx, err) }()

	const insertSQL = `
		INSERT INTO dom_snapshots
			(hub, cwd, omkey, mbid, timestamp, plugged, current, voltage,
			 pwr_check, communicating, rx_bytes, tx_bytes, badpkt, nretxb)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("%w snapshot: %w", ErrFailedToInsert, err)
	}
	defer stmt.Close()

	for _, s := range snaps {
		var pwr sql.NullString
		if s.PowerCheck != nil {
			pwr = sql.NullString{String: s.PowerCheck.Text, Valid: true}
		}

		var rx, txb, bad, retx sql.NullInt64
		if cs := s.CommStats; cs != nil {
			rx = sql.NullInt64{Int64: cs.RXBytes, Valid: true}
			txb = sql.NullInt64{Int64: cs.TXBytes, Valid: true}
			bad = sql.NullInt64{Int64: int64(cs.BadPkt), Valid: true}
			retx = sql.NullInt64{Int64: int64(cs.NRetxB), Valid: true}
		}

		_, err = stmt.Exec(s.Hub, s.CWD, s.OMKey, s.MBID, s.UpdateTime.UTC(),
			s.Plugged, s.Current, s.Voltage, pwr, s.Communicating,
			rx, txb, bad, retx)
		if err != nil {
			return fmt.Errorf("%w snapshot %s: %w", ErrFailedToInsert, s.CWD, err)
		}
	}

	return tx.Commit()
}

// GetDOMHistory returns up to limit stored snapshots of cwd, newest first.
func (db *DB) GetDOMHistory(cwd string, limit int) ([]DOMHistoryPoint, error) {
	if limit <= 0 || limit > maxHistoryPoints {
		limit = maxHistoryPoints
	}

	const query = `
        SELECT timestamp, hub, omkey, mbid, plugged, current, voltage,
               pwr_check, communicating, rx_bytes, tx_bytes, badpkt, nretxb
        FROM dom_snapshots
        WHERE cwd = ?
        ORDER BY timestamp DESC, id DESC
        LIMIT ?
    `

	rows, err := db.Query(query, cwd, limit)
	if err != nil {
		return nil, fmt.Errorf("%w dom history: %w", ErrFailedToQuery, err)
	}
	defer db.closeRows(rows)

	var points []DOMHistoryPoint

	for rows.Next() {
		var (
			p                  DOMHistoryPoint
			mbid, pwr          sql.NullString
			rx, tx, bad, nretx sql.NullInt64
		)

		if err := rows.Scan(&p.Timestamp, &p.Hub, &p.OMKey, &mbid, &p.Plugged,
			&p.Current, &p.Voltage, &pwr, &p.Communicating,
			&rx, &tx, &bad, &nretx); err != nil {
			return nil, fmt.Errorf("%w history point: %w", ErrFailedToScan, err)
		}

		p.MBID = mbid.String
		p.PowerCheck = pwr.String
		p.RXBytes = nullInt(rx)
		p.TXBytes = nullInt(tx)
		p.BadPkt = nullInt(bad)
		p.NRetxB = nullInt(nretx)

		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w dom history: %w", ErrFailedToQuery, err)
	}

	return points, nil
}

// StoreAlert records alert as raised at the given time.
func (db *DB) StoreAlert(alert *moni.Alert, raised time.Time) error {
	const insertSQL = `
		INSERT INTO alerts (hub, cluster, condition, description, raised_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(insertSQL,
		alert.Value.Vars.Hubname,
		alert.Value.Vars.Cluster,
		alert.Value.Condition,
		alert.Value.Desc,
		raised.UTC())
	if err != nil {
		return fmt.Errorf("%w alert: %w", ErrFailedToInsert, err)
	}

	return nil
}

// ClearAlert marks every active stored copy of alert as cleared.
func (db *DB) ClearAlert(alert *moni.Alert, cleared time.Time) error {
	const updateSQL = `
		UPDATE alerts
		SET cleared_at = ?
		WHERE hub = ? AND cluster = ? AND condition = ? AND description = ?
		  AND cleared_at IS NULL
	`

	result, err := db.Exec(updateSQL,
		cleared.UTC(),
		alert.Value.Vars.Hubname,
		alert.Value.Vars.Cluster,
		alert.Value.Condition,
		alert.Value.Desc)
	if err != nil {
		return fmt.Errorf("%w alert: %w", ErrFailedToUpdate, err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		db.logger.WithField("condition", alert.Value.Condition).Debug("no active alert to clear")
	}

	return nil
}

// GetAlerts returns up to limit stored alerts, newest first.
func (db *DB) GetAlerts(limit int) ([]AlertRecord, error) {
	if limit <= 0 || limit > maxHistoryPoints {
		limit = maxHistoryPoints
	}

	const query = `
        SELECT id, hub, cluster, condition, description, raised_at, cleared_at
        FROM alerts
        ORDER BY raised_at DESC, id DESC
        LIMIT ?
    `

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w alerts: %w", ErrFailedToQuery, err)
	}
	defer db.closeRows(rows)

	var alerts []AlertRecord

	for rows.Next() {
		var (
			a       AlertRecord
			cleared sql.NullTime
		)

		if err := rows.Scan(&a.ID, &a.Hub, &a.Cluster, &a.Condition, &a.Desc,
			&a.RaisedAt, &cleared); err != nil {
			return nil, fmt.Errorf("%w alert row: %w", ErrFailedToScan, err)
		}

		if cleared.Valid {
			t := cleared.Time
			a.ClearedAt = &t
		}

		alerts = append(alerts, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w alerts: %w", ErrFailedToQuery, err)
	}

	return alerts, nil
}

// CleanOldData removes snapshots and cleared alerts older than the retention
// period. Active alerts are kept regardless of age.
func (db *DB) CleanOldData(retentionPeriod time.Duration) (err error) {
	cutoff := time.Now().UTC().Add(-retentionPeriod)

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToBeginTx, err)
	}
	defer func() { db.rollbackOnError(tx, err) }()

	if _, err = tx.Exec("DELETE FROM dom_snapshots WHERE timestamp < ?", cutoff); err != nil {
		return fmt.Errorf("%w dom_snapshots: %w", ErrFailedToClean, err)
	}

	if _, err = tx.Exec("DELETE FROM alerts WHERE cleared_at IS NOT NULL AND cleared_at < ?", cutoff); err != nil {
		return fmt.Errorf("%w alerts: %w", ErrFailedToClean, err)
	}

	return tx.Commit()
}

func (db *DB) rollbackOnError(tx *sql.Tx, err error) {
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.WithError(rbErr).Error("Error rolling back transaction")
		}
	}
}

func (db *DB) closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		db.logger.WithError(err).Warn("failed to close rows")
	}
}

func nullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}

	v := n.Int64

	return &v
}
