// Package db pkg/db/interfaces.go
package db

import (
	"time"

	"github.com/domhub/hubmoni/pkg/moni"
)

//go:generate mockgen -destination=mock_db.go -package=db github.com/domhub/hubmoni/pkg/db Service

// Service represents all database operations.
type Service interface {
	Close() error

	// Snapshot operations.

	StoreSnapshots(snaps []*moni.Snapshot) error
	GetDOMHistory(cwd string, limit int) ([]DOMHistoryPoint, error)

	// Alert operations.

	StoreAlert(alert *moni.Alert, raised time.Time) error
	ClearAlert(alert *moni.Alert, cleared time.Time) error
	GetAlerts(limit int) ([]AlertRecord, error)

	// Maintenance operations.

	CleanOldData(retentionPeriod time.Duration) error
}
