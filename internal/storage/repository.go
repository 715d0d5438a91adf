// ABOUTME: Repository interfaces for workout log storage.
// ABOUTME: Defines the log record, separator, and history order store contracts.
package storage

import (
	"context"

	"github.com/harperreed/liftlog/internal/models"
)

// LogStore persists logged exercises. Ids are assigned on insert.
type LogStore interface {
	InsertLogRecord(ctx context.Context, r *models.LogRecord) (int64, error)
	UpdateLogRecord(ctx context.Context, r *models.LogRecord) error
	DeleteLogRecord(ctx context.Context, id int64) error
	// ListLogRecords returns all records, most recently logged first.
	ListLogRecords(ctx context.Context) ([]*models.LogRecord, error)
	ClearLogRecords(ctx context.Context) error
}

// SeparatorStore persists separator labels. Ids are assigned on insert.
type SeparatorStore interface {
	InsertSeparator(ctx context.Context, s *models.Separator) (int64, error)
	UpdateSeparator(ctx context.Context, s *models.Separator) error
	DeleteSeparator(ctx context.Context, id int64) error
	// ListSeparators returns all separators in no particular order.
	ListSeparators(ctx context.Context) ([]*models.Separator, error)
	ClearSeparators(ctx context.Context) error
}

// OrderStore persists the display order of the combined history.
type OrderStore interface {
	// ListOrder returns all entries sorted ascending by position.
	ListOrder(ctx context.Context) ([]models.OrderEntry, error)
	// ReplaceOrder clears the stored order and inserts entries as one unit.
	ReplaceOrder(ctx context.Context, entries []models.OrderEntry) error
	ClearOrder(ctx context.Context) error
}

// Repository combines the three stores with lifecycle management.
type Repository interface {
	LogStore
	SeparatorStore
	OrderStore
	Close() error
}
