// ABOUTME: Data migration between liftlog storage backends.
// ABOUTME: Copies records and separators, remapping store-assigned ids in the history order.

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/harperreed/liftlog/internal/models"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	LogRecords   int
	Separators   int
	OrderEntries int
	// Orphans counts order entries dropped because their record was missing.
	Orphans int
}

// ErrDestinationNotEmpty is returned when the migration target already holds data.
var ErrDestinationNotEmpty = errors.New("destination backend is not empty")

// MigrateData copies all data from src to dst storage.
// The destination assigns new ids, so the history order is rewritten
// through an old-to-new id map before it is stored. Orphaned order
// entries in src are dropped. The destination must be empty; otherwise
// ErrDestinationNotEmpty is returned and nothing is written.
func MigrateData(ctx context.Context, src, dst Repository) (*MigrateSummary, error) {
	if err := checkEmpty(ctx, dst); err != nil {
		return nil, err
	}

	summary := &MigrateSummary{}

	records, err := src.ListLogRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source log records: %w", err)
	}

	exerciseIDs := make(map[int64]int64, len(records))
	// Oldest first so destination ids keep the same relative order.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		newID, err := dst.InsertLogRecord(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("insert log record %d: %w", r.ID, err)
		}
		exerciseIDs[r.ID] = newID
		summary.LogRecords++
	}

	separators, err := src.ListSeparators(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source separators: %w", err)
	}

	separatorIDs := make(map[int64]int64, len(separators))
	for _, s := range separators {
		newID, err := dst.InsertSeparator(ctx, s)
		if err != nil {
			return nil, fmt.Errorf("insert separator %d: %w", s.ID, err)
		}
		separatorIDs[s.ID] = newID
		summary.Separators++
	}

	order, err := src.ListOrder(ctx)
	if err != nil {
		return nil, fmt.Errorf("list source order: %w", err)
	}

	remapped := make([]models.OrderEntry, 0, len(order))
	for _, e := range order {
		ids := exerciseIDs
		if e.Kind == models.KindSeparator {
			ids = separatorIDs
		}
		newID, ok := ids[e.ItemID]
		if !ok {
			summary.Orphans++
			continue
		}
		remapped = append(remapped, models.OrderEntry{
			Kind:     e.Kind,
			ItemID:   newID,
			Position: len(remapped),
		})
	}

	if err := dst.ReplaceOrder(ctx, remapped); err != nil {
		return nil, fmt.Errorf("replace destination order: %w", err)
	}
	summary.OrderEntries = len(remapped)

	return summary, nil
}

// checkEmpty fails when dst has any log record, separator or order entry.
func checkEmpty(ctx context.Context, dst Repository) error {
	records, err := dst.ListLogRecords(ctx)
	if err != nil {
		return fmt.Errorf("list destination log records: %w", err)
	}
	seps, err := dst.ListSeparators(ctx)
	if err != nil {
		return fmt.Errorf("list destination separators: %w", err)
	}
	order, err := dst.ListOrder(ctx)
	if err != nil {
		return fmt.Errorf("list destination order: %w", err)
	}
	if len(records) > 0 || len(seps) > 0 || len(order) > 0 {
		return fmt.Errorf("%w: %d exercises, %d separators, %d order entries",
			ErrDestinationNotEmpty, len(records), len(seps), len(order))
	}
	return nil
}
