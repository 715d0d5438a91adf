// ABOUTME: History order operations for SQL storage.
// ABOUTME: The order is always replaced wholesale inside one transaction.
package storage

import (
	"context"
	"fmt"

	"github.com/harperreed/liftlog/internal/models"
)

// ListOrder retrieves all order entries sorted by position.
func (d *DB) ListOrder(ctx context.Context) ([]models.OrderEntry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT kind, item_id, position
		FROM history_order
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, Wrap("list order", err)
	}
	defer rows.Close()

	var entries []models.OrderEntry
	for rows.Next() {
		var e models.OrderEntry
		var kind string
		if err := rows.Scan(&kind, &e.ItemID, &e.Position); err != nil {
			return nil, Wrap("scan order entry", err)
		}
		e.Kind = models.ItemKind(kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap("list order", err)
	}
	return entries, nil
}

// ReplaceOrder clears the stored order and inserts entries in one transaction.
func (d *DB) ReplaceOrder(ctx context.Context, entries []models.OrderEntry) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return Wrap("replace order", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM history_order"); err != nil {
		return Wrap("replace order", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		d.rebind("INSERT INTO history_order (kind, item_id, position) VALUES (?, ?, ?)"))
	if err != nil {
		return Wrap("replace order", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, string(e.Kind), e.ItemID, e.Position); err != nil {
			return Wrap("replace order", fmt.Errorf("insert %s %d: %w", e.Kind, e.ItemID, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return Wrap("replace order", err)
	}
	return nil
}

// ClearOrder deletes every order entry.
func (d *DB) ClearOrder(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM history_order")
	return Wrap("clear order", err)
}
