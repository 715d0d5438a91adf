// ABOUTME: Separator CRUD operations for SQL storage.
// ABOUTME: Separators are free-text labels interleaved with logged exercises.
package storage

import (
	"context"

	"github.com/harperreed/liftlog/internal/models"
)

// InsertSeparator stores a new separator and returns the assigned id.
func (d *DB) InsertSeparator(ctx context.Context, s *models.Separator) (int64, error) {
	var id int64
	err := d.db.QueryRowContext(ctx,
		d.rebind("INSERT INTO separators (text) VALUES (?) RETURNING id"),
		s.Text,
	).Scan(&id)
	if err != nil {
		return 0, Wrap("insert separator", err)
	}
	return id, nil
}

// UpdateSeparator renames a separator. Updating a missing id is a no-op.
func (d *DB) UpdateSeparator(ctx context.Context, s *models.Separator) error {
	_, err := d.db.ExecContext(ctx, d.rebind("UPDATE separators SET text = ? WHERE id = ?"), s.Text, s.ID)
	return Wrap("update separator", err)
}

// DeleteSeparator removes a separator. Deleting a missing id is a no-op.
func (d *DB) DeleteSeparator(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, d.rebind("DELETE FROM separators WHERE id = ?"), id)
	return Wrap("delete separator", err)
}

// ListSeparators retrieves all separators.
func (d *DB) ListSeparators(ctx context.Context) ([]*models.Separator, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT id, text FROM separators")
	if err != nil {
		return nil, Wrap("list separators", err)
	}
	defer rows.Close()

	var separators []*models.Separator
	for rows.Next() {
		var s models.Separator
		if err := rows.Scan(&s.ID, &s.Text); err != nil {
			return nil, Wrap("scan separator", err)
		}
		separators = append(separators, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, Wrap("list separators", err)
	}
	return separators, nil
}

// ClearSeparators deletes every separator.
func (d *DB) ClearSeparators(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM separators")
	return Wrap("clear separators", err)
}
