// ABOUTME: Log record CRUD operations for SQL storage.
// ABOUTME: Ids come from the database on insert; timestamps stored as unix millis.
package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/harperreed/liftlog/internal/models"
)

// InsertLogRecord stores a new log record and returns the assigned id.
// r.ID is ignored.
func (d *DB) InsertLogRecord(ctx context.Context, r *models.LogRecord) (int64, error) {
	query := d.rebind(`
		INSERT INTO log_records (exercise_name, muscle, sets, reps, weight, logged_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	var id int64
	err := d.db.QueryRowContext(ctx, query,
		r.ExerciseName,
		r.Muscle,
		r.Sets,
		r.Reps,
		r.Weight,
		r.LoggedAt.UnixMilli(),
	).Scan(&id)
	if err != nil {
		return 0, Wrap("insert log record", err)
	}
	return id, nil
}

// UpdateLogRecord rewrites the editable fields of an existing record.
// LoggedAt is left untouched; updating a missing id is a no-op.
func (d *DB) UpdateLogRecord(ctx context.Context, r *models.LogRecord) error {
	query := d.rebind(`
		UPDATE log_records
		SET exercise_name = ?, muscle = ?, sets = ?, reps = ?, weight = ?
		WHERE id = ?
	`)
	_, err := d.db.ExecContext(ctx, query,
		r.ExerciseName,
		r.Muscle,
		r.Sets,
		r.Reps,
		r.Weight,
		r.ID,
	)
	return Wrap("update log record", err)
}

// DeleteLogRecord removes a log record. Deleting a missing id is a no-op.
func (d *DB) DeleteLogRecord(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, d.rebind("DELETE FROM log_records WHERE id = ?"), id)
	return Wrap("delete log record", err)
}

// ListLogRecords retrieves all log records, most recently logged first.
func (d *DB) ListLogRecords(ctx context.Context) ([]*models.LogRecord, error) {
	query := `
		SELECT id, exercise_name, muscle, sets, reps, weight, logged_at
		FROM log_records
		ORDER BY logged_at DESC, id DESC
	`
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return nil, Wrap("list log records", err)
	}
	defer rows.Close()

	records, err := scanLogRecords(rows)
	if err != nil {
		return nil, Wrap("list log records", err)
	}
	return records, nil
}

// ClearLogRecords deletes every log record.
func (d *DB) ClearLogRecords(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM log_records")
	return Wrap("clear log records", err)
}

// scanLogRecords scans multiple rows into a slice of LogRecords.
func scanLogRecords(rows *sql.Rows) ([]*models.LogRecord, error) {
	var records []*models.LogRecord

	for rows.Next() {
		var r models.LogRecord
		var muscle sql.NullString
		var sets, reps sql.NullInt64
		var weight sql.NullFloat64
		var loggedAt int64

		if err := rows.Scan(&r.ID, &r.ExerciseName, &muscle, &sets, &reps, &weight, &loggedAt); err != nil {
			return nil, err
		}

		r.LoggedAt = time.UnixMilli(loggedAt)
		if muscle.Valid {
			r.Muscle = &muscle.String
		}
		if sets.Valid {
			n := int(sets.Int64)
			r.Sets = &n
		}
		if reps.Valid {
			n := int(reps.Int64)
			r.Reps = &n
		}
		if weight.Valid {
			r.Weight = &weight.Float64
		}

		records = append(records, &r)
	}

	return records, rows.Err()
}
