// ABOUTME: Log record, separator, and history order operations for Charm KV storage.
// ABOUTME: The order lives under a single key so a replace is one atomic write.
package charm

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/storage"
)

// InsertLogRecord stores a new log record and returns the assigned id.
func (c *Client) InsertLogRecord(ctx context.Context, r *models.LogRecord) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkWritable(); err != nil {
		return 0, storage.Wrap("insert log record", err)
	}
	id, err := c.nextID(logRecordSeqKey)
	if err != nil {
		return 0, storage.Wrap("insert log record", err)
	}

	rec := r.Clone()
	rec.ID = id
	data, err := json.Marshal(rec)
	if err != nil {
		return 0, storage.Wrap("insert log record", err)
	}
	if err := c.kv.Set(recordKey(LogRecordPrefix, id), data); err != nil {
		return 0, storage.Wrap("insert log record", err)
	}
	c.syncIfEnabled()
	return id, nil
}

// UpdateLogRecord rewrites the editable fields of an existing record.
// LoggedAt is kept from the stored copy; updating a missing id is a no-op.
func (c *Client) UpdateLogRecord(ctx context.Context, r *models.LogRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkWritable(); err != nil {
		return storage.Wrap("update log record", err)
	}

	key := recordKey(LogRecordPrefix, r.ID)
	data, err := c.kv.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return storage.Wrap("update log record", err)
	}
	existing, err := unmarshalJSON[models.LogRecord](data)
	if err != nil {
		return storage.Wrap("update log record", err)
	}

	rec := r.Clone()
	rec.LoggedAt = existing.LoggedAt
	out, err := json.Marshal(rec)
	if err != nil {
		return storage.Wrap("update log record", err)
	}
	if err := c.kv.Set(key, out); err != nil {
		return storage.Wrap("update log record", err)
	}
	c.syncIfEnabled()
	return nil
}

// DeleteLogRecord removes a log record. Deleting a missing id is a no-op.
func (c *Client) DeleteLogRecord(ctx context.Context, id int64) error {
	return c.deleteKey("delete log record", recordKey(LogRecordPrefix, id))
}

// ListLogRecords retrieves all log records, most recently logged first.
func (c *Client) ListLogRecords(ctx context.Context) ([]*models.LogRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	allData, err := c.listByPrefix(LogRecordPrefix)
	if err != nil {
		return nil, storage.Wrap("list log records", err)
	}

	var records []*models.LogRecord
	for _, data := range allData {
		r, err := unmarshalJSON[models.LogRecord](data)
		if err != nil {
			continue
		}
		records = append(records, r)
	}

	sort.SliceStable(records, func(i, j int) bool {
		if records[i].LoggedAt.Equal(records[j].LoggedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].LoggedAt.After(records[j].LoggedAt)
	})
	return records, nil
}

// ClearLogRecords deletes every log record.
func (c *Client) ClearLogRecords(ctx context.Context) error {
	return c.clearPrefix("clear log records", LogRecordPrefix)
}

// InsertSeparator stores a new separator and returns the assigned id.
func (c *Client) InsertSeparator(ctx context.Context, s *models.Separator) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkWritable(); err != nil {
		return 0, storage.Wrap("insert separator", err)
	}
	id, err := c.nextID(separatorSeqKey)
	if err != nil {
		return 0, storage.Wrap("insert separator", err)
	}

	data, err := json.Marshal(models.Separator{ID: id, Text: s.Text})
	if err != nil {
		return 0, storage.Wrap("insert separator", err)
	}
	if err := c.kv.Set(recordKey(SeparatorPrefix, id), data); err != nil {
		return 0, storage.Wrap("insert separator", err)
	}
	c.syncIfEnabled()
	return id, nil
}

// UpdateSeparator renames a separator. Updating a missing id is a no-op.
func (c *Client) UpdateSeparator(ctx context.Context, s *models.Separator) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkWritable(); err != nil {
		return storage.Wrap("update separator", err)
	}

	key := recordKey(SeparatorPrefix, s.ID)
	if _, err := c.kv.Get(key); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return storage.Wrap("update separator", err)
	}

	data, err := json.Marshal(models.Separator{ID: s.ID, Text: s.Text})
	if err != nil {
		return storage.Wrap("update separator", err)
	}
	if err := c.kv.Set(key, data); err != nil {
		return storage.Wrap("update separator", err)
	}
	c.syncIfEnabled()
	return nil
}

// DeleteSeparator removes a separator. Deleting a missing id is a no-op.
func (c *Client) DeleteSeparator(ctx context.Context, id int64) error {
	return c.deleteKey("delete separator", recordKey(SeparatorPrefix, id))
}

// ListSeparators retrieves all separators.
func (c *Client) ListSeparators(ctx context.Context) ([]*models.Separator, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	allData, err := c.listByPrefix(SeparatorPrefix)
	if err != nil {
		return nil, storage.Wrap("list separators", err)
	}

	var separators []*models.Separator
	for _, data := range allData {
		s, err := unmarshalJSON[models.Separator](data)
		if err != nil {
			continue
		}
		separators = append(separators, s)
	}
	return separators, nil
}

// ClearSeparators deletes every separator.
func (c *Client) ClearSeparators(ctx context.Context) error {
	return c.clearPrefix("clear separators", SeparatorPrefix)
}

// ListOrder retrieves all order entries sorted by position.
func (c *Client) ListOrder(ctx context.Context) ([]models.OrderEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := c.kv.Get([]byte(orderKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storage.Wrap("list order", err)
	}

	var entries []models.OrderEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, storage.Wrap("list order", err)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Position < entries[j].Position
	})
	return entries, nil
}

// ReplaceOrder stores entries as the complete history order.
func (c *Client) ReplaceOrder(ctx context.Context, entries []models.OrderEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkWritable(); err != nil {
		return storage.Wrap("replace order", err)
	}
	if entries == nil {
		entries = []models.OrderEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return storage.Wrap("replace order", err)
	}
	if err := c.kv.Set([]byte(orderKey), data); err != nil {
		return storage.Wrap("replace order", err)
	}
	c.syncIfEnabled()
	return nil
}

// ClearOrder deletes the stored history order.
func (c *Client) ClearOrder(ctx context.Context) error {
	return c.deleteKey("clear order", []byte(orderKey))
}

func (c *Client) deleteKey(op string, key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkWritable(); err != nil {
		return storage.Wrap(op, err)
	}
	if err := c.kv.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return storage.Wrap(op, err)
	}
	c.syncIfEnabled()
	return nil
}

func (c *Client) clearPrefix(op, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkWritable(); err != nil {
		return storage.Wrap(op, err)
	}
	if err := c.deleteByPrefix(prefix); err != nil {
		return storage.Wrap(op, err)
	}
	c.syncIfEnabled()
	return nil
}
