// ABOUTME: Read-only snapshots and lookups over coordinator state.
// ABOUTME: Every result is a copy; callers can never mutate the history.
package history

import (
	"context"
	"fmt"

	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/storage"
)

// History returns a copy of the combined sequence, topmost first.
func (c *Coordinator) History() []models.HistoryItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.HistoryItem, len(c.history))
	for i, item := range c.history {
		out[i] = models.CloneItem(item)
	}
	return out
}

// Catalog returns a copy of the loaded exercise catalog.
func (c *Coordinator) Catalog() []models.CatalogExercise {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.CatalogExercise(nil), c.catalog...)
}

// LogRecords returns a copy of the log record mirror.
func (c *Coordinator) LogRecords() []models.LogRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.LogRecord, len(c.logRecords))
	for i, r := range c.logRecords {
		out[i] = r.Clone()
	}
	return out
}

// Separators returns a copy of the separator mirror.
func (c *Coordinator) Separators() []models.Separator {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Separator(nil), c.separators...)
}

// CatalogExercise looks up a catalog entry by id.
func (c *Coordinator) CatalogExercise(id string) (models.CatalogExercise, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ex, ok := c.findCatalog(id)
	if !ok {
		return models.CatalogExercise{}, fmt.Errorf("catalog exercise %q: %w", id, storage.ErrNotFound)
	}
	return ex, nil
}

// LogRecord looks up a loaded exercise by id.
func (c *Coordinator) LogRecord(id int64) (models.LogRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.findRecord(id)
	if idx < 0 {
		return models.LogRecord{}, fmt.Errorf("log record %d: %w", id, storage.ErrNotFound)
	}
	return c.logRecords[idx].Clone(), nil
}

// Separator looks up a loaded separator by id.
func (c *Coordinator) Separator(id int64) (models.Separator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range c.separators {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Separator{}, fmt.Errorf("separator %d: %w", id, storage.ErrNotFound)
}

// Open loads the persisted state and, when a catalog source is configured,
// the catalog. A catalog failure is logged and returned but the persisted
// state stays loaded.
func (c *Coordinator) Open(ctx context.Context) error {
	if err := c.LoadPersistedState(ctx); err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if c.fetcher == nil {
		return nil
	}
	return c.LoadCatalog(ctx)
}
