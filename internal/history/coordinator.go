// ABOUTME: History coordinator owning the combined exercise/separator sequence.
// ABOUTME: Mediates every mutation across the log, separator and order stores.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/harperreed/liftlog/internal/catalog"
	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/storage"
)

var (
	// ErrIndexOutOfRange is returned by Move for an index outside the history.
	ErrIndexOutOfRange = errors.New("history index out of range")
	// ErrEmptyName is returned when logging an exercise without a name.
	ErrEmptyName = errors.New("exercise name is required")
	// ErrNoCatalog is returned by LoadCatalog when no catalog source is set.
	ErrNoCatalog = errors.New("no catalog source configured")
)

// Store is the set of durable stores the coordinator writes through.
type Store interface {
	storage.LogStore
	storage.SeparatorStore
	storage.OrderStore
}

// ExerciseInput holds the user-editable fields of a logged exercise.
type ExerciseInput struct {
	Name   string
	Muscle *string
	Sets   *int
	Reps   *int
	Weight *float64
}

// Coordinator is the sole owner of the in-memory history. All methods are
// safe for concurrent use; mutations are serialized.
type Coordinator struct {
	mu sync.Mutex

	store   Store
	fetcher catalog.Fetcher
	logger  *zap.Logger
	session string
	now     func() time.Time
	events  broadcaster

	catalog    []models.CatalogExercise
	logRecords []models.LogRecord
	separators []models.Separator
	history    []models.HistoryItem
}

// New creates a coordinator over store. fetcher may be nil when no catalog is
// available; logger may be nil.
func New(store Store, fetcher catalog.Fetcher, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	session := uuid.NewString()
	return &Coordinator{
		store:   store,
		fetcher: fetcher,
		logger:  logger.Named("history").With(zap.String("session", session)),
		session: session,
		now:     time.Now,
	}
}

// SessionID identifies this coordinator instance in logs.
func (c *Coordinator) SessionID() string {
	return c.session
}

// Subscribe returns a channel of change events and a function that ends the
// subscription and closes the channel.
func (c *Coordinator) Subscribe() (<-chan Event, func()) {
	return c.events.subscribe()
}

// LoadCatalog replaces the catalog with a fresh fetch. On failure the
// previous catalog is kept.
func (c *Coordinator) LoadCatalog(ctx context.Context) error {
	if c.fetcher == nil {
		return ErrNoCatalog
	}

	exercises, err := c.fetcher.FetchAll(ctx)
	observe(OpLoadCatalog, err)
	if err != nil {
		c.logger.Warn("catalog fetch failed", zap.Error(err))
		return err
	}

	c.mu.Lock()
	c.catalog = exercises
	c.mu.Unlock()

	c.logger.Debug("catalog loaded", zap.Int("count", len(exercises)))
	c.events.publish(Event{Op: OpLoadCatalog})
	return nil
}

// LoadPersistedState reloads the record mirrors from the stores and rebuilds
// the history from the persisted order.
func (c *Coordinator) LoadPersistedState(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var records []*models.LogRecord
	var seps []*models.Separator

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = c.store.ListLogRecords(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		seps, err = c.store.ListSeparators(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		observe(OpLoadState, err)
		return err
	}

	history, err := c.rebuild(ctx, records, seps)
	observe(OpLoadState, err)
	if err != nil {
		return err
	}

	c.logRecords = derefRecords(records)
	c.separators = derefSeparators(seps)
	c.setHistory(history)

	c.logger.Debug("state loaded",
		zap.Int("log_records", len(c.logRecords)),
		zap.Int("separators", len(c.separators)),
		zap.Int("history", len(c.history)))
	c.events.publish(Event{Op: OpLoadState})
	return nil
}

// RebuildHistoryFromOrder reconstructs the history from the persisted order
// using the current in-memory mirrors. Entries whose record no longer exists
// are skipped.
func (c *Coordinator) RebuildHistoryFromOrder(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]*models.LogRecord, len(c.logRecords))
	for i := range c.logRecords {
		records[i] = &c.logRecords[i]
	}
	seps := make([]*models.Separator, len(c.separators))
	for i := range c.separators {
		seps[i] = &c.separators[i]
	}

	history, err := c.rebuild(ctx, records, seps)
	observe(OpRebuild, err)
	if err != nil {
		return err
	}
	c.setHistory(history)
	c.events.publish(Event{Op: OpRebuild})
	return nil
}

func (c *Coordinator) rebuild(ctx context.Context, records []*models.LogRecord, seps []*models.Separator) ([]models.HistoryItem, error) {
	entries, err := c.store.ListOrder(ctx)
	if err != nil {
		return nil, err
	}

	recordByID := make(map[int64]*models.LogRecord, len(records))
	for _, r := range records {
		recordByID[r.ID] = r
	}
	sepByID := make(map[int64]*models.Separator, len(seps))
	for _, s := range seps {
		sepByID[s.ID] = s
	}

	history := make([]models.HistoryItem, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	orphans, duplicates := 0, 0
	for _, e := range entries {
		var item models.HistoryItem
		switch e.Kind {
		case models.KindExercise:
			if r, ok := recordByID[e.ItemID]; ok {
				item = &models.ExerciseItem{Record: r.Clone()}
			}
		case models.KindSeparator:
			if s, ok := sepByID[e.ItemID]; ok {
				item = &models.SeparatorItem{SeparatorID: s.ID, Text: s.Text}
			}
		}
		if item == nil {
			orphans++
			continue
		}
		key := models.Key(item)
		if seen[key] {
			duplicates++
			continue
		}
		seen[key] = true
		history = append(history, item)
	}

	if orphans > 0 {
		orphansSkippedTotal.Add(float64(orphans))
		c.logger.Debug("skipped orphaned order entries", zap.Int("count", orphans))
	}
	if duplicates > 0 {
		duplicatesSkippedTotal.Add(float64(duplicates))
		c.logger.Debug("skipped duplicate order entries", zap.Int("count", duplicates))
	}
	if missing := len(records) + len(seps) - len(history); missing > 0 {
		c.logger.Warn("records missing from persisted order", zap.Int("count", missing))
	}
	return history, nil
}

// LogExercise stores a new exercise and puts it at the top of the history.
// It returns the store-assigned id. If only the order write fails the id is
// returned together with the error.
func (c *Coordinator) LogExercise(ctx context.Context, in ExerciseInput) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.logExercise(ctx, in)
}

// LogFromCatalog logs a catalog exercise, using its target as the muscle.
func (c *Coordinator) LogFromCatalog(ctx context.Context, catalogID string, sets, reps *int, weight *float64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ex, ok := c.findCatalog(catalogID)
	if !ok {
		return 0, fmt.Errorf("catalog exercise %q: %w", catalogID, storage.ErrNotFound)
	}
	return c.logExercise(ctx, ExerciseInput{
		Name:   ex.Name,
		Muscle: ex.Target,
		Sets:   sets,
		Reps:   reps,
		Weight: weight,
	})
}

func (c *Coordinator) logExercise(ctx context.Context, in ExerciseInput) (int64, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return 0, ErrEmptyName
	}

	rec := models.LogRecord{
		ExerciseName: name,
		Muscle:       in.Muscle,
		Sets:         in.Sets,
		Reps:         in.Reps,
		Weight:       in.Weight,
		LoggedAt:     c.now(),
	}
	rec = rec.Clone()

	id, err := c.store.InsertLogRecord(ctx, &rec)
	if err != nil {
		observe(OpLogExercise, err)
		return 0, err
	}
	rec.ID = id

	c.logRecords = append([]models.LogRecord{rec}, c.logRecords...)
	c.setHistory(prepend(c.history, &models.ExerciseItem{Record: rec.Clone(), IsNew: true}))

	err = c.persistOrder(ctx)
	observe(OpLogExercise, err)
	c.logger.Debug("exercise logged",
		zap.String("op", string(OpLogExercise)),
		zap.String("kind", string(models.KindExercise)),
		zap.Int64("id", id))
	c.events.publish(Event{Op: OpLogExercise, Kind: models.KindExercise, ID: id})
	return id, err
}

// UpdateExercise rewrites an exercise in place and clears its new marker. The store is written even if
// the id is not loaded; that divergence is logged and resolved on reload.
// LoggedAt is never changed.
func (c *Coordinator) UpdateExercise(ctx context.Context, id int64, in ExerciseInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return ErrEmptyName
	}

	rec := models.LogRecord{
		ID:           id,
		ExerciseName: name,
		Muscle:       in.Muscle,
		Sets:         in.Sets,
		Reps:         in.Reps,
		Weight:       in.Weight,
	}
	rec = rec.Clone()

	if err := c.store.UpdateLogRecord(ctx, &rec); err != nil {
		observe(OpUpdateExercise, err)
		return err
	}
	observe(OpUpdateExercise, nil)

	idx := c.findRecord(id)
	if idx < 0 {
		divergenceTotal.Inc()
		c.logger.Warn("updated exercise not loaded; memory is stale until reload",
			zap.String("op", string(OpUpdateExercise)),
			zap.Int64("id", id))
		return nil
	}

	rec.LoggedAt = c.logRecords[idx].LoggedAt
	c.logRecords[idx] = rec
	for _, item := range c.history {
		if ex, ok := item.(*models.ExerciseItem); ok && ex.Record.ID == id {
			ex.Record = rec.Clone()
			ex.IsNew = false
		}
	}

	c.logger.Debug("exercise updated",
		zap.String("op", string(OpUpdateExercise)),
		zap.String("kind", string(models.KindExercise)),
		zap.Int64("id", id))
	c.events.publish(Event{Op: OpUpdateExercise, Kind: models.KindExercise, ID: id})
	return nil
}

// DeleteExercise removes an exercise from the store and the history.
func (c *Coordinator) DeleteExercise(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteLogRecord(ctx, id); err != nil {
		observe(OpDeleteExercise, err)
		return err
	}

	records := c.logRecords[:0:0]
	for _, r := range c.logRecords {
		if r.ID != id {
			records = append(records, r)
		}
	}
	c.logRecords = records
	c.setHistory(without(c.history, models.KindExercise, id))

	err := c.persistOrder(ctx)
	observe(OpDeleteExercise, err)
	c.logger.Debug("exercise deleted",
		zap.String("op", string(OpDeleteExercise)),
		zap.String("kind", string(models.KindExercise)),
		zap.Int64("id", id))
	c.events.publish(Event{Op: OpDeleteExercise, Kind: models.KindExercise, ID: id})
	return err
}

// AddSeparator stores a new separator at the top of the history and returns
// its store-assigned id.
func (c *Coordinator) AddSeparator(ctx context.Context, text string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sep := models.Separator{Text: text}
	id, err := c.store.InsertSeparator(ctx, &sep)
	if err != nil {
		observe(OpAddSeparator, err)
		return 0, err
	}
	sep.ID = id

	c.separators = append([]models.Separator{sep}, c.separators...)
	c.setHistory(prepend(c.history, &models.SeparatorItem{SeparatorID: id, Text: text}))

	err = c.persistOrder(ctx)
	observe(OpAddSeparator, err)
	c.logger.Debug("separator added",
		zap.String("op", string(OpAddSeparator)),
		zap.String("kind", string(models.KindSeparator)),
		zap.Int64("id", id))
	c.events.publish(Event{Op: OpAddSeparator, Kind: models.KindSeparator, ID: id})
	return id, err
}

// UpdateSeparator renames a separator in place. Unknown ids are ignored.
func (c *Coordinator) UpdateSeparator(ctx context.Context, id int64, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := -1
	for i, s := range c.separators {
		if s.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.logger.Debug("separator not loaded; update skipped", zap.Int64("id", id))
		return nil
	}

	sep := models.Separator{ID: id, Text: text}
	if err := c.store.UpdateSeparator(ctx, &sep); err != nil {
		observe(OpUpdateSeparator, err)
		return err
	}
	observe(OpUpdateSeparator, nil)

	c.separators[idx] = sep
	for _, item := range c.history {
		if s, ok := item.(*models.SeparatorItem); ok && s.SeparatorID == id {
			s.Text = text
		}
	}

	c.logger.Debug("separator updated",
		zap.String("op", string(OpUpdateSeparator)),
		zap.String("kind", string(models.KindSeparator)),
		zap.Int64("id", id))
	c.events.publish(Event{Op: OpUpdateSeparator, Kind: models.KindSeparator, ID: id})
	return nil
}

// DeleteSeparator removes a separator from the store and the history.
func (c *Coordinator) DeleteSeparator(ctx context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.DeleteSeparator(ctx, id); err != nil {
		observe(OpDeleteSeparator, err)
		return err
	}

	seps := c.separators[:0:0]
	for _, s := range c.separators {
		if s.ID != id {
			seps = append(seps, s)
		}
	}
	c.separators = seps
	c.setHistory(without(c.history, models.KindSeparator, id))

	err := c.persistOrder(ctx)
	observe(OpDeleteSeparator, err)
	c.logger.Debug("separator deleted",
		zap.String("op", string(OpDeleteSeparator)),
		zap.String("kind", string(models.KindSeparator)),
		zap.Int64("id", id))
	c.events.publish(Event{Op: OpDeleteSeparator, Kind: models.KindSeparator, ID: id})
	return err
}

// Move relocates the item at index from to index to, shifting the items in
// between.
func (c *Coordinator) Move(ctx context.Context, from, to int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.history)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("move %d to %d with %d items: %w", from, to, n, ErrIndexOutOfRange)
	}
	if from == to {
		return nil
	}

	previous := c.history
	moved := make([]models.HistoryItem, 0, n)
	moved = append(moved, previous[:from]...)
	moved = append(moved, previous[from+1:]...)
	item := previous[from]
	moved = append(moved[:to], append([]models.HistoryItem{item}, moved[to:]...)...)
	c.history = moved

	if err := c.persistOrder(ctx); err != nil {
		c.history = previous
		observe(OpMove, err)
		return err
	}
	observe(OpMove, nil)

	c.logger.Debug("item moved",
		zap.String("op", string(OpMove)),
		zap.String("kind", string(item.Kind())),
		zap.Int64("id", item.ItemID()),
		zap.Int("from", from),
		zap.Int("to", to))
	c.events.publish(Event{Op: OpMove, Kind: item.Kind(), ID: item.ItemID()})
	return nil
}

// ClearAll deletes every record in all three stores and empties memory.
func (c *Coordinator) ClearAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clears := []func(context.Context) error{
		c.store.ClearLogRecords,
		c.store.ClearSeparators,
		c.store.ClearOrder,
	}
	for _, fn := range clears {
		if err := fn(ctx); err != nil {
			observe(OpClearAll, err)
			return err
		}
	}
	observe(OpClearAll, nil)

	c.logRecords = nil
	c.separators = nil
	c.setHistory(nil)

	c.logger.Info("all history cleared")
	c.events.publish(Event{Op: OpClearAll})
	return nil
}

// Import stores items below the existing history, keeping their order and
// logged timestamps. Ids on the items are ignored. Items stored before a
// failure stay in the history.
func (c *Coordinator) Import(ctx context.Context, items []models.HistoryItem) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	imported := 0
	var importErr error
	for _, item := range items {
		switch it := item.(type) {
		case *models.ExerciseItem:
			rec := it.Record.Clone()
			if strings.TrimSpace(rec.ExerciseName) == "" {
				importErr = ErrEmptyName
				break
			}
			if rec.LoggedAt.IsZero() {
				rec.LoggedAt = c.now()
			}
			id, err := c.store.InsertLogRecord(ctx, &rec)
			if err != nil {
				importErr = err
				break
			}
			rec.ID = id
			c.logRecords = append(c.logRecords, rec)
			c.history = append(c.history, &models.ExerciseItem{Record: rec.Clone()})
		case *models.SeparatorItem:
			sep := models.Separator{Text: it.Text}
			id, err := c.store.InsertSeparator(ctx, &sep)
			if err != nil {
				importErr = err
				break
			}
			sep.ID = id
			c.separators = append(c.separators, sep)
			c.history = append(c.history, &models.SeparatorItem{SeparatorID: id, Text: sep.Text})
		}
		if importErr != nil {
			break
		}
		imported++
	}
	c.setHistory(c.history)

	if imported > 0 {
		if err := c.persistOrder(ctx); err != nil && importErr == nil {
			importErr = err
		}
		c.events.publish(Event{Op: OpImport})
	}
	observe(OpImport, importErr)
	c.logger.Debug("history imported", zap.Int("count", imported), zap.Error(importErr))
	return imported, importErr
}

// persistOrder replaces the stored order with the current history.
func (c *Coordinator) persistOrder(ctx context.Context) error {
	start := time.Now()
	err := c.store.ReplaceOrder(ctx, models.OrderEntries(c.history))
	persistOrderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		c.logger.Error("persist order failed", zap.Error(err))
	}
	return err
}

func (c *Coordinator) setHistory(items []models.HistoryItem) {
	c.history = items
	historyItemsGauge.Set(float64(len(items)))
}

func (c *Coordinator) findRecord(id int64) int {
	for i, r := range c.logRecords {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (c *Coordinator) findCatalog(id string) (models.CatalogExercise, bool) {
	for _, ex := range c.catalog {
		if ex.ID == id {
			return ex, true
		}
	}
	return models.CatalogExercise{}, false
}

func prepend(items []models.HistoryItem, item models.HistoryItem) []models.HistoryItem {
	out := make([]models.HistoryItem, 0, len(items)+1)
	out = append(out, item)
	return append(out, items...)
}

func without(items []models.HistoryItem, kind models.ItemKind, id int64) []models.HistoryItem {
	out := make([]models.HistoryItem, 0, len(items))
	for _, item := range items {
		if item.Kind() == kind && item.ItemID() == id {
			continue
		}
		out = append(out, item)
	}
	return out
}

func derefRecords(records []*models.LogRecord) []models.LogRecord {
	out := make([]models.LogRecord, 0, len(records))
	for _, r := range records {
		out = append(out, r.Clone())
	}
	return out
}

func derefSeparators(seps []*models.Separator) []models.Separator {
	out := make([]models.Separator, 0, len(seps))
	for _, s := range seps {
		out = append(out, *s)
	}
	return out
}
