// ABOUTME: In-memory Store used by coordinator tests.
// ABOUTME: Assigns sequential ids and can fail any named operation on demand.
package history

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/storage"
)

var errInjected = errors.New("injected failure")

type fakeStore struct {
	mu       sync.Mutex
	records  map[int64]models.LogRecord
	seps     map[int64]models.Separator
	order    []models.OrderEntry
	nextRec  int64
	nextSep  int64
	failOps  map[string]bool
	replaces int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: map[int64]models.LogRecord{},
		seps:    map[int64]models.Separator{},
		failOps: map[string]bool{},
	}
}

func (f *fakeStore) fail(op string) { f.failOps[op] = true }

func (f *fakeStore) check(op string) error {
	if f.failOps[op] {
		return storage.Wrap(op, errInjected)
	}
	return nil
}

func (f *fakeStore) InsertLogRecord(_ context.Context, r *models.LogRecord) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("insert log record"); err != nil {
		return 0, err
	}
	f.nextRec++
	rec := r.Clone()
	rec.ID = f.nextRec
	f.records[rec.ID] = rec
	return rec.ID, nil
}

func (f *fakeStore) UpdateLogRecord(_ context.Context, r *models.LogRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("update log record"); err != nil {
		return err
	}
	existing, ok := f.records[r.ID]
	if !ok {
		return nil
	}
	rec := r.Clone()
	rec.LoggedAt = existing.LoggedAt
	f.records[r.ID] = rec
	return nil
}

func (f *fakeStore) DeleteLogRecord(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("delete log record"); err != nil {
		return err
	}
	delete(f.records, id)
	return nil
}

func (f *fakeStore) ListLogRecords(_ context.Context) ([]*models.LogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("list log records"); err != nil {
		return nil, err
	}
	out := make([]*models.LogRecord, 0, len(f.records))
	for _, r := range f.records {
		rec := r.Clone()
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LoggedAt.Equal(out[j].LoggedAt) {
			return out[i].LoggedAt.After(out[j].LoggedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (f *fakeStore) ClearLogRecords(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("clear log records"); err != nil {
		return err
	}
	f.records = map[int64]models.LogRecord{}
	return nil
}

func (f *fakeStore) InsertSeparator(_ context.Context, s *models.Separator) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("insert separator"); err != nil {
		return 0, err
	}
	f.nextSep++
	f.seps[f.nextSep] = models.Separator{ID: f.nextSep, Text: s.Text}
	return f.nextSep, nil
}

func (f *fakeStore) UpdateSeparator(_ context.Context, s *models.Separator) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("update separator"); err != nil {
		return err
	}
	if _, ok := f.seps[s.ID]; ok {
		f.seps[s.ID] = *s
	}
	return nil
}

func (f *fakeStore) DeleteSeparator(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("delete separator"); err != nil {
		return err
	}
	delete(f.seps, id)
	return nil
}

func (f *fakeStore) ListSeparators(_ context.Context) ([]*models.Separator, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("list separators"); err != nil {
		return nil, err
	}
	out := make([]*models.Separator, 0, len(f.seps))
	for _, s := range f.seps {
		sep := s
		out = append(out, &sep)
	}
	return out, nil
}

func (f *fakeStore) ClearSeparators(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("clear separators"); err != nil {
		return err
	}
	f.seps = map[int64]models.Separator{}
	return nil
}

func (f *fakeStore) ListOrder(_ context.Context) ([]models.OrderEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("list order"); err != nil {
		return nil, err
	}
	out := append([]models.OrderEntry(nil), f.order...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (f *fakeStore) ReplaceOrder(_ context.Context, entries []models.OrderEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("replace order"); err != nil {
		return err
	}
	f.replaces++
	f.order = append([]models.OrderEntry(nil), entries...)
	return nil
}

func (f *fakeStore) ClearOrder(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.check("clear order"); err != nil {
		return err
	}
	f.order = nil
	return nil
}

// liveKeys returns the (kind, id) keys of every stored record.
func (f *fakeStore) liveKeys() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := map[string]bool{}
	for id := range f.records {
		keys[models.Key(&models.ExerciseItem{Record: models.LogRecord{ID: id}})] = true
	}
	for id := range f.seps {
		keys[models.Key(&models.SeparatorItem{SeparatorID: id})] = true
	}
	return keys
}

// orderKeys returns the keys referenced by the persisted order.
func (f *fakeStore) orderKeys() map[string]bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := map[string]bool{}
	for _, e := range f.order {
		switch e.Kind {
		case models.KindExercise:
			keys[models.Key(&models.ExerciseItem{Record: models.LogRecord{ID: e.ItemID}})] = true
		case models.KindSeparator:
			keys[models.Key(&models.SeparatorItem{SeparatorID: e.ItemID})] = true
		}
	}
	return keys
}

func (f *fakeStore) storedOrder() []models.OrderEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OrderEntry(nil), f.order...)
}

type fakeFetcher struct {
	exercises []models.CatalogExercise
	err       error
}

func (f *fakeFetcher) FetchAll(_ context.Context) ([]models.CatalogExercise, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]models.CatalogExercise(nil), f.exercises...), nil
}
