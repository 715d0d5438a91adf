// ABOUTME: Tests for the history coordinator.
// ABOUTME: Covers ordering, reconstruction, failure handling and notifications.
package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/harperreed/liftlog/internal/models"
	"github.com/harperreed/liftlog/internal/storage"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func strPtr(s string) *string     { return &s }
func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func newTestCoordinator(t *testing.T, store *fakeStore) *Coordinator {
	t.Helper()
	c := New(store, nil, zap.NewNop())
	c.now = func() time.Time { return fixedNow }
	return c
}

func exercise(id int64, name string, isNew bool) *models.ExerciseItem {
	return &models.ExerciseItem{
		Record: models.LogRecord{ID: id, ExerciseName: name, LoggedAt: fixedNow},
		IsNew:  isNew,
	}
}

func separator(id int64, text string) *models.SeparatorItem {
	return &models.SeparatorItem{SeparatorID: id, Text: text}
}

func keys(items []models.HistoryItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = models.Key(item)
	}
	return out
}

// assertOrderMatches checks that the persisted order is exactly the history
// with contiguous positions and references every live record.
func assertOrderMatches(t *testing.T, c *Coordinator, store *fakeStore) {
	t.Helper()

	history := c.History()
	want := models.OrderEntries(history)
	if diff := cmp.Diff(want, store.storedOrder()); diff != "" {
		t.Errorf("persisted order mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(store.liveKeys(), store.orderKeys()); diff != "" {
		t.Errorf("order does not cover live records (-live +order):\n%s", diff)
	}
}

func TestLogExerciseIntoEmptyStores(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	id, err := c.LogExercise(ctx, ExerciseInput{
		Name:   "Squat",
		Muscle: strPtr("Legs"),
		Sets:   intPtr(3),
		Reps:   intPtr(5),
		Weight: floatPtr(225.0),
	})
	if err != nil {
		t.Fatalf("LogExercise failed: %v", err)
	}

	want := []models.HistoryItem{
		&models.ExerciseItem{
			Record: models.LogRecord{
				ID:           id,
				ExerciseName: "Squat",
				Muscle:       strPtr("Legs"),
				Sets:         intPtr(3),
				Reps:         intPtr(5),
				Weight:       floatPtr(225.0),
				LoggedAt:     fixedNow,
			},
			IsNew: true,
		},
	}
	if diff := cmp.Diff(want, c.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	wantOrder := []models.OrderEntry{{Kind: models.KindExercise, ItemID: id, Position: 0}}
	if diff := cmp.Diff(wantOrder, store.storedOrder()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestAddSeparatorGoesOnTop(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	b, _ := c.LogExercise(ctx, ExerciseInput{Name: "B"})
	a, _ := c.LogExercise(ctx, ExerciseInput{Name: "A"})

	sepID, err := c.AddSeparator(ctx, "Leg Day")
	if err != nil {
		t.Fatalf("AddSeparator failed: %v", err)
	}

	want := []models.HistoryItem{
		separator(sepID, "Leg Day"),
		exercise(a, "A", true),
		exercise(b, "B", true),
	}
	if diff := cmp.Diff(want, c.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	wantOrder := []models.OrderEntry{
		{Kind: models.KindSeparator, ItemID: sepID, Position: 0},
		{Kind: models.KindExercise, ItemID: a, Position: 1},
		{Kind: models.KindExercise, ItemID: b, Position: 2},
	}
	if diff := cmp.Diff(wantOrder, store.storedOrder()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestAddSeparatorUsesAssignedIDWithDuplicateText(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	first, _ := c.AddSeparator(ctx, "Push")
	second, _ := c.AddSeparator(ctx, "Push")

	if first == second {
		t.Fatalf("expected distinct ids, got %d twice", first)
	}
	got := keys(c.History())
	want := []string{fmt.Sprintf("sep_%d", second), fmt.Sprintf("sep_%d", first)}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("history keys mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteExerciseCollapsesOrder(t *testing.T) {
	store := newFakeStore()
	store.records[5] = models.LogRecord{ID: 5, ExerciseName: "A", LoggedAt: fixedNow}
	store.seps[9] = models.Separator{ID: 9, Text: "X"}
	store.order = []models.OrderEntry{
		{Kind: models.KindExercise, ItemID: 5, Position: 0},
		{Kind: models.KindSeparator, ItemID: 9, Position: 1},
	}
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	if err := c.LoadPersistedState(ctx); err != nil {
		t.Fatalf("LoadPersistedState failed: %v", err)
	}
	if err := c.DeleteExercise(ctx, 5); err != nil {
		t.Fatalf("DeleteExercise failed: %v", err)
	}

	if diff := cmp.Diff([]models.HistoryItem{separator(9, "X")}, c.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	wantOrder := []models.OrderEntry{{Kind: models.KindSeparator, ItemID: 9, Position: 0}}
	if diff := cmp.Diff(wantOrder, store.storedOrder()); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if len(c.LogRecords()) != 0 {
		t.Errorf("expected log record mirror to be empty, got %d", len(c.LogRecords()))
	}
}

func TestRebuildSkipsOrphans(t *testing.T) {
	store := newFakeStore()
	store.seps[3] = models.Separator{ID: 3, Text: "Pull Day"}
	store.order = []models.OrderEntry{
		{Kind: models.KindExercise, ItemID: 7, Position: 0},
		{Kind: models.KindSeparator, ItemID: 3, Position: 1},
	}
	c := newTestCoordinator(t, store)

	if err := c.LoadPersistedState(context.Background()); err != nil {
		t.Fatalf("LoadPersistedState failed: %v", err)
	}

	if diff := cmp.Diff([]models.HistoryItem{separator(3, "Pull Day")}, c.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestRebuildKeepsFirstOfDuplicateEntries(t *testing.T) {
	store := newFakeStore()
	store.records[5] = models.LogRecord{ID: 5, ExerciseName: "Row", LoggedAt: fixedNow}
	store.seps[2] = models.Separator{ID: 2, Text: "Back"}
	store.order = []models.OrderEntry{
		{Kind: models.KindExercise, ItemID: 5, Position: 0},
		{Kind: models.KindSeparator, ItemID: 2, Position: 1},
		{Kind: models.KindExercise, ItemID: 5, Position: 2},
	}

	core, logs := observer.New(zapcore.DebugLevel)
	c := New(store, nil, zap.New(core))

	if err := c.LoadPersistedState(context.Background()); err != nil {
		t.Fatalf("LoadPersistedState failed: %v", err)
	}

	want := []models.HistoryItem{exercise(5, "Row", false), separator(2, "Back")}
	if diff := cmp.Diff(want, c.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	dupes := logs.FilterMessage("skipped duplicate order entries").All()
	if len(dupes) != 1 {
		t.Fatalf("expected one duplicate log entry, got %v", logs.All())
	}
	if got := dupes[0].ContextMap()["count"]; got != int64(1) {
		t.Errorf("count = %v, want 1", got)
	}
}

func TestRebuildUsesKindToDisambiguateIDs(t *testing.T) {
	store := newFakeStore()
	store.records[1] = models.LogRecord{ID: 1, ExerciseName: "Deadlift", LoggedAt: fixedNow}
	store.seps[1] = models.Separator{ID: 1, Text: "Back"}
	store.order = []models.OrderEntry{
		{Kind: models.KindSeparator, ItemID: 1, Position: 0},
		{Kind: models.KindExercise, ItemID: 1, Position: 1},
	}
	c := newTestCoordinator(t, store)

	if err := c.LoadPersistedState(context.Background()); err != nil {
		t.Fatalf("LoadPersistedState failed: %v", err)
	}

	want := []models.HistoryItem{separator(1, "Back"), exercise(1, "Deadlift", false)}
	if diff := cmp.Diff(want, c.History()); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestRebuildIsIdempotent(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	_, _ = c.LogExercise(ctx, ExerciseInput{Name: "Row"})
	_, _ = c.AddSeparator(ctx, "Back")
	_, _ = c.LogExercise(ctx, ExerciseInput{Name: "Curl"})

	if err := c.RebuildHistoryFromOrder(ctx); err != nil {
		t.Fatalf("first rebuild failed: %v", err)
	}
	first := c.History()
	if err := c.RebuildHistoryFromOrder(ctx); err != nil {
		t.Fatalf("second rebuild failed: %v", err)
	}
	second := c.History()

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("rebuild not idempotent (-first +second):\n%s", diff)
	}
	if len(first) != 3 {
		t.Errorf("expected 3 items, got %d", len(first))
	}
	for _, item := range first {
		if ex, ok := item.(*models.ExerciseItem); ok && ex.IsNew {
			t.Errorf("rebuilt exercise %d should not be new", ex.Record.ID)
		}
	}
}

func TestOrderTracksLiveRecords(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	steps := []struct {
		name string
		run  func() error
	}{
		{"log squat", func() error { _, err := c.LogExercise(ctx, ExerciseInput{Name: "Squat"}); return err }},
		{"add separator", func() error { _, err := c.AddSeparator(ctx, "Leg Day"); return err }},
		{"log lunge", func() error { _, err := c.LogExercise(ctx, ExerciseInput{Name: "Lunge"}); return err }},
		{"delete squat", func() error { return c.DeleteExercise(ctx, 1) }},
		{"add second separator", func() error { _, err := c.AddSeparator(ctx, "Arms"); return err }},
		{"delete first separator", func() error { return c.DeleteSeparator(ctx, 1) }},
		{"move", func() error { return c.Move(ctx, 0, 1) }},
		{"delete missing", func() error { return c.DeleteExercise(ctx, 99) }},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s: %v", step.name, err)
		}
		assertOrderMatches(t, c, store)
	}
}

func TestNewItemsInsertAtTop(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	_, _ = c.LogExercise(ctx, ExerciseInput{Name: "Bench"})
	previousTop := models.Key(c.History()[0])

	sepID, _ := c.AddSeparator(ctx, "Chest")
	h := c.History()
	if models.Key(h[0]) != fmt.Sprintf("sep_%d", sepID) {
		t.Errorf("separator not on top: %v", keys(h))
	}
	if models.Key(h[1]) != previousTop {
		t.Errorf("previous top not at index 1: %v", keys(h))
	}

	id, _ := c.LogExercise(ctx, ExerciseInput{Name: "Fly"})
	h = c.History()
	if models.Key(h[0]) != fmt.Sprintf("ex_%d", id) {
		t.Errorf("exercise not on top: %v", keys(h))
	}
	if models.Key(h[1]) != fmt.Sprintf("sep_%d", sepID) {
		t.Errorf("separator not pushed down: %v", keys(h))
	}
}

func TestDeleteFromMiddleLeavesNoGaps(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, _ = c.LogExercise(ctx, ExerciseInput{Name: fmt.Sprintf("Set %d", i)})
	}
	sepID, _ := c.AddSeparator(ctx, "Mid")
	_ = c.Move(ctx, 0, 2)

	if err := c.DeleteSeparator(ctx, sepID); err != nil {
		t.Fatalf("DeleteSeparator failed: %v", err)
	}

	order := store.storedOrder()
	if len(order) != 4 {
		t.Fatalf("expected 4 order entries, got %d", len(order))
	}
	for i, e := range order {
		if e.Position != i {
			t.Errorf("entry %d has position %d", i, e.Position)
		}
		if e.Kind == models.KindSeparator {
			t.Errorf("deleted separator still in order: %+v", e)
		}
	}
}

func TestUpdateExerciseKeepsPositionAndLoggedAt(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	id, _ := c.LogExercise(ctx, ExerciseInput{Name: "Press", Sets: intPtr(3)})
	_, _ = c.AddSeparator(ctx, "Shoulders")
	replacesBefore := store.replaces

	c.now = func() time.Time { return fixedNow.Add(time.Hour) }
	err := c.UpdateExercise(ctx, id, ExerciseInput{Name: "Overhead Press", Sets: intPtr(4), Weight: floatPtr(95)})
	if err != nil {
		t.Fatalf("UpdateExercise failed: %v", err)
	}

	h := c.History()
	ex, ok := h[1].(*models.ExerciseItem)
	if !ok {
		t.Fatalf("expected exercise at index 1, got %T", h[1])
	}
	want := models.LogRecord{
		ID:           id,
		ExerciseName: "Overhead Press",
		Sets:         intPtr(4),
		Weight:       floatPtr(95),
		LoggedAt:     fixedNow,
	}
	if diff := cmp.Diff(want, ex.Record); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
	if ex.IsNew {
		t.Error("updated exercise should no longer be marked new")
	}
	if store.replaces != replacesBefore {
		t.Error("update should not rewrite the order")
	}
	if got := store.records[id].ExerciseName; got != "Overhead Press" {
		t.Errorf("store not updated, got %q", got)
	}
}

func TestUpdateExerciseNotLoadedLogsDivergence(t *testing.T) {
	store := newFakeStore()
	store.records[42] = models.LogRecord{ID: 42, ExerciseName: "Old", LoggedAt: fixedNow}

	core, logs := observer.New(zapcore.WarnLevel)
	c := New(store, nil, zap.New(core))

	if err := c.UpdateExercise(context.Background(), 42, ExerciseInput{Name: "New"}); err != nil {
		t.Fatalf("UpdateExercise failed: %v", err)
	}

	if store.records[42].ExerciseName != "New" {
		t.Error("expected store write to go through")
	}
	if len(c.History()) != 0 {
		t.Error("expected memory to stay untouched")
	}
	if logs.FilterMessageSnippet("not loaded").Len() != 1 {
		t.Errorf("expected one divergence warning, got %v", logs.All())
	}
}

func TestUpdateSeparator(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	id, _ := c.AddSeparator(ctx, "Lgs")
	_, _ = c.LogExercise(ctx, ExerciseInput{Name: "Squat"})

	if err := c.UpdateSeparator(ctx, id, "Legs"); err != nil {
		t.Fatalf("UpdateSeparator failed: %v", err)
	}
	if diff := cmp.Diff(separator(id, "Legs"), c.History()[1]); diff != "" {
		t.Errorf("separator mismatch (-want +got):\n%s", diff)
	}
	if store.seps[id].Text != "Legs" {
		t.Errorf("store text = %q", store.seps[id].Text)
	}

	if err := c.UpdateSeparator(ctx, 999, "Ghost"); err != nil {
		t.Errorf("unknown separator should be ignored, got %v", err)
	}
	if _, ok := store.seps[999]; ok {
		t.Error("unknown separator should not be written")
	}
}

func TestStoreFailureLeavesMemoryUntouched(t *testing.T) {
	tests := []struct {
		name string
		op   string
		run  func(ctx context.Context, c *Coordinator) error
	}{
		{"log exercise", "insert log record", func(ctx context.Context, c *Coordinator) error {
			_, err := c.LogExercise(ctx, ExerciseInput{Name: "Dip"})
			return err
		}},
		{"add separator", "insert separator", func(ctx context.Context, c *Coordinator) error {
			_, err := c.AddSeparator(ctx, "Nope")
			return err
		}},
		{"update exercise", "update log record", func(ctx context.Context, c *Coordinator) error {
			return c.UpdateExercise(ctx, 1, ExerciseInput{Name: "Changed"})
		}},
		{"delete exercise", "delete log record", func(ctx context.Context, c *Coordinator) error {
			return c.DeleteExercise(ctx, 1)
		}},
		{"update separator", "update separator", func(ctx context.Context, c *Coordinator) error {
			return c.UpdateSeparator(ctx, 1, "Changed")
		}},
		{"delete separator", "delete separator", func(ctx context.Context, c *Coordinator) error {
			return c.DeleteSeparator(ctx, 1)
		}},
		{"move", "replace order", func(ctx context.Context, c *Coordinator) error {
			return c.Move(ctx, 0, 1)
		}},
		{"clear all", "clear log records", func(ctx context.Context, c *Coordinator) error {
			return c.ClearAll(ctx)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			c := newTestCoordinator(t, store)
			ctx := context.Background()

			_, _ = c.LogExercise(ctx, ExerciseInput{Name: "Squat"})
			_, _ = c.AddSeparator(ctx, "Legs")
			before := c.History()
			beforeOrder := store.storedOrder()

			store.fail(tt.op)
			err := tt.run(ctx, c)
			if !errors.Is(err, errInjected) {
				t.Fatalf("expected injected error, got %v", err)
			}
			if !storage.IsStorageError(err) {
				t.Errorf("expected storage error, got %T", err)
			}

			if diff := cmp.Diff(before, c.History()); diff != "" {
				t.Errorf("history changed after failure (-before +after):\n%s", diff)
			}
			if diff := cmp.Diff(beforeOrder, store.storedOrder()); diff != "" {
				t.Errorf("order changed after failure (-before +after):\n%s", diff)
			}
		})
	}
}

func TestLogExerciseOrderWriteFailure(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	store.fail("replace order")

	id, err := c.LogExercise(context.Background(), ExerciseInput{Name: "Pullup"})
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if id == 0 {
		t.Error("expected assigned id alongside the order error")
	}
	if len(c.History()) != 1 {
		t.Errorf("expected record in memory, got %d items", len(c.History()))
	}
	if len(store.storedOrder()) != 0 {
		t.Error("expected stale order in store")
	}
}

func TestLogExerciseRequiresName(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)

	_, err := c.LogExercise(context.Background(), ExerciseInput{Name: "   "})
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("expected ErrEmptyName, got %v", err)
	}
	if len(store.records) != 0 {
		t.Error("nothing should be stored")
	}
}

func TestMove(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	a, _ := c.LogExercise(ctx, ExerciseInput{Name: "A"})
	b, _ := c.LogExercise(ctx, ExerciseInput{Name: "B"})
	s, _ := c.AddSeparator(ctx, "S")
	// history: S, B, A

	if err := c.Move(ctx, 0, 2); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	want := []string{
		fmt.Sprintf("ex_%d", b),
		fmt.Sprintf("ex_%d", a),
		fmt.Sprintf("sep_%d", s),
	}
	if diff := cmp.Diff(want, keys(c.History())); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	assertOrderMatches(t, c, store)

	if err := c.Move(ctx, 2, 0); err != nil {
		t.Fatalf("Move back failed: %v", err)
	}
	want = []string{
		fmt.Sprintf("sep_%d", s),
		fmt.Sprintf("ex_%d", b),
		fmt.Sprintf("ex_%d", a),
	}
	if diff := cmp.Diff(want, keys(c.History())); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestMoveOutOfRange(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()
	_, _ = c.LogExercise(ctx, ExerciseInput{Name: "A"})
	replaces := store.replaces

	for _, idx := range [][2]int{{-1, 0}, {0, 1}, {3, 0}} {
		if err := c.Move(ctx, idx[0], idx[1]); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Move(%d, %d) = %v, want ErrIndexOutOfRange", idx[0], idx[1], err)
		}
	}
	if store.replaces != replaces {
		t.Error("out of range move should not write")
	}
}

func TestClearAll(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	_, _ = c.LogExercise(ctx, ExerciseInput{Name: "A"})
	_, _ = c.AddSeparator(ctx, "S")

	if err := c.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}
	if len(c.History()) != 0 || len(c.LogRecords()) != 0 || len(c.Separators()) != 0 {
		t.Error("expected empty memory")
	}
	if len(store.records) != 0 || len(store.seps) != 0 || len(store.storedOrder()) != 0 {
		t.Error("expected empty stores")
	}
}

func TestLoadPersistedStateFailureKeepsMemory(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	_, _ = c.LogExercise(ctx, ExerciseInput{Name: "A"})
	before := c.History()

	for _, op := range []string{"list separators", "list order"} {
		store.failOps = map[string]bool{op: true}
		if err := c.LoadPersistedState(ctx); !errors.Is(err, errInjected) {
			t.Fatalf("%s: expected injected error, got %v", op, err)
		}
		if diff := cmp.Diff(before, c.History()); diff != "" {
			t.Errorf("%s: history changed (-before +after):\n%s", op, diff)
		}
	}
}

func TestLoadCatalog(t *testing.T) {
	fetcher := &fakeFetcher{exercises: []models.CatalogExercise{
		{ID: "0025", Name: "barbell bench press", BodyPart: strPtr("chest"), Target: strPtr("pectorals")},
	}}
	c := New(newFakeStore(), fetcher, nil)
	ctx := context.Background()

	if err := c.LoadCatalog(ctx); err != nil {
		t.Fatalf("LoadCatalog failed: %v", err)
	}
	if len(c.Catalog()) != 1 {
		t.Fatalf("expected 1 catalog entry, got %d", len(c.Catalog()))
	}

	fetcher.err = errors.New("offline")
	if err := c.LoadCatalog(ctx); err == nil {
		t.Fatal("expected fetch error")
	}
	if len(c.Catalog()) != 1 {
		t.Error("catalog should be kept after a failed fetch")
	}
}

func TestLoadCatalogWithoutSource(t *testing.T) {
	c := New(newFakeStore(), nil, nil)
	if err := c.LoadCatalog(context.Background()); !errors.Is(err, ErrNoCatalog) {
		t.Errorf("expected ErrNoCatalog, got %v", err)
	}
}

func TestLogFromCatalog(t *testing.T) {
	fetcher := &fakeFetcher{exercises: []models.CatalogExercise{
		{ID: "0043", Name: "barbell full squat", Target: strPtr("glutes")},
	}}
	store := newFakeStore()
	c := New(store, fetcher, nil)
	ctx := context.Background()
	_ = c.LoadCatalog(ctx)

	id, err := c.LogFromCatalog(ctx, "0043", intPtr(5), intPtr(5), floatPtr(185))
	if err != nil {
		t.Fatalf("LogFromCatalog failed: %v", err)
	}
	rec, err := c.LogRecord(id)
	if err != nil {
		t.Fatalf("LogRecord failed: %v", err)
	}
	if rec.ExerciseName != "barbell full squat" || rec.Muscle == nil || *rec.Muscle != "glutes" {
		t.Errorf("unexpected record %+v", rec)
	}

	if _, err := c.LogFromCatalog(ctx, "nope", nil, nil, nil); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupsReturnCopies(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	id, _ := c.LogExercise(ctx, ExerciseInput{Name: "Curl", Reps: intPtr(10)})
	h := c.History()
	h[0].(*models.ExerciseItem).Record.ExerciseName = "Mutated"
	*h[0].(*models.ExerciseItem).Record.Reps = 99

	rec, _ := c.LogRecord(id)
	if rec.ExerciseName != "Curl" || *rec.Reps != 10 {
		t.Errorf("internal state leaked through snapshot: %+v", rec)
	}
	if _, err := c.Separator(12); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	events, cancel := c.Subscribe()
	id, _ := c.LogExercise(ctx, ExerciseInput{Name: "Squat"})
	_ = c.DeleteExercise(ctx, id)

	want := []Event{
		{Op: OpLogExercise, Kind: models.KindExercise, ID: id},
		{Op: OpDeleteExercise, Kind: models.KindExercise, ID: id},
	}
	for _, w := range want {
		select {
		case got := <-events:
			if diff := cmp.Diff(w, got); diff != "" {
				t.Errorf("event mismatch (-want +got):\n%s", diff)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %v", w.Op)
		}
	}

	cancel()
	cancel()
	if _, ok := <-events; ok {
		t.Error("expected channel to be closed after cancel")
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	_, cancel := c.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBuffer*2; i++ {
		if _, err := c.AddSeparator(ctx, "x"); err != nil {
			t.Fatalf("AddSeparator failed: %v", err)
		}
	}
}

func TestConcurrentMutationsKeepOrderConsistent(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = c.LogExercise(ctx, ExerciseInput{Name: fmt.Sprintf("Set %d", i)})
			} else {
				_, _ = c.AddSeparator(ctx, fmt.Sprintf("Block %d", i))
			}
		}(i)
	}
	wg.Wait()

	if len(c.History()) != 8 {
		t.Errorf("expected 8 items, got %d", len(c.History()))
	}
	assertOrderMatches(t, c, store)
}

func TestImportAppendsBelowExisting(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	ctx := context.Background()

	existing, _ := c.LogExercise(ctx, ExerciseInput{Name: "Existing"})
	past := fixedNow.Add(-48 * time.Hour)

	n, err := c.Import(ctx, []models.HistoryItem{
		&models.SeparatorItem{SeparatorID: 77, Text: "Old Day"},
		&models.ExerciseItem{Record: models.LogRecord{ID: 77, ExerciseName: "Old Squat", LoggedAt: past}},
	})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if n != 2 {
		t.Errorf("imported %d, want 2", n)
	}

	h := c.History()
	want := []string{fmt.Sprintf("ex_%d", existing), "sep_1", fmt.Sprintf("ex_%d", existing+1)}
	if diff := cmp.Diff(want, keys(h)); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
	if got := h[2].(*models.ExerciseItem).Record.LoggedAt; !got.Equal(past) {
		t.Errorf("LoggedAt = %v, want %v", got, past)
	}
	assertOrderMatches(t, c, store)
}

func TestImportStopsAtFirstFailure(t *testing.T) {
	store := newFakeStore()
	c := newTestCoordinator(t, store)
	store.fail("insert separator")

	n, err := c.Import(context.Background(), []models.HistoryItem{
		&models.ExerciseItem{Record: models.LogRecord{ExerciseName: "Kept"}},
		&models.SeparatorItem{Text: "Fails"},
		&models.ExerciseItem{Record: models.LogRecord{ExerciseName: "Skipped"}},
	})
	if !errors.Is(err, errInjected) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if n != 1 {
		t.Errorf("imported %d, want 1", n)
	}
	if len(c.History()) != 1 {
		t.Errorf("expected 1 item in history, got %d", len(c.History()))
	}
	assertOrderMatches(t, c, store)
}
