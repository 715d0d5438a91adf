// ABOUTME: Change notifications published after coordinator state changes.
// ABOUTME: Delivery is non-blocking; slow subscribers miss events instead of stalling.
package history

import (
	"sync"

	"github.com/harperreed/liftlog/internal/models"
)

// Op names a coordinator operation.
type Op string

const (
	OpLoadCatalog     Op = "load_catalog"
	OpLoadState       Op = "load_state"
	OpRebuild         Op = "rebuild"
	OpLogExercise     Op = "log_exercise"
	OpUpdateExercise  Op = "update_exercise"
	OpDeleteExercise  Op = "delete_exercise"
	OpAddSeparator    Op = "add_separator"
	OpUpdateSeparator Op = "update_separator"
	OpDeleteSeparator Op = "delete_separator"
	OpMove            Op = "move"
	OpClearAll        Op = "clear_all"
	OpImport          Op = "import"
)

// Event describes a completed state change. Kind and ID are zero for
// operations that affect the whole history.
type Event struct {
	Op   Op
	Kind models.ItemKind
	ID   int64
}

const subscriberBuffer = 16

type broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]chan Event
}

func (b *broadcaster) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[int]chan Event)
	}
	id := b.next
	b.next++
	ch := make(chan Event, subscriberBuffer)
	b.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

func (b *broadcaster) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			eventsDroppedTotal.Inc()
		}
	}
}
