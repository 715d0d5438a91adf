// ABOUTME: Combined history types: HistoryItem sum type and persisted OrderEntry.
// ABOUTME: ItemKind disambiguates which store an item id belongs to.
package models

import (
	"fmt"
	"strings"
)

// ItemKind identifies the entity a history slot refers to.
type ItemKind string

const (
	KindExercise  ItemKind = "EXERCISE"
	KindSeparator ItemKind = "SEPARATOR"
)

// ParseItemKind converts a string into an ItemKind (case-insensitive).
func ParseItemKind(s string) (ItemKind, error) {
	switch ItemKind(strings.ToUpper(strings.TrimSpace(s))) {
	case KindExercise:
		return KindExercise, nil
	case KindSeparator:
		return KindSeparator, nil
	default:
		return "", fmt.Errorf("unknown item kind: %q", s)
	}
}

// OrderEntry is one persisted slot of the combined history.
// Position 0 is the topmost (most recent) entry.
type OrderEntry struct {
	Kind     ItemKind `json:"kind"`
	ItemID   int64    `json:"item_id"`
	Position int      `json:"position"`
}

// HistoryItem is either an *ExerciseItem or a *SeparatorItem.
type HistoryItem interface {
	Kind() ItemKind
	ItemID() int64
	isHistoryItem()
}

// ExerciseItem wraps a logged exercise. IsNew marks items added this session.
type ExerciseItem struct {
	Record LogRecord
	IsNew  bool
}

func (e *ExerciseItem) Kind() ItemKind { return KindExercise }
func (e *ExerciseItem) ItemID() int64  { return e.Record.ID }
func (e *ExerciseItem) isHistoryItem() {}

// SeparatorItem wraps a separator label.
type SeparatorItem struct {
	SeparatorID int64
	Text        string
}

func (s *SeparatorItem) Kind() ItemKind { return KindSeparator }
func (s *SeparatorItem) ItemID() int64  { return s.SeparatorID }
func (s *SeparatorItem) isHistoryItem() {}

// Key returns a key unique across both id namespaces, e.g. "ex_5" or "sep_9".
func Key(item HistoryItem) string {
	switch item.(type) {
	case *ExerciseItem:
		return fmt.Sprintf("ex_%d", item.ItemID())
	case *SeparatorItem:
		return fmt.Sprintf("sep_%d", item.ItemID())
	default:
		panic(fmt.Sprintf("unhandled history item %T", item))
	}
}

// OrderEntries maps a history sequence to persisted order rows, using each
// item's index as its position.
func OrderEntries(items []HistoryItem) []OrderEntry {
	entries := make([]OrderEntry, 0, len(items))
	for i, item := range items {
		entries = append(entries, OrderEntry{
			Kind:     item.Kind(),
			ItemID:   item.ItemID(),
			Position: i,
		})
	}
	return entries
}

// CloneItem returns a copy of item that shares no mutable state.
func CloneItem(item HistoryItem) HistoryItem {
	switch it := item.(type) {
	case *ExerciseItem:
		return &ExerciseItem{Record: it.Record.Clone(), IsNew: it.IsNew}
	case *SeparatorItem:
		return &SeparatorItem{SeparatorID: it.SeparatorID, Text: it.Text}
	default:
		panic(fmt.Sprintf("unhandled history item %T", item))
	}
}
