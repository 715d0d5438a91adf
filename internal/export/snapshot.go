// ABOUTME: Snapshot of the combined history for export and backup.
// ABOUTME: Encodes to JSON, YAML or Markdown and decodes JSON/YAML for import.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/harperreed/liftlog/internal/models"
)

const (
	// Version is the snapshot format version.
	Version = "1.0"
	tool    = "liftlog"
)

// Format selects a snapshot encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
)

// ParseFormat converts a user-supplied name into a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "md"
	default:
		return "json"
	}
}

// ContentType returns the MIME type used when uploading f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	default:
		return "application/json"
	}
}

// Source provides the history to snapshot.
type Source interface {
	History() []models.HistoryItem
}

// Snapshot is the full export format of the combined history.
type Snapshot struct {
	Version    string    `json:"version" yaml:"version"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Tool       string    `json:"tool" yaml:"tool"`
	ID         string    `json:"id" yaml:"id"`
	History    []Entry   `json:"history" yaml:"history"`
}

// Entry is one history slot. Exactly one of Exercise or Separator is set.
type Entry struct {
	Position  int               `json:"position" yaml:"position"`
	Kind      models.ItemKind   `json:"kind" yaml:"kind"`
	Exercise  *models.LogRecord `json:"exercise,omitempty" yaml:"exercise,omitempty"`
	Separator *models.Separator `json:"separator,omitempty" yaml:"separator,omitempty"`
}

// Build captures the current history of src.
func Build(src Source) *Snapshot {
	items := src.History()
	snap := &Snapshot{
		Version:    Version,
		ExportedAt: time.Now().UTC(),
		Tool:       tool,
		ID:         uuid.NewString(),
		History:    make([]Entry, 0, len(items)),
	}
	for i, item := range items {
		entry := Entry{Position: i, Kind: item.Kind()}
		switch it := item.(type) {
		case *models.ExerciseItem:
			rec := it.Record.Clone()
			entry.Exercise = &rec
		case *models.SeparatorItem:
			entry.Separator = &models.Separator{ID: it.SeparatorID, Text: it.Text}
		}
		snap.History = append(snap.History, entry)
	}
	return snap
}

// Items converts the snapshot back into history items, topmost first.
func (s *Snapshot) Items() ([]models.HistoryItem, error) {
	items := make([]models.HistoryItem, 0, len(s.History))
	for i, e := range s.History {
		switch {
		case e.Kind == models.KindExercise && e.Exercise != nil:
			items = append(items, &models.ExerciseItem{Record: e.Exercise.Clone()})
		case e.Kind == models.KindSeparator && e.Separator != nil:
			items = append(items, &models.SeparatorItem{SeparatorID: e.Separator.ID, Text: e.Separator.Text})
		default:
			return nil, fmt.Errorf("history entry %d: kind %q without matching payload", i, e.Kind)
		}
	}
	return items, nil
}

// Encode renders the snapshot in format f.
func (s *Snapshot) Encode(f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return json.MarshalIndent(s, "", "  ")
	case FormatYAML:
		return yaml.Marshal(s)
	case FormatMarkdown:
		return []byte(s.Markdown()), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", f)
	}
}

// Decode parses a JSON or YAML snapshot.
func Decode(data []byte, f Format) (*Snapshot, error) {
	var snap Snapshot
	switch f {
	case FormatJSON:
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("unmarshal JSON: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("unmarshal YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("cannot import %s snapshots", f)
	}
	if snap.Version == "" {
		return nil, fmt.Errorf("snapshot has no version")
	}
	return &snap, nil
}

// Markdown renders the history as tables split at each separator.
func (s *Snapshot) Markdown() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Liftlog Export - %s\n\n", s.ExportedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", s.ExportedAt.Format(time.RFC3339)))

	if len(s.History) == 0 {
		sb.WriteString("_No exercises logged._\n")
		return sb.String()
	}

	tableOpen := false
	openTable := func() {
		if tableOpen {
			return
		}
		sb.WriteString("| Date | Exercise | Muscle | Sets | Reps | Weight |\n")
		sb.WriteString("|------|----------|--------|------|------|--------|\n")
		tableOpen = true
	}

	for _, e := range s.History {
		switch {
		case e.Separator != nil:
			if tableOpen {
				sb.WriteString("\n")
				tableOpen = false
			}
			sb.WriteString(fmt.Sprintf("## %s\n\n", singleLine(e.Separator.Text)))
		case e.Exercise != nil:
			openTable()
			r := e.Exercise
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				r.LoggedAt.Format("2006-01-02 15:04"),
				cell(r.ExerciseName),
				cell(optString(r.Muscle)),
				optInt(r.Sets),
				optInt(r.Reps),
				optFloat(r.Weight)))
		}
	}

	return sb.String()
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optInt(n *int) string {
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%d", *n)
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

var cellReplacer = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ", "\r", " ")

// cell escapes text for use inside a Markdown table row.
func cell(s string) string {
	return cellReplacer.Replace(s)
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
