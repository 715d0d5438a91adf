// ABOUTME: Output and argument helpers shared by liftlog commands.
// ABOUTME: Formats history rows and parses ids and positions.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/harperreed/liftlog/internal/models"
)

var faint = color.New(color.Faint)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}

func parsePosition(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid position: %s", s)
	}
	return n, nil
}

// volume renders sets, reps and weight as "3x8 @ 80".
func volume(r models.LogRecord) string {
	var b strings.Builder
	switch {
	case r.Sets != nil && r.Reps != nil:
		fmt.Fprintf(&b, "%dx%d", *r.Sets, *r.Reps)
	case r.Sets != nil:
		fmt.Fprintf(&b, "%d sets", *r.Sets)
	case r.Reps != nil:
		fmt.Fprintf(&b, "%d reps", *r.Reps)
	}
	if r.Weight != nil {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "@ %s", strconv.FormatFloat(*r.Weight, 'f', -1, 64))
	}
	return b.String()
}

func describeRecord(r models.LogRecord) string {
	muscle := ""
	if r.Muscle != nil && *r.Muscle != "" {
		muscle = faint.Sprintf(" (%s)", truncate(*r.Muscle, 20))
	}
	return fmt.Sprintf("%s %s %s %s%s",
		faint.Sprint(padRight(fmt.Sprintf("#%d", r.ID), 6)),
		faint.Sprint(r.LoggedAt.Local().Format("2006-01-02 15:04")),
		padRight(truncate(r.ExerciseName, 28), 28),
		volume(r),
		muscle)
}

func describeSeparator(id int64, text string) string {
	return fmt.Sprintf("%s %s",
		faint.Sprint(padRight(fmt.Sprintf("#%d", id), 6)),
		color.New(color.Bold, color.FgCyan).Sprintf("── %s ──", text))
}

func describeItem(item models.HistoryItem) string {
	switch it := item.(type) {
	case *models.ExerciseItem:
		return describeRecord(it.Record)
	case *models.SeparatorItem:
		return describeSeparator(it.SeparatorID, it.Text)
	default:
		return ""
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
