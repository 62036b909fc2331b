// Package goal contains the business-day calendar and goal-progress
// calculations. Both are pure: no clock reads, no I/O, deterministic for
// any input.
package goal

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Weekday indices follow the stored convention: 0=Monday .. 6=Sunday.

// DefaultWorkingWeekdays is Monday through Friday, used when a company has
// no working-day config row.
func DefaultWorkingWeekdays() []int {
	return []int{0, 1, 2, 3, 4}
}

// ParseWeekdays decodes a serialized working-weekday list and validates
// every index. Indices outside 0..6 are rejected; duplicates collapse.
func ParseWeekdays(raw string) ([]int, error) {
	if raw == "" {
		return DefaultWorkingWeekdays(), nil
	}

	var indices []int
	if err := json.Unmarshal([]byte(raw), &indices); err != nil {
		return nil, fmt.Errorf("invalid weekday list: %w", err)
	}

	seen := map[int]bool{}
	out := make([]int, 0, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx > 6 {
			return nil, fmt.Errorf("weekday index %d out of range", idx)
		}
		if !seen[idx] {
			seen[idx] = true
			out = append(out, idx)
		}
	}
	sort.Ints(out)
	return out, nil
}

// SerializeWeekdays encodes a working-weekday list for storage
func SerializeWeekdays(indices []int) string {
	data, err := json.Marshal(indices)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// weekdayIndex maps time.Weekday (Sunday=0) to the stored Monday=0 convention
func weekdayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// dateKey is the canonical form used for holiday membership
func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// MonthLastDay returns the final calendar day of the given month
func MonthLastDay(year int, month time.Month) time.Time {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

// RemainingBusinessDays counts the working days still available in a month.
//
// The count covers the inclusive range [max(today, first of month), last day
// of month], keeping only dates whose weekday is in workingWeekdays and which
// are not holidays. Today itself is counted when it is a working day: a day
// not yet closed still counts as available. Months entirely in the past
// return 0.
func RemainingBusinessDays(year int, month time.Month, workingWeekdays []int, holidays []time.Time, today time.Time) int {
	var mask [7]bool
	for _, idx := range workingWeekdays {
		if idx >= 0 && idx < 7 {
			mask[idx] = true
		}
	}

	holidaySet := make(map[string]struct{}, len(holidays))
	for _, h := range holidays {
		holidaySet[dateKey(h)] = struct{}{}
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := MonthLastDay(year, month)
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)

	if day.After(last) {
		return 0
	}
	start := day
	if start.Before(first) {
		start = first
	}
	if start.After(last) {
		return 0
	}

	count := 0
	for d := start; !d.After(last); d = d.AddDate(0, 0, 1) {
		if !mask[weekdayIndex(d.Weekday())] {
			continue
		}
		if _, isHoliday := holidaySet[dateKey(d)]; isHoliday {
			continue
		}
		count++
	}
	return count
}
