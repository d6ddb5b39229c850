package schedule

import (
	"log"
	"time"

	"airbridge/internal/models"
)

const (
	slotLayout = "2006-01-02T15:04"
	timeLayout = "15:04"
	dateLayout = "2006-01-02"
)

// DueSchedules returns the schedules due to fire at nowUTC, in storage
// order. Each returned schedule is marked with the current minute-slot so
// it cannot fire again within that slot, and the collection is persisted
// if at least one schedule fired.
func (m *Manager) DueSchedules(nowUTC time.Time) []models.Schedule {
	m.mu.Lock()
	defer m.mu.Unlock()

	local := nowUTC.UTC().Add(m.tzOffset)
	currentSlot := local.Format(slotLayout)
	currentTime := local.Format(timeLayout)
	currentDate := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	weekday := mondayIndex(local.Weekday())

	var due []models.Schedule
	changed := false

	for _, s := range m.schedules {
		if !s.IsEnabled() {
			continue
		}
		if s.Time != currentTime {
			continue
		}
		if !withinDateRange(s, currentDate) {
			continue
		}
		if !matchesRepeat(s.Repeat, weekday) {
			continue
		}
		if s.LastExecutedSlot == currentSlot {
			continue
		}

		s.LastExecutedSlot = currentSlot
		due = append(due, *s)
		changed = true
	}

	if changed {
		m.save()
	}
	return due
}

// mondayIndex converts Go's Sunday-based weekday to the Monday=0..Sunday=6
// convention used by schedule repeat descriptors.
func mondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

func withinDateRange(s *models.Schedule, currentDate time.Time) bool {
	if start, ok := parseDate(s.StartDate); ok && currentDate.Before(start) {
		return false
	}
	if end, ok := parseDate(s.EndDate); ok && currentDate.After(end) {
		return false
	}
	return true
}

// parseDate reads an inclusive date bound. Unparseable values are logged
// and treated as absent, leaving the schedule unbounded on that side.
func parseDate(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		log.Printf("SCHEDULE: Invalid date format: %s", value)
		return time.Time{}, false
	}
	return t, true
}

func matchesRepeat(r *models.Repeat, weekday int) bool {
	repeatType := "daily"
	if r != nil && r.Type != "" {
		repeatType = r.Type
	}

	switch repeatType {
	case "daily":
		return true
	case "weekdays":
		return weekday < 5
	case "weekends":
		return weekday >= 5
	case "custom":
		if r == nil {
			return false
		}
		for _, d := range r.Days {
			if d == weekday {
				return true
			}
		}
		return false
	}
	// Unrecognized repeat types never match; only a hand-edited storage
	// file can produce one, since upsert defaults the type.
	return false
}
