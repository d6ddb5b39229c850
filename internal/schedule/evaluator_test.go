package schedule

import (
	"testing"
	"time"

	"airbridge/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestDueSchedulesSameSlotSuppression(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.Upsert(models.Schedule{ID: "s1", Time: "07:00"})

	first := m.DueSchedules(time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC))
	if len(first) != 1 {
		t.Fatalf("expected 1 due schedule on first evaluation, got %d", len(first))
	}
	if first[0].LastExecutedSlot != "2024-06-01T07:00" {
		t.Errorf("expected slot 2024-06-01T07:00, got %q", first[0].LastExecutedSlot)
	}

	// 30 seconds later, same minute-slot.
	second := m.DueSchedules(time.Date(2024, 6, 1, 7, 0, 30, 0, time.UTC))
	if len(second) != 0 {
		t.Errorf("expected no due schedules within the same slot, got %d", len(second))
	}

	// Next day, same time-of-day: fires again.
	third := m.DueSchedules(time.Date(2024, 6, 2, 7, 0, 0, 0, time.UTC))
	if len(third) != 1 {
		t.Errorf("expected schedule due again in a new slot, got %d", len(third))
	}
}

func TestDueSchedulesTimeMustMatchExactly(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.Upsert(models.Schedule{ID: "s1", Time: "07:00"})

	if due := m.DueSchedules(time.Date(2024, 6, 1, 7, 1, 0, 0, time.UTC)); len(due) != 0 {
		t.Errorf("expected no match one minute past the trigger, got %d", len(due))
	}
}

func TestDueSchedulesSkipsDisabled(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.Upsert(models.Schedule{ID: "s1", Time: "07:00", Enabled: boolPtr(false)})

	if due := m.DueSchedules(time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)); len(due) != 0 {
		t.Errorf("expected disabled schedule to never fire, got %d due", len(due))
	}
}

func TestRecurrenceWeekdays(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.Upsert(models.Schedule{ID: "s1", Time: "07:00", Repeat: &models.Repeat{Type: "weekdays"}})

	// 2024-06-03 is a Monday.
	for day := 3; day <= 9; day++ {
		now := time.Date(2024, 6, day, 7, 0, 0, 0, time.UTC)
		due := m.DueSchedules(now)
		wantFire := day <= 7 // Mon-Fri
		if (len(due) == 1) != wantFire {
			t.Errorf("%s: weekdays rule fired=%v, want %v", now.Weekday(), len(due) == 1, wantFire)
		}
	}
}

func TestRecurrenceWeekends(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.Upsert(models.Schedule{ID: "s1", Time: "07:00", Repeat: &models.Repeat{Type: "weekends"}})

	for day := 3; day <= 9; day++ {
		now := time.Date(2024, 6, day, 7, 0, 0, 0, time.UTC)
		due := m.DueSchedules(now)
		wantFire := day >= 8 // Sat, Sun
		if (len(due) == 1) != wantFire {
			t.Errorf("%s: weekends rule fired=%v, want %v", now.Weekday(), len(due) == 1, wantFire)
		}
	}
}

func TestRecurrenceCustomDays(t *testing.T) {
	m, _ := newTestManager(t, 0)
	// 0=Monday, so {2,4} means Wednesday and Friday.
	m.Upsert(models.Schedule{ID: "s1", Time: "07:00", Repeat: &models.Repeat{Type: "custom", Days: []int{2, 4}}})

	fired := map[time.Weekday]bool{}
	for day := 3; day <= 9; day++ {
		now := time.Date(2024, 6, day, 7, 0, 0, 0, time.UTC)
		if due := m.DueSchedules(now); len(due) == 1 {
			fired[now.Weekday()] = true
		}
	}
	if len(fired) != 2 || !fired[time.Wednesday] || !fired[time.Friday] {
		t.Errorf("expected custom {2,4} to fire Wednesday and Friday only, fired on %v", fired)
	}
}

func TestRecurrenceUnknownTypeNeverMatches(t *testing.T) {
	if matchesRepeat(&models.Repeat{Type: "fortnightly"}, 0) {
		t.Error("expected unknown repeat type to never match")
	}
	if !matchesRepeat(nil, 6) {
		t.Error("expected missing repeat descriptor to fall back to daily")
	}
}

func TestDateRangeBoundaries(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.Upsert(models.Schedule{ID: "s1", Time: "07:00", StartDate: "2024-06-01"})

	if due := m.DueSchedules(time.Date(2024, 5, 31, 7, 0, 0, 0, time.UTC)); len(due) != 0 {
		t.Error("expected no firing before start_date")
	}
	if due := m.DueSchedules(time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)); len(due) != 1 {
		t.Error("expected firing on start_date (inclusive)")
	}

	m.Upsert(models.Schedule{ID: "s2", Time: "09:00", EndDate: "2024-06-01"})
	if due := m.DueSchedules(time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)); len(due) != 1 {
		t.Error("expected firing on end_date (inclusive)")
	}
	if due := m.DueSchedules(time.Date(2024, 6, 2, 9, 0, 0, 0, time.UTC)); len(due) != 0 {
		t.Error("expected no firing after end_date")
	}
}

func TestUnparseableDateTreatedAsAbsent(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.Upsert(models.Schedule{ID: "s1", Time: "07:00", StartDate: "not-a-date"})

	if due := m.DueSchedules(time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC)); len(due) != 1 {
		t.Error("expected unparseable start_date to leave the schedule unbounded")
	}
}

func TestTimezoneOffsetApplied(t *testing.T) {
	// +540 minutes: JST. 22:00 UTC on May 31 is 07:00 June 1 local.
	m, _ := newTestManager(t, 540)
	m.Upsert(models.Schedule{ID: "s1", Time: "07:00", StartDate: "2024-06-01"})

	due := m.DueSchedules(time.Date(2024, 5, 31, 22, 0, 0, 0, time.UTC))
	if len(due) != 1 {
		t.Fatalf("expected schedule due in local morning, got %d", len(due))
	}
	if due[0].LastExecutedSlot != "2024-06-01T07:00" {
		t.Errorf("expected local slot 2024-06-01T07:00, got %q", due[0].LastExecutedSlot)
	}
}

func TestDueSchedulesSavesOnlyWhenFired(t *testing.T) {
	m, path := newTestManager(t, 0)
	m.Upsert(models.Schedule{ID: "s1", Time: "07:00"})

	// Non-matching evaluation must not rewrite storage.
	m.DueSchedules(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC))
	if got := NewManager(path, 0).List()[0].LastExecutedSlot; got != "" {
		t.Errorf("expected no slot persisted after a no-op tick, got %q", got)
	}

	m.DueSchedules(time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC))
	if got := NewManager(path, 0).List()[0].LastExecutedSlot; got != "2024-06-01T07:00" {
		t.Errorf("expected fired slot persisted, got %q", got)
	}
}

func TestDueSchedulesPreservesStorageOrder(t *testing.T) {
	m, _ := newTestManager(t, 0)
	m.Upsert(models.Schedule{ID: "b", Time: "07:00"})
	m.Upsert(models.Schedule{ID: "a", Time: "07:00"})
	m.Upsert(models.Schedule{ID: "c", Time: "07:00"})

	due := m.DueSchedules(time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC))
	if len(due) != 3 || due[0].ID != "b" || due[1].ID != "a" || due[2].ID != "c" {
		ids := make([]string, 0, len(due))
		for _, s := range due {
			ids = append(ids, s.ID)
		}
		t.Errorf("expected due list in storage order [b a c], got %v", ids)
	}
}
