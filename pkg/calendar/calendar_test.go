package calendar

import (
	"testing"
	"time"

	"guidecal/pkg/model"

	"github.com/stretchr/testify/assert"
)

const responseWindow = 48 * time.Hour

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func instant(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		aStart   string
		aEnd     string
		bStart   string
		bEnd     string
		expected bool
	}{
		{"disjoint before", "2025-06-01T00:00:00Z", "2025-06-02T00:00:00Z", "2025-06-03T00:00:00Z", "2025-06-04T00:00:00Z", false},
		{"touching boundaries do not overlap", "2025-06-01T00:00:00Z", "2025-06-02T00:00:00Z", "2025-06-02T00:00:00Z", "2025-06-03T00:00:00Z", false},
		{"partial overlap", "2025-06-01T00:00:00Z", "2025-06-03T00:00:00Z", "2025-06-02T00:00:00Z", "2025-06-04T00:00:00Z", true},
		{"containment", "2025-06-01T00:00:00Z", "2025-06-10T00:00:00Z", "2025-06-03T00:00:00Z", "2025-06-04T00:00:00Z", true},
		{"identical", "2025-06-01T00:00:00Z", "2025-06-02T00:00:00Z", "2025-06-01T00:00:00Z", "2025-06-02T00:00:00Z", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(instant(tt.aStart), instant(tt.aEnd), instant(tt.bStart), instant(tt.bEnd))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRangeWindow(t *testing.T) {
	start, end := RangeWindow(day("2025-06-01"), day("2025-06-03"))
	assert.Equal(t, instant("2025-06-01T00:00:00Z"), start)
	assert.Equal(t, instant("2025-06-04T00:00:00Z"), end)

	// Single-day range covers exactly one day.
	start, end = RangeWindow(day("2025-06-01"), day("2025-06-01"))
	assert.Equal(t, instant("2025-06-01T00:00:00Z"), start)
	assert.Equal(t, instant("2025-06-02T00:00:00Z"), end)
}

func TestStatusForDay_Precedence(t *testing.T) {
	now := instant("2025-05-20T12:00:00Z")

	blocked := &model.AvailabilitySlot{
		Status:   model.SlotBlocked,
		StartsAt: instant("2025-06-01T00:00:00Z"),
		EndsAt:   instant("2025-06-04T00:00:00Z"),
	}
	available := &model.AvailabilitySlot{
		Status:   model.SlotAvailable,
		StartsAt: instant("2025-06-01T00:00:00Z"),
		EndsAt:   instant("2025-06-04T00:00:00Z"),
	}
	unavailable := &model.AvailabilitySlot{
		Status:   model.SlotUnavailable,
		StartsAt: instant("2025-06-01T00:00:00Z"),
		EndsAt:   instant("2025-06-04T00:00:00Z"),
	}
	pendingHold := &model.AvailabilityHold{
		Status:    model.HoldPending,
		StartDate: day("2025-06-01"),
		EndDate:   day("2025-06-03"),
		CreatedAt: now.Add(-1 * time.Hour),
	}

	tests := []struct {
		name     string
		slots    []*model.AvailabilitySlot
		holds    []*model.AvailabilityHold
		expected DayStatus
	}{
		{"no records", nil, nil, DayUnset},
		{"available only", []*model.AvailabilitySlot{available}, nil, DayAvailable},
		{"unavailable only", []*model.AvailabilitySlot{unavailable}, nil, DayUnavailable},
		{"blocked wins over available", []*model.AvailabilitySlot{available, blocked}, nil, DayBlocked},
		{"available wins over unavailable", []*model.AvailabilitySlot{unavailable, available}, nil, DayAvailable},
		{"pending hold wins over blocked", []*model.AvailabilitySlot{blocked}, []*model.AvailabilityHold{pendingHold}, DayHasRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusForDay(day("2025-06-02"), tt.slots, tt.holds, now, responseWindow)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStatusForDay_StalePendingHoldIgnored(t *testing.T) {
	now := instant("2025-05-20T12:00:00Z")

	staleHold := &model.AvailabilityHold{
		Status:    model.HoldPending,
		StartDate: day("2025-06-01"),
		EndDate:   day("2025-06-03"),
		CreatedAt: now.Add(-49 * time.Hour),
	}

	got := StatusForDay(day("2025-06-02"), nil, []*model.AvailabilityHold{staleHold}, now, responseWindow)
	assert.Equal(t, DayUnset, got, "a stale pending hold is logically expired and must not mark the day")
}

func TestStatusForDay_TerminalHoldsIgnored(t *testing.T) {
	now := instant("2025-05-20T12:00:00Z")

	for _, status := range []string{model.HoldAccepted, model.HoldDeclined, model.HoldExpired, model.HoldCancelled} {
		hold := &model.AvailabilityHold{
			Status:    status,
			StartDate: day("2025-06-01"),
			EndDate:   day("2025-06-03"),
			CreatedAt: now.Add(-1 * time.Hour),
		}
		got := StatusForDay(day("2025-06-02"), nil, []*model.AvailabilityHold{hold}, now, responseWindow)
		assert.Equal(t, DayUnset, got, "status %s must not produce has-requests", status)
	}
}

func TestStatusForDay_HoldOutsideDay(t *testing.T) {
	now := instant("2025-05-20T12:00:00Z")

	hold := &model.AvailabilityHold{
		Status:    model.HoldPending,
		StartDate: day("2025-06-01"),
		EndDate:   day("2025-06-03"),
		CreatedAt: now.Add(-1 * time.Hour),
	}

	assert.Equal(t, DayUnset, StatusForDay(day("2025-06-04"), nil, []*model.AvailabilityHold{hold}, now, responseWindow))
	assert.Equal(t, DayHasRequests, StatusForDay(day("2025-06-03"), nil, []*model.AvailabilityHold{hold}, now, responseWindow), "end date is inclusive")
	assert.Equal(t, DayHasRequests, StatusForDay(day("2025-06-01"), nil, []*model.AvailabilityHold{hold}, now, responseWindow), "start date is inclusive")
}

func TestRangeHasBlockingConflict(t *testing.T) {
	blocked := &model.AvailabilitySlot{
		Status:   model.SlotBlocked,
		StartsAt: instant("2025-06-01T00:00:00Z"),
		EndsAt:   instant("2025-06-04T00:00:00Z"),
	}
	available := &model.AvailabilitySlot{
		Status:   model.SlotAvailable,
		StartsAt: instant("2025-06-01T00:00:00Z"),
		EndsAt:   instant("2025-06-10T00:00:00Z"),
	}

	tests := []struct {
		name     string
		start    string
		end      string
		slots    []*model.AvailabilitySlot
		expected bool
	}{
		{"no slots", "2025-06-01", "2025-06-03", nil, false},
		{"available slot is not a conflict", "2025-06-01", "2025-06-03", []*model.AvailabilitySlot{available}, false},
		{"blocked slot overlapping", "2025-06-02", "2025-06-05", []*model.AvailabilitySlot{blocked}, true},
		{"blocked slot adjacent after", "2025-06-04", "2025-06-06", []*model.AvailabilitySlot{blocked}, false},
		{"blocked slot last covered day", "2025-06-03", "2025-06-06", []*model.AvailabilitySlot{blocked}, true},
		{"single day inside blocked", "2025-06-02", "2025-06-02", []*model.AvailabilitySlot{blocked}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RangeHasBlockingConflict(day(tt.start), day(tt.end), tt.slots)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestWindow(t *testing.T) {
	now := instant("2025-05-20T12:00:00Z")

	blocked := &model.AvailabilitySlot{
		Status:   model.SlotBlocked,
		StartsAt: instant("2025-06-02T00:00:00Z"),
		EndsAt:   instant("2025-06-03T00:00:00Z"),
	}

	cells := Window(day("2025-06-01"), day("2025-06-03"), []*model.AvailabilitySlot{blocked}, nil, now, responseWindow)

	assert.Len(t, cells, 3)
	assert.Equal(t, "2025-06-01", cells[0].Date)
	assert.Equal(t, DayUnset, cells[0].Status)
	assert.Equal(t, DayBlocked, cells[1].Status)
	assert.Equal(t, DayUnset, cells[2].Status)
}
