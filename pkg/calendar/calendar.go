// Package calendar is the single authority for date-range overlap and
// day-status precedence. Every screen and every accept gate goes through
// these functions so the rules live in exactly one place.
package calendar

import (
	"time"

	"guidecal/pkg/model"
)

// DayStatus classifies a single calendar day on a provider's public calendar.
type DayStatus string

const (
	DayAvailable   DayStatus = "available"
	DayBlocked     DayStatus = "blocked"
	DayUnavailable DayStatus = "unavailable"
	DayHasRequests DayStatus = "has-requests"

	// DayUnset means no explicit record covers the day. The product treats
	// unset days as open for booking (default-open policy).
	DayUnset DayStatus = "unset"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// DayWindow returns the half-open UTC instant bounds [00:00, +24h) of the
// calendar day containing t.
func DayWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// RangeWindow converts an inclusive date range into half-open instant bounds:
// [startDate 00:00, endDate+1d 00:00).
func RangeWindow(startDate, endDate time.Time) (time.Time, time.Time) {
	start, _ := DayWindow(startDate)
	_, end := DayWindow(endDate)
	return start, end
}

// ContainsDay reports whether the inclusive date range [startDate, endDate]
// covers the calendar day of t.
func ContainsDay(startDate, endDate, t time.Time) bool {
	rangeStart, rangeEnd := RangeWindow(startDate, endDate)
	dayStart, dayEnd := DayWindow(t)
	return Overlaps(rangeStart, rangeEnd, dayStart, dayEnd)
}

// StatusForDay classifies one day from slot and hold snapshots.
//
// Precedence, first match wins:
//  1. pending hold covering the day (stale pending holds count as expired)
//  2. blocked slot
//  3. available slot
//  4. unavailable slot
//  5. unset
func StatusForDay(day time.Time, slots []*model.AvailabilitySlot, holds []*model.AvailabilityHold, now time.Time, responseWindow time.Duration) DayStatus {
	dayStart, dayEnd := DayWindow(day)

	for _, h := range holds {
		if h.Status != model.HoldPending || h.StaleAt(now, responseWindow) {
			continue
		}
		if ContainsDay(h.StartDate, h.EndDate, day) {
			return DayHasRequests
		}
	}

	for _, status := range []string{model.SlotBlocked, model.SlotAvailable, model.SlotUnavailable} {
		for _, s := range slots {
			if s.Status == status && Overlaps(s.StartsAt, s.EndsAt, dayStart, dayEnd) {
				return DayStatus(status)
			}
		}
	}

	return DayUnset
}

// RangeHasBlockingConflict reports whether any blocked slot intersects the
// inclusive date range. Gates hold acceptance: a provider with a blocked slot
// in the window must not double-book, even if an overlapping hold was left
// unanswered.
func RangeHasBlockingConflict(startDate, endDate time.Time, slots []*model.AvailabilitySlot) bool {
	rangeStart, rangeEnd := RangeWindow(startDate, endDate)

	for _, s := range slots {
		if s.Status == model.SlotBlocked && Overlaps(s.StartsAt, s.EndsAt, rangeStart, rangeEnd) {
			return true
		}
	}
	return false
}

// DayCell is one entry of a rendered calendar window.
type DayCell struct {
	Date   string    `json:"date"`
	Status DayStatus `json:"status"`
}

// Window renders day statuses for every day in [from, to] inclusive.
func Window(from, to time.Time, slots []*model.AvailabilitySlot, holds []*model.AvailabilityHold, now time.Time, responseWindow time.Duration) []DayCell {
	fromStart, _ := DayWindow(from)
	toStart, _ := DayWindow(to)

	var cells []DayCell
	for day := fromStart; !day.After(toStart); day = day.AddDate(0, 0, 1) {
		cells = append(cells, DayCell{
			Date:   day.Format("2006-01-02"),
			Status: StatusForDay(day, slots, holds, now, responseWindow),
		})
	}
	return cells
}
