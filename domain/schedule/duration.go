package schedule

import (
	"fmt"
	"math"
	"taskflow/bizerror"
	"time"
)

type Unit string

const (
	UnitHours Unit = "HOURS"
	UnitDays  Unit = "DAYS"
)

const (
	defaultMinutesPerDay = 480
	minMinutesPerDay     = 60

	// upper bound of day advancements before giving up, about ten years of calendar days
	maxDayAdvances = 3660
)

type window struct {
	start int
	end   int
}

type weeklyWindows map[time.Weekday][]window

func buildWeeklyWindows(slots []Slot) (weeklyWindows, error) {
	windows := weeklyWindows{}
	for _, slot := range ResolveSlots(slots) {
		start, err := ParseClock(slot.Start)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", bizerror.ErrInvalidSchedule, err)
		}
		end, err := ParseClock(slot.End)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", bizerror.ErrInvalidSchedule, err)
		}
		windows[slot.Day] = append(windows[slot.Day], window{start: start, end: end})
	}
	return windows, nil
}

// MinutesPerDay averages slot minutes over the weekdays having at least one slot.
// Uneven days (a short friday) give a fractional average which is kept as is.
func MinutesPerDay(slots []Slot) (float64, error) {
	windows, err := buildWeeklyWindows(slots)
	if err != nil {
		return 0, err
	}
	return windows.minutesPerDay(), nil
}

func (w weeklyWindows) minutesPerDay() float64 {
	total, days := 0, 0
	for _, dayWindows := range w {
		if len(dayWindows) == 0 {
			continue
		}
		days++
		for _, win := range dayWindows {
			if win.end > win.start {
				total += win.end - win.start
			}
		}
	}
	if days == 0 {
		return defaultMinutesPerDay
	}
	return math.Max(float64(total)/float64(days), minMinutesPerDay)
}

// Advance walks the working windows from start until quantity of effort is consumed and
// returns the completion instant in UTC. Dates in holidays or leaves are skipped entirely.
func Advance(start time.Time, quantity float64, unit Unit, loc *time.Location, slots []Slot, holidays, leaves DateSet) (time.Time, error) {
	if !(quantity > 0) || math.IsInf(quantity, 1) {
		return time.Time{}, bizerror.ErrInvalidQuantity
	}
	if start.IsZero() {
		return time.Time{}, fmt.Errorf("%w: start is required", bizerror.ErrInvalidInstant)
	}
	if loc == nil {
		loc = time.UTC
	}
	windows, err := buildWeeklyWindows(slots)
	if err != nil {
		return time.Time{}, err
	}

	var remaining float64
	switch unit {
	case UnitHours:
		remaining = quantity * 60
	case UnitDays:
		remaining = quantity * windows.minutesPerDay()
	default:
		return time.Time{}, fmt.Errorf("%w: '%s'", bizerror.ErrInvalidUnit, unit)
	}

	cursor := start.In(loc)
	for advances := 0; ; advances++ {
		if advances > maxDayAdvances {
			return time.Time{}, fmt.Errorf("%w: %v minutes left after %d days", bizerror.ErrScheduleExhausted, remaining, maxDayAdvances)
		}
		if !holidays.Contains(cursor) && !leaves.Contains(cursor) {
			for _, win := range windows[cursor.Weekday()] {
				windowStart := clockOf(cursor, win.start)
				windowEnd := clockOf(cursor, win.end)
				if windowStart.Before(cursor) {
					windowStart = cursor
				}
				width := windowEnd.Sub(windowStart).Minutes()
				if width <= 0 {
					continue
				}
				consumed := math.Min(width, remaining)
				cursor = windowStart.Add(time.Duration(math.Round(consumed * float64(time.Minute))))
				remaining -= consumed
				if remaining <= 0 {
					return cursor.UTC(), nil
				}
			}
		}
		cursor = nextDayStart(cursor)
	}
}

func clockOf(day time.Time, minuteOfDay int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), 0, minuteOfDay, 0, 0, day.Location())
}

func nextDayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}
