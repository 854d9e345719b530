package schedule

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"taskflow/bizerror"
	"time"

	_ "time/tzdata"
)

// Slot is a recurring working window on one weekday, Start and End are "HH:MM" clock times.
type Slot struct {
	Day   time.Weekday `json:"day"`
	Start string       `json:"start"`
	End   string       `json:"end"`
}

type Slots []Slot

func (s Slots) Value() (driver.Value, error) {
	jsonBytes, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonBytes), nil
}

func (s *Slots) Scan(v interface{}) error {
	if v == nil {
		return nil
	}
	jsonString, ok := v.(string)
	if !ok {
		jsonByte, ok := v.([]byte)
		if !ok {
			return fmt.Errorf("type is neither string nor []byte: %T %v", v, v)
		}
		jsonString = string(jsonByte)
	}
	return json.Unmarshal([]byte(jsonString), s)
}

func defaultSlots() []Slot {
	slots := make([]Slot, 0, 5)
	for day := time.Monday; day <= time.Friday; day++ {
		slots = append(slots, Slot{Day: day, Start: "09:00", End: "17:00"})
	}
	return slots
}

// ResolveSlots returns a copy of raw ordered by (day, start), or Mon-Fri 09:00-17:00 when raw is empty.
func ResolveSlots(raw []Slot) []Slot {
	if len(raw) == 0 {
		return defaultSlots()
	}
	slots := append([]Slot(nil), raw...)
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		si, _ := ParseClock(slots[i].Start)
		sj, _ := ParseClock(slots[j].Start)
		return si < sj
	})
	return slots
}

// ValidateSlots rejects unknown weekdays, malformed clocks and windows ending before they start.
func ValidateSlots(slots []Slot) error {
	for idx, slot := range slots {
		if slot.Day < time.Sunday || slot.Day > time.Saturday {
			return fmt.Errorf("%w: slot %d has unknown day %d", bizerror.ErrInvalidSchedule, idx, slot.Day)
		}
		start, err := ParseClock(slot.Start)
		if err != nil {
			return fmt.Errorf("%w: slot %d: %v", bizerror.ErrInvalidSchedule, idx, err)
		}
		end, err := ParseClock(slot.End)
		if err != nil {
			return fmt.Errorf("%w: slot %d: %v", bizerror.ErrInvalidSchedule, idx, err)
		}
		if end < start {
			return fmt.Errorf("%w: slot %d ends before it starts", bizerror.ErrInvalidSchedule, idx)
		}
	}
	return nil
}

// ParseClock converts "HH:MM" into minutes of the day, "24:00" is accepted as the end of day.
func ParseClock(value string) (int, error) {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("malformed clock '%s'", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("malformed clock '%s'", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed clock '%s'", value)
	}
	if hour < 0 || minute < 0 || minute > 59 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("clock '%s' out of range", value)
	}
	return hour*60 + minute, nil
}

// IsInstantWithinSchedule reports whether the clock minute of instant in loc falls inside a
// slot of its weekday, both bounds inclusive.
func IsInstantWithinSchedule(instant time.Time, slots []Slot, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	local := instant.In(loc)
	minute := local.Hour()*60 + local.Minute()
	for _, slot := range slots {
		if slot.Day != local.Weekday() {
			continue
		}
		start, err := ParseClock(slot.Start)
		if err != nil {
			continue
		}
		end, err := ParseClock(slot.End)
		if err != nil {
			continue
		}
		if minute >= start && minute <= end {
			return true
		}
	}
	return false
}

// LoadZone resolves an IANA zone name, an empty name means UTC.
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bizerror.ErrInvalidTimeZone, name)
	}
	return loc, nil
}

var localLayouts = []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02"}

// ParseInstant accepts RFC3339 instants, values without an offset are read as wall clock time in loc.
func ParseInstant(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: '%s'", bizerror.ErrInvalidInstant, value)
}

const dateLayout = "2006-01-02"

// DateSet holds calendar dates (YYYY-MM-DD) on which no work is consumed.
type DateSet map[string]struct{}

func NewDateSet(dates ...string) DateSet {
	set := DateSet{}
	for _, d := range dates {
		set.Add(d)
	}
	return set
}

func (s DateSet) Add(date string) {
	s[strings.TrimSpace(date)] = struct{}{}
}

// AddRange adds every date from first to last inclusive, both read as dates.
func (s DateSet) AddRange(first, last string) error {
	from, err := time.Parse(dateLayout, first)
	if err != nil {
		return fmt.Errorf("%w: '%s'", bizerror.ErrInvalidInstant, first)
	}
	to, err := time.Parse(dateLayout, last)
	if err != nil {
		return fmt.Errorf("%w: '%s'", bizerror.ErrInvalidInstant, last)
	}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		s[d.Format(dateLayout)] = struct{}{}
	}
	return nil
}

// Contains checks the calendar date of t in its own location.
func (s DateSet) Contains(t time.Time) bool {
	if s == nil {
		return false
	}
	_, found := s[t.Format(dateLayout)]
	return found
}
