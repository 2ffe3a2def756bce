package tariff

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime is a time of day without a date, e.g. "23:30".
type ClockTime struct {
	Hour   int
	Minute int
}

// minuteOfDay returns the clock time as minutes since midnight.
func (c ClockTime) minuteOfDay() int {
	return c.Hour*60 + c.Minute
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseClockTime parses a "15:04" clock time.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return ClockTime{}, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseClockTime(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Window is a labelled time-of-day interval that selects a rate variant
// within a time-of-use tariff period. The interval is half-open
// [Start, End); a window whose End is before its Start wraps across
// midnight, so "23:00–07:00" covers both 23:30 and 06:30. Start == End is
// treated as covering the whole day.
type Window struct {
	Label Label     `json:"label"`
	Start ClockTime `json:"start_time_of_day"`
	End   ClockTime `json:"end_time_of_day"`
}

// Contains reports whether the local clock time of t falls inside the window.
// The caller is responsible for rendering t in the tariff market's civil
// timezone first; only t's wall clock reading is inspected here.
func (w Window) Contains(t time.Time) bool {
	m := t.Hour()*60 + t.Minute()
	start := w.Start.minuteOfDay()
	end := w.End.minuteOfDay()
	if start < end {
		return m >= start && m < end
	}
	// wraps midnight (or covers the full day when start == end)
	return m >= start || m < end
}

// DefaultEconomy7Windows is the rate selection used for time-of-use periods
// that carry no explicit windows: the common UK Economy 7 pattern with the
// night rate from 00:30 to 07:30. Regional metering can differ, in which case
// the period should define its own windows.
var DefaultEconomy7Windows = []Window{
	{Label: LabelNight, Start: ClockTime{Hour: 0, Minute: 30}, End: ClockTime{Hour: 7, Minute: 30}},
	{Label: LabelDay, Start: ClockTime{Hour: 7, Minute: 30}, End: ClockTime{Hour: 0, Minute: 30}},
}
