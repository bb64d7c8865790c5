package turno

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// WireLayout is how fecha travels: local wall clock, no zone.
	WireLayout = "2006-01-02T15:04:05"
	// DisplayLayout is how fecha is shown.
	DisplayLayout = "2006-01-02 15:04"
)

// LocalDateTime is a wall-clock date and time. Whatever the user picked is
// what is stored, sent and shown; no zone conversion is ever applied.
// The value is held in UTC so daylight-saving gaps in the local zone
// never move the picked hour or day.
type LocalDateTime struct {
	t time.Time
}

func NewLocalDateTime(year int, month time.Month, day, hour, minute int) LocalDateTime {
	return LocalDateTime{t: time.Date(year, month, day, hour, minute, 0, 0, time.UTC)}
}

// FromTime keeps t's wall-clock fields and drops its zone.
func FromTime(t time.Time) LocalDateTime {
	if t.IsZero() {
		return LocalDateTime{}
	}
	return LocalDateTime{t: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}
}

func (f LocalDateTime) IsZero() bool    { return f.t.IsZero() }
func (f LocalDateTime) Time() time.Time { return f.t }

func (f LocalDateTime) Date() CalendarDate {
	y, m, d := f.t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// Clock returns "HH:MM".
func (f LocalDateTime) Clock() string { return f.t.Format("15:04") }

func (f LocalDateTime) Before(other LocalDateTime) bool { return f.t.Before(other.t) }

func (f LocalDateTime) Equal(other LocalDateTime) bool {
	return f.Format(WireLayout) == other.Format(WireLayout)
}

func (f LocalDateTime) Format(layout string) string {
	if f.t.IsZero() {
		return ""
	}
	return f.t.Format(layout)
}

func (f LocalDateTime) String() string { return f.Format(DisplayLayout) }

func (f LocalDateTime) MarshalJSON() ([]byte, error) {
	if f.t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.t.Format(WireLayout))
}

var acceptedLayouts = []string{
	WireLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func (f *LocalDateTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = LocalDateTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("fecha must be a string: %w", err)
	}
	parsed, err := ParseLocalDateTime(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseLocalDateTime accepts zone-less layouts and RFC 3339. Values with an
// offset keep the wall clock written in the string.
func ParseLocalDateTime(s string) (LocalDateTime, error) {
	if s == "" {
		return LocalDateTime{}, nil
	}
	for _, layout := range acceptedLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return FromTime(t), nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return FromTime(t), nil
	}
	return LocalDateTime{}, fmt.Errorf("invalid fecha %q", s)
}
