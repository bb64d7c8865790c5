package turno

import (
	"fmt"
	"strings"
	"time"

	"github.com/vidasana/turnos/internal/domain/identity"
)

// Status is the estado of an appointment.
type Status string

const (
	StatusPending   Status = "pendiente"
	StatusConfirmed Status = "confirmado"
	StatusCancelled Status = "cancelado"
	StatusCompleted Status = "completado"
)

var validStatuses = map[Status]bool{
	StatusPending:   true,
	StatusConfirmed: true,
	StatusCancelled: true,
	StatusCompleted: true,
}

func (s Status) Valid() bool { return validStatuses[s] }

// ParseStatus accepts the wire value or its English name.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pendiente", "pending":
		return StatusPending, nil
	case "confirmado", "confirmed", "confirm":
		return StatusConfirmed, nil
	case "cancelado", "cancelled", "canceled", "cancel":
		return StatusCancelled, nil
	case "completado", "completed":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("invalid estado %q", s)
}

// Turno maps to the turno resource.
type Turno struct {
	ID             string        `json:"_id,omitempty"`
	PatientID      string        `json:"paciente_id"`
	ProfessionalID string        `json:"profesional_id"`
	Fecha          LocalDateTime `json:"fecha"`
	Reason         string        `json:"motivo,omitempty"`
	Status         Status        `json:"estado"`
	// ReminderSent is owned by the service; the client only ever sends false.
	ReminderSent bool `json:"recordatorio_enviado"`
}

// Scope selects whose appointments are loaded. Exactly one id is set.
type Scope struct {
	PatientID      string
	ProfessionalID string
}

func PatientScope(id string) Scope      { return Scope{PatientID: id} }
func ProfessionalScope(id string) Scope { return Scope{ProfessionalID: id} }

// ScopeFor returns the scope of the identity's own appointments.
func ScopeFor(ident identity.Identity) Scope {
	if ident.IsProfessional() {
		return ProfessionalScope(ident.ID)
	}
	return PatientScope(ident.ID)
}

func (s Scope) Validate() error {
	if (s.PatientID == "") == (s.ProfessionalID == "") {
		return ErrInvalidScope
	}
	return nil
}

func (s Scope) String() string {
	if s.ProfessionalID != "" {
		return "profesional/" + s.ProfessionalID
	}
	return "paciente/" + s.PatientID
}

// CalendarDate is a day picked on the calendar. The zero value means unset.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Year: year, Month: month, Day: day}
}

// ParseCalendarDate reads "2006-01-02".
func ParseCalendarDate(s string) (CalendarDate, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return CalendarDate{}, fmt.Errorf("invalid fecha %q: expected YYYY-MM-DD", s)
	}
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// Today returns the local calendar date of now.
func Today(now time.Time) CalendarDate {
	y, m, d := now.In(time.Local).Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

func (d CalendarDate) IsZero() bool { return d == CalendarDate{} }

// Before compares calendar days only.
func (d CalendarDate) Before(other CalendarDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// ParseClock reads a 24h "HH:MM" time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hora %q: expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

// Draft is a booking request before it is sent.
type Draft struct {
	PatientID      string
	ProfessionalID string
	Date           CalendarDate
	Time           string
	Reason         string
}

// Validate reports every missing field at once, in form order.
func (d Draft) Validate() error {
	var fields []string
	if strings.TrimSpace(d.PatientID) == "" {
		fields = append(fields, FieldPatient)
	}
	if strings.TrimSpace(d.ProfessionalID) == "" {
		fields = append(fields, FieldProfessional)
	}
	if d.Date.IsZero() {
		fields = append(fields, FieldDate)
	}
	if strings.TrimSpace(d.Time) == "" {
		fields = append(fields, FieldTime)
	} else if _, _, err := ParseClock(d.Time); err != nil {
		fields = append(fields, FieldTime)
	}
	if strings.TrimSpace(d.Reason) == "" {
		fields = append(fields, FieldReason)
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Fecha composes the picked day and time as a wall clock, zero seconds.
func (d Draft) Fecha() (LocalDateTime, error) {
	hh, mm, err := ParseClock(d.Time)
	if err != nil {
		return LocalDateTime{}, err
	}
	return NewLocalDateTime(d.Date.Year, d.Date.Month, d.Date.Day, hh, mm), nil
}

// Update is the set of fields a professional may change. Only estado today.
type Update struct {
	Status Status `json:"estado"`
}
