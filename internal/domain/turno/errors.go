package turno

import (
	"errors"
	"fmt"
	"strings"
)

// Form field names reported by ValidationError.
const (
	FieldPatient      = "paciente"
	FieldProfessional = "profesional"
	FieldDate         = "fecha"
	FieldTime         = "hora"
	FieldReason       = "motivo"
)

var (
	ErrSubmitInProgress     = errors.New("a submission is already in progress")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrNotProfessional      = errors.New("only professionals can change appointment status")
	ErrNotPatient           = errors.New("only patients can book appointments")
	ErrDateInPast           = errors.New("date is before today")
	ErrBookingClosed        = errors.New("booking dialog is not open")
	ErrInvalidScope         = errors.New("scope needs exactly one of patient or professional id")
	ErrNotFound             = errors.New("turno not found")
)

// ValidationError names every missing or invalid field of a booking.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Has reports whether field is among the failing fields.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// LoadError means a fetch failed; the list was degraded to empty.
type LoadError struct {
	Op  string
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("load %s: %v", e.Op, e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// MutationError means the service rejected a create or patch; local state is
// unchanged.
type MutationError struct {
	Op  string
	Err error
}

func (e *MutationError) Error() string { return fmt.Sprintf("%s turno: %v", e.Op, e.Err) }
func (e *MutationError) Unwrap() error { return e.Err }
