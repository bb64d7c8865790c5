package turno

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidasana/turnos/internal/domain/identity"
	"github.com/vidasana/turnos/internal/platform/notify"
)

// BookingState is the state of the booking dialog.
type BookingState int

const (
	BookingIdle BookingState = iota
	BookingEditing
	BookingSubmitting
	BookingSuccess
	BookingFailed
)

func (s BookingState) String() string {
	switch s {
	case BookingIdle:
		return "idle"
	case BookingEditing:
		return "editing"
	case BookingSubmitting:
		return "submitting"
	case BookingSuccess:
		return "success"
	case BookingFailed:
		return "failed"
	}
	return fmt.Sprintf("BookingState(%d)", int(s))
}

// Creator creates appointments. *Repository satisfies it.
type Creator interface {
	Create(ctx context.Context, d Draft) (Turno, error)
}

// BookingForm is the current content of the dialog.
type BookingForm struct {
	ProfessionalID string
	Date           CalendarDate
	Time           string
	Reason         string
}

// Booking is the patient's "reservar turno" dialog.
type Booking struct {
	repo     Creator
	notifier notify.Notifier
	logger   zerolog.Logger
	now      func() time.Time

	mu    sync.Mutex
	state BookingState
	open  bool
	form  BookingForm
}

func NewBooking(repo Creator, notifier notify.Notifier, logger zerolog.Logger) *Booking {
	return &Booking{repo: repo, notifier: notifier, logger: logger, now: time.Now}
}

// Open shows the dialog with every field empty.
func (b *Booking) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BookingSubmitting {
		return ErrSubmitInProgress
	}
	b.form = BookingForm{}
	b.open = true
	b.state = BookingEditing
	return nil
}

// Close hides the dialog and discards the form.
func (b *Booking) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BookingSubmitting {
		return ErrSubmitInProgress
	}
	b.form = BookingForm{}
	b.open = false
	b.state = BookingIdle
	return nil
}

func (b *Booking) SelectProfessional(id string) error {
	return b.edit(func(f *BookingForm) error {
		f.ProfessionalID = strings.TrimSpace(id)
		return nil
	})
}

// SelectDate picks a calendar day. Days before today are not selectable;
// today is, at any time of day.
func (b *Booking) SelectDate(year int, month time.Month, day int) error {
	picked := NewCalendarDate(year, month, day)
	if _, err := time.Parse("2006-01-02", picked.String()); err != nil {
		return fmt.Errorf("invalid fecha %s", picked)
	}
	if picked.Before(Today(b.now())) {
		return ErrDateInPast
	}
	return b.edit(func(f *BookingForm) error {
		f.Date = picked
		return nil
	})
}

// SetTime stores the "HH:MM" text as typed; it is checked on submit.
func (b *Booking) SetTime(hhmm string) error {
	return b.edit(func(f *BookingForm) error {
		f.Time = strings.TrimSpace(hhmm)
		return nil
	})
}

func (b *Booking) SetReason(motivo string) error {
	return b.edit(func(f *BookingForm) error {
		f.Reason = motivo
		return nil
	})
}

func (b *Booking) edit(fn func(*BookingForm) error) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == BookingSubmitting {
		return ErrSubmitInProgress
	}
	if !b.open {
		return ErrBookingClosed
	}
	return fn(&b.form)
}

func (b *Booking) State() BookingState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Booking) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

func (b *Booking) Form() BookingForm {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.form
}

// Submit validates the form and asks the repository to create the
// appointment. Only one submission runs at a time.
//
// On success the dialog closes and the form is cleared. On rejection the
// dialog stays open with the form intact so the user can resubmit. If the
// appointment was created but the list reload failed, the turno is returned
// together with the *LoadError and the booking still counts as a success.
func (b *Booking) Submit(ctx context.Context, ident identity.Identity) (Turno, error) {
	b.mu.Lock()
	if b.state == BookingSubmitting {
		b.mu.Unlock()
		return Turno{}, ErrSubmitInProgress
	}
	if !ident.IsPatient() {
		b.mu.Unlock()
		return Turno{}, ErrNotPatient
	}
	if !b.open {
		b.mu.Unlock()
		return Turno{}, ErrBookingClosed
	}

	draft := Draft{
		PatientID:      ident.ID,
		ProfessionalID: b.form.ProfessionalID,
		Date:           b.form.Date,
		Time:           b.form.Time,
		Reason:         b.form.Reason,
	}
	if err := draft.Validate(); err != nil {
		b.state = BookingEditing
		b.mu.Unlock()
		b.notifier.Notify(notify.Error("Error", "Por favor complete todos los campos"))
		return Turno{}, err
	}
	if draft.Date.Before(Today(b.now())) {
		b.state = BookingEditing
		b.mu.Unlock()
		b.notifier.Notify(notify.Error("Error", "La fecha seleccionada ya pasó"))
		return Turno{}, ErrDateInPast
	}
	b.state = BookingSubmitting
	b.mu.Unlock()

	created, err := b.repo.Create(ctx, draft)

	b.mu.Lock()
	defer b.mu.Unlock()

	var loadErr *LoadError
	if err != nil && !errors.As(err, &loadErr) {
		b.state = BookingFailed
		b.logger.Warn().Err(err).Str("paciente_id", ident.ID).Msg("booking failed")
		b.notifier.Notify(notify.Error("Error al reservar turno", reason(err)))
		return Turno{}, err
	}

	fecha, _ := draft.Fecha()
	b.form = BookingForm{}
	b.open = false
	b.state = BookingSuccess
	b.notifier.Notify(notify.Success("Turno reservado",
		fmt.Sprintf("Turno solicitado para %s a las %s", fecha.Format("02/01/2006"), fecha.Clock())))
	if loadErr != nil {
		b.notifier.Notify(notify.Error("Error", "No se pudieron actualizar los turnos"))
		return created, loadErr
	}
	return created, nil
}

// reason extracts a user-facing message from a rejected mutation.
func reason(err error) string {
	var me *MutationError
	if errors.As(err, &me) && me.Err != nil {
		return me.Err.Error()
	}
	return err.Error()
}
