package turno

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/vidasana/turnos/internal/domain/identity"
	"github.com/vidasana/turnos/internal/platform/notify"
)

// Directory is what a dashboard needs from the directory cache.
type Directory interface {
	Resolver
	Load(ctx context.Context, ident identity.Identity) error
	MissingPatients(ids []string) []string
	LoadPatients(ctx context.Context, ids []string) ([]identity.Patient, error)
}

// Dashboard wires the workflows of one identity together.
type Dashboard struct {
	ident    identity.Identity
	dir      Directory
	repo     *Repository
	notifier notify.Notifier
	logger   zerolog.Logger

	Booking     *Booking
	Transitions *Transitions
}

func NewDashboard(ident identity.Identity, dir Directory, repo *Repository, notifier notify.Notifier, logger zerolog.Logger) *Dashboard {
	logger = logger.With().Str("user_id", ident.ID).Str("role", string(ident.Role)).Logger()
	return &Dashboard{
		ident:       ident,
		dir:         dir,
		repo:        repo,
		notifier:    notifier,
		logger:      logger,
		Booking:     NewBooking(repo, notifier, logger),
		Transitions: NewTransitions(repo, notifier, logger),
	}
}

func (d *Dashboard) Identity() identity.Identity { return d.ident }

// Mount loads the directory and the appointments concurrently. Each side
// fails on its own: the failure is notified and the view degrades to
// raw-id names or an empty list. The returned error joins both failures
// and is informational only.
func (d *Dashboard) Mount(ctx context.Context) error {
	// Both goroutines return nil: a failed load must not cancel the other
	// side, and each error is reported separately below.
	var (
		g              errgroup.Group
		dirErr, turErr error
	)
	g.Go(func() error {
		dirErr = d.dir.Load(ctx, d.ident)
		return nil
	})
	g.Go(func() error {
		_, turErr = d.repo.Load(ctx, ScopeFor(d.ident))
		return nil
	})
	g.Wait() //nolint:errcheck

	if dirErr != nil {
		d.logger.Warn().Err(dirErr).Msg("directory load failed")
		what := "profesionales"
		if d.ident.IsProfessional() {
			what = "pacientes"
		}
		d.notifier.Notify(notify.Error("Error", "No se pudieron cargar los "+what))
	}
	if turErr != nil {
		d.notifier.Notify(notify.Error("Error", "No se pudieron cargar los turnos"))
	}

	if d.ident.IsProfessional() && turErr == nil {
		if err := d.backfillPatients(ctx); err != nil {
			d.logger.Warn().Err(err).Msg("some patients could not be resolved")
		}
	}
	return errors.Join(dirErr, turErr)
}

// backfillPatients fetches patients referenced by appointments that were
// not in the professional's pacientes_ids.
func (d *Dashboard) backfillPatients(ctx context.Context) error {
	ids := lo.Map(d.repo.Snapshot(), func(t Turno, _ int) string { return t.PatientID })
	missing := d.dir.MissingPatients(ids)
	if len(missing) == 0 {
		return nil
	}
	_, err := d.dir.LoadPatients(ctx, missing)
	return err
}

// Refresh reloads the appointments only.
func (d *Dashboard) Refresh(ctx context.Context) error {
	_, err := d.repo.Load(ctx, ScopeFor(d.ident))
	if err != nil {
		d.notifier.Notify(notify.Error("Error", "No se pudieron cargar los turnos"))
	}
	return err
}

// View projects the current cache.
func (d *Dashboard) View(now time.Time) View {
	return Project(d.repo.Snapshot(), d.dir, d.ident.Role, now)
}

// TotalPatients is the professional's patient count shown on the dashboard.
func (d *Dashboard) TotalPatients() int {
	if d.ident.Professional == nil {
		return 0
	}
	return len(d.ident.Professional.PatientIDs)
}

// ClinicalHistory returns the patient's historia clinica, newest last.
func (d *Dashboard) ClinicalHistory() []identity.ClinicalRecord {
	if d.ident.Patient == nil {
		return nil
	}
	return append([]identity.ClinicalRecord(nil), d.ident.Patient.ClinicalHistory...)
}

// Book submits the open booking dialog for this dashboard's identity.
func (d *Dashboard) Book(ctx context.Context) (Turno, error) {
	return d.Booking.Submit(ctx, d.ident)
}

// SetStatus runs a status transition for this dashboard's identity.
func (d *Dashboard) SetStatus(ctx context.Context, id string, target Status) (Turno, error) {
	return d.Transitions.Transition(ctx, d.ident, id, target)
}
