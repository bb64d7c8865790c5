package turno

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Remote is the appointment side of the REST service.
type Remote interface {
	ListByPatient(ctx context.Context, patientID string) ([]Turno, error)
	ListByProfessional(ctx context.Context, professionalID string) ([]Turno, error)
	Create(ctx context.Context, t Turno) (Turno, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Turno, error)
}

// Repository owns the list of appointments for the current identity.
type Repository struct {
	remote Remote
	logger zerolog.Logger

	mu     sync.RWMutex
	scope  Scope
	turnos []Turno
}

func NewRepository(remote Remote, logger zerolog.Logger) *Repository {
	return &Repository{remote: remote, logger: logger}
}

// Load replaces the cached list with the scoped list from the service. On
// failure the cache is emptied and a *LoadError is returned with an empty
// slice, so the view never shows a stale list silently.
func (r *Repository) Load(ctx context.Context, scope Scope) ([]Turno, error) {
	if err := scope.Validate(); err != nil {
		return []Turno{}, err
	}

	var (
		list []Turno
		err  error
	)
	if scope.ProfessionalID != "" {
		list, err = r.remote.ListByProfessional(ctx, scope.ProfessionalID)
	} else {
		list, err = r.remote.ListByPatient(ctx, scope.PatientID)
	}
	if err != nil {
		r.replace(scope, nil)
		r.logger.Warn().Err(err).Str("scope", scope.String()).Msg("failed to load turnos")
		return []Turno{}, &LoadError{Op: "turnos/" + scope.String(), Err: err}
	}

	valid := lo.Filter(list, func(t Turno, _ int) bool { return t.ID != "" })
	if dropped := len(list) - len(valid); dropped > 0 {
		r.logger.Warn().Int("dropped", dropped).Msg("turnos without id ignored")
	}
	r.replace(scope, valid)
	r.logger.Debug().Int("count", len(valid)).Str("scope", scope.String()).Msg("turnos loaded")
	return r.Snapshot(), nil
}

// Create validates the draft, posts a pending appointment and reloads the
// scoped list. If the reload fails the created turno is returned together
// with the *LoadError.
func (r *Repository) Create(ctx context.Context, d Draft) (Turno, error) {
	if err := d.Validate(); err != nil {
		return Turno{}, err
	}
	fecha, err := d.Fecha()
	if err != nil {
		return Turno{}, &ValidationError{Fields: []string{FieldTime}}
	}

	created, err := r.remote.Create(ctx, Turno{
		PatientID:      d.PatientID,
		ProfessionalID: d.ProfessionalID,
		Fecha:          fecha,
		Reason:         strings.TrimSpace(d.Reason),
		Status:         StatusPending,
		ReminderSent:   false,
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("profesional_id", d.ProfessionalID).Msg("create turno rejected")
		return Turno{}, &MutationError{Op: "create", Err: err}
	}
	r.logger.Info().Str("turno_id", created.ID).Str("fecha", fecha.Format(WireLayout)).Msg("turno created")

	scope := r.Scope()
	if scope.Validate() != nil {
		scope = PatientScope(d.PatientID)
	}
	if _, err := r.Load(ctx, scope); err != nil {
		return created, err
	}
	if fresh, ok := r.Get(created.ID); ok {
		return fresh, nil
	}
	return created, nil
}

// Patch sends the changed estado and, on success, updates only that field of
// the matching cached record. The list is not reloaded.
func (r *Repository) Patch(ctx context.Context, id string, upd Update) (Turno, error) {
	if id == "" {
		return Turno{}, &ValidationError{Fields: []string{"id"}}
	}
	if !upd.Status.Valid() {
		return Turno{}, &ValidationError{Fields: []string{"estado"}}
	}

	remote, err := r.remote.UpdateStatus(ctx, id, upd.Status)
	if err != nil {
		r.logger.Warn().Err(err).Str("turno_id", id).Msg("update turno rejected")
		return Turno{}, &MutationError{Op: "update", Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.turnos {
		if r.turnos[i].ID == id {
			r.turnos[i].Status = upd.Status
			return r.turnos[i], nil
		}
	}
	// Not in the cached scope; report what the service answered.
	if remote.ID == "" {
		remote.ID = id
	}
	remote.Status = upd.Status
	return remote, nil
}

// Snapshot returns a copy of the cached list.
func (r *Repository) Snapshot() []Turno {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Turno, len(r.turnos))
	copy(out, r.turnos)
	return out
}

func (r *Repository) Get(id string) (Turno, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.Find(r.turnos, func(t Turno) bool { return t.ID == id })
}

// Scope returns the scope of the last load.
func (r *Repository) Scope() Scope {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scope
}

func (r *Repository) replace(scope Scope, list []Turno) {
	r.mu.Lock()
	r.scope = scope
	r.turnos = append([]Turno(nil), list...)
	r.mu.Unlock()
}

// IsLoadError reports whether err is, or wraps, a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}
