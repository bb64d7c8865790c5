package turno

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/vidasana/turnos/internal/domain/identity"
	"github.com/vidasana/turnos/internal/platform/notify"
)

// Patcher reads and patches cached appointments. *Repository satisfies it.
type Patcher interface {
	Get(id string) (Turno, bool)
	Patch(ctx context.Context, id string, upd Update) (Turno, error)
}

// Transitions is the professional's confirm/cancel workflow.
type Transitions struct {
	repo     Patcher
	notifier notify.Notifier
	logger   zerolog.Logger

	mu       sync.Mutex
	inFlight map[string]bool
}

func NewTransitions(repo Patcher, notifier notify.Notifier, logger zerolog.Logger) *Transitions {
	return &Transitions{repo: repo, notifier: notifier, logger: logger, inFlight: make(map[string]bool)}
}

// Transition moves a pending appointment to confirmado or cancelado. Nothing
// is sent when the move is not allowed. A rejected patch leaves the
// appointment pending and is not retried.
func (t *Transitions) Transition(ctx context.Context, ident identity.Identity, id string, target Status) (Turno, error) {
	if !ident.IsProfessional() {
		return Turno{}, ErrNotProfessional
	}
	if err := t.check(ident, id, target); err != nil {
		return Turno{}, err
	}

	t.mu.Lock()
	if t.inFlight[id] {
		t.mu.Unlock()
		return Turno{}, ErrSubmitInProgress
	}
	t.inFlight[id] = true
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		delete(t.inFlight, id)
		t.mu.Unlock()
	}()

	// Another transition may have finished between the check and the guard.
	if err := t.check(ident, id, target); err != nil {
		return Turno{}, err
	}

	updated, err := t.repo.Patch(ctx, id, Update{Status: target})
	if err != nil {
		t.logger.Error().Err(err).Str("turno_id", id).Str("estado", string(target)).Msg("status transition failed")
		t.notifier.Notify(notify.Error("Error", "No se pudo actualizar el turno: "+reason(err)))
		return Turno{}, err
	}

	title := "Turno confirmado"
	if target == StatusCancelled {
		title = "Turno cancelado"
	}
	t.notifier.Notify(notify.Success(title, updated.Fecha.Format("02/01/2006 15:04")))
	t.logger.Info().Str("turno_id", id).Str("estado", string(target)).Msg("status changed")
	return updated, nil
}

// check reads the cached appointment and reports whether ident may move it
// to target. An appointment without an owner belongs to nobody.
func (t *Transitions) check(ident identity.Identity, id string, target Status) error {
	current, ok := t.repo.Get(id)
	if !ok {
		return ErrNotFound
	}
	if current.ProfessionalID == "" || current.ProfessionalID != ident.ID {
		return ErrNotProfessional
	}
	if !CanTransition(current.Status, target) {
		return ErrTransitionNotAllowed
	}
	return nil
}
