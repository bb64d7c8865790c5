// Package directory caches the counterparties shown next to appointments:
// the professional roster for patients and the patient records for
// professionals. It is loaded once per dashboard session and never
// invalidated on its own.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/vidasana/turnos/internal/domain/identity"
)

// maxPatientFetches bounds concurrent GET /pacientes/{id} calls.
const maxPatientFetches = 8

// Remote fetches directory entries from the service.
type Remote interface {
	ListProfessionals(ctx context.Context) ([]identity.Professional, error)
	GetPatient(ctx context.Context, id string) (identity.Patient, error)
}

// Cache holds the directory entries known to this session.
type Cache struct {
	remote Remote
	logger zerolog.Logger

	mu            sync.RWMutex
	professionals []identity.Professional
	byProfID      map[string]identity.Professional
	patients      map[string]identity.Patient
}

func NewCache(remote Remote, logger zerolog.Logger) *Cache {
	return &Cache{
		remote:   remote,
		logger:   logger,
		byProfID: make(map[string]identity.Professional),
		patients: make(map[string]identity.Patient),
	}
}

// Load fills the side of the directory the given identity needs.
func (c *Cache) Load(ctx context.Context, ident identity.Identity) error {
	switch ident.Role {
	case identity.RolePatient:
		_, err := c.LoadProfessionals(ctx)
		return err
	case identity.RoleProfessional:
		var ids []string
		if ident.Professional != nil {
			ids = ident.Professional.PatientIDs
		}
		_, err := c.LoadPatients(ctx, ids)
		return err
	}
	return fmt.Errorf("%w: %q", identity.ErrInvalidRole, ident.Role)
}

// LoadProfessionals replaces the roster. Entries without an id are dropped.
// On failure the previous roster is kept.
func (c *Cache) LoadProfessionals(ctx context.Context) ([]identity.Professional, error) {
	list, err := c.remote.ListProfessionals(ctx)
	if err != nil {
		return nil, fmt.Errorf("load professionals: %w", err)
	}

	valid := lo.Filter(list, func(p identity.Professional, _ int) bool { return p.ID != "" })
	if dropped := len(list) - len(valid); dropped > 0 {
		c.logger.Warn().Int("dropped", dropped).Msg("professionals without id ignored")
	}

	c.mu.Lock()
	c.professionals = valid
	c.byProfID = lo.KeyBy(valid, func(p identity.Professional) string { return p.ID })
	c.mu.Unlock()

	c.logger.Debug().Int("count", len(valid)).Msg("professionals loaded")
	return append([]identity.Professional(nil), valid...), nil
}

// LoadPatients fetches the given patients concurrently and adds them to the
// cache. Individual failures are skipped; they are returned joined so the
// caller can report them, alongside the patients that did load.
func (c *Cache) LoadPatients(ctx context.Context, ids []string) ([]identity.Patient, error) {
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return []identity.Patient{}, nil
	}

	var (
		mu       sync.Mutex
		loaded   []identity.Patient
		failures []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPatientFetches)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			p, err := c.remote.GetPatient(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, fmt.Errorf("patient %s: %w", id, err))
				return nil
			}
			if p.ID == "" {
				p.ID = id
			}
			loaded = append(loaded, p)
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	for _, p := range loaded {
		c.patients[p.ID] = p
	}
	c.mu.Unlock()

	if len(failures) > 0 {
		c.logger.Warn().Int("failed", len(failures)).Int("loaded", len(loaded)).Msg("some patients could not be loaded")
		return loaded, errors.Join(failures...)
	}
	return loaded, nil
}

// Professionals returns the roster in the order the service returned it.
func (c *Cache) Professionals() []identity.Professional {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]identity.Professional(nil), c.professionals...)
}

// Professional is a pure lookup; it never touches the network.
func (c *Cache) Professional(id string) (identity.Professional, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.byProfID[id]
	return p, ok
}

// Patient is a pure lookup; it never touches the network.
func (c *Cache) Patient(id string) (identity.Patient, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.patients[id]
	return p, ok
}

// MissingPatients returns the ids not yet present in the cache.
func (c *Cache) MissingPatients(ids []string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Filter(lo.Uniq(lo.Compact(ids)), func(id string, _ int) bool {
		_, ok := c.patients[id]
		return !ok
	})
}
