// Package mockapi is an in-memory stand-in for the VidaSana REST service.
// It serves the same contract the client consumes so the CLI can run
// without the real backend. Nothing is persisted.
package mockapi

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/vidasana/turnos/internal/domain/identity"
	"github.com/vidasana/turnos/internal/domain/turno"
)

var (
	ErrInvalidCredentials   = errors.New("credenciales incorrectas")
	ErrEmailTaken           = errors.New("email already registered")
	ErrPatientNotFound      = errors.New("paciente not found")
	ErrProfessionalNotFound = errors.New("profesional not found")
	ErrTurnoNotFound        = errors.New("turno not found")
	ErrInvalidTurno         = errors.New("invalid turno")
)

type account struct {
	id   string
	role identity.Role
	hash []byte
}

// Store keeps every resource in maps guarded by one mutex.
type Store struct {
	mu            sync.RWMutex
	accounts      map[string]account // key: role + "|" + lower(email)
	patients      map[string]identity.Patient
	professionals map[string]identity.Professional
	turnos        map[string]turno.Turno
	bcryptCost    int
}

func NewStore() *Store {
	return &Store{
		accounts:      make(map[string]account),
		patients:      make(map[string]identity.Patient),
		professionals: make(map[string]identity.Professional),
		turnos:        make(map[string]turno.Turno),
		bcryptCost:    bcrypt.DefaultCost,
	}
}

func accountKey(role identity.Role, email string) string {
	return string(role) + "|" + strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) addAccount(role identity.Role, email, password, id string) error {
	key := accountKey(role, email)
	if _, exists := s.accounts[key]; exists {
		return ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return err
	}
	s.accounts[key] = account{id: id, role: role, hash: hash}
	return nil
}

// AddPatient stores a patient with its login. An empty id gets a new one.
func (s *Store) AddPatient(p identity.Patient, password string) (identity.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := s.addAccount(identity.RolePatient, p.Email, password, p.ID); err != nil {
		return identity.Patient{}, err
	}
	s.patients[p.ID] = p
	return p, nil
}

// AddProfessional stores a professional with its login. An empty id gets a new one.
func (s *Store) AddProfessional(p identity.Professional, password string) (identity.Professional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if err := s.addAccount(identity.RoleProfessional, p.Email, password, p.ID); err != nil {
		return identity.Professional{}, err
	}
	s.professionals[p.ID] = p
	return p, nil
}

// Authenticate checks the password and returns the matching identity
// without a token.
func (s *Store) Authenticate(role identity.Role, email, password string) (identity.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[accountKey(role, email)]
	if !ok {
		return identity.Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return identity.Identity{}, ErrInvalidCredentials
	}
	return s.identityLocked(acc)
}

func (s *Store) identityLocked(acc account) (identity.Identity, error) {
	if acc.role == identity.RoleProfessional {
		p, ok := s.professionals[acc.id]
		if !ok {
			return identity.Identity{}, ErrProfessionalNotFound
		}
		return identity.NewProfessionalIdentity(p, ""), nil
	}
	p, ok := s.patients[acc.id]
	if !ok {
		return identity.Identity{}, ErrPatientNotFound
	}
	return identity.NewPatientIdentity(p, ""), nil
}

// Professionals returns the roster sorted by id.
func (s *Store) Professionals() []identity.Professional {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]identity.Professional, 0, len(s.professionals))
	for _, p := range s.professionals {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Patient(id string) (identity.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.patients[id]
	if !ok {
		return identity.Patient{}, ErrPatientNotFound
	}
	return p, nil
}

// TurnosFor lists appointments matching the filter, ordered by fecha.
func (s *Store) TurnosFor(match func(turno.Turno) bool) []turno.Turno {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []turno.Turno{}
	for _, t := range s.turnos {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Fecha.Equal(out[j].Fecha) {
			return out[i].Fecha.Before(out[j].Fecha)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CreateTurno assigns an id, forces the initial state and links the patient
// to the professional.
func (s *Store) CreateTurno(t turno.Turno) (turno.Turno, error) {
	if t.PatientID == "" || t.ProfessionalID == "" || t.Fecha.IsZero() {
		return turno.Turno{}, ErrInvalidTurno
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.patients[t.PatientID]; !ok {
		return turno.Turno{}, ErrPatientNotFound
	}
	prof, ok := s.professionals[t.ProfessionalID]
	if !ok {
		return turno.Turno{}, ErrProfessionalNotFound
	}

	t.ID = uuid.New().String()
	t.Status = turno.StatusPending
	t.ReminderSent = false
	s.turnos[t.ID] = t

	if !contains(prof.PatientIDs, t.PatientID) {
		prof.PatientIDs = append(append([]string(nil), prof.PatientIDs...), t.PatientID)
		s.professionals[prof.ID] = prof
	}
	return t, nil
}

// SetTurnoStatus replaces the estado of one appointment.
func (s *Store) SetTurnoStatus(id string, status turno.Status) (turno.Turno, error) {
	if !status.Valid() {
		return turno.Turno{}, ErrInvalidTurno
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.turnos[id]
	if !ok {
		return turno.Turno{}, ErrTurnoNotFound
	}
	t.Status = status
	s.turnos[id] = t
	return t, nil
}

// PutTurno stores t as-is. Used for seeding.
func (s *Store) PutTurno(t turno.Turno) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	s.turnos[t.ID] = t
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (s *Store) Turno(id string) (turno.Turno, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.turnos[id]
	if !ok {
		return turno.Turno{}, ErrTurnoNotFound
	}
	return t, nil
}
