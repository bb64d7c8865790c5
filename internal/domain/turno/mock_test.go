package turno

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vidasana/turnos/internal/domain/identity"
)

// -- Mock Remote --

type mockRemote struct {
	mu      sync.Mutex
	turnos  map[string]Turno
	nextID  int
	created []Turno
	patches []Update

	listCalls  int
	listErr    error
	createErr  error
	updateErr  error
	failReload bool
}

func newMockRemote(seed ...Turno) *mockRemote {
	m := &mockRemote{turnos: make(map[string]Turno)}
	for _, t := range seed {
		m.turnos[t.ID] = t
	}
	return m
}

func (m *mockRemote) list(match func(Turno) bool) ([]Turno, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	if m.failReload && len(m.created) > 0 {
		return nil, fmt.Errorf("status 503")
	}
	var out []Turno
	for _, t := range m.turnos {
		if match(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRemote) ListByPatient(_ context.Context, patientID string) ([]Turno, error) {
	return m.list(func(t Turno) bool { return t.PatientID == patientID })
}

func (m *mockRemote) ListByProfessional(_ context.Context, professionalID string) ([]Turno, error) {
	return m.list(func(t Turno) bool { return t.ProfessionalID == professionalID })
}

func (m *mockRemote) Create(_ context.Context, t Turno) (Turno, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return Turno{}, m.createErr
	}
	m.created = append(m.created, t)
	m.nextID++
	t.ID = fmt.Sprintf("srv-%d", m.nextID)
	m.turnos[t.ID] = t
	// The service does not echo the full record back.
	return Turno{ID: t.ID}, nil
}

func (m *mockRemote) UpdateStatus(_ context.Context, id string, status Status) (Turno, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return Turno{}, m.updateErr
	}
	m.patches = append(m.patches, Update{Status: status})
	t, ok := m.turnos[id]
	if !ok {
		return Turno{}, fmt.Errorf("not found")
	}
	t.Status = status
	// The service may touch other fields; the client must ignore them.
	t.ReminderSent = true
	m.turnos[id] = t
	return t, nil
}

// -- Mock Directory --

type mockDirectory struct {
	professionals map[string]identity.Professional
	patients      map[string]identity.Patient
	remotePats    map[string]identity.Patient
	loadErr       error
	loadCalls     int
	patientLoads  [][]string
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		professionals: make(map[string]identity.Professional),
		patients:      make(map[string]identity.Patient),
		remotePats:    make(map[string]identity.Patient),
	}
}

func (d *mockDirectory) Professional(id string) (identity.Professional, bool) {
	p, ok := d.professionals[id]
	return p, ok
}

func (d *mockDirectory) Patient(id string) (identity.Patient, bool) {
	p, ok := d.patients[id]
	return p, ok
}

func (d *mockDirectory) Load(_ context.Context, _ identity.Identity) error {
	d.loadCalls++
	return d.loadErr
}

func (d *mockDirectory) MissingPatients(ids []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, id := range ids {
		if _, ok := d.patients[id]; !ok && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func (d *mockDirectory) LoadPatients(_ context.Context, ids []string) ([]identity.Patient, error) {
	d.patientLoads = append(d.patientLoads, ids)
	var out []identity.Patient
	for _, id := range ids {
		if p, ok := d.remotePats[id]; ok {
			d.patients[id] = p
			out = append(out, p)
		}
	}
	return out, nil
}

// -- Fixtures --

func patientIdent() identity.Identity {
	return identity.NewPatientIdentity(identity.Patient{ID: "1", FirstName: "Juan", LastName: "Pérez", DNI: "12345678"}, "")
}

func professionalIdent() identity.Identity {
	return identity.NewProfessionalIdentity(identity.Professional{
		ID: "prof-1", FirstName: "Dra. María", LastName: "González", PatientIDs: []string{"1", "2"},
	}, "")
}

func at(y int, m time.Month, d, hh, mm int) LocalDateTime {
	return NewLocalDateTime(y, m, d, hh, mm)
}

func fixedNow(y int, m time.Month, d, hh, mm int) func() time.Time {
	return func() time.Time { return time.Date(y, m, d, hh, mm, 0, 0, time.Local) }
}
