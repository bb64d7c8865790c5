package mockapi

import (
	"fmt"
	"time"

	"github.com/vidasana/turnos/internal/domain/identity"
	"github.com/vidasana/turnos/internal/domain/turno"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "vidasana"

// Seed loads the demo roster: one professional, three patients and a few
// appointments around now.
func Seed(s *Store, now time.Time, password string) error {
	if password == "" {
		password = DefaultPassword
	}

	prof := identity.Professional{
		ID:         "prof-1",
		FirstName:  "Dra. María",
		LastName:   "González",
		Specialty:  "Medicina General",
		Email:      "maria.gonzalez@vidasana.test",
		PatientIDs: []string{"1", "2", "3"},
		Active:     true,
	}
	if _, err := s.AddProfessional(prof, password); err != nil {
		return fmt.Errorf("seed professional: %w", err)
	}
	if _, err := s.AddProfessional(identity.Professional{
		ID:         "prof-2",
		FirstName:  "Dr. Pablo",
		LastName:   "Méndez",
		Specialty:  "Cardiología",
		Email:      "pablo.mendez@vidasana.test",
		PatientIDs: []string{},
		Active:     true,
	}, password); err != nil {
		return fmt.Errorf("seed professional: %w", err)
	}

	patients := []identity.Patient{
		{
			ID:        "1",
			FirstName: "Juan",
			LastName:  "Pérez",
			DNI:       "12345678",
			Email:     "juan.perez@vidasana.test",
			BirthDate: "1985-03-12",
			Contact:   &identity.Contact{Email: "juan.perez@vidasana.test", Phone: "+54 11 5555-0101"},
			ClinicalHistory: []identity.ClinicalRecord{
				{Date: "2024-01-15", Diagnosis: "Consulta general", Treatment: "Reposo y medicación"},
			},
			AssignedProfessional: "prof-1",
		},
		{ID: "2", FirstName: "Ana", LastName: "García", DNI: "23456789", Email: "ana.garcia@vidasana.test", AssignedProfessional: "prof-1"},
		{ID: "3", FirstName: "Carlos", LastName: "Rodríguez", DNI: "34567890", Email: "carlos.rodriguez@vidasana.test", AssignedProfessional: "prof-1"},
	}
	for _, p := range patients {
		if _, err := s.AddPatient(p, password); err != nil {
			return fmt.Errorf("seed patient %s: %w", p.ID, err)
		}
	}

	y, m, d := now.Date()
	day := func(offset, hour, minute int) turno.LocalDateTime {
		return turno.NewLocalDateTime(y, m, d+offset, hour, minute)
	}
	for _, t := range []turno.Turno{
		{ID: "t-1", PatientID: "1", ProfessionalID: "prof-1", Fecha: day(0, 9, 0), Reason: "Consulta general", Status: turno.StatusPending},
		{ID: "t-2", PatientID: "2", ProfessionalID: "prof-1", Fecha: day(0, 10, 30), Reason: "Control de presión", Status: turno.StatusConfirmed},
		{ID: "t-3", PatientID: "3", ProfessionalID: "prof-1", Fecha: day(1, 11, 0), Reason: "Resultados de estudios", Status: turno.StatusPending},
		{ID: "t-4", PatientID: "1", ProfessionalID: "prof-1", Fecha: day(-7, 16, 0), Reason: "Control", Status: turno.StatusCompleted, ReminderSent: true},
	} {
		s.PutTurno(t)
	}
	return nil
}
