package turno

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/vidasana/turnos/internal/domain/identity"
)

// Resolver looks up counterparties without network access.
type Resolver interface {
	Professional(id string) (identity.Professional, bool)
	Patient(id string) (identity.Patient, bool)
}

// Row is one display-ready appointment.
type Row struct {
	ID             string
	CounterpartyID string
	// Counterparty is "{nombre} {apellido}" or "ID: {id}" when unresolved.
	Counterparty string
	Fecha        LocalDateTime
	Reason       string
	Status       Status
	// Actions lists the target states the UI may offer for this row.
	Actions []Status
}

// View is the projection rendered by a dashboard.
type View struct {
	Rows         []Row
	TodayCount   int
	PendingCount int
}

// Project joins appointments with the directory. It performs no I/O and
// does not mutate its inputs; dir may be nil.
func Project(turnos []Turno, dir Resolver, role identity.Role, now time.Time) View {
	today := Today(now)

	rows := lo.Map(turnos, func(t Turno, _ int) Row {
		counterpartyID := t.ProfessionalID
		if role == identity.RoleProfessional {
			counterpartyID = t.PatientID
		}
		row := Row{
			ID:             t.ID,
			CounterpartyID: counterpartyID,
			Counterparty:   displayName(dir, role, counterpartyID),
			Fecha:          t.Fecha,
			Reason:         t.Reason,
			Status:         t.Status,
		}
		if role == identity.RoleProfessional {
			row.Actions = AllowedTransitions(t.Status)
		}
		return row
	})
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Fecha.Equal(rows[j].Fecha) {
			return rows[i].Fecha.Before(rows[j].Fecha)
		}
		return rows[i].ID < rows[j].ID
	})

	return View{
		Rows:         rows,
		TodayCount:   lo.CountBy(turnos, func(t Turno) bool { return !t.Fecha.IsZero() && t.Fecha.Date() == today }),
		PendingCount: lo.CountBy(turnos, func(t Turno) bool { return t.Status == StatusPending }),
	}
}

func displayName(dir Resolver, role identity.Role, id string) string {
	if dir != nil && id != "" {
		if role == identity.RoleProfessional {
			if p, ok := dir.Patient(id); ok && p.FullName() != "" {
				return p.FullName()
			}
		} else if p, ok := dir.Professional(id); ok && p.FullName() != "" {
			return p.FullName()
		}
	}
	return "ID: " + id
}

// AllowedTransitions returns the states a professional may move s to.
// Only pending appointments can change.
func AllowedTransitions(s Status) []Status {
	if s != StatusPending {
		return nil
	}
	return []Status{StatusConfirmed, StatusCancelled}
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to Status) bool {
	return lo.Contains(AllowedTransitions(from), to)
}
