package turno

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/vidasana/turnos/internal/platform/apiclient"
)

func seedTurnos() []Turno {
	return []Turno{
		{ID: "t1", PatientID: "1", ProfessionalID: "prof-1", Fecha: at(2025, 6, 1, 10, 0), Reason: "Control", Status: StatusPending},
		{ID: "t2", PatientID: "1", ProfessionalID: "prof-2", Fecha: at(2025, 6, 2, 11, 30), Reason: "Presión", Status: StatusConfirmed},
		{ID: "t3", PatientID: "2", ProfessionalID: "prof-1", Fecha: at(2025, 6, 3, 9, 0), Reason: "Estudios", Status: StatusPending},
	}
}

func TestRepository_LoadScopesByPatient(t *testing.T) {
	repo := NewRepository(newMockRemote(seedTurnos()...), zerolog.Nop())

	list, err := repo.Load(context.Background(), PatientScope("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 turnos, got %d", len(list))
	}
	if repo.Scope() != PatientScope("1") {
		t.Errorf("unexpected scope %+v", repo.Scope())
	}
}

func TestRepository_LoadScopesByProfessional(t *testing.T) {
	repo := NewRepository(newMockRemote(seedTurnos()...), zerolog.Nop())

	list, err := repo.Load(context.Background(), ProfessionalScope("prof-1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "t1" || list[1].ID != "t3" {
		t.Errorf("unexpected list: %+v", list)
	}
}

func TestRepository_LoadDropsRecordsWithoutID(t *testing.T) {
	remote := newMockRemote(seedTurnos()...)
	remote.turnos[""] = Turno{PatientID: "1", Status: StatusPending}
	repo := NewRepository(remote, zerolog.Nop())

	list, err := repo.Load(context.Background(), PatientScope("1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("expected malformed record filtered, got %d", len(list))
	}
}

func TestRepository_LoadRejectsAmbiguousScope(t *testing.T) {
	repo := NewRepository(newMockRemote(), zerolog.Nop())
	if _, err := repo.Load(context.Background(), Scope{}); !errors.Is(err, ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope, got %v", err)
	}
	if _, err := repo.Load(context.Background(), Scope{PatientID: "1", ProfessionalID: "p"}); !errors.Is(err, ErrInvalidScope) {
		t.Errorf("expected ErrInvalidScope, got %v", err)
	}
}

func TestRepository_LoadFailureDegradesToEmpty(t *testing.T) {
	remote := newMockRemote(seedTurnos()...)
	repo := NewRepository(remote, zerolog.Nop())
	if _, err := repo.Load(context.Background(), PatientScope("1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	remote.listErr = &apiclient.StatusError{Method: http.MethodGet, Path: "/turnos/paciente/1", StatusCode: http.StatusInternalServerError}
	list, err := repo.Load(context.Background(), PatientScope("1"))

	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if !apiclient.IsStatus(err, http.StatusInternalServerError) {
		t.Errorf("expected wrapped status error, got %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", list)
	}
	if len(repo.Snapshot()) != 0 {
		t.Error("expected cache cleared, stale list kept")
	}
}

func TestRepository_CreateSendsPendingAndReloads(t *testing.T) {
	remote := newMockRemote()
	repo := NewRepository(remote, zerolog.Nop())
	if _, err := repo.Load(context.Background(), PatientScope("1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	callsBefore := remote.listCalls

	created, err := repo.Create(context.Background(), Draft{
		PatientID:      "1",
		ProfessionalID: "prof-1",
		Date:           NewCalendarDate(2025, time.June, 1),
		Time:           "14:30",
		Reason:         "  Consulta general ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(remote.created) != 1 {
		t.Fatalf("expected one create call, got %d", len(remote.created))
	}
	sent := remote.created[0]
	if sent.Status != StatusPending || sent.ReminderSent {
		t.Errorf("expected estado pendiente and recordatorio_enviado false, got %+v", sent)
	}
	if sent.Reason != "Consulta general" || sent.ProfessionalID != "prof-1" || sent.PatientID != "1" {
		t.Errorf("unexpected payload: %+v", sent)
	}
	if got := sent.Fecha.Format(DisplayLayout); got != "2025-06-01 14:30" {
		t.Errorf("expected fecha 2025-06-01 14:30, got %s", got)
	}

	if remote.listCalls != callsBefore+1 {
		t.Errorf("expected one reload, got %d", remote.listCalls-callsBefore)
	}
	snap := repo.Snapshot()
	if len(snap) != 1 || snap[0].ID != "srv-1" || snap[0].Status != StatusPending {
		t.Errorf("expected reloaded list with server id, got %+v", snap)
	}
	if created.ID != "srv-1" || created.Reason != "Consulta general" {
		t.Errorf("expected full record from reload, got %+v", created)
	}
}

func TestRepository_CreateValidationReportsAllFields(t *testing.T) {
	remote := newMockRemote()
	repo := NewRepository(remote, zerolog.Nop())

	_, err := repo.Create(context.Background(), Draft{PatientID: "1", Reason: "   "})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	want := []string{FieldProfessional, FieldDate, FieldTime, FieldReason}
	if !reflect.DeepEqual(verr.Fields, want) {
		t.Errorf("expected %v, got %v", want, verr.Fields)
	}
	if len(remote.created) != 0 || remote.listCalls != 0 {
		t.Error("expected no network calls on validation failure")
	}
}

func TestRepository_CreateRejectsMalformedTime(t *testing.T) {
	repo := NewRepository(newMockRemote(), zerolog.Nop())
	_, err := repo.Create(context.Background(), Draft{
		PatientID: "1", ProfessionalID: "prof-1", Date: NewCalendarDate(2025, 6, 1), Time: "25:99", Reason: "x",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) || !verr.Has(FieldTime) || len(verr.Fields) != 1 {
		t.Errorf("expected hora validation error, got %v", err)
	}
}

func TestRepository_CreateRejectedKeepsCache(t *testing.T) {
	remote := newMockRemote(seedTurnos()...)
	repo := NewRepository(remote, zerolog.Nop())
	if _, err := repo.Load(context.Background(), PatientScope("1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := repo.Snapshot()
	remote.createErr = &apiclient.StatusError{StatusCode: http.StatusConflict, Body: "horario ocupado"}

	_, err := repo.Create(context.Background(), Draft{
		PatientID: "1", ProfessionalID: "prof-1", Date: NewCalendarDate(2025, 6, 1), Time: "14:30", Reason: "x",
	})
	var merr *MutationError
	if !errors.As(err, &merr) || merr.Op != "create" {
		t.Fatalf("expected create MutationError, got %v", err)
	}
	if !reflect.DeepEqual(before, repo.Snapshot()) {
		t.Error("expected cache unchanged after rejected create")
	}
}

func TestRepository_CreateReloadFailureReturnsCreated(t *testing.T) {
	remote := newMockRemote()
	remote.failReload = true
	repo := NewRepository(remote, zerolog.Nop())

	created, err := repo.Create(context.Background(), Draft{
		PatientID: "1", ProfessionalID: "prof-1", Date: NewCalendarDate(2025, 6, 1), Time: "14:30", Reason: "x",
	})
	if !IsLoadError(err) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if created.ID != "srv-1" {
		t.Errorf("expected created turno returned, got %+v", created)
	}
}

func TestRepository_PatchIsLocal(t *testing.T) {
	remote := newMockRemote(seedTurnos()...)
	repo := NewRepository(remote, zerolog.Nop())
	if _, err := repo.Load(context.Background(), ProfessionalScope("prof-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := repo.Snapshot()
	callsBefore := remote.listCalls

	updated, err := repo.Patch(context.Background(), "t1", Update{Status: StatusConfirmed})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != StatusConfirmed {
		t.Errorf("expected confirmado, got %s", updated.Status)
	}
	if remote.listCalls != callsBefore {
		t.Error("patch must not reload the list")
	}

	after := repo.Snapshot()
	if len(after) != len(before) {
		t.Fatalf("list length changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		want := before[i]
		if want.ID == "t1" {
			want.Status = StatusConfirmed
		}
		if !reflect.DeepEqual(want, after[i]) {
			t.Errorf("record %s changed beyond estado:\nwant %+v\ngot  %+v", want.ID, want, after[i])
		}
	}
}

func TestRepository_PatchFailureKeepsCache(t *testing.T) {
	remote := newMockRemote(seedTurnos()...)
	repo := NewRepository(remote, zerolog.Nop())
	if _, err := repo.Load(context.Background(), ProfessionalScope("prof-1")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := repo.Snapshot()
	remote.updateErr = fmt.Errorf("connection reset")

	_, err := repo.Patch(context.Background(), "t1", Update{Status: StatusCancelled})
	var merr *MutationError
	if !errors.As(err, &merr) || merr.Op != "update" {
		t.Fatalf("expected update MutationError, got %v", err)
	}
	if !reflect.DeepEqual(before, repo.Snapshot()) {
		t.Error("expected cache unchanged after failed patch")
	}
}

func TestRepository_PatchRejectsUnknownStatus(t *testing.T) {
	remote := newMockRemote(seedTurnos()...)
	repo := NewRepository(remote, zerolog.Nop())
	_, err := repo.Patch(context.Background(), "t1", Update{Status: "archivado"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(remote.patches) != 0 {
		t.Error("expected no network call")
	}
}

func TestRESTRemote_NormalizesSingleObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/turnos/profesional/prof-1":
			_, _ = w.Write([]byte(`{"_id":"t1","paciente_id":"1","profesional_id":"prof-1","fecha":"2025-06-01T14:30:00","motivo":"Consulta general","estado":"pendiente","recordatorio_enviado":false}`))
		case "/turnos/paciente/1":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	remote := NewRESTRemote(apiclient.New(srv.URL))

	list, err := remote.ListByProfessional(context.Background(), "prof-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].ID != "t1" || list[0].Fecha.Format(DisplayLayout) != "2025-06-01 14:30" {
		t.Errorf("unexpected list: %+v", list)
	}

	repo := NewRepository(remote, zerolog.Nop())
	got, err := repo.Load(context.Background(), PatientScope("1"))
	if !IsLoadError(err) || len(got) != 0 {
		t.Errorf("expected degraded empty list with LoadError, got %v / %v", got, err)
	}
}
