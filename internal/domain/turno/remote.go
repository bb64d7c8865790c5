package turno

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/vidasana/turnos/internal/platform/apiclient"
)

// RESTRemote implements Remote over the /turnos endpoints.
type RESTRemote struct {
	client *apiclient.Client
}

func NewRESTRemote(client *apiclient.Client) *RESTRemote {
	return &RESTRemote{client: client}
}

func (r *RESTRemote) ListByPatient(ctx context.Context, patientID string) ([]Turno, error) {
	return r.list(ctx, "/turnos/paciente/"+url.PathEscape(patientID))
}

// ListByProfessional normalizes a single-object answer to a one-element list.
func (r *RESTRemote) ListByProfessional(ctx context.Context, professionalID string) ([]Turno, error) {
	return r.list(ctx, "/turnos/profesional/"+url.PathEscape(professionalID))
}

func (r *RESTRemote) list(ctx context.Context, path string) ([]Turno, error) {
	var raw json.RawMessage
	if err := r.client.Get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return apiclient.DecodeOneOrMany[Turno](raw)
}

func (r *RESTRemote) Create(ctx context.Context, t Turno) (Turno, error) {
	t.ID = ""
	var created Turno
	if err := r.client.Post(ctx, "/turnos", t, &created); err != nil {
		return Turno{}, err
	}
	return created, nil
}

func (r *RESTRemote) UpdateStatus(ctx context.Context, id string, status Status) (Turno, error) {
	var updated Turno
	if err := r.client.Put(ctx, "/turnos/"+url.PathEscape(id), Update{Status: status}, &updated); err != nil {
		return Turno{}, err
	}
	return updated, nil
}
