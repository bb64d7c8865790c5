package directory

import (
	"context"
	"net/url"

	"github.com/vidasana/turnos/internal/domain/identity"
	"github.com/vidasana/turnos/internal/platform/apiclient"
)

// RESTRemote reads the directory from GET /profesionales and GET /pacientes/{id}.
type RESTRemote struct {
	client *apiclient.Client
}

func NewRESTRemote(client *apiclient.Client) *RESTRemote {
	return &RESTRemote{client: client}
}

func (r *RESTRemote) ListProfessionals(ctx context.Context) ([]identity.Professional, error) {
	var list []identity.Professional
	if err := r.client.Get(ctx, "/profesionales", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *RESTRemote) GetPatient(ctx context.Context, id string) (identity.Patient, error) {
	var p identity.Patient
	if err := r.client.Get(ctx, "/pacientes/"+url.PathEscape(id), &p); err != nil {
		return identity.Patient{}, err
	}
	return p, nil
}
