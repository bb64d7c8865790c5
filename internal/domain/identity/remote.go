package identity

import (
	"context"

	"github.com/vidasana/turnos/internal/platform/apiclient"
)

// RESTRemote implements Remote over the /auth endpoints.
type RESTRemote struct {
	client *apiclient.Client
}

func NewRESTRemote(client *apiclient.Client) *RESTRemote {
	return &RESTRemote{client: client}
}

func (r *RESTRemote) Login(ctx context.Context, creds Credentials) (Identity, error) {
	var ident Identity
	if err := r.client.Post(ctx, "/auth/login", creds, &ident); err != nil {
		return Identity{}, err
	}
	return ident, nil
}

func (r *RESTRemote) Register(ctx context.Context, draft Draft) (Identity, error) {
	var ident Identity
	if err := r.client.Post(ctx, "/auth/register", draft, &ident); err != nil {
		return Identity{}, err
	}
	return ident, nil
}
