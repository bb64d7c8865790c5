package identity

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Remote authenticates against the VidaSana service.
type Remote interface {
	Login(ctx context.Context, creds Credentials) (Identity, error)
	Register(ctx context.Context, draft Draft) (Identity, error)
}

// TokenSetter receives the bearer token of the active session.
type TokenSetter interface {
	SetToken(token string)
}

type Service struct {
	remote  Remote
	session *Session
	tokens  TokenSetter
	logger  zerolog.Logger
}

func NewService(remote Remote, session *Session, tokens TokenSetter, logger zerolog.Logger) *Service {
	return &Service{remote: remote, session: session, tokens: tokens, logger: logger}
}

// Restore loads the persisted session, if any, and installs its token.
func (s *Service) Restore(ctx context.Context) (Identity, error) {
	ident, err := s.session.Load(ctx)
	if err != nil {
		s.tokens.SetToken("")
		return Identity{}, err
	}
	s.tokens.SetToken(ident.Token)
	return ident, nil
}

func (s *Service) Login(ctx context.Context, creds Credentials) (Identity, error) {
	if err := creds.Validate(); err != nil {
		return Identity{}, err
	}
	ident, err := s.remote.Login(ctx, creds)
	if err != nil {
		return Identity{}, fmt.Errorf("login: %w", err)
	}
	if ident.Role != creds.Role {
		return Identity{}, fmt.Errorf("login: %w: expected %s, got %s", ErrInvalidRole, creds.Role, ident.Role)
	}
	if err := s.start(ctx, ident); err != nil {
		return Identity{}, err
	}
	s.logger.Info().Str("user_id", ident.ID).Str("role", string(ident.Role)).Msg("logged in")
	return ident, nil
}

func (s *Service) Register(ctx context.Context, draft Draft) (Identity, error) {
	if draft == nil {
		return Identity{}, fmt.Errorf("registration draft is required")
	}
	ident, err := s.remote.Register(ctx, draft)
	if err != nil {
		return Identity{}, fmt.Errorf("register: %w", err)
	}
	if err := s.start(ctx, ident); err != nil {
		return Identity{}, err
	}
	s.logger.Info().Str("user_id", ident.ID).Str("role", string(ident.Role)).Msg("registered")
	return ident, nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	s.tokens.SetToken("")
	return nil
}

func (s *Service) start(ctx context.Context, ident Identity) error {
	if err := s.session.Save(ctx, ident); err != nil {
		return err
	}
	s.tokens.SetToken(ident.Token)
	return nil
}
