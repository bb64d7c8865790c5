package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/vidasana/turnos/internal/platform/kvstore"
)

// SessionKey is the storage key of the persisted identity.
const SessionKey = "user"

// Session holds the active identity and persists it as one opaque record.
type Session struct {
	store  kvstore.Store
	logger zerolog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	current *Identity
}

func NewSession(store kvstore.Store, logger zerolog.Logger) *Session {
	return &Session{store: store, logger: logger, now: time.Now}
}

// Load reads the persisted identity. Unreadable records and identities whose
// token has expired are removed and reported as ErrNoSession.
func (s *Session) Load(ctx context.Context) (Identity, error) {
	raw, err := s.store.Get(ctx, SessionKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		s.set(nil)
		return Identity{}, ErrNoSession
	}
	if err != nil {
		return Identity{}, fmt.Errorf("read session: %w", err)
	}

	var ident Identity
	if err := json.Unmarshal(raw, &ident); err != nil {
		s.logger.Warn().Err(err).Msg("discarding unreadable session record")
		return Identity{}, s.drop(ctx)
	}
	if err := ident.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("discarding invalid session record")
		return Identity{}, s.drop(ctx)
	}
	if tokenExpired(ident.Token, s.now()) {
		s.logger.Info().Str("user_id", ident.ID).Msg("session token expired")
		return Identity{}, s.drop(ctx)
	}

	s.set(&ident)
	return ident, nil
}

// Current returns the identity loaded or saved last.
func (s *Session) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}

func (s *Session) Save(ctx context.Context, ident Identity) error {
	if err := ident.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(ident)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.store.Set(ctx, SessionKey, raw); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.set(&ident)
	return nil
}

func (s *Session) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.set(nil)
	return nil
}

func (s *Session) drop(ctx context.Context) error {
	if err := s.Clear(ctx); err != nil {
		return err
	}
	return ErrNoSession
}

func (s *Session) set(ident *Identity) {
	s.mu.Lock()
	s.current = ident
	s.mu.Unlock()
}

// tokenExpired reports whether token is a JWT whose exp claim has passed.
// Opaque tokens never expire client-side.
func tokenExpired(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}
