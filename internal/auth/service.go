package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/parlorchat/parlor-server/internal/store"
)

// ErrInvalidName is returned when a login name doesn't meet constraints.
var ErrInvalidName = errors.New("invalid name")

// Service provides name-based identity: logging in with an unknown name
// creates the user, logging in with a known name resumes that identity.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new identity service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// LoginOrCreate resolves a display name to a user, creating one on first
// login, and returns the user with an API token.
func (s *Service) LoginOrCreate(ctx context.Context, name string) (*store.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 32 {
		return nil, "", ErrInvalidName
	}

	user, err := s.store.GetUserByName(ctx, name)
	if errors.Is(err, store.ErrNotFound) {
		user, err = s.store.CreateUser(ctx, uuid.NewString(), name)
	}
	if err != nil {
		return nil, "", fmt.Errorf("resolve user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user.ID, user.Name)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}
