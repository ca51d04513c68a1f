package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sumire/saju-auth/internal/domain"
)

// UserStore defines the user directory consumed by the login flow.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Save(ctx context.Context, user domain.User) (*domain.User, error)
}

// UserService provisions local users from provider profiles.
type UserService struct {
	users    UserStore
	profiles *ProfileExtractor
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore, profiles *ProfileExtractor) *UserService {
	return &UserService{users: users, profiles: profiles}
}

// Ingest finds or creates the user behind a provider payload and saves it.
//
// A returning user keeps its ID, username and role; email, name and provider
// fields are overwritten with the values from this login. The save happens on
// every call, so the stored row always reflects the latest payload.
func (s *UserService) Ingest(ctx context.Context, registrationID string, attributes map[string]any) (*domain.User, error) {
	profile, err := s.profiles.Extract(registrationID, attributes)
	if err != nil {
		return nil, err
	}

	username := profile.Username()
	user, err := s.users.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		user = &domain.User{
			Username: username,
			Role:     domain.RoleUser,
		}
	case err != nil:
		return nil, fmt.Errorf("look up %s: %w", username, err)
	}

	user.Email = profile.Email
	user.Name = profile.Name
	user.Provider = profile.Provider
	user.ProviderID = profile.ProviderID

	saved, err := s.users.Save(ctx, *user)
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", username, err)
	}

	slog.Info("user ingested",
		"username", saved.Username,
		"user_id", saved.ID,
		"created", user.ID == 0,
	)
	return saved, nil
}

// GetUser retrieves a user by username.
func (s *UserService) GetUser(ctx context.Context, username string) (*domain.User, error) {
	return s.users.FindByUsername(ctx, username)
}
