package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sumire/saju-auth/internal/domain"
	"github.com/sumire/saju-auth/internal/metrics"
)

// LoginRecorder receives login outcome measurements.
type LoginRecorder interface {
	RecordLogin(provider, outcome string)
	RecordTokenIssued()
}

// Authenticator performs the provider side of an OAuth2 login.
type Authenticator interface {
	AuthCodeURL(registrationID, state string) (string, error)
	Authenticate(ctx context.Context, registrationID, code string) (domain.Principal, error)
}

// AuthConfig holds login flow settings.
type AuthConfig struct {
	// DefaultProvider is used when the authentication context carries no registration id.
	DefaultProvider string
}

// AuthService runs the social login flow: authenticate, ingest, issue.
type AuthService struct {
	providers Authenticator
	users     *UserService
	issuer    *RedirectIssuer
	tokens    *TokenProvider
	recorder  LoginRecorder
	config    AuthConfig
}

// NewAuthService creates a new AuthService. A nil recorder discards measurements.
func NewAuthService(providers Authenticator, users *UserService, issuer *RedirectIssuer, tokens *TokenProvider, recorder LoginRecorder, cfg AuthConfig) *AuthService {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &AuthService{
		providers: providers,
		users:     users,
		issuer:    issuer,
		tokens:    tokens,
		recorder:  recorder,
		config:    cfg,
	}
}

// AuthorizationURL returns the provider consent page for registrationID.
func (s *AuthService) AuthorizationURL(registrationID, state string) (string, error) {
	return s.providers.AuthCodeURL(s.ResolveRegistration(registrationID), state)
}

// ResolveRegistration returns registrationID, or the configured default when it is empty.
func (s *AuthService) ResolveRegistration(registrationID string) string {
	if registrationID != "" {
		return registrationID
	}
	return s.config.DefaultProvider
}

// CompleteLogin handles an OAuth2 callback and returns the frontend redirect URL.
func (s *AuthService) CompleteLogin(ctx context.Context, registrationID, code string) (string, error) {
	registrationID = s.ResolveRegistration(registrationID)

	principal, err := s.providers.Authenticate(ctx, registrationID, code)
	if err != nil {
		s.recorder.RecordLogin(registrationID, metrics.OutcomeProvider)
		if errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
	}

	target, _, err := s.Login(ctx, principal)
	return target, err
}

// Login provisions the principal's user and issues its token.
// Token claims come from the persisted user, not from the raw payload.
func (s *AuthService) Login(ctx context.Context, principal domain.Principal) (string, *domain.User, error) {
	registrationID := s.ResolveRegistration(principal.RegistrationID)

	user, err := s.users.Ingest(ctx, registrationID, principal.Attributes)
	if err != nil {
		if errors.Is(err, domain.ErrMalformedProfile) {
			s.recorder.RecordLogin(registrationID, metrics.OutcomeMalformedProfile)
			slog.Warn("rejected provider profile", "provider", registrationID, "error", err)
			return "", nil, fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
		}
		s.recorder.RecordLogin(registrationID, metrics.OutcomeStorage)
		return "", nil, fmt.Errorf("ingest %s profile: %w", registrationID, err)
	}

	target, err := s.issuer.IssueAndRedirect(user)
	if err != nil {
		s.recorder.RecordLogin(registrationID, metrics.OutcomeTokenSigning)
		slog.Error("token issuance failed", "username", user.Username, "error", err)
		return "", nil, fmt.Errorf("%w: %w", domain.ErrAuthenticationFailed, err)
	}

	s.recorder.RecordTokenIssued()
	s.recorder.RecordLogin(registrationID, metrics.OutcomeSuccess)
	return target, user, nil
}

// User retrieves a user by username.
func (s *AuthService) User(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetUser(ctx, username)
}

// ValidateToken verifies a bearer token and returns its claims.
func (s *AuthService) ValidateToken(token string) (*Claims, error) {
	return s.tokens.ParseToken(token)
}
