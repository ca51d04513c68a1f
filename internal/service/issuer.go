package service

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/sumire/saju-auth/internal/domain"
)

// RedirectPath is the frontend route that receives issued tokens.
const RedirectPath = "/oauth2/redirect"

// TokenCreator signs bearer tokens.
type TokenCreator interface {
	CreateToken(subject string, role domain.Role) (string, error)
}

// RedirectIssuer mints a token for a persisted user and points the browser at the frontend.
type RedirectIssuer struct {
	tokens   TokenCreator
	frontend *url.URL
}

// NewRedirectIssuer creates a new RedirectIssuer for the given frontend origin.
func NewRedirectIssuer(tokens TokenCreator, frontendURL string) (*RedirectIssuer, error) {
	frontend, err := url.Parse(frontendURL)
	if err != nil {
		return nil, fmt.Errorf("parse frontend url: %w", err)
	}
	if frontend.Scheme == "" || frontend.Host == "" {
		return nil, fmt.Errorf("frontend url %q must be absolute", frontendURL)
	}
	return &RedirectIssuer{tokens: tokens, frontend: frontend}, nil
}

// IssueAndRedirect signs a token from the user's username and role and
// returns <frontend>/oauth2/redirect?token=<token>.
func (i *RedirectIssuer) IssueAndRedirect(user *domain.User) (string, error) {
	if user == nil || user.Username == "" {
		return "", errors.New("issue token: user has no username")
	}

	token, err := i.tokens.CreateToken(user.Username, user.Role)
	if err != nil {
		if !errors.Is(err, domain.ErrTokenSigning) {
			err = fmt.Errorf("%w: %w", domain.ErrTokenSigning, err)
		}
		return "", err
	}

	target := i.frontend.JoinPath(RedirectPath)
	target.RawQuery = url.Values{"token": {token}}.Encode()
	target.Fragment = ""
	return target.String(), nil
}
