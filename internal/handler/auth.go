package handler

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumire/saju-auth/internal/domain"
	"github.com/sumire/saju-auth/internal/service"
)

const stateCookieName = "oauth_state"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	auth          *service.AuthService
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler. secureCookies marks the state
// cookie Secure and should be set when the service is reached over https.
func NewAuthHandler(auth *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, secureCookies: secureCookies}
}

// callbackQuery is the query string a provider appends to the callback URL.
type callbackQuery struct {
	Code             string `query:"code" validate:"required"`
	State            string `query:"state" validate:"required"`
	Error            string `query:"error"`
	ErrorDescription string `query:"error_description"`
}

// Authorize redirects the user to the provider's consent page.
func (h *AuthHandler) Authorize(c echo.Context) error {
	state := rand.Text()
	target, err := h.auth.AuthorizationURL(c.Param("registrationId"), state)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

// Callback completes the OAuth flow and redirects the browser to the frontend with a token.
func (h *AuthHandler) Callback(c echo.Context) error {
	var q callbackQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if q.Error != "" {
		return fmt.Errorf("%w: provider returned %s: %s", domain.ErrAuthenticationFailed, q.Error, q.ErrorDescription)
	}
	if err := c.Validate(&q); err != nil {
		return err
	}
	if err := validateOAuthState(c, q.State); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	h.clearStateCookie(c)

	target, err := h.auth.CompleteLogin(c.Request().Context(), c.Param("registrationId"), q.Code)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, target)
}

// Me returns the currently authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	claims, ok := GetClaims(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	user, err := h.auth.User(c.Request().Context(), claims.Subject)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, user)
}

func validateOAuthState(c echo.Context, queryState string) error {
	cookie, err := c.Cookie(stateCookieName)
	if err != nil {
		return fmt.Errorf("missing %s cookie", stateCookieName)
	}
	if subtle.ConstantTimeCompare([]byte(queryState), []byte(cookie.Value)) != 1 {
		return fmt.Errorf("state mismatch")
	}
	return nil
}

func (h *AuthHandler) clearStateCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
