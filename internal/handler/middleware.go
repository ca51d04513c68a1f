package handler

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/sumire/saju-auth/internal/domain"
	"github.com/sumire/saju-auth/internal/service"
)

const (
	contextKeyClaims = "token_claims"
)

// RequestLogger logs each HTTP request with structured fields.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Run the error handler now so the logged status is the one sent.
				c.Error(err)
			}

			slog.Info("http request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
			)

			return nil
		}
	}
}

// RateLimit limits requests per client IP to rps with the given burst.
func RateLimit(rps float64, burst int) echo.MiddlewareFunc {
	if burst < 1 {
		burst = max(1, int(rps))
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(rps),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiter(store)
}

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*service.Claims, error)
}

// JWTAuth validates the Bearer token and injects its claims into echo context.
func JWTAuth(tokens TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return domain.ErrUnauthorized
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return domain.ErrUnauthorized
			}

			claims, err := tokens.ValidateToken(parts[1])
			if err != nil {
				return domain.ErrUnauthorized
			}

			c.Set(contextKeyClaims, claims)
			return next(c)
		}
	}
}

// GetClaims extracts the authenticated token claims from echo context.
func GetClaims(c echo.Context) (*service.Claims, bool) {
	claims, ok := c.Get(contextKeyClaims).(*service.Claims)
	return claims, ok
}
