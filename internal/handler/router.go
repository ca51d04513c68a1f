package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sumire/saju-auth/internal/metrics"
	"github.com/sumire/saju-auth/internal/service"
)

// RouterConfig holds settings for the HTTP router.
type RouterConfig struct {
	FrontendURL  string
	RateLimitRPS float64
	RateBurst    int
	// SecureCookies sets the Secure attribute on the OAuth state cookie.
	SecureCookies bool
	// Registry is served on /metrics when set.
	Registry *prometheus.Registry
}

// NewRouter builds the echo instance serving the login endpoints.
func NewRouter(auth *service.AuthService, cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = NewAppValidator()

	e.Use(middleware.RequestID())
	e.Use(RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentType},
		ExposeHeaders:    []string{echo.HeaderXRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := NewAuthHandler(auth, cfg.SecureCookies)

	e.GET("/health", func(c echo.Context) error {
		return JSON(c, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Registry != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(cfg.Registry)))
	}

	limit := RateLimit(cfg.RateLimitRPS, cfg.RateBurst)
	e.GET("/oauth2/authorization/:registrationId", authHandler.Authorize, limit)
	e.GET("/login/oauth2/code/:registrationId", authHandler.Callback, limit)

	api := e.Group("/api/v1")
	api.GET("/auth/me", authHandler.Me, JWTAuth(auth))

	return e
}
