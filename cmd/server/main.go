package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sumire/saju-auth/internal/config"
	"github.com/sumire/saju-auth/internal/database"
	"github.com/sumire/saju-auth/internal/handler"
	"github.com/sumire/saju-auth/internal/logger"
	"github.com/sumire/saju-auth/internal/metrics"
	"github.com/sumire/saju-auth/internal/repository"
	"github.com/sumire/saju-auth/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetupDefault(os.Stdout, level)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL, database.DefaultPool)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	slog.Info("database connected", "driver", cfg.DatabaseDriver)

	if cfg.AutoMigrate {
		if err := database.Migrate(db, cfg.DatabaseDriver); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		slog.Info("database migrated")
	}

	registry := metrics.NewRegistry()
	collector := metrics.NewCollector(registry)

	tokens, err := service.NewTokenProvider(service.TokenConfig{
		Secret: cfg.JWTSecret,
		TTL:    cfg.JWTTTL,
		Issuer: cfg.JWTIssuer,
	})
	if err != nil {
		return fmt.Errorf("create token provider: %w", err)
	}

	issuer, err := service.NewRedirectIssuer(tokens, cfg.FrontendURL)
	if err != nil {
		return fmt.Errorf("create redirect issuer: %w", err)
	}

	registrations := service.NewRegistrations(service.ProviderConfig{
		BaseURL: cfg.BaseURL,
		Naver:   service.ClientCredentials{ClientID: cfg.NaverClientID, ClientSecret: cfg.NaverClientSecret},
		Google:  service.ClientCredentials{ClientID: cfg.GoogleClientID, ClientSecret: cfg.GoogleClientSecret},
		GitHub:  service.ClientCredentials{ClientID: cfg.GitHubClientID, ClientSecret: cfg.GitHubClientSecret},
	})
	if len(registrations.IDs()) == 0 {
		slog.Warn("no oauth providers configured")
	}
	slog.Info("oauth providers enabled", "providers", registrations.IDs())

	userRepo := repository.NewUserRepository(db)
	userSvc := service.NewUserService(userRepo, service.NewProfileExtractor())

	authSvc := service.NewAuthService(registrations, userSvc, issuer, tokens, collector, service.AuthConfig{
		DefaultProvider: cfg.DefaultProvider,
	})

	e := handler.NewRouter(authSvc, handler.RouterConfig{
		FrontendURL:   cfg.FrontendURL,
		RateLimitRPS:  cfg.RateLimitRPS,
		RateBurst:     cfg.RateBurst,
		SecureCookies: cfg.SecureCookies(),
		Registry:      registry,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
