package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/sumire/saju-auth/internal/metrics"
	"github.com/sumire/saju-auth/internal/repository"
	"github.com/sumire/saju-auth/internal/service"
	"github.com/sumire/saju-auth/internal/testutils"
)

const frontendURL = "http://localhost:5173"

// newFakeNaver serves the Naver token and profile endpoints.
// Code "good-code" yields the given profile payload.
func newFakeNaver(t *testing.T, profile map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2.0/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.Form.Get("code") != "good-code" {
			http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"access_token": "naver-access", "token_type": "bearer"})
	})
	mux.HandleFunc("/v1/nid/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer naver-access" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testApp struct {
	e        *echo.Echo
	repo     *repository.UserRepository
	tokens   *service.TokenProvider
	registry *prometheus.Registry
}

func newTestApp(t *testing.T, naver *httptest.Server, opts ...func(*RouterConfig)) testApp {
	t.Helper()

	repo := repository.NewUserRepository(testutils.SetupTestDB(t))
	tokens, err := service.NewTokenProvider(service.TokenConfig{Secret: "test-secret-key", TTL: time.Hour})
	require.NoError(t, err)
	issuer, err := service.NewRedirectIssuer(tokens, frontendURL)
	require.NoError(t, err)

	registrations := service.NewRegistrations(service.ProviderConfig{})
	if naver != nil {
		registrations.Add(&service.Registration{
			ID: service.RegistrationNaver,
			Config: &oauth2.Config{
				ClientID:     "naver-client",
				ClientSecret: "naver-secret",
				RedirectURL:  "http://localhost:8080/login/oauth2/code/naver",
				Endpoint: oauth2.Endpoint{
					AuthURL:   naver.URL + "/oauth2.0/authorize",
					TokenURL:  naver.URL + "/oauth2.0/token",
					AuthStyle: oauth2.AuthStyleInParams,
				},
			},
			UserInfoURL: naver.URL + "/v1/nid/me",
		})
	}

	registry := prometheus.NewRegistry()
	users := service.NewUserService(repo, service.NewProfileExtractor())
	auth := service.NewAuthService(registrations, users, issuer, tokens, metrics.NewCollector(registry), service.AuthConfig{DefaultProvider: "naver"})

	cfg := RouterConfig{
		FrontendURL:  frontendURL,
		RateLimitRPS: 100,
		RateBurst:    100,
		Registry:     registry,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	e := NewRouter(auth, cfg)
	return testApp{e: e, repo: repo, tokens: tokens, registry: registry}
}

func (a testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}
