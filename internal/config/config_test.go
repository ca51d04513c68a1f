package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "http://localhost:5173", cfg.FrontendURL)
	assert.Equal(t, "pgx", cfg.DatabaseDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, "naver", cfg.DefaultProvider)
	assert.True(t, cfg.AutoMigrate)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_TTL", "15m")
	t.Setenv("FRONTEND_URL", "https://saju.example.com")
	t.Setenv("NAVER_CLIENT_ID", "naver-id")
	t.Setenv("AUTO_MIGRATE", "false")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWTTTL)
	assert.Equal(t, "https://saju.example.com", cfg.FrontendURL)
	assert.Equal(t, "naver-id", cfg.NaverClientID)
	assert.False(t, cfg.AutoMigrate)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
jwt_secret: file-secret
database_driver: sqlite
database_url: /tmp/saju.db
naver_client_id: from-file
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("NAVER_CLIENT_ID", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, "/tmp/saju.db", cfg.DatabaseURL)
	assert.Equal(t, "from-env", cfg.NaverClientID)
}

func TestConfig_SecureCookies(t *testing.T) {
	tests := []struct {
		baseURL string
		want    bool
	}{
		{baseURL: "https://auth.saju.example.com", want: true},
		{baseURL: "HTTPS://auth.saju.example.com", want: true},
		{baseURL: "http://localhost:8080", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.baseURL, func(t *testing.T) {
			assert.Equal(t, tt.want, Config{BaseURL: tt.baseURL}.SecureCookies())
		})
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			env:     map[string]string{},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"JWT_SECRET": "s", "DATABASE_DRIVER": "mysql"},
			wantErr: "DATABASE_DRIVER must be pgx or sqlite",
		},
		{
			name:    "relative frontend url",
			env:     map[string]string{"JWT_SECRET": "s", "FRONTEND_URL": "/app"},
			wantErr: "FRONTEND_URL must be an absolute URL",
		},
		{
			name:    "non-positive rate",
			env:     map[string]string{"JWT_SECRET": "s", "RATE_LIMIT_RPS": "0"},
			wantErr: "RATE_LIMIT_RPS must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JWT_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
