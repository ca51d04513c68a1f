package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sumire/saju-auth/internal/domain"
)

func naverAttributes(id, email, name string) map[string]any {
	return map[string]any{
		"resultcode": "00",
		"message":    "success",
		"response": map[string]any{
			"id":    id,
			"email": email,
			"name":  name,
		},
	}
}

func TestProfileExtractor_Naver(t *testing.T) {
	profile, err := NewProfileExtractor().Extract(RegistrationNaver, naverAttributes("12345", "hong@example.com", "Hong Gildong"))
	require.NoError(t, err)

	assert.Equal(t, domain.ProviderProfile{
		Provider:   "naver",
		ProviderID: "12345",
		Email:      "hong@example.com",
		Name:       "Hong Gildong",
	}, profile)
	assert.Equal(t, "naver_12345", profile.Username())
}

func TestProfileExtractor_Google(t *testing.T) {
	e := NewProfileExtractor()

	profile, err := e.Extract(RegistrationGoogle, map[string]any{"id": "g-1", "email": "a@example.com", "name": "A"})
	require.NoError(t, err)
	assert.Equal(t, "google_g-1", profile.Username())

	profile, err = e.Extract(RegistrationGoogle, map[string]any{"sub": "g-2", "email": "b@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "g-2", profile.ProviderID)
}

func TestProfileExtractor_GitHubNumericID(t *testing.T) {
	profile, err := NewProfileExtractor().Extract(RegistrationGitHub, map[string]any{
		"id":    json.Number("583231"),
		"login": "octocat",
		"name":  nil,
		"email": "octocat@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "583231", profile.ProviderID)
	assert.Equal(t, "octocat", profile.Name)
	assert.Equal(t, "github_583231", profile.Username())
}

func TestProfileExtractor_Malformed(t *testing.T) {
	tests := []struct {
		name         string
		registration string
		attributes   map[string]any
	}{
		{name: "nil payload", registration: RegistrationNaver, attributes: nil},
		{name: "missing response", registration: RegistrationNaver, attributes: map[string]any{"id": "12345"}},
		{name: "response not an object", registration: RegistrationNaver, attributes: map[string]any{"response": "12345"}},
		{name: "missing id", registration: RegistrationNaver, attributes: naverAttributes("", "hong@example.com", "Hong")},
		{name: "missing email", registration: RegistrationNaver, attributes: naverAttributes("12345", "", "Hong")},
		{name: "invalid email", registration: RegistrationNaver, attributes: naverAttributes("12345", "not-an-email", "Hong")},
		{
			name:         "non-string email",
			registration: RegistrationNaver,
			attributes:   map[string]any{"response": map[string]any{"id": "12345", "email": 7}},
		},
		{
			name:         "boolean id",
			registration: RegistrationGitHub,
			attributes:   map[string]any{"id": true, "email": "a@example.com"},
		},
		{name: "unknown registration", registration: "kakao", attributes: map[string]any{"id": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProfileExtractor().Extract(tt.registration, tt.attributes)
			assert.ErrorIs(t, err, domain.ErrMalformedProfile)
		})
	}
}

func TestProfileExtractor_ValidationDetail(t *testing.T) {
	_, err := NewProfileExtractor().Extract(RegistrationNaver, naverAttributes("12345", "", "Hong"))

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "Email", validationErr.Field)
	assert.Equal(t, "failed on 'required' validation", validationErr.Message)
}
