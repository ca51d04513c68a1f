package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/sumire/saju-auth/internal/domain"
)

// Registration ids understood by the profile extractor.
const (
	RegistrationNaver  = "naver"
	RegistrationGoogle = "google"
	RegistrationGitHub = "github"
)

type profileReader func(attributes map[string]any) (domain.ProviderProfile, error)

var profileReaders = map[string]profileReader{
	RegistrationNaver:  readNaverProfile,
	RegistrationGoogle: readGoogleProfile,
	RegistrationGitHub: readGitHubProfile,
}

// ProfileExtractor turns raw user-info payloads into validated provider profiles.
type ProfileExtractor struct {
	validate *validator.Validate
}

// NewProfileExtractor creates a new ProfileExtractor.
func NewProfileExtractor() *ProfileExtractor {
	return &ProfileExtractor{validate: validator.New()}
}

// Extract reads the profile for registrationID out of attributes.
// Any structural or validation problem is reported as domain.ErrMalformedProfile.
func (e *ProfileExtractor) Extract(registrationID string, attributes map[string]any) (domain.ProviderProfile, error) {
	read, ok := profileReaders[registrationID]
	if !ok {
		return domain.ProviderProfile{}, fmt.Errorf("%w: unsupported registration %q", domain.ErrMalformedProfile, registrationID)
	}
	if attributes == nil {
		return domain.ProviderProfile{}, fmt.Errorf("%w: empty payload", domain.ErrMalformedProfile)
	}

	profile, err := read(attributes)
	if err != nil {
		return domain.ProviderProfile{}, fmt.Errorf("%w: %w", domain.ErrMalformedProfile, err)
	}
	profile.Provider = registrationID

	if err := e.validate.Struct(profile); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
			fe := validationErrors[0]
			return domain.ProviderProfile{}, fmt.Errorf("%w: %w", domain.ErrMalformedProfile, &domain.ValidationError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("failed on '%s' validation", fe.Tag()),
			})
		}
		return domain.ProviderProfile{}, fmt.Errorf("%w: %v", domain.ErrMalformedProfile, err)
	}
	return profile, nil
}

// Naver nests the profile fields under "response".
func readNaverProfile(attributes map[string]any) (domain.ProviderProfile, error) {
	raw, ok := attributes["response"]
	if !ok {
		return domain.ProviderProfile{}, errors.New(`missing "response" object`)
	}
	response, ok := raw.(map[string]any)
	if !ok {
		return domain.ProviderProfile{}, fmt.Errorf(`"response" is %T, want object`, raw)
	}
	return readFlatProfile(response, "id", "email", "name")
}

func readGoogleProfile(attributes map[string]any) (domain.ProviderProfile, error) {
	idKey := "id"
	if _, ok := attributes[idKey]; !ok {
		idKey = "sub"
	}
	return readFlatProfile(attributes, idKey, "email", "name")
}

func readGitHubProfile(attributes map[string]any) (domain.ProviderProfile, error) {
	profile, err := readFlatProfile(attributes, "id", "email", "name")
	if err != nil {
		return domain.ProviderProfile{}, err
	}
	if profile.Name == "" {
		login, err := stringAttr(attributes, "login")
		if err != nil {
			return domain.ProviderProfile{}, err
		}
		profile.Name = login
	}
	return profile, nil
}

func readFlatProfile(fields map[string]any, idKey, emailKey, nameKey string) (domain.ProviderProfile, error) {
	id, err := idAttr(fields, idKey)
	if err != nil {
		return domain.ProviderProfile{}, err
	}
	email, err := stringAttr(fields, emailKey)
	if err != nil {
		return domain.ProviderProfile{}, err
	}
	name, err := stringAttr(fields, nameKey)
	if err != nil {
		return domain.ProviderProfile{}, err
	}
	return domain.ProviderProfile{ProviderID: id, Email: email, Name: name}, nil
}

// stringAttr returns "" for absent or null keys; required-ness is left to validation.
func stringAttr(fields map[string]any, key string) (string, error) {
	switch v := fields[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%q is %T, want string", key, v)
	}
}

// idAttr accepts string and numeric identifiers.
func idAttr(fields map[string]any, key string) (string, error) {
	switch v := fields[key].(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return "", fmt.Errorf("%q is %T, want string or number", key, v)
	}
}
