package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	googleOAuth "golang.org/x/oauth2/google"

	"github.com/sumire/saju-auth/internal/domain"
)

var naverEndpoint = oauth2.Endpoint{
	AuthURL:   "https://nid.naver.com/oauth2.0/authorize",
	TokenURL:  "https://nid.naver.com/oauth2.0/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

const (
	naverUserInfoURL   = "https://openapi.naver.com/v1/nid/me"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
	githubUserInfoURL  = "https://api.github.com/user"
	githubUserEmailURL = "https://api.github.com/user/emails"
)

// ClientCredentials identifies this application to one provider.
type ClientCredentials struct {
	ClientID     string
	ClientSecret string
}

// ProviderConfig holds OAuth configuration for every supported provider.
type ProviderConfig struct {
	// BaseURL is the public origin of this service; callbacks are
	// registered as <BaseURL>/login/oauth2/code/<registration>.
	BaseURL string
	Naver   ClientCredentials
	Google  ClientCredentials
	GitHub  ClientCredentials
}

// Registration is one configured provider integration.
type Registration struct {
	ID          string
	Config      *oauth2.Config
	UserInfoURL string
	// enrich fills attributes the user-info endpoint leaves out.
	enrich func(ctx context.Context, client *http.Client, attributes map[string]any) error
}

// Registrations resolves provider integrations by registration id.
type Registrations struct {
	byID map[string]*Registration
}

// NewRegistrations builds the registrations that have a client id configured.
func NewRegistrations(cfg ProviderConfig) *Registrations {
	regs := []*Registration{
		{
			ID:          RegistrationNaver,
			Config:      oauthConfig(cfg, RegistrationNaver, cfg.Naver, naverEndpoint, nil),
			UserInfoURL: naverUserInfoURL,
		},
		{
			ID:          RegistrationGoogle,
			Config:      oauthConfig(cfg, RegistrationGoogle, cfg.Google, googleOAuth.Endpoint, []string{"openid", "profile", "email"}),
			UserInfoURL: googleUserInfoURL,
		},
		{
			ID:          RegistrationGitHub,
			Config:      oauthConfig(cfg, RegistrationGitHub, cfg.GitHub, github.Endpoint, []string{"read:user", "user:email"}),
			UserInfoURL: githubUserInfoURL,
			enrich:      githubPrimaryEmail(githubUserEmailURL),
		},
	}

	r := &Registrations{byID: make(map[string]*Registration)}
	for _, reg := range regs {
		if reg.Config.ClientID == "" {
			continue
		}
		r.Add(reg)
	}
	return r
}

func oauthConfig(cfg ProviderConfig, id string, creds ClientCredentials, endpoint oauth2.Endpoint, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       scopes,
		RedirectURL:  cfg.BaseURL + "/login/oauth2/code/" + id,
	}
}

// Add registers reg, replacing any registration with the same id.
func (r *Registrations) Add(reg *Registration) {
	r.byID[reg.ID] = reg
}

// IDs returns the enabled registration ids in sorted order.
func (r *Registrations) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *Registrations) get(id string) (*Registration, error) {
	reg, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown registration %q", domain.ErrNotFound, id)
	}
	return reg, nil
}

// AuthCodeURL returns the provider's consent page URL for the registration.
func (r *Registrations) AuthCodeURL(id, state string) (string, error) {
	reg, err := r.get(id)
	if err != nil {
		return "", err
	}
	return reg.Config.AuthCodeURL(state), nil
}

// Authenticate exchanges the authorization code and loads the provider's user-info payload.
func (r *Registrations) Authenticate(ctx context.Context, id, code string) (domain.Principal, error) {
	reg, err := r.get(id)
	if err != nil {
		return domain.Principal{}, err
	}

	token, err := reg.Config.Exchange(ctx, code)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%s token exchange: %w", id, err)
	}

	client := reg.Config.Client(ctx, token)
	attributes, err := fetchAttributes(ctx, client, reg.UserInfoURL)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("fetch %s user info: %w", id, err)
	}

	if reg.enrich != nil {
		if err := reg.enrich(ctx, client, attributes); err != nil {
			return domain.Principal{}, fmt.Errorf("enrich %s user info: %w", id, err)
		}
	}

	return domain.Principal{RegistrationID: id, Attributes: attributes}, nil
}

func getJSON(ctx context.Context, client *http.Client, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d", url, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func fetchAttributes(ctx context.Context, client *http.Client, url string) (map[string]any, error) {
	var attributes map[string]any
	if err := getJSON(ctx, client, url, &attributes); err != nil {
		return nil, err
	}
	return attributes, nil
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// githubPrimaryEmail fills "email" from the emails endpoint when the profile hides it.
func githubPrimaryEmail(url string) func(context.Context, *http.Client, map[string]any) error {
	return func(ctx context.Context, client *http.Client, attributes map[string]any) error {
		if email, _ := attributes["email"].(string); email != "" {
			return nil
		}

		var emails []githubEmail
		if err := getJSON(ctx, client, url, &emails); err != nil {
			return err
		}

		for _, e := range emails {
			if e.Primary && e.Verified {
				attributes["email"] = e.Email
				return nil
			}
		}
		// No verified primary address: leave it empty and let profile validation reject it.
		return nil
	}
}
