package domain

// ProviderProfile is the typed result of reading a provider's user-info payload.
type ProviderProfile struct {
	Provider   string `validate:"required"`
	ProviderID string `validate:"required,max=255"`
	Email      string `validate:"required,email,max=320"`
	Name       string `validate:"max=255"`
}

// Username returns the local username for this profile.
func (p ProviderProfile) Username() string {
	return Username(p.Provider, p.ProviderID)
}

// Principal is the identity produced by the OAuth2 client layer for one request.
type Principal struct {
	RegistrationID string
	Attributes     map[string]any
}
