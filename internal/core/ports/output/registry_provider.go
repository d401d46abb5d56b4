package ports

import "context"

// RegistryResponse is the untranslated answer of a registry provider.
type RegistryResponse struct {
	StatusCode int
	Body       []byte
}

// RegistryProvider is one external vehicle-registry API.
type RegistryProvider interface {
	// Name identifies the provider variant in logs and reports.
	Name() string

	// Lookup issues exactly one request. err is non-nil only when no response was received.
	Lookup(ctx context.Context, plate string) (*RegistryResponse, error)
}
