package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"plate-lookup-service/internal/config"
	ports "plate-lookup-service/internal/core/ports/output"
)

type queryProvider struct {
	endpoint *url.URL
	apiKey   string
	client   *http.Client
}

// NewQueryProvider creates provider B: a GET with the plate as the vehicle_no query parameter.
func NewQueryProvider(cfg *config.RegistryConfig) (ports.RegistryProvider, error) {
	u, err := url.Parse(cfg.BURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid REGISTRY_B_URL %q", cfg.BURL)
	}
	return &queryProvider{
		endpoint: u,
		apiKey:   cfg.APIKey,
		client:   newHTTPClient(cfg.Timeout),
	}, nil
}

func (p *queryProvider) Name() string { return "query" }

func (p *queryProvider) Lookup(ctx context.Context, plate string) (*ports.RegistryResponse, error) {
	u := *p.endpoint
	params := u.Query()
	params.Set("vehicle_no", plate)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-Key", p.apiKey)
	req.Header.Set("Accept", "application/json")

	return do(p.client, req)
}

func (p *queryProvider) CloseIdleConnections() {
	p.client.CloseIdleConnections()
}
