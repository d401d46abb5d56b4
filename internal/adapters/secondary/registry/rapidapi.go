package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"plate-lookup-service/internal/config"
	ports "plate-lookup-service/internal/core/ports/output"
)

type rapidAPIProvider struct {
	endpoint string
	host     string
	apiKey   string
	client   *http.Client
}

// NewRapidAPIProvider creates provider A: a JSON POST to a RapidAPI-hosted RC verification endpoint.
func NewRapidAPIProvider(cfg *config.RegistryConfig) (ports.RegistryProvider, error) {
	u, err := url.Parse(cfg.AURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid REGISTRY_A_URL %q", cfg.AURL)
	}
	return &rapidAPIProvider{
		endpoint: cfg.AURL,
		host:     u.Hostname(),
		apiKey:   cfg.APIKey,
		client:   newHTTPClient(cfg.Timeout),
	}, nil
}

func (p *rapidAPIProvider) Name() string { return "rapidapi" }

type rcRequest struct {
	RCNumber string `json:"rcnumber"`
}

func (p *rapidAPIProvider) Lookup(ctx context.Context, plate string) (*ports.RegistryResponse, error) {
	data, err := json.Marshal(rcRequest{RCNumber: plate})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", p.apiKey)
	req.Header.Set("x-rapidapi-host", p.host)
	req.Header.Set("Content-Type", "application/json")

	return do(p.client, req)
}

func (p *rapidAPIProvider) CloseIdleConnections() {
	p.client.CloseIdleConnections()
}
