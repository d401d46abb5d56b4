package registry

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"plate-lookup-service/internal/config"
	ports "plate-lookup-service/internal/core/ports/output"
)

// maxBodyBytes bounds how much of a provider response is read.
const maxBodyBytes = 1 << 20

// NewProvider returns the registry provider selected by cfg.Provider.
func NewProvider(cfg *config.RegistryConfig) (ports.RegistryProvider, error) {
	switch cfg.Provider {
	case config.ProviderA:
		return NewRapidAPIProvider(cfg)
	case config.ProviderB:
		return NewQueryProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown registry provider %q", cfg.Provider)
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// do sends req and returns whatever the provider answered. An error means no response was received.
func do(client *http.Client, req *http.Request) (*ports.RegistryResponse, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &ports.RegistryResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
