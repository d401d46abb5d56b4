package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"plate-lookup-service/internal/core/domain"
	ports "plate-lookup-service/internal/core/ports/output"
)

// maxRawBody caps how much of a provider body is kept in a LookupError.
const maxRawBody = 4096

// RegistryLookupService translates provider responses into vehicle records.
// It never returns an error: every failure is carried inside the record.
type RegistryLookupService struct {
	provider ports.RegistryProvider
	limiter  *rate.Limiter
	flight   singleflight.Group
}

// NewRegistryLookupService creates a lookup service. ratePerSecond <= 0 disables throttling.
func NewRegistryLookupService(provider ports.RegistryProvider, ratePerSecond float64) *RegistryLookupService {
	s := &RegistryLookupService{provider: provider}
	if ratePerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(ratePerSecond), 1)
	}
	return s
}

// Lookup fetches the record for one normalized plate. Cancellation and throttling apply to each
// caller's own ctx; callers that get past them share one request per plate.
func (s *RegistryLookupService) Lookup(ctx context.Context, plate string) domain.VehicleRecord {
	if err := ctx.Err(); err != nil {
		return domain.RecordFromError(plate, skipped(err))
	}
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return domain.RecordFromError(plate, skipped(err))
		}
	}

	v, _, _ := s.flight.Do(plate, func() (any, error) {
		return s.lookup(ctx, plate), nil
	})
	return v.(domain.VehicleRecord)
}

func (s *RegistryLookupService) lookup(ctx context.Context, plate string) domain.VehicleRecord {
	logger := log.WithFields(log.Fields{
		"plate":    plate,
		"provider": s.provider.Name(),
	})

	// Once started, the request runs to completion or to the provider's own timeout.
	resp, err := s.provider.Lookup(context.WithoutCancel(ctx), plate)
	if err != nil {
		logger.WithError(err).Warn("registry request failed")
		return domain.RecordFromError(plate, &domain.LookupError{
			Kind:    domain.LookupNetwork,
			Message: err.Error(),
		})
	}

	rec := translateResponse(plate, resp)
	if rec.Failed() {
		logger.WithFields(log.Fields{
			"kind":   rec.Error.Kind,
			"status": rec.Error.StatusCode,
		}).Warn("registry lookup failed")
	} else {
		logger.Debug("registry lookup succeeded")
	}
	return rec
}

func skipped(err error) *domain.LookupError {
	return &domain.LookupError{
		Kind:    domain.LookupSkipped,
		Message: fmt.Sprintf("lookup not started: %v", err),
	}
}

// translateResponse maps a raw provider response onto a record.
func translateResponse(plate string, resp *ports.RegistryResponse) domain.VehicleRecord {
	raw := truncate(string(resp.Body), maxRawBody)

	var obj map[string]any
	decodeErr := json.Unmarshal(resp.Body, &obj)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := http.StatusText(resp.StatusCode)
		if decodeErr == nil {
			if m := providerMessage(obj); m != "" {
				msg = m
			}
		}
		return domain.RecordFromError(plate, &domain.LookupError{
			Kind:       domain.LookupProviderError,
			Message:    msg,
			StatusCode: resp.StatusCode,
			Raw:        raw,
		})
	}

	if decodeErr != nil || obj == nil {
		return domain.RecordFromError(plate, &domain.LookupError{
			Kind:       domain.LookupMalformedResponse,
			Message:    "invalid response from registry",
			StatusCode: resp.StatusCode,
			Raw:        raw,
		})
	}

	if isErrorEnvelope(obj) {
		msg := providerMessage(obj)
		if msg == "" {
			msg = "registry reported an error"
		}
		return domain.RecordFromError(plate, &domain.LookupError{
			Kind:       domain.LookupProviderError,
			Message:    msg,
			StatusCode: resp.StatusCode,
			Raw:        raw,
		})
	}

	return domain.RecordFromFields(plate, obj)
}

var envelopeKeys = map[string]bool{
	"error":   true,
	"raw":     true,
	"message": true,
	"status":  true,
	"code":    true,
}

// isErrorEnvelope reports an object that carries a truthy "error" and nothing beyond envelope keys.
func isErrorEnvelope(obj map[string]any) bool {
	if !truthy(obj["error"]) {
		return false
	}
	for k := range obj {
		if !envelopeKeys[k] {
			return false
		}
	}
	return true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

func providerMessage(obj map[string]any) string {
	for _, key := range []string{"error", "message"} {
		switch v := obj[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if m, ok := v["message"].(string); ok && m != "" {
				return m
			}
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
