package ports

import (
	"context"

	"plate-lookup-service/internal/core/domain"
)

// PlateDetector wraps an external object-detection model.
type PlateDetector interface {
	// Detect returns plate boxes in the detector's native order. No boxes is not an error.
	Detect(ctx context.Context, img domain.SourceImage) ([]domain.DetectionBox, error)

	// Ping checks the model endpoint is reachable.
	Ping(ctx context.Context) error
}
