package ports

import (
	"context"

	"plate-lookup-service/internal/core/domain"
)

// OCRClient wraps an external vision service that reads plate text.
type OCRClient interface {
	// ExtractText returns normalized text or an unreadable result.
	// A non-nil error means the service call itself failed.
	ExtractText(ctx context.Context, crop domain.CropArtifact) (domain.OcrResult, error)
}
