package ports

import (
	"context"

	"plate-lookup-service/internal/core/domain"
)

// ImageStore holds uploaded images and the crops derived from them.
type ImageStore interface {
	SaveImage(ctx context.Context, img *domain.SourceImage) error
	ListImages(ctx context.Context) ([]domain.SourceImage, error)
	SaveCrop(ctx context.Context, crop domain.CropArtifact) error

	// Clear removes every stored image and crop and reports how many objects were deleted.
	Clear(ctx context.Context) (int, error)
}
