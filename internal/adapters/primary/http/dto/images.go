package dto

import (
	"time"

	"github.com/google/uuid"

	"plate-lookup-service/internal/core/domain"
)

// ============================================================================
// Response DTOs
// ============================================================================

// ImageResponse describes one stored source image
type ImageResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Format    string    `json:"format"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

type UploadResponse struct {
	Message string          `json:"message"`
	Images  []ImageResponse `json:"images"`
}

type ListImagesResponse struct {
	Items []ImageResponse `json:"items"`
	Total int             `json:"total"`
}

type ClearResponse struct {
	Message string `json:"message"`
	Removed int    `json:"removed"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Detector string `json:"detector"`
}

// ============================================================================
// Converters
// ============================================================================

func ToImageResponse(img domain.SourceImage) ImageResponse {
	return ImageResponse{
		ID:        img.ID,
		Name:      img.Name,
		Format:    string(img.Format),
		Size:      img.Size,
		CreatedAt: img.CreatedAt,
	}
}

func ToImageResponses(images []domain.SourceImage) []ImageResponse {
	items := make([]ImageResponse, 0, len(images))
	for _, img := range images {
		items = append(items, ToImageResponse(img))
	}
	return items
}
