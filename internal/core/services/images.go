package services

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"plate-lookup-service/internal/core/domain"
	ports "plate-lookup-service/internal/core/ports/output"
)

// ImageService handles intake and housekeeping of uploaded images.
type ImageService struct {
	store ports.ImageStore
}

func NewImageService(store ports.ImageStore) *ImageService {
	return &ImageService{store: store}
}

// Upload is one file received from a client.
type Upload struct {
	Filename string
	Data     []byte
}

// Save validates and stores every upload. Nothing is stored when any upload is invalid.
func (s *ImageService) Save(ctx context.Context, uploads []Upload) ([]domain.SourceImage, error) {
	if len(uploads) == 0 {
		return nil, domain.ErrNoImageUploaded
	}

	images := make([]*domain.SourceImage, 0, len(uploads))
	for _, u := range uploads {
		img, err := domain.NewSourceImage(u.Filename, u.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", u.Filename, err)
		}
		images = append(images, img)
	}

	saved := make([]domain.SourceImage, 0, len(images))
	for _, img := range images {
		if err := s.store.SaveImage(ctx, img); err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"image": img.Name,
			"size":  img.Size,
		}).Info("image uploaded")
		saved = append(saved, *img)
	}
	return saved, nil
}

func (s *ImageService) List(ctx context.Context) ([]domain.SourceImage, error) {
	return s.store.ListImages(ctx)
}

// Clear empties the store and returns the number of files removed.
func (s *ImageService) Clear(ctx context.Context) (int, error) {
	removed, err := s.store.Clear(ctx)
	if err != nil {
		return removed, fmt.Errorf("clear image store: %w", err)
	}
	log.WithField("removed", removed).Info("image store cleared")
	return removed, nil
}
