package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"plate-lookup-service/internal/core/domain"
	ports "plate-lookup-service/internal/core/ports/output"
)

const (
	InputDir   = "input_images"
	CroppedDir = "cropped_images"
)

type fileStore struct {
	fs afero.Fs
}

// NewFileStore creates an image store rooted at dir, with uploads under input_images/
// and crops under cropped_images/.
func NewFileStore(dir string) (ports.ImageStore, error) {
	return NewFileStoreFs(afero.NewBasePathFs(afero.NewOsFs(), dir))
}

// NewFileStoreFs creates an image store on an arbitrary filesystem.
func NewFileStoreFs(fs afero.Fs) (ports.ImageStore, error) {
	for _, dir := range []string{InputDir, CroppedDir} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &fileStore{fs: fs}, nil
}

// imageID is stable for a stored name so that listing twice yields the same ids.
func imageID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("input_images/"+name))
}

func (s *fileStore) SaveImage(ctx context.Context, img *domain.SourceImage) error {
	if err := afero.WriteFile(s.fs, path.Join(InputDir, img.Name), img.Data, 0o644); err != nil {
		return fmt.Errorf("save image %s: %w", img.Name, err)
	}
	img.ID = imageID(img.Name)
	return nil
}

func (s *fileStore) ListImages(ctx context.Context) ([]domain.SourceImage, error) {
	entries, err := afero.ReadDir(s.fs, InputDir)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	images := make([]domain.SourceImage, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		format, err := domain.FormatFromName(e.Name())
		if err != nil {
			log.WithField("file", e.Name()).Debug("skipping non-image file in store")
			continue
		}
		data, err := afero.ReadFile(s.fs, path.Join(InputDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", e.Name(), err)
		}
		images = append(images, domain.SourceImage{
			ID:        imageID(e.Name()),
			Name:      e.Name(),
			Format:    format,
			Size:      len(data),
			CreatedAt: e.ModTime(),
			Data:      data,
		})
	}
	return images, nil
}

func (s *fileStore) SaveCrop(ctx context.Context, crop domain.CropArtifact) error {
	if err := afero.WriteFile(s.fs, path.Join(CroppedDir, crop.Filename), crop.Data, 0o644); err != nil {
		return fmt.Errorf("save crop %s: %w", crop.Filename, err)
	}
	return nil
}

// Clear removes every file under both directories and returns how many were removed.
func (s *fileStore) Clear(ctx context.Context) (int, error) {
	removed := 0
	var errs []error
	for _, dir := range []string{InputDir, CroppedDir} {
		entries, err := afero.ReadDir(s.fs, dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, fmt.Errorf("read %s: %w", dir, err))
			continue
		}
		for _, e := range entries {
			if err := s.fs.RemoveAll(path.Join(dir, e.Name())); err != nil {
				errs = append(errs, fmt.Errorf("remove %s/%s: %w", dir, e.Name(), err))
				continue
			}
			removed++
		}
	}
	return removed, errors.Join(errs...)
}
