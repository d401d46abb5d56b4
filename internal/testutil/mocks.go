package testutil

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"

	"github.com/stretchr/testify/mock"

	"plate-lookup-service/internal/core/domain"
	"plate-lookup-service/internal/core/ports/output"
)

// MockPlateDetector is a mock of PlateDetector.
type MockPlateDetector struct {
	mock.Mock
}

func (m *MockPlateDetector) Detect(ctx context.Context, img domain.SourceImage) ([]domain.DetectionBox, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DetectionBox), args.Error(1)
}

func (m *MockPlateDetector) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockOCRClient is a mock of OCRClient.
type MockOCRClient struct {
	mock.Mock
}

func (m *MockOCRClient) ExtractText(ctx context.Context, crop domain.CropArtifact) (domain.OcrResult, error) {
	args := m.Called(ctx, crop)
	return args.Get(0).(domain.OcrResult), args.Error(1)
}

// MockRegistryProvider is a mock of RegistryProvider.
type MockRegistryProvider struct {
	mock.Mock
}

func (m *MockRegistryProvider) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockRegistryProvider) Lookup(ctx context.Context, plate string) (*ports.RegistryResponse, error) {
	args := m.Called(ctx, plate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.RegistryResponse), args.Error(1)
}

// MockImageStore is a mock of ImageStore.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) SaveImage(ctx context.Context, img *domain.SourceImage) error {
	args := m.Called(ctx, img)
	return args.Error(0)
}

func (m *MockImageStore) ListImages(ctx context.Context) ([]domain.SourceImage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SourceImage), args.Error(1)
}

func (m *MockImageStore) SaveCrop(ctx context.Context, crop domain.CropArtifact) error {
	args := m.Called(ctx, crop)
	return args.Error(0)
}

func (m *MockImageStore) Clear(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// JPEG returns a w x h solid grey JPEG.
func JPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 100, G: 100, B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// SourceImage builds a valid JPEG source image named name.
func SourceImage(name string, w, h int) domain.SourceImage {
	img, err := domain.NewSourceImage(name, JPEG(w, h))
	if err != nil {
		panic(err)
	}
	return *img
}
