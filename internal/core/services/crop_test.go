package services

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-lookup-service/internal/core/domain"
	"plate-lookup-service/internal/testutil"
)

func decodedTestImage(t *testing.T, w, h int) (image.Image, domain.SourceImage) {
	t.Helper()
	src := testutil.SourceImage("car.jpg", w, h)
	img, err := DecodeImage(src.Data)
	require.NoError(t, err)
	return img, src
}

func TestCropAndEnhance_InsideBounds(t *testing.T) {
	img, src := decodedTestImage(t, 100, 50)

	crop, err := CropAndEnhance(img, src, domain.DetectionBox{Index: 0, X1: 10, Y1: 5, X2: 60, Y2: 25}, DefaultEnhanceParams())
	require.NoError(t, err)

	assert.Equal(t, "car_plate_0.jpg", crop.Filename)
	out, err := DecodeImage(crop.Data)
	require.NoError(t, err)
	assert.Equal(t, 50, out.Bounds().Dx())
	assert.Equal(t, 20, out.Bounds().Dy())
}

func TestCropAndEnhance_ClampsBoxPastEdge(t *testing.T) {
	img, src := decodedTestImage(t, 100, 50)

	crop, err := CropAndEnhance(img, src, domain.DetectionBox{Index: 2, X1: 80, Y1: -10, X2: 140, Y2: 30}, DefaultEnhanceParams())
	require.NoError(t, err)

	assert.Equal(t, 100, crop.Box.X2)
	assert.Equal(t, 0, crop.Box.Y1)
	assert.Equal(t, "car_plate_2.jpg", crop.Filename)

	out, err := DecodeImage(crop.Data)
	require.NoError(t, err)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 30, out.Bounds().Dy())
}

func TestCropAndEnhance_DegenerateBox(t *testing.T) {
	img, src := decodedTestImage(t, 100, 50)

	tests := []struct {
		name string
		box  domain.DetectionBox
	}{
		{name: "fully outside", box: domain.DetectionBox{X1: 200, Y1: 10, X2: 300, Y2: 40}},
		{name: "zero width", box: domain.DetectionBox{X1: 10, Y1: 10, X2: 10, Y2: 40}},
		{name: "inverted", box: domain.DetectionBox{X1: 40, Y1: 10, X2: 10, Y2: 40}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			crop, err := CropAndEnhance(img, src, tt.box, DefaultEnhanceParams())
			assert.Nil(t, crop)
			assert.ErrorIs(t, err, domain.ErrDegenerateCrop)
		})
	}
}

func TestCropAndEnhance_BrightensPixels(t *testing.T) {
	img, src := decodedTestImage(t, 40, 40)

	crop, err := CropAndEnhance(img, src, domain.DetectionBox{X1: 0, Y1: 0, X2: 40, Y2: 40}, DefaultEnhanceParams())
	require.NoError(t, err)

	out, err := DecodeImage(crop.Data)
	require.NoError(t, err)
	r, _, _, _ := out.At(20, 20).RGBA()
	// grey 100 -> 1.2*100+10 = 130, give or take JPEG loss
	assert.InDelta(t, 130, float64(r>>8), 6)
}

func TestEnhanceValue(t *testing.T) {
	p := DefaultEnhanceParams()

	assert.Equal(t, uint8(10), enhanceValue(0, p))
	assert.Equal(t, uint8(130), enhanceValue(100, p))
	assert.Equal(t, uint8(255), enhanceValue(255, p))
	assert.Equal(t, uint8(50), enhanceValue(50, EnhanceParams{Alpha: 1, Beta: 0}))

	darken := EnhanceParams{Alpha: 1, Beta: -10}
	assert.Equal(t, uint8(0), enhanceValue(5, darken), "negative results clamp to 0")
	assert.Equal(t, uint8(90), enhanceValue(100, darken))
}

func TestDecodeImage_Invalid(t *testing.T) {
	_, err := DecodeImage([]byte("definitely not an image"))
	assert.Error(t, err)
}
