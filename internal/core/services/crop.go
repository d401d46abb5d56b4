package services

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"math"

	// Decoders for image.Decode.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"plate-lookup-service/internal/core/domain"
)

const cropJPEGQuality = 95

// EnhanceParams is the linear brightness/contrast transform applied to every crop:
// out = clamp(Alpha*in + Beta, 0, 255).
type EnhanceParams struct {
	Alpha float64
	Beta  float64
}

func DefaultEnhanceParams() EnhanceParams {
	return EnhanceParams{Alpha: 1.2, Beta: 10}
}

// DecodeImage decodes any registered image format.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// CropAndEnhance cuts the clamped box out of img, applies the enhancement and encodes the result as JPEG.
// It returns domain.ErrDegenerateCrop when the box has no area inside the image.
func CropAndEnhance(img image.Image, src domain.SourceImage, box domain.DetectionBox, params EnhanceParams) (*domain.CropArtifact, error) {
	clamped, ok := box.Clamp(img.Bounds())
	if !ok {
		return nil, fmt.Errorf("box %d (%d,%d,%d,%d): %w",
			box.Index, box.X1, box.Y1, box.X2, box.Y2, domain.ErrDegenerateCrop)
	}

	rect := clamped.Rect()
	lut := enhanceTable(params)
	out := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.SetNRGBA(x-rect.Min.X, y-rect.Min.Y, color.NRGBA{
				R: lut[c.R],
				G: lut[c.G],
				B: lut[c.B],
				A: c.A,
			})
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: cropJPEGQuality}); err != nil {
		return nil, fmt.Errorf("encode crop: %w", err)
	}

	return &domain.CropArtifact{
		Box:      clamped,
		Filename: domain.CropFilename(src, box.Index),
		Data:     buf.Bytes(),
	}, nil
}

// enhanceTable precomputes the transform for every 8-bit channel value.
func enhanceTable(p EnhanceParams) [256]uint8 {
	var lut [256]uint8
	for i := range lut {
		lut[i] = enhanceValue(uint8(i), p)
	}
	return lut
}

// enhanceValue is clamp(round(alpha*v+beta), 0, 255).
func enhanceValue(v uint8, p EnhanceParams) uint8 {
	f := math.Round(p.Alpha*float64(v) + p.Beta)
	switch {
	case f > 255:
		return 255
	case f < 0:
		return 0
	default:
		return uint8(f)
	}
}
