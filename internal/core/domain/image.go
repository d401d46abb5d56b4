package domain

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Value Objects
// ============================================================================

// ImageFormat is the encoding of an uploaded image.
type ImageFormat string

const (
	FormatJPEG ImageFormat = "jpeg"
	FormatPNG  ImageFormat = "png"
	FormatGIF  ImageFormat = "gif"
	FormatBMP  ImageFormat = "bmp"
	FormatWEBP ImageFormat = "webp"
)

// FormatFromName derives the image format from a file extension.
func FormatFromName(name string) (ImageFormat, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".png":
		return FormatPNG, nil
	case ".gif":
		return FormatGIF, nil
	case ".bmp":
		return FormatBMP, nil
	case ".webp":
		return FormatWEBP, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// ============================================================================
// Entities
// ============================================================================

// SourceImage is one uploaded photograph.
type SourceImage struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Format    ImageFormat `json:"format"`
	Size      int         `json:"size"`
	CreatedAt time.Time   `json:"created_at"`
	Data      []byte      `json:"-"`
}

// SanitizeFilename strips any directory component and replaces characters outside
// [A-Za-z0-9._-] with '_'. It returns "" for names that reduce to nothing usable.
func SanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return strings.TrimLeft(b.String(), ".")
}

// NewSourceImage validates the name and wraps the raw bytes.
func NewSourceImage(name string, data []byte) (*SourceImage, error) {
	if name == "" {
		return nil, ErrEmptyFilename
	}
	name = SanitizeFilename(name)
	if name == "" {
		return nil, ErrEmptyFilename
	}
	if len(data) == 0 {
		return nil, ErrNoImageUploaded
	}
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	return &SourceImage{
		ID:        uuid.New(),
		Name:      name,
		Format:    format,
		Size:      len(data),
		CreatedAt: time.Now(),
		Data:      data,
	}, nil
}

// BaseName is the file name without directory and extension.
func (s SourceImage) BaseName() string {
	base := filepath.Base(s.Name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DetectionBox is a plate region reported by the detector, in pixel coordinates.
type DetectionBox struct {
	ImageID    uuid.UUID `json:"image_id"`
	Index      int       `json:"index"`
	X1         int       `json:"x1"`
	Y1         int       `json:"y1"`
	X2         int       `json:"x2"`
	Y2         int       `json:"y2"`
	Confidence *float64  `json:"confidence,omitempty"`
}

// Rect returns the box as an image rectangle.
func (b DetectionBox) Rect() image.Rectangle {
	return image.Rect(b.X1, b.Y1, b.X2, b.Y2)
}

// Clamp restricts the box to bounds. ok is false when nothing of the box remains.
func (b DetectionBox) Clamp(bounds image.Rectangle) (DetectionBox, bool) {
	clamped := b
	clamped.X1 = max(b.X1, bounds.Min.X)
	clamped.Y1 = max(b.Y1, bounds.Min.Y)
	clamped.X2 = min(b.X2, bounds.Max.X)
	clamped.Y2 = min(b.Y2, bounds.Max.Y)
	if clamped.X1 >= clamped.X2 || clamped.Y1 >= clamped.Y2 {
		return clamped, false
	}
	return clamped, true
}

// CropArtifact is an enhanced, JPEG-encoded plate crop ready for OCR.
type CropArtifact struct {
	Box      DetectionBox `json:"box"`
	Filename string       `json:"filename"`
	Data     []byte       `json:"-"`
}

// CropFilename is deterministic in the source image name and box index.
func CropFilename(src SourceImage, boxIndex int) string {
	return fmt.Sprintf("%s_plate_%d.jpg", src.BaseName(), boxIndex)
}
