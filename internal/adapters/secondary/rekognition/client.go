package rekognition

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	log "github.com/sirupsen/logrus"

	"plate-lookup-service/internal/core/domain"
	ports "plate-lookup-service/internal/core/ports/output"
)

// DetectTextAPI is the subset of the Rekognition client used here.
type DetectTextAPI interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

const defaultTimeout = 30 * time.Second

type rekognitionClient struct {
	api           DetectTextAPI
	minConfidence float32
	timeout       time.Duration
}

// NewRekognitionClient creates an OCR client backed by AWS Rekognition DetectText.
// Lines below minConfidence (0-100) are ignored. Each call is bounded by timeout.
func NewRekognitionClient(api DetectTextAPI, minConfidence float64, timeout time.Duration) ports.OCRClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &rekognitionClient{api: api, minConfidence: float32(minConfidence), timeout: timeout}
}

func (c *rekognitionClient) ExtractText(ctx context.Context, crop domain.CropArtifact) (domain.OcrResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.api.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: crop.Data},
	})
	if err != nil {
		return domain.OcrResult{}, &domain.OcrServiceError{Crop: crop.Filename, Err: fmt.Errorf("rekognition detect text: %w", err)}
	}

	lines := make([]types.TextDetection, 0, len(out.TextDetections))
	for _, td := range out.TextDetections {
		if td.Type != types.TextTypesLine || td.DetectedText == nil {
			continue
		}
		if aws.ToFloat32(td.Confidence) < c.minConfidence {
			continue
		}
		lines = append(lines, td)
	}
	sort.SliceStable(lines, func(i, j int) bool {
		return top(lines[i]) < top(lines[j])
	})

	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, aws.ToString(l.DetectedText))
	}

	log.WithFields(log.Fields{
		"crop":       crop.Filename,
		"detections": len(out.TextDetections),
		"lines":      len(parts),
	}).Debug("rekognition text detected")

	if len(parts) == 0 {
		return domain.Unreadable(crop.Filename, ""), nil
	}
	return domain.OcrResultFromText(crop.Filename, strings.Join(parts, "")), nil
}

func top(td types.TextDetection) float32 {
	if td.Geometry == nil || td.Geometry.BoundingBox == nil {
		return 0
	}
	return aws.ToFloat32(td.Geometry.BoundingBox.Top)
}
