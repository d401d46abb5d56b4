package detector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"plate-lookup-service/internal/config"
	"plate-lookup-service/internal/core/domain"
	ports "plate-lookup-service/internal/core/ports/output"
)

type detectorClient struct {
	predictURL    string
	healthURL     string
	minConfidence float64
	client        *http.Client
}

// NewDetectorClient creates a client for the plate detection inference server.
func NewDetectorClient(cfg *config.DetectorConfig) ports.PlateDetector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &detectorClient{
		predictURL:    cfg.URL,
		healthURL:     strings.TrimSuffix(strings.TrimSuffix(cfg.URL, "/"), "/predict") + "/health",
		minConfidence: cfg.MinConfidence,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Inference server response structures
type predictResponse struct {
	Detections []detection `json:"detections"`
}

type detection struct {
	X1         float64  `json:"x1"`
	Y1         float64  `json:"y1"`
	X2         float64  `json:"x2"`
	Y2         float64  `json:"y2"`
	Confidence *float64 `json:"confidence"`
}

func (c *detectorClient) Detect(ctx context.Context, img domain.SourceImage) ([]domain.DetectionBox, error) {
	boxes, err := c.detect(ctx, img)
	if err != nil {
		return nil, &domain.DetectionError{Image: img.Name, Err: err}
	}
	return boxes, nil
}

func (c *detectorClient) detect(ctx context.Context, img domain.SourceImage) ([]domain.DetectionBox, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", img.Name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, fmt.Errorf("write image: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.predictURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("detector returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var pr predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	boxes := make([]domain.DetectionBox, 0, len(pr.Detections))
	for _, d := range pr.Detections {
		if c.minConfidence > 0 && d.Confidence != nil && *d.Confidence < c.minConfidence {
			continue
		}
		boxes = append(boxes, domain.DetectionBox{
			ImageID:    img.ID,
			Index:      len(boxes),
			X1:         int(d.X1),
			Y1:         int(d.Y1),
			X2:         int(d.X2),
			Y2:         int(d.Y2),
			Confidence: d.Confidence,
		})
	}
	return boxes, nil
}

func (c *detectorClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("detector health check: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("detector health check returned %d", resp.StatusCode)
	}
	return nil
}

func (c *detectorClient) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}
