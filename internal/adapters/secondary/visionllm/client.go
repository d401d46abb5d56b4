package visionllm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"plate-lookup-service/internal/config"
	"plate-lookup-service/internal/core/domain"
	ports "plate-lookup-service/internal/core/ports/output"
)

// maxResponseBytes bounds how much of a completion response is read.
const maxResponseBytes = 1 << 20

const platePrompt = `You are an expert OCR system. Extract the vehicle license plate in the image.

Rules:
- Combine all characters into one string.
- Remove spaces and special characters.
- Output only the plate text.
- If unreadable, return: ` + domain.NotFoundSentinel + `.`

type visionClient struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

// NewVisionClient creates an OCR client for an OpenAI-compatible vision chat endpoint.
func NewVisionClient(cfg *config.OCRConfig) ports.OCRClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "moondream-2B"
	}

	return &visionClient{
		endpoint: strings.TrimSuffix(cfg.BaseURL, "/") + "/chat/completions",
		apiKey:   cfg.APIKey,
		model:    model,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Chat completion API types
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *visionClient) ExtractText(ctx context.Context, crop domain.CropArtifact) (domain.OcrResult, error) {
	text, err := c.complete(ctx, crop)
	if err != nil {
		return domain.OcrResult{}, &domain.OcrServiceError{Crop: crop.Filename, Err: err}
	}
	return domain.OcrResultFromText(crop.Filename, text), nil
}

func (c *visionClient) complete(ctx context.Context, crop domain.CropArtifact) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(crop.Data)}},
				{Type: "text", Text: platePrompt},
			},
		}},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("vision service status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", domain.ErrEmptyOCRText
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *visionClient) CloseIdleConnections() {
	c.client.CloseIdleConnections()
}
