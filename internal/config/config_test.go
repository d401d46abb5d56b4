package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ProviderA, cfg.Registry.Provider)
	assert.Equal(t, 10*time.Second, cfg.Registry.Timeout)
	assert.Equal(t, OCRBackendVision, cfg.OCR.Backend)
	assert.Equal(t, "moondream-2B", cfg.OCR.Model)
	assert.False(t, cfg.Pipeline.Concurrent)
	assert.Equal(t, 4, cfg.Pipeline.Workers)
	assert.InDelta(t, 1.2, cfg.Pipeline.EnhanceAlpha, 1e-9)
	assert.InDelta(t, 10, cfg.Pipeline.EnhanceBeta, 1e-9)
	assert.Equal(t, ImageStoreFilesystem, cfg.ImageStore.Backend)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("REGISTRY_PROVIDER", "b")
	t.Setenv("REGISTRY_B_URL", "https://registry.example.com/v1/vehicle")
	t.Setenv("REGISTRY_TIMEOUT", "3s")
	t.Setenv("PIPELINE_CONCURRENT", "true")
	t.Setenv("PIPELINE_WORKERS", "8")
	t.Setenv("OCR_BACKEND", "Rekognition")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ProviderB, cfg.Registry.Provider)
	assert.Equal(t, 3*time.Second, cfg.Registry.Timeout)
	assert.True(t, cfg.Pipeline.Concurrent)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, OCRBackendRekognition, cfg.OCR.Backend)
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("DETECTOR_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Detector.Timeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Registry:   RegistryConfig{Provider: ProviderA, AURL: "https://a.example.com"},
			OCR:        OCRConfig{Backend: OCRBackendVision},
			ImageStore: ImageStoreConfig{Backend: ImageStoreFilesystem},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown provider", mutate: func(c *Config) { c.Registry.Provider = "C" }},
		{name: "provider B without url", mutate: func(c *Config) { c.Registry.Provider = ProviderB }},
		{name: "unknown ocr backend", mutate: func(c *Config) { c.OCR.Backend = "tesseract" }},
		{name: "minio without endpoint", mutate: func(c *Config) { c.ImageStore.Backend = ImageStoreMinio }},
		{name: "unknown store", mutate: func(c *Config) { c.ImageStore.Backend = "ftp" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := valid()
	cfg.Pipeline.Workers = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Pipeline.Workers)
}
