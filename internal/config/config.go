package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	ProviderA = "A"
	ProviderB = "B"

	OCRBackendVision      = "vision"
	OCRBackendRekognition = "rekognition"

	ImageStoreFilesystem = "filesystem"
	ImageStoreMinio      = "minio"
)

type Config struct {
	Server     ServerConfig
	Logger     LoggerConfig
	Detector   DetectorConfig
	OCR        OCRConfig
	Registry   RegistryConfig
	Pipeline   PipelineConfig
	ImageStore ImageStoreConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type DetectorConfig struct {
	URL           string
	Timeout       time.Duration
	MinConfidence float64
}

type OCRConfig struct {
	Backend       string
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MinConfidence float64
	AWSRegion     string
}

type RegistryConfig struct {
	Provider  string
	APIKey    string
	AURL      string
	BURL      string
	Timeout   time.Duration
	RateLimit float64
}

type PipelineConfig struct {
	Concurrent   bool
	Workers      int
	EnhanceAlpha float64
	EnhanceBeta  float64
	PlatePattern string
}

type ImageStoreConfig struct {
	Backend string
	Dir     string
	Minio   MinioConfig
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("could not load .env file: %v", err)
	}

	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	v.SetDefault("DETECTOR_URL", "http://localhost:5000/predict")
	v.SetDefault("DETECTOR_TIMEOUT", "30s")
	v.SetDefault("DETECTOR_MIN_CONFIDENCE", 0.0)

	v.SetDefault("OCR_BACKEND", OCRBackendVision)
	v.SetDefault("OCR_BASE_URL", "https://api.moondream.ai/v1")
	v.SetDefault("OCR_MODEL", "moondream-2B")
	v.SetDefault("OCR_TIMEOUT", "60s")
	v.SetDefault("OCR_MIN_CONFIDENCE", 80.0)
	v.SetDefault("AWS_REGION", "ap-south-1")

	v.SetDefault("REGISTRY_PROVIDER", ProviderA)
	v.SetDefault("REGISTRY_A_URL", "https://vehicle-rc-verification-advance.p.rapidapi.com/Getrcfulldetails")
	v.SetDefault("REGISTRY_TIMEOUT", "10s")
	v.SetDefault("REGISTRY_RATE_LIMIT", 0.0)

	v.SetDefault("PIPELINE_CONCURRENT", false)
	v.SetDefault("PIPELINE_WORKERS", 4)
	v.SetDefault("ENHANCE_ALPHA", 1.2)
	v.SetDefault("ENHANCE_BETA", 10.0)
	v.SetDefault("PLATE_PATTERN", "")

	v.SetDefault("IMAGE_STORE", ImageStoreFilesystem)
	v.SetDefault("IMAGE_STORE_DIR", ".")
	v.SetDefault("MINIO_BUCKET", "lpr-images")
	v.SetDefault("MINIO_USE_SSL", false)

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Detector: DetectorConfig{
			URL:           v.GetString("DETECTOR_URL"),
			Timeout:       parseDuration(v, "DETECTOR_TIMEOUT", 30*time.Second),
			MinConfidence: v.GetFloat64("DETECTOR_MIN_CONFIDENCE"),
		},
		OCR: OCRConfig{
			Backend:       strings.ToLower(v.GetString("OCR_BACKEND")),
			APIKey:        v.GetString("OCR_API_KEY"),
			BaseURL:       v.GetString("OCR_BASE_URL"),
			Model:         v.GetString("OCR_MODEL"),
			Timeout:       parseDuration(v, "OCR_TIMEOUT", 60*time.Second),
			MinConfidence: v.GetFloat64("OCR_MIN_CONFIDENCE"),
			AWSRegion:     v.GetString("AWS_REGION"),
		},
		Registry: RegistryConfig{
			Provider:  strings.ToUpper(v.GetString("REGISTRY_PROVIDER")),
			APIKey:    v.GetString("REGISTRY_API_KEY"),
			AURL:      v.GetString("REGISTRY_A_URL"),
			BURL:      v.GetString("REGISTRY_B_URL"),
			Timeout:   parseDuration(v, "REGISTRY_TIMEOUT", 10*time.Second),
			RateLimit: v.GetFloat64("REGISTRY_RATE_LIMIT"),
		},
		Pipeline: PipelineConfig{
			Concurrent:   v.GetBool("PIPELINE_CONCURRENT"),
			Workers:      v.GetInt("PIPELINE_WORKERS"),
			EnhanceAlpha: v.GetFloat64("ENHANCE_ALPHA"),
			EnhanceBeta:  v.GetFloat64("ENHANCE_BETA"),
			PlatePattern: v.GetString("PLATE_PATTERN"),
		},
		ImageStore: ImageStoreConfig{
			Backend: strings.ToLower(v.GetString("IMAGE_STORE")),
			Dir:     v.GetString("IMAGE_STORE_DIR"),
			Minio: MinioConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				Bucket:    v.GetString("MINIO_BUCKET"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
			},
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that would only fail later, at first use.
func (c *Config) Validate() error {
	switch c.Registry.Provider {
	case ProviderA:
		if c.Registry.AURL == "" {
			return fmt.Errorf("REGISTRY_A_URL is required for provider %s", ProviderA)
		}
	case ProviderB:
		if c.Registry.BURL == "" {
			return fmt.Errorf("REGISTRY_B_URL is required for provider %s", ProviderB)
		}
	default:
		return fmt.Errorf("unknown REGISTRY_PROVIDER %q (want A or B)", c.Registry.Provider)
	}

	switch c.OCR.Backend {
	case OCRBackendVision, OCRBackendRekognition:
	default:
		return fmt.Errorf("unknown OCR_BACKEND %q", c.OCR.Backend)
	}

	switch c.ImageStore.Backend {
	case ImageStoreFilesystem:
	case ImageStoreMinio:
		if c.ImageStore.Minio.Endpoint == "" {
			return errors.New("MINIO_ENDPOINT is required when IMAGE_STORE=minio")
		}
	default:
		return fmt.Errorf("unknown IMAGE_STORE %q", c.ImageStore.Backend)
	}

	if c.Pipeline.Workers < 1 {
		c.Pipeline.Workers = 1
	}
	return nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
