package app

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsrekognition "github.com/aws/aws-sdk-go-v2/service/rekognition"
	log "github.com/sirupsen/logrus"

	"plate-lookup-service/internal/adapters/secondary/detector"
	"plate-lookup-service/internal/adapters/secondary/filestore"
	"plate-lookup-service/internal/adapters/secondary/objectstore"
	"plate-lookup-service/internal/adapters/secondary/registry"
	"plate-lookup-service/internal/adapters/secondary/rekognition"
	"plate-lookup-service/internal/adapters/secondary/visionllm"
	"plate-lookup-service/internal/config"
	ports "plate-lookup-service/internal/core/ports/output"
	"plate-lookup-service/internal/core/services"
)

// Clients holds the process-wide outbound clients. Build once with NewClients and release with Close.
type Clients struct {
	Detector ports.PlateDetector
	OCR      ports.OCRClient
	Registry ports.RegistryProvider
	Store    ports.ImageStore
}

type idleCloser interface {
	CloseIdleConnections()
}

// NewClients builds every adapter selected by cfg.
func NewClients(ctx context.Context, cfg *config.Config) (*Clients, error) {
	c := &Clients{
		Detector: detector.NewDetectorClient(&cfg.Detector),
	}

	switch cfg.OCR.Backend {
	case config.OCRBackendRekognition:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.OCR.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		c.OCR = rekognition.NewRekognitionClient(awsrekognition.NewFromConfig(awsCfg), cfg.OCR.MinConfidence, cfg.OCR.Timeout)
	default:
		if cfg.OCR.APIKey == "" {
			log.Warn("OCR_API_KEY is empty, vision OCR requests will likely be rejected")
		}
		c.OCR = visionllm.NewVisionClient(&cfg.OCR)
	}

	provider, err := registry.NewProvider(&cfg.Registry)
	if err != nil {
		return nil, err
	}
	c.Registry = provider
	if cfg.Registry.APIKey == "" {
		log.Warn("REGISTRY_API_KEY is empty, registry lookups will likely be rejected")
	}

	switch cfg.ImageStore.Backend {
	case config.ImageStoreMinio:
		c.Store, err = objectstore.NewMinioStore(ctx, &cfg.ImageStore.Minio)
	default:
		c.Store, err = filestore.NewFileStore(cfg.ImageStore.Dir)
	}
	if err != nil {
		return nil, fmt.Errorf("init image store: %w", err)
	}

	log.WithFields(log.Fields{
		"ocr_backend":  cfg.OCR.Backend,
		"registry":     provider.Name(),
		"image_store":  cfg.ImageStore.Backend,
		"detector_url": cfg.Detector.URL,
		"concurrent":   cfg.Pipeline.Concurrent,
		"workers":      cfg.Pipeline.Workers,
	}).Info("clients initialized")
	return c, nil
}

// Close releases pooled connections held by the clients.
func (c *Clients) Close() {
	for _, v := range []any{c.Detector, c.OCR, c.Registry, c.Store} {
		if ic, ok := v.(idleCloser); ok {
			ic.CloseIdleConnections()
		}
	}
}

// NewPipeline wires the pipeline controller onto the shared clients.
func NewPipeline(cfg *config.Config, c *Clients) (*services.PipelineService, error) {
	resolver, err := services.NewPlateResolver(cfg.Pipeline.PlatePattern)
	if err != nil {
		return nil, err
	}
	lookup := services.NewRegistryLookupService(c.Registry, cfg.Registry.RateLimit)

	return services.NewPipelineService(c.Detector, c.OCR, resolver, lookup, c.Store, services.PipelineOptions{
		Concurrent: cfg.Pipeline.Concurrent,
		Workers:    cfg.Pipeline.Workers,
		Enhance: services.EnhanceParams{
			Alpha: cfg.Pipeline.EnhanceAlpha,
			Beta:  cfg.Pipeline.EnhanceBeta,
		},
	}), nil
}
