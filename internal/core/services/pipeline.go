package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"plate-lookup-service/internal/core/domain"
	ports "plate-lookup-service/internal/core/ports/output"
)

// PipelineOptions controls how a run is scheduled.
type PipelineOptions struct {
	Concurrent bool
	Workers    int
	Enhance    EnhanceParams
}

// PipelineService runs detect, crop, OCR, resolve and lookup over a batch of images.
type PipelineService struct {
	detector ports.PlateDetector
	ocr      ports.OCRClient
	resolver *PlateResolver
	lookup   *RegistryLookupService
	store    ports.ImageStore
	opts     PipelineOptions
}

// NewPipelineService creates a pipeline. store may be nil, in which case RunStored is unavailable.
func NewPipelineService(
	detector ports.PlateDetector,
	ocr ports.OCRClient,
	resolver *PlateResolver,
	lookup *RegistryLookupService,
	store ports.ImageStore,
	opts PipelineOptions,
) *PipelineService {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Enhance == (EnhanceParams{}) {
		opts.Enhance = DefaultEnhanceParams()
	}
	return &PipelineService{
		detector: detector,
		ocr:      ocr,
		resolver: resolver,
		lookup:   lookup,
		store:    store,
		opts:     opts,
	}
}

// imageOutcome is everything one image contributed to a run.
type imageOutcome struct {
	started       bool
	failed        bool
	boxes         int
	cropsProduced int
	cropsSkipped  int
	ocrFailures   int
	results       []domain.OcrResult
	diagnostics   []domain.Diagnostic
}

// Run processes images and returns the aggregated report. Only an empty batch or a missing
// detector fail the run; every other failure is recorded in the report. Crops are kept in memory
// and never reach the image store.
func (s *PipelineService) Run(ctx context.Context, images []domain.SourceImage) (*domain.RunReport, error) {
	return s.run(ctx, images, false)
}

func (s *PipelineService) run(ctx context.Context, images []domain.SourceImage, persistCrops bool) (*domain.RunReport, error) {
	if s.detector == nil {
		return nil, domain.ErrDetectorUnavailable
	}
	if len(images) == 0 {
		return nil, domain.ErrNoImages
	}

	report := &domain.RunReport{
		RunID:       uuid.New(),
		StartedAt:   time.Now(),
		Entries:     []domain.PlateEntry{},
		OCRResults:  []domain.OcrResult{},
		Diagnostics: []domain.Diagnostic{},
	}
	logger := log.WithFields(log.Fields{
		"run_id": report.RunID,
		"images": len(images),
	})
	logger.Info("pipeline run started")

	outcomes := make([]imageOutcome, len(images))
	s.forEach(ctx, len(images), func(i int) {
		outcomes[i] = s.processImage(ctx, report.RunID, images[i], persistCrops)
	})

	report.Counts.ImagesSupplied = len(images)
	for i, out := range outcomes {
		if !out.started {
			report.Diagnostics = append(report.Diagnostics, domain.Diagnostic{
				Stage:   domain.StageRun,
				Subject: images[i].Name,
				Message: "cancelled before processing",
			})
			continue
		}
		if out.failed {
			report.Counts.ImagesFailed++
		} else {
			report.Counts.ImagesProcessed++
		}
		report.Counts.BoxesDetected += out.boxes
		report.Counts.CropsProduced += out.cropsProduced
		report.Counts.CropsSkipped += out.cropsSkipped
		report.Counts.OCRFailures += out.ocrFailures
		for _, r := range out.results {
			if r.Unreadable {
				report.Counts.UnreadableCrops++
			}
		}
		report.OCRResults = append(report.OCRResults, out.results...)
		report.Diagnostics = append(report.Diagnostics, out.diagnostics...)
	}

	candidates, diags := s.resolver.Resolve(report.OCRResults)
	report.Diagnostics = append(report.Diagnostics, diags...)
	report.Counts.PlatesResolved = len(candidates)

	// Every candidate gets a record; the lookup service marks those it could not start as skipped.
	records := make([]domain.VehicleRecord, len(candidates))
	s.forEach(context.Background(), len(candidates), func(i int) {
		records[i] = s.lookup.Lookup(ctx, candidates[i].Text)
	})

	for i, c := range candidates {
		if records[i].Failed() {
			report.Counts.LookupFailures++
		}
		report.Entries = append(report.Entries, domain.PlateEntry{
			Plate:   c.Text,
			Sources: c.Sources,
			Record:  records[i],
		})
	}

	report.Cancelled = ctx.Err() != nil
	report.FinishedAt = time.Now()
	logger.WithFields(log.Fields{
		"plates":          report.Counts.PlatesResolved,
		"lookup_failures": report.Counts.LookupFailures,
		"images_failed":   report.Counts.ImagesFailed,
		"cancelled":       report.Cancelled,
		"duration_ms":     report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	}).Info("pipeline run finished")
	return report, nil
}

// RunStored runs the pipeline over every image in the store, saving crops next to them, and
// clears the store afterwards whatever the outcome.
func (s *PipelineService) RunStored(ctx context.Context) (*domain.RunReport, error) {
	if s.store == nil {
		return nil, fmt.Errorf("run stored images: %w", domain.ErrImageStoreUnavailable)
	}
	defer func() {
		removed, err := s.store.Clear(context.WithoutCancel(ctx))
		if err != nil {
			log.WithError(err).Error("failed to clear image store after run")
			return
		}
		log.WithField("removed", removed).Debug("image store cleared after run")
	}()

	images, err := s.store.ListImages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stored images: %w", err)
	}
	return s.run(ctx, images, true)
}

// forEach calls fn for 0..n-1, sequentially or on a bounded pool. No new call starts once ctx is done.
func (s *PipelineService) forEach(ctx context.Context, n int, fn func(i int)) {
	stopped := func() bool { return ctx.Err() != nil }

	if !s.opts.Concurrent || s.opts.Workers == 1 {
		for i := 0; i < n; i++ {
			if stopped() {
				return
			}
			fn(i)
		}
		return
	}

	var g errgroup.Group
	g.SetLimit(s.opts.Workers)
	for i := 0; i < n; i++ {
		if stopped() {
			break
		}
		g.Go(func() error {
			if stopped() {
				return nil
			}
			fn(i)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *PipelineService) processImage(ctx context.Context, runID uuid.UUID, img domain.SourceImage, persistCrop bool) imageOutcome {
	out := imageOutcome{started: true}
	logger := log.WithFields(log.Fields{
		"run_id": runID,
		"image":  img.Name,
	})

	decoded, err := DecodeImage(img.Data)
	if err != nil {
		return failImage(out, logger, &domain.DetectionError{Image: img.Name, Err: err})
	}

	boxes, err := s.detector.Detect(context.WithoutCancel(ctx), img)
	if err != nil {
		var detErr *domain.DetectionError
		if !errors.As(err, &detErr) {
			detErr = &domain.DetectionError{Image: img.Name, Err: err}
		}
		return failImage(out, logger, detErr)
	}
	out.boxes = len(boxes)
	logger.WithField("boxes", len(boxes)).Debug("plates detected")

	for idx, box := range boxes {
		if ctx.Err() != nil {
			out.diagnostics = append(out.diagnostics, domain.Diagnostic{
				Stage:   domain.StageRun,
				Subject: img.Name,
				Message: fmt.Sprintf("cancelled before box %d", idx),
			})
			break
		}
		box.Index = idx
		box.ImageID = img.ID

		crop, err := CropAndEnhance(decoded, img, box, s.opts.Enhance)
		if err != nil {
			out.cropsSkipped++
			out.diagnostics = append(out.diagnostics, domain.Diagnostic{
				Stage:   domain.StageCrop,
				Subject: domain.CropFilename(img, idx),
				Message: err.Error(),
			})
			continue
		}
		out.cropsProduced++

		if persistCrop {
			if err := s.store.SaveCrop(context.WithoutCancel(ctx), *crop); err != nil {
				logger.WithError(err).WithField("crop", crop.Filename).Warn("failed to persist crop")
				out.diagnostics = append(out.diagnostics, domain.Diagnostic{
					Stage:   domain.StageStore,
					Subject: crop.Filename,
					Message: err.Error(),
				})
			}
		}

		res, err := s.ocr.ExtractText(context.WithoutCancel(ctx), *crop)
		if err != nil {
			var ocrErr *domain.OcrServiceError
			if !errors.As(err, &ocrErr) {
				ocrErr = &domain.OcrServiceError{Crop: crop.Filename, Err: err}
			}
			logger.WithError(ocrErr).WithField("crop", crop.Filename).Warn("ocr failed, marking crop unreadable")
			out.ocrFailures++
			out.results = append(out.results, domain.Unreadable(crop.Filename, ocrErr.Error()))
			out.diagnostics = append(out.diagnostics, domain.Diagnostic{
				Stage:   domain.StageOCR,
				Subject: crop.Filename,
				Message: ocrErr.Error(),
			})
			continue
		}
		res.Crop = crop.Filename
		out.results = append(out.results, res)
	}
	return out
}

func failImage(out imageOutcome, logger *log.Entry, err *domain.DetectionError) imageOutcome {
	logger.WithError(err).Warn("image failed, continuing with the rest of the batch")
	out.failed = true
	out.diagnostics = append(out.diagnostics, domain.Diagnostic{
		Stage:   domain.StageDetect,
		Subject: err.Image,
		Message: err.Error(),
	})
	return out
}
