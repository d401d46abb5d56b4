package domain

import (
	"errors"
	"fmt"
)

// ============================================================================
// Run-level Errors
// ============================================================================

var (
	// ErrNoImages is the pipeline input error: a run was requested with nothing to process.
	ErrNoImages              = errors.New("no images supplied")
	ErrDetectorUnavailable   = errors.New("plate detector is not initialized")
	ErrImageStoreUnavailable = errors.New("image store is not initialized")
)

// ============================================================================
// Intake Errors
// ============================================================================

var (
	ErrNoImageUploaded   = errors.New("no image uploaded")
	ErrEmptyFilename     = errors.New("no selected file")
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// ============================================================================
// Stage Errors
// ============================================================================

var (
	ErrDegenerateCrop = errors.New("crop has zero area after clamping")
	ErrEmptyOCRText   = errors.New("ocr service returned empty text")
)

// DetectionError reports that the detector could not process one image.
type DetectionError struct {
	Image string
	Err   error
}

func (e *DetectionError) Error() string {
	return fmt.Sprintf("detect plates in %s: %v", e.Image, e.Err)
}

func (e *DetectionError) Unwrap() error { return e.Err }

// OcrServiceError reports a failed call to the vision service for one crop.
type OcrServiceError struct {
	Crop string
	Err  error
}

func (e *OcrServiceError) Error() string {
	return fmt.Sprintf("ocr %s: %v", e.Crop, e.Err)
}

func (e *OcrServiceError) Unwrap() error { return e.Err }

// ============================================================================
// Lookup Errors
// ============================================================================

// LookupErrorKind classifies why a registry lookup did not yield a record.
type LookupErrorKind string

const (
	LookupNetwork           LookupErrorKind = "NETWORK"
	LookupMalformedResponse LookupErrorKind = "MALFORMED_RESPONSE"
	LookupProviderError     LookupErrorKind = "PROVIDER_ERROR"
	LookupSkipped           LookupErrorKind = "SKIPPED"
)

// LookupError is returned as data inside a VehicleRecord, never thrown past the lookup adapter.
type LookupError struct {
	Kind       LookupErrorKind `json:"kind"`
	Message    string          `json:"message"`
	StatusCode int             `json:"status_code,omitempty"`
	Raw        string          `json:"raw,omitempty"`
}

func (e *LookupError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
