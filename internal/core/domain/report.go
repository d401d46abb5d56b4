package domain

import (
	"time"

	"github.com/google/uuid"
)

// VehicleRecord holds either registry fields or a lookup error, never both.
type VehicleRecord struct {
	Plate  string         `json:"plate"`
	Fields map[string]any `json:"fields,omitempty"`
	Error  *LookupError   `json:"error,omitempty"`
}

// Failed reports whether the lookup produced an error instead of fields.
func (r VehicleRecord) Failed() bool {
	return r.Error != nil
}

// RecordFromFields builds a successful record.
func RecordFromFields(plate string, fields map[string]any) VehicleRecord {
	if fields == nil {
		fields = map[string]any{}
	}
	return VehicleRecord{Plate: plate, Fields: fields}
}

// RecordFromError builds a failed record.
func RecordFromError(plate string, err *LookupError) VehicleRecord {
	return VehicleRecord{Plate: plate, Error: err}
}

// PlateEntry is one line of the run report.
type PlateEntry struct {
	Plate   string        `json:"plate"`
	Sources []string      `json:"sources"`
	Record  VehicleRecord `json:"record"`
}

// RunCounts are the aggregate counters of one run.
type RunCounts struct {
	ImagesSupplied  int `json:"images_supplied"`
	ImagesProcessed int `json:"images_processed"`
	ImagesFailed    int `json:"images_failed"`
	BoxesDetected   int `json:"boxes_detected"`
	CropsProduced   int `json:"crops_produced"`
	CropsSkipped    int `json:"crops_skipped"`
	UnreadableCrops int `json:"unreadable_crops"`
	OCRFailures     int `json:"ocr_failures"`
	PlatesResolved  int `json:"plates_resolved"`
	LookupFailures  int `json:"lookup_failures"`
}

// DiagnosticStage names the pipeline stage a diagnostic came from.
type DiagnosticStage string

const (
	StageDetect  DiagnosticStage = "detect"
	StageCrop    DiagnosticStage = "crop"
	StageOCR     DiagnosticStage = "ocr"
	StageResolve DiagnosticStage = "resolve"
	StageStore   DiagnosticStage = "store"
	StageRun     DiagnosticStage = "run"
)

// Diagnostic records an isolated, non-fatal failure.
type Diagnostic struct {
	Stage   DiagnosticStage `json:"stage"`
	Subject string          `json:"subject"`
	Message string          `json:"message"`
}

// RunReport is the aggregated result of one pipeline run. It is never persisted.
type RunReport struct {
	RunID       uuid.UUID    `json:"run_id"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	Cancelled   bool         `json:"cancelled"`
	Counts      RunCounts    `json:"counts"`
	Entries     []PlateEntry `json:"entries"`
	OCRResults  []OcrResult  `json:"ocr_results"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
