package handlers

import (
	"github.com/gin-gonic/gin"

	ports "plate-lookup-service/internal/core/ports/output"
	"plate-lookup-service/internal/core/services"
)

type Handler struct {
	imageSvc    *services.ImageService
	pipelineSvc *services.PipelineService
	detector    ports.PlateDetector
}

func New(
	imageSvc *services.ImageService,
	pipelineSvc *services.PipelineService,
	detector ports.PlateDetector,
) *Handler {
	return &Handler{
		imageSvc:    imageSvc,
		pipelineSvc: pipelineSvc,
		detector:    detector,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Images
	r.POST("/upload", h.UploadImages)
	r.GET("/images", h.ListImages)
	r.POST("/clear-images", h.ClearImages)

	// Pipeline
	r.POST("/run-ocr", h.RunOCR)

	r.GET("/healthz", h.Health)
}
