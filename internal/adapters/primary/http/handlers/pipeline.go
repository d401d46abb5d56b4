package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"plate-lookup-service/internal/adapters/primary/http/dto"
)

// RunOCR runs the pipeline over every stored image. The store is emptied afterwards.
func (h *Handler) RunOCR(c *gin.Context) {
	report, err := h.pipelineSvc.RunStored(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("pipeline run failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *Handler) Health(c *gin.Context) {
	resp := dto.HealthResponse{Status: "ok", Detector: "ok"}
	if h.detector == nil {
		resp.Detector = "not configured"
	} else if err := h.detector.Ping(c.Request.Context()); err != nil {
		resp.Detector = "unavailable: " + err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
