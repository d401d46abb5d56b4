package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"plate-lookup-service/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Bad request / validation errors
	case errors.Is(err, domain.ErrNoImages),
		errors.Is(err, domain.ErrNoImageUploaded),
		errors.Is(err, domain.ErrEmptyFilename),
		errors.Is(err, domain.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrDetectorUnavailable),
		errors.Is(err, domain.ErrImageStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
