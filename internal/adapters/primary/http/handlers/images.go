package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"plate-lookup-service/internal/adapters/primary/http/dto"
	"plate-lookup-service/internal/core/domain"
	"plate-lookup-service/internal/core/services"
)

// uploadFields are the multipart fields accepted for image files.
var uploadFields = []string{"image", "images"}

func (h *Handler) UploadImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrNoImageUploaded.Error()})
		return
	}

	var files []*multipart.FileHeader
	emptySelection := false
	for _, field := range uploadFields {
		files = append(files, form.File[field]...)
		// a file input submitted with nothing selected arrives as a plain value
		if _, ok := form.Value[field]; ok {
			emptySelection = true
		}
	}
	if len(files) == 0 {
		if emptySelection {
			mapDomainError(c, domain.ErrEmptyFilename)
			return
		}
		mapDomainError(c, domain.ErrNoImageUploaded)
		return
	}

	uploads := make([]services.Upload, 0, len(files))
	for _, fh := range files {
		data, err := readFile(fh)
		if err != nil {
			log.WithError(err).WithField("file", fh.Filename).Error("read upload failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read uploaded file"})
			return
		}
		uploads = append(uploads, services.Upload{Filename: fh.Filename, Data: data})
	}

	saved, err := h.imageSvc.Save(c.Request.Context(), uploads)
	if err != nil {
		log.WithError(err).Warn("upload rejected")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UploadResponse{
		Message: "Uploaded successfully",
		Images:  dto.ToImageResponses(saved),
	})
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (h *Handler) ListImages(c *gin.Context) {
	images, err := h.imageSvc.List(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("list images failed")
		mapDomainError(c, err)
		return
	}

	items := dto.ToImageResponses(images)
	c.JSON(http.StatusOK, dto.ListImagesResponse{
		Items: items,
		Total: len(items),
	})
}

func (h *Handler) ClearImages(c *gin.Context) {
	removed, err := h.imageSvc.Clear(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("clear images failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ClearResponse{
		Message: "Cleared successfully",
		Removed: removed,
	})
}
