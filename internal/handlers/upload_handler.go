package handlers

import (
	"net/http"

	"fabrication-service/internal/dto"
	"fabrication-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UploadHandler struct {
	svc service.CartService
	log *zap.Logger
}

func NewUploadHandler(svc service.CartService, log *zap.Logger) *UploadHandler {
	return &UploadHandler{svc: svc, log: log}
}

// Register records a file already placed in object storage and queues it for
// processing. It answers right away; status arrives over the push channel.
// POST /api/upload
func (h *UploadHandler) Register(c *gin.Context) {
	var req dto.UploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid upload request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
		return
	}

	it, err := h.svc.RegisterUpload(c.Request.Context(), service.UploadInput{
		FileName:   req.FileName,
		FileSize:   req.FileSize,
		StorageURL: req.URL,
		Material:   req.Material,
		Color:      req.Color,
		Infill:     req.Infill,
	})
	if err != nil {
		code, body := toHTTPErr(err)
		h.log.Error("register upload failed", zap.Error(err))
		c.JSON(code, body)
		return
	}

	c.JSON(http.StatusCreated, dto.UploadResponse{
		FileID:     it.File.ID,
		CartItemID: it.ID,
		Status:     string(it.File.Status),
	})
}
