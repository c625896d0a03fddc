package handlers

import (
	"net/http"

	"fabrication-service/internal/dto"
	"fabrication-service/internal/service"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatusEventType is the CloudEvents type the worker sends.
const StatusEventType = "com.fabrication.file.status"

type WebhookHandler struct {
	ingest service.IngestService
	log    *zap.Logger
}

func NewWebhookHandler(ingest service.IngestService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{ingest: ingest, log: log}
}

// FileStatus accepts a worker status report wrapped in a CloudEvent, in
// binary or structured mode.
// POST /api/webhooks/file-status
func (h *WebhookHandler) FileStatus(c *gin.Context) {
	ev, err := cloudevents.NewEventFromHTTPRequest(c.Request)
	if err != nil {
		h.log.Warn("invalid cloudevent", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid cloudevent", []dto.FieldError{}))
		return
	}
	if ev.Type() != StatusEventType {
		h.log.Warn("unexpected event type", zap.String("type", ev.Type()), zap.String("id", ev.ID()))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("unsupported event type", []dto.FieldError{
			{Field: "type", Message: "must be " + StatusEventType},
		}))
		return
	}

	if err := h.ingest.Ingest(c.Request.Context(), ev.Data()); err != nil {
		code, body := toHTTPErr(err)
		if code >= http.StatusInternalServerError {
			h.log.Error("status ingest failed", zap.String("event_id", ev.ID()), zap.Error(err))
		}
		c.JSON(code, body)
		return
	}
	c.Status(http.StatusAccepted)
}
