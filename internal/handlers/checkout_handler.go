package handlers

import (
	"net/http"

	"fabrication-service/internal/dto"
	"fabrication-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const idempotencyHeader = "Idempotency-Key"

type CheckoutHandler struct {
	svc service.CheckoutService
	log *zap.Logger
}

func NewCheckoutHandler(svc service.CheckoutService, log *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, log: log}
}

// Checkout creates a draft order for the cart and returns its invoice URL.
// Clients that may retry should send an Idempotency-Key header; the key used
// is echoed back either way.
// POST /api/checkout
func (h *CheckoutHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.log.Warn("invalid checkout request", zap.Error(err))
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
			return
		}
	}

	res, err := h.svc.Checkout(c.Request.Context(), service.CheckoutInput{
		Options:        req.Options(),
		Email:          req.Email,
		IdempotencyKey: c.GetHeader(idempotencyHeader),
	})
	if err != nil {
		code, body := toHTTPErr(err)
		if code >= http.StatusInternalServerError {
			h.log.Error("checkout failed", zap.Int("status", code), zap.Error(err))
		}
		c.JSON(code, body)
		return
	}

	c.Header(idempotencyHeader, res.IdempotencyKey)
	c.JSON(http.StatusOK, dto.CheckoutResponse{
		Success:        true,
		DraftOrderID:   res.Order.ID,
		DraftOrderName: res.Order.Name,
		InvoiceURL:     res.Order.InvoiceURL,
		TotalPrice:     res.Order.TotalPrice,
		Currency:       res.Order.Currency,
		IdempotencyKey: res.IdempotencyKey,
	})
}
