package handlers

import (
	"net/http"
	"strconv"

	"fabrication-service/internal/cart"
	"fabrication-service/internal/dto"
	"fabrication-service/internal/models"
	"fabrication-service/internal/pricing"
	"fabrication-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CartHandler struct {
	svc service.CartService
	log *zap.Logger
}

func NewCartHandler(svc service.CartService, log *zap.Logger) *CartHandler {
	return &CartHandler{svc: svc, log: log}
}

// List returns the session's cart with file states.
// GET /api/cart
func (h *CartHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.fail(c, "list cart failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.CartResponse{Items: dto.FromCartItems(items)})
}

// PATCH /api/cart
func (h *CartHandler) Update(c *gin.Context) {
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid cart update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", []dto.FieldError{}))
		return
	}

	it, err := h.svc.UpdateItem(c.Request.Context(), req.ID, cart.Patch{Quantity: req.Quantity, Color: req.Color})
	if err != nil {
		h.fail(c, "update cart item failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.UpdateCartItemResponse{Item: dto.FromCartItem(*it)})
}

// DELETE /api/cart?id=
func (h *CartHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid item id", []dto.FieldError{
			{Field: "id", Message: "must be a uuid", Tag: "uuid"},
		}))
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), id); err != nil {
		h.fail(c, "delete cart item failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteCartItemResponse{Success: true})
}

// Summary prices the cart for the options in the query string, the same
// parameters the cart page keeps in its URL.
// GET /api/cart/summary?multicolor=&priority=&assistance=&comments=
func (h *CartHandler) Summary(c *gin.Context) {
	opts := models.OrderOptions{
		Comments:   c.Query("comments"),
		Multicolor: queryBool(c, "multicolor"),
		Priority:   queryBool(c, "priority"),
		Assistance: queryBool(c, "assistance"),
	}
	s, err := h.svc.Summary(c.Request.Context(), opts)
	if err != nil {
		h.fail(c, "cart summary failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.CartSummaryResponse{
		Subtotal:        pricing.FormatCents(s.SubtotalCents),
		Addons:          pricing.FormatCents(s.AddonCents),
		Total:           pricing.FormatCents(s.TotalCents),
		SubtotalCents:   s.SubtotalCents,
		AddonCents:      s.AddonCents,
		TotalCents:      s.TotalCents,
		ItemCount:       s.ItemCount,
		EligibleCount:   s.EligibleCount,
		HasProcessing:   s.HasInFlight,
		HasErrors:       s.HasErrored,
		CheckoutReady:   s.Ready,
		ProductionDays:  s.Estimate.Days,
		OfferPriority:   s.Estimate.OfferPriority,
		PrioritySavings: s.Estimate.PrioritySavings,
	})
}

func (h *CartHandler) fail(c *gin.Context, msg string, err error) {
	code, body := toHTTPErr(err)
	if code >= http.StatusInternalServerError {
		h.log.Error(msg, zap.Error(err))
	} else {
		h.log.Warn(msg, zap.Error(err))
	}
	c.JSON(code, body)
}

func queryBool(c *gin.Context, key string) bool {
	b, _ := strconv.ParseBool(c.Query(key))
	return b
}
