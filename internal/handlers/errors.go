package handlers

import (
	"errors"
	"net/http"

	"fabrication-service/internal/cart"
	"fabrication-service/internal/checkout"
	"fabrication-service/internal/dto"
	"fabrication-service/internal/filestatus"
	"fabrication-service/internal/service"
)

// toHTTPErr maps domain errors to a status code and error body.
func toHTTPErr(err error) (int, dto.BaseError) {
	var oce *checkout.OrderCreationError
	switch {
	case errors.Is(err, checkout.ErrSessionMissing):
		return http.StatusUnauthorized, dto.NewUnauthorizedError(err.Error())
	case errors.Is(err, checkout.ErrCartEmpty):
		return http.StatusBadRequest, dto.NewCheckoutError("cart_empty", err.Error())
	case errors.Is(err, checkout.ErrItemsProcessing):
		return http.StatusBadRequest, dto.NewCheckoutError("items_processing", err.Error())
	case errors.Is(err, checkout.ErrItemsErrored):
		return http.StatusBadRequest, dto.NewCheckoutError("items_errored", err.Error())
	case errors.Is(err, checkout.ErrNoValidItems):
		return http.StatusBadRequest, dto.NewCheckoutError("no_valid_items", err.Error())
	case errors.As(err, &oce):
		return http.StatusBadGateway, dto.NewBadGatewayError("order creation failed", oce.Detail)
	case errors.Is(err, checkout.ErrNetwork), errors.Is(err, cart.ErrNetwork):
		return http.StatusServiceUnavailable, dto.NewUnavailableError("order service unreachable")
	case errors.Is(err, service.ErrCheckoutUnavailable):
		return http.StatusServiceUnavailable, dto.NewUnavailableError(err.Error())
	case errors.Is(err, service.ErrCheckoutInProgress):
		return http.StatusConflict, dto.NewConflictError(err.Error())
	case errors.Is(err, service.ErrItemNotFound):
		return http.StatusNotFound, dto.NewNotFoundError(err.Error())
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest, dto.NewValidationError(err.Error(), []dto.FieldError{
			{Field: "quantity", Message: err.Error(), Tag: "min"},
		})
	case errors.Is(err, filestatus.ErrMalformedEvent):
		return http.StatusBadRequest, dto.NewValidationError(err.Error(), nil)
	default:
		return http.StatusInternalServerError, dto.NewInternalError("")
	}
}
