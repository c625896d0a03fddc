package middleware

import (
	"net/http"

	"fabrication-service/internal/dto"
	"fabrication-service/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutEnabled is the checkout kill-switch. It must run before session
// and body checks so a disabled checkout answers 503 to every request.
func CheckoutEnabled(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, dto.NewUnavailableError(service.ErrCheckoutUnavailable.Error()))
			return
		}
		c.Next()
	}
}
