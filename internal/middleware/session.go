package middleware

import (
	"net/http"
	"strings"

	"fabrication-service/internal/dto"
	"fabrication-service/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie = "session_id"
	CtxSessionID  = "session_id"
)

// SessionRequired reads the session cookie and puts the session id both in
// the gin context and in the request context for the service layer.
// Sessions are issued elsewhere; an absent cookie is rejected with 401.
func SessionRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		sid = strings.TrimSpace(sid)
		if err != nil || sid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewUnauthorizedError("no session found"))
			return
		}

		c.Set(CtxSessionID, sid)
		c.Request = c.Request.WithContext(service.WithSessionID(c.Request.Context(), sid))
		c.Next()
	}
}
