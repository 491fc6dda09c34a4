package middleware

import (
	"net/http"
	"time"

	"github.com/edirooss/museq-server/internal/principal"
	"github.com/edirooss/museq-server/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Authentication allows access if either valid Basic credentials or a valid
// session exists. Responds with 401 Unauthorized if neither validates.
func Authentication(authsvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isBasicAuthenticated(c, authsvc) || isSessionAuthenticated(c, authsvc) {
			c.Next()
			return
		}
		c.AbortWithStatus(http.StatusUnauthorized)
	}
}

// isBasicAuthenticated checks the HTTP request for Basic Authentication credentials.
func isBasicAuthenticated(c *gin.Context, authsvc *service.AuthService) bool {
	user, pass, hasAuth := c.Request.BasicAuth()
	if !hasAuth {
		return false
	}
	_, ok := authsvc.ValidateUsernamePassword(c, user, pass, principal.Basic)
	return ok
}

// isSessionAuthenticated returns true if the session is valid.
// Also updates the session's "last_touch" timestamp if older than 15 minutes.
func isSessionAuthenticated(c *gin.Context, authsvc *service.AuthService) bool {
	session := sessions.Default(c)
	userID, _ := session.Get("uid").(string)
	if userID == "" {
		return false
	}

	if _, ok := authsvc.ValidateSessionUser(c, userID); !ok {
		return false
	}

	const sessionTTL = 15 * 60 // 15 minutes
	now := time.Now().Unix()
	lastTouch, _ := session.Get("last_touch").(int64)
	if lastTouch == 0 || now-lastTouch > sessionTTL {
		session.Set("last_touch", now)
		_ = session.Save()
	}

	return true
}
