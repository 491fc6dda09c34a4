package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RequireValidSongID ensures the path param ":id" parses as an int64.
// Song ids come from the external catalog and may be any signed value,
// so only the parse is enforced here.
func RequireValidSongID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := strconv.ParseInt(c.Param("id"), 10, 64); err != nil {
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		c.Next()
	}
}
