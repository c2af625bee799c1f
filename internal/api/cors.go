package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS handles cross-origin headers for the configured origins.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, o := range allowedOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed && origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type")
			// Credentials only for explicit origins; pairing them with a
			// wildcard-echoed origin enables CSRF.
			for _, o := range allowedOrigins {
				if o != "*" && o == origin {
					c.Header("Access-Control-Allow-Credentials", "true")
					break
				}
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
