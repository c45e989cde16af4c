package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/veterinary-salons/backend/util"
)

// EndpointCallLogger logs each HTTP request as an endpoint event. Events are
// persisted when util.SetSecurityLoggerDB was called at startup.
func EndpointCallLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		status := c.Writer.Status()

		details := map[string]interface{}{
			"method":      c.Request.Method,
			"path":        c.FullPath(),
			"raw_path":    c.Request.URL.Path,
			"status":      status,
			"duration_ms": duration.Milliseconds(),
			"query":       c.Request.URL.RawQuery,
		}
		var userID, email string
		if p, ok := GetPrincipal(c); ok {
			userID = fmt.Sprintf("%d", p.UserID)
			email = p.Email
			details["profile_type"] = p.ProfileType
			details["profile_id"] = p.ProfileID
		}

		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventEndpointCall,
			UserID:    userID,
			Email:     email,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   details,
		})
	}
}
