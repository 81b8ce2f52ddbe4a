package middleware

import (
	"fmt"
	"time"

	"github.com/ariebrainware/hospital-booking/util"
	"github.com/gin-gonic/gin"
)

// EndpointCallLogger records each HTTP request as an audit event. Calls made
// by an authenticated principal are also persisted when util.SetAuditSink was
// called during startup; anonymous calls are only logged.
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
		}
		if q := c.Request.URL.RawQuery; q != "" {
			details["query"] = q
		}
		if id := GetRequestID(c); id != "" {
			details["request_id"] = id
		}

		p := GetPrincipal(c)
		util.LogAuditEvent(util.AuditEvent{
			EventType: util.EventEndpointCall,
			Actor:     p.Identity.Email,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
			Message:   fmt.Sprintf("%s %s -> %d", c.Request.Method, c.Request.URL.Path, status),
			Details:   details,
			LogOnly:   !p.Authenticated(),
		})
	}
}
