package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnit-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnit-backend/internal/platform/logger"
)

// resourceKeys names a route's :id after the collection segment in front of it.
var resourceKeys = map[string]string{
	"modules":        "module_id",
	"module":         "module_id",
	"chapters":       "chapter_id",
	"lessons":        "lesson_id",
	"lesson":         "lesson_id",
	"learning-paths": "path_id",
	"notifications":  "notification_id",
	"users":          "target_user_id",
}

// RequestLogger writes one access line per request, keyed by route template.
func RequestLogger(baseLog *logger.Logger) gin.HandlerFunc {
	if baseLog == nil {
		return func(c *gin.Context) { c.Next() }
	}
	log := baseLog.With("middleware", "RequestLogger")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		fields := []any{
			"method", c.Request.Method,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if route == "" {
			fields = append(fields, "path", c.Request.URL.Path, "matched", false)
		} else {
			fields = append(fields, "route", route)
			if key := resourceIDKey(route); key != "" {
				fields = append(fields, key, c.Param("id"))
			}
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			if td.TraceID != "" {
				fields = append(fields, "trace_id", td.TraceID)
			}
			if td.RequestID != "" {
				fields = append(fields, "request_id", td.RequestID)
			}
		}
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil && rd.UserID != uuid.Nil {
			fields = append(fields, "user_id", rd.UserID.String(), "role", rd.Role)
		}
		if len(c.Errors) > 0 && status >= 500 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func resourceIDKey(route string) string {
	segs := strings.Split(strings.Trim(route, "/"), "/")
	for i := 1; i < len(segs); i++ {
		if segs[i] == ":id" {
			return resourceKeys[segs[i-1]]
		}
	}
	return ""
}
