package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/learnit-backend/internal/platform/ctxutil"
)

func traceEngine(seen **ctxutil.TraceData) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/", func(c *gin.Context) {
		*seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAttachTraceContext(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		traceID   string
		keepReqID bool
		keepTrace bool
	}{
		{name: "generated"},
		{name: "client ids kept", requestID: "req-123", traceID: "trace.abc_1", keepReqID: true, keepTrace: true},
		{name: "bad chars replaced", requestID: "req\n injected", traceID: "a b"},
		{name: "too long replaced", requestID: strings.Repeat("x", 65)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen *ctxutil.TraceData
			r := traceEngine(&seen)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.requestID != "" {
				req.Header.Set(HeaderRequestID, tc.requestID)
			}
			if tc.traceID != "" {
				req.Header.Set(HeaderTraceID, tc.traceID)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.NotNil(t, seen)
			assert.NotEmpty(t, seen.RequestID)
			assert.NotEmpty(t, seen.TraceID)
			assert.Equal(t, seen.RequestID, w.Header().Get(HeaderRequestID))
			assert.Equal(t, seen.TraceID, w.Header().Get(HeaderTraceID))
			if tc.keepReqID {
				assert.Equal(t, tc.requestID, seen.RequestID)
			} else {
				assert.NotEqual(t, tc.requestID, seen.RequestID)
			}
			if tc.keepTrace {
				assert.Equal(t, tc.traceID, seen.TraceID)
			} else if tc.traceID == "" {
				assert.Equal(t, seen.RequestID, seen.TraceID)
			}
		})
	}
}
