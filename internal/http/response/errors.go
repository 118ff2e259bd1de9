package response

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnit-backend/internal/platform/apierr"
)

const internalMessage = "internal server error"

var exposeDetail atomic.Bool

func init() { exposeDetail.Store(true) }

// ExposeDetail controls whether 500 bodies carry the underlying error text.
// It is switched off in production.
func ExposeDetail(on bool) { exposeDetail.Store(on) }

// RespondAPIError writes err using the status and code of the *apierr.Error
// in its chain. Anything else is a 500 with a generic message.
func RespondAPIError(c *gin.Context, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	_ = c.Error(err)

	ae, ok := apierr.As(err)
	if !ok {
		ae = apierr.Internal(err)
	}
	if ae.Status >= http.StatusInternalServerError {
		body := APIError{Message: internalMessage, Code: ae.Code}
		if body.Code == "" {
			body.Code = apierr.CodeInternal
		}
		if exposeDetail.Load() && ae.Err != nil {
			body.Detail = ae.Err.Error()
		}
		c.AbortWithStatusJSON(ae.Status, ErrorEnvelope{Error: body})
		return
	}

	status := ae.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: APIError{Message: ae.Error(), Code: ae.Code}})
}

// BadRequest reports a request that could not be bound.
func BadRequest(c *gin.Context, err error) {
	RespondAPIError(c, apierr.Validation("", "invalid request: %v", err))
}
