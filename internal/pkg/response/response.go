// internal/pkg/response/response.go
package response

import (
	"time"

	xerrors "dird-service/internal/pkg/errors"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the wire format every error response carries.
type ErrorBody struct {
	Reason     []string  `json:"reason"`
	Timestamp  []float64 `json:"timestamp"`
	StatusCode int       `json:"status_code"`
}

// Error sends a standardized error response. The status is derived from the
// application error; reason defaults to the error's message.
func Error(c *gin.Context, err error, reason ...string) {
	// CRITICAL: Abort FIRST before writing response
	c.Abort()

	msg := xerrors.MessageOrDefault(err, "internal server error")
	if len(reason) > 0 {
		msg = reason[0]
	}

	status := xerrors.StatusCode(err)
	c.JSON(status, ErrorBody{
		Reason:     []string{msg},
		Timestamp:  []float64{float64(time.Now().Unix())},
		StatusCode: status,
	})
}

// ErrorWithStatus sends an error body with an explicit status code.
func ErrorWithStatus(c *gin.Context, status int, reason string) {
	c.Abort()
	c.JSON(status, ErrorBody{
		Reason:     []string{reason},
		Timestamp:  []float64{float64(time.Now().Unix())},
		StatusCode: status,
	})
}
