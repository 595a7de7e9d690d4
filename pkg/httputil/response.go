package httputil

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloodbridge/backend/pkg/errors"
)

// Envelope is the wire shape shared by every endpoint: a success flag
// plus a human-readable message. Endpoint-specific payloads embed it.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// RespondWithMessage sends a plain success envelope.
func RespondWithMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// RespondWithError maps err to an HTTP status and sends a failure
// envelope. Unknown error types become a generic 500 so no internal
// detail leaks to the caller.
func RespondWithError(c *gin.Context, err error) {
	if appErr, ok := errors.AsAppError(err); ok {
		c.JSON(appErr.HTTPStatus(), Envelope{Success: false, Message: appErr.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Message: "Internal server error",
	})
}
