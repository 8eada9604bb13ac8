package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// errorCase pairs a service sentinel with the status and message it maps to
// on the wire.
type errorCase struct {
	err     error
	status  int
	message string
}

// errorMapping resolves service errors in declaration order, so more
// specific sentinels must precede broader ones.
type errorMapping []errorCase

// respond writes the mapped response for err. Errors outside the mapping
// become an opaque 500 so internals never reach the client.
func (m errorMapping) respond(c *gin.Context, err error) {
	for _, cs := range m {
		if cs.err == nil {
			continue
		}
		if errors.Is(err, cs.err) {
			c.JSON(cs.status, NewErrorResponse(c, cs.message))
			return
		}
	}

	c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "Internal server error"))
}
