package response

import (
	"ctchen222/morpion/internal/apperror"
	"log/slog"

	"github.com/gin-gonic/gin"
)

// Error is the extras payload of a rejected command.
type Error struct {
	Result  string `json:"result"`
	Message string `json:"message"`
}

// AppErrorResponse renders err with the status and result code of its
// apperror class. Errors outside the taxonomy are logged and reported as
// INTERNAL without their message.
func AppErrorResponse(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	e := Error{Result: apperror.Code(err), Message: err.Error()}
	if !apperror.IsRejection(err) {
		slog.ErrorContext(c.Request.Context(), "Request failed", "path", c.FullPath(), "error", err)
		e.Message = "internal error"
	}
	c.AbortWithStatusJSON(status, NewResponse(false, status, e))
}
