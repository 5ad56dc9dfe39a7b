package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reliefnet-backend-go/internal/core"
	"reliefnet-backend-go/internal/query"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Data       interface{}       `json:"data,omitempty"`
	Pagination *query.Pagination `json:"pagination,omitempty"`
	Error      string            `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondPage(c *gin.Context, data interface{}, pagination query.Pagination) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data, Pagination: &pagination})
}

func badRequest(c *gin.Context, message string, err error) {
	resp := Response{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// statusFor maps the service error taxonomy onto HTTP statuses. Conflicts
// are reported as 400, matching what existing clients expect.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrValidation), errors.Is(err, core.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrInvalidToken), errors.Is(err, core.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// respondError writes err in the envelope. Unexpected errors become a 500
// with a fixed message; their text goes to the error field and the log.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err))
		_ = c.Error(err)
		c.JSON(status, Response{Success: false, Message: "Internal server error", Error: err.Error()})
		return
	}
	c.JSON(status, Response{Success: false, Message: core.Message(err)})
}
