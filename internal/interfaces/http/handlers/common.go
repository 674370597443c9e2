package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/EcoExpand-AI/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// ErrorResponse is the standard error response body. Detail keeps the field
// name existing clients read.
type ErrorResponse struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// MessageResponse acknowledges a mutation.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// bindJSON decodes the request body into dst and answers 400 on failure.
func bindJSON(c *gin.Context, logger logging.Logger, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeAppError(c, logger, errors.Wrap(err, errors.CodeValidation, "invalid request body"))
		return false
	}
	return true
}

// writeAppError maps application errors to HTTP status codes. Client errors
// carry their message; server and upstream errors are masked and logged.
func writeAppError(c *gin.Context, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown {
		code = errors.CodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	detail := errors.DefaultMessageForCode(code)
	var appErr *errors.AppError
	if errors.As(err, &appErr) && status < http.StatusInternalServerError {
		detail = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			logging.String("path", c.FullPath()),
			logging.String("code", string(code)),
			logging.Err(err))
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Code: string(code), Detail: detail})
}
