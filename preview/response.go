package preview

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ErrNotFound is returned when a collection or key does not exist.
var ErrNotFound = errors.New("resource not found")

// Error codes returned in ErrorDetail.Code.
const (
	ErrorCodeNotFound = "NOT_FOUND"
	ErrorCodeInternal = "INTERNAL_ERROR"
)

// ErrorDetail describes a failed request.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIResponse is the envelope of every preview response.
type APIResponse struct {
	Success   bool         `json:"success"`
	Data      any          `json:"data,omitempty"`
	Error     *ErrorDetail `json:"error,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}

func respond(c *gin.Context, data any) {
	c.JSON(http.StatusOK, APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// HandleAPIError maps an error to a status code and error envelope.
func HandleAPIError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, ErrorCodeInternal
	if errors.Is(err, ErrNotFound) {
		status, code = http.StatusNotFound, ErrorCodeNotFound
	}
	c.AbortWithStatusJSON(status, APIResponse{
		Error:     &ErrorDetail{Code: code, Message: err.Error()},
		Timestamp: time.Now(),
	})
}
