package httperr

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type HTTPError struct {
	Message string `json:"error"`
	Code    string `json:"error_code"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func Internal(c *gin.Context, code, message string) {
	Write(c, http.StatusInternalServerError, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

func StatusOf(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		// transient store failures stay in the 500 class, the code tells them apart
		return http.StatusInternalServerError
	}
}

// Respond writes err as a JSON error. Unclassified errors become a generic 500.
func Respond(c *gin.Context, err error) {
	var be *BusinessError
	if !errors.As(err, &be) {
		Internal(c, "internal_error", "An unexpected error occurred.")
		return
	}

	if be.Kind == KindRateLimited {
		secs := int(math.Ceil(be.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
	}

	Write(c, StatusOf(err), be.Code, be.Message)
}
