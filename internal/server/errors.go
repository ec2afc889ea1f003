package server

import (
	"errors"
	"net/http"

	billingdomain "github.com/adlift/cashout/internal/billingrequest/domain"
	companydomain "github.com/adlift/cashout/internal/company/domain"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidRequest = errors.New("invalid_request")
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

// ErrorHandlingMiddleware maps domain errors onto HTTP statuses after the
// handler chain finishes. Error kinds stay visible in the payload type so
// clients can tell a lost race from a misused transition.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, billingdomain.ErrOwnership):
		return http.StatusForbidden, errorPayload{
			Type:    "ownership_violation",
			Message: "actor lacks rights over this resource",
		}
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, billingdomain.ErrValidation):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, billingdomain.ErrNotFound),
		errors.Is(err, companydomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, billingdomain.ErrInvalidTransition):
		return http.StatusConflict, errorPayload{
			Type:    "invalid_transition",
			Message: err.Error(),
		}
	case errors.Is(err, billingdomain.ErrConflict):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "a concurrent transition won; retry from the current state",
		}
	case errors.Is(err, billingdomain.ErrDependency):
		return http.StatusBadGateway, errorPayload{
			Type:    "dependency_error",
			Message: "a backing service failed",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
