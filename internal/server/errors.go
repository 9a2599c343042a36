package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	operatordomain "github.com/smallbiznis/crudpark/internal/operator/domain"
	ticketdomain "github.com/smallbiznis/crudpark/internal/ticket/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if be, ok := ticketdomain.AsBusinessError(err); ok {
		return businessStatus(be), errorPayload{
			Type:    "business_error",
			Code:    be.Code,
			Message: be.Message,
		}
	}

	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, operatordomain.ErrInvalidName):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, operatordomain.ErrInvalidID),
		errors.Is(err, operatordomain.ErrOperatorNotFound),
		errors.Is(err, operatordomain.ErrOperatorInactive):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func businessStatus(be *ticketdomain.BusinessError) int {
	switch {
	case errors.Is(be, ticketdomain.ErrNoOpenTicket),
		errors.Is(be, ticketdomain.ErrTicketNotFound):
		return http.StatusNotFound
	case errors.Is(be, ticketdomain.ErrDuplicateOpenTicket),
		errors.Is(be, ticketdomain.ErrAlreadyClosed),
		errors.Is(be, ticketdomain.ErrNoActiveTariff),
		errors.Is(be, ticketdomain.ErrSubscriptionNoPaymentRequired):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

// classifyErrorForLog returns the error type and code recorded on request logs.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	code := payload.Code
	if code == "" && len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	if code == "" && status >= http.StatusInternalServerError {
		code = "internal"
	}
	return payload.Type, code
}
