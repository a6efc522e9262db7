package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hostelhub/service-booking/pkg/domain"
)

// ErrorBody is the error payload of a failed response.
type ErrorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// Envelope is the common JSON response shape.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// PageMeta describes a paginated list response.
type PageMeta struct {
	Total       int64 `json:"total"`
	Pages       int   `json:"pages"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
}

// Success writes a 200 response.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Paginated writes a 200 response with paging metadata.
func Paginated[T any](c *gin.Context, page domain.PaginatedResult[T]) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    page.Items,
		Meta: PageMeta{
			Total:       page.Total,
			Pages:       page.Pages,
			CurrentPage: page.CurrentPage,
			PerPage:     page.PerPage,
		},
	})
}

// BadRequest writes a 400 validation error.
func BadRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{
		Error: &ErrorBody{Code: string(domain.KindValidation), Message: message},
	})
}

// Unauthorized writes a 401 response.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{
		Error: &ErrorBody{Code: string(domain.KindUnauthorized), Message: message},
	})
}

// Forbidden writes a 403 response.
func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Envelope{
		Error: &ErrorBody{Code: string(domain.KindForbidden), Message: message},
	})
}

// TooManyRequests writes a 429 response.
func TooManyRequests(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, Envelope{
		Error: &ErrorBody{Code: "RATE_LIMITED", Message: message, Retryable: true},
	})
}

// Error maps an error to its HTTP status and writes it. Errors without a
// domain kind are reported as 500 without leaking their text.
func Error(c *gin.Context, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Envelope{
			Error: &ErrorBody{Code: "INTERNAL", Message: "internal server error"},
		})
		return
	}

	c.AbortWithStatusJSON(StatusFor(appErr.Kind), Envelope{
		Error: &ErrorBody{
			Code:      string(appErr.Kind),
			Message:   appErr.Message,
			Retryable: appErr.Kind == domain.KindTransientConflict,
		},
	})
}

// StatusFor returns the HTTP status code for an error kind.
func StatusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidRange, domain.KindInvalidStatus, domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindRoleForbidden, domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindCapacityExceeded, domain.KindInvalidState, domain.KindTransientConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
