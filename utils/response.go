package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialspace-api/logger"
	"socialspace-api/services"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"total_pages"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(http.StatusOK, response)
}

func SendCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

func SendPaginated(c *gin.Context, data interface{}, page, limit int, total int64) {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       data,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	})
}

// SendDomainError maps the service error taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an unexpected failure: logged, and
// answered with a generic 500 so internals never leak to the caller.
func SendDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSelfTarget),
		errors.Is(err, services.ErrEmptyContent),
		errors.Is(err, services.ErrInvalidState):
		SendError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrDuplicateRequest),
		errors.Is(err, services.ErrAlreadyFriends):
		SendError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrForbidden):
		SendError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrNotFound):
		SendError(c, http.StatusNotFound, err.Error())
	default:
		logger.Get().Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		SendError(c, http.StatusInternalServerError, "Internal server error")
	}
}
