package handlers

import (
	"github.com/gin-gonic/gin"

	"salin-system/internal/apperr"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type PageMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// respondError maps service error kinds onto HTTP statuses. Internal detail
// stays in logs, not in 5xx bodies.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	message := err.Error()
	if status >= 500 {
		message = "Internal server error"
	}
	c.JSON(status, errorResponse(message))
}
