package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rongwang/expense-tracker/internal/common"
	"github.com/rongwang/expense-tracker/internal/models"
)

// respondError maps the service error taxonomy onto HTTP status codes
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	message := "Internal server error"

	switch {
	case common.IsValidation(err):
		status, code, message = http.StatusBadRequest, "VALIDATION_ERROR", err.Error()
	case errors.Is(err, common.ErrInvalidSession):
		status, code, message = http.StatusUnauthorized, "UNAUTHORIZED", err.Error()
	case errors.Is(err, common.ErrInvalidCredentials):
		status, code, message = http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error()
	case errors.Is(err, common.ErrNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", "Resource not found"
	case errors.Is(err, common.ErrDuplicateEmail):
		status, code, message = http.StatusConflict, "EMAIL_EXISTS", err.Error()
	case errors.Is(err, common.ErrCategoryInUse):
		status, code, message = http.StatusConflict, "CATEGORY_IN_USE",
			"Category is used by existing transactions; delete or move them first"
	case errors.Is(err, common.ErrEmptyReport):
		status, code, message = http.StatusUnprocessableEntity, "EMPTY_REPORT", "No transactions to export"
	case errors.Is(err, common.ErrShareFailed):
		status, code, message = http.StatusBadGateway, "SHARE_FAILED", err.Error()
	}

	// keep the full error for the request log
	c.Error(err)
	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Status:  "error",
		Code:    "INVALID_REQUEST",
		Message: message,
	})
}
