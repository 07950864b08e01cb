package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prompt-server/internal/models"
)

func handleServiceError(c *gin.Context, err error) {
	var statusCode int
	var errResp models.ErrorResponse

	switch {
	case errors.Is(err, models.ErrAllPromptsUsed):
		// Exhaustion is terminal for the rotation attempt; the client decides
		// the fallback experience.
		exhaustionsTotal.Inc()
		statusCode = http.StatusConflict
		errResp = models.ErrorResponse{Error: "all prompts have been used on this device"}
	case errors.Is(err, models.ErrPromptNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Error: "Prompt not found"}
	case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Error: err.Error()}
	default:
		zap.L().Error("Unhandled internal error in handleServiceError", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Error: models.ErrInternalServer.Error()}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}
