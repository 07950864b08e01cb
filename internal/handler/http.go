package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"prompt-server/internal/interfaces"
	"prompt-server/internal/models"
	"prompt-server/internal/service"
)

const maxDeviceIDLength = 128

// PromptHandler serves the rotation and catalog endpoints.
type PromptHandler struct {
	rotator *service.RotationService
	catalog interfaces.PromptCatalog
	logger  *zap.Logger
}

// NewPromptHandler creates a PromptHandler.
func NewPromptHandler(rotator *service.RotationService, catalog interfaces.PromptCatalog, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{
		rotator: rotator,
		catalog: catalog,
		logger:  logger.Named("PromptHandler"),
	}
}

// RegisterRoutes registers all prompt routes.
func (h *PromptHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		devices := api.Group("/devices/:device_id")
		{
			devices.GET("/prompts/current", h.getCurrentPrompt)
			devices.POST("/prompts/rotate", h.rotatePrompt)
			devices.GET("/prompts/lateness", h.getLateness)
		}

		prompts := api.Group("/prompts")
		{
			prompts.POST("", h.createPrompt)
			prompts.GET("", h.listPrompts)
			prompts.POST("/:id/deactivate", h.deactivatePrompt)
		}
	}

	router.GET("/ws/devices/:device_id/countdown", h.streamCountdown)
}

// deviceID extracts and validates the device id path parameter. Returns an
// empty string after writing the error response when validation fails.
func (h *PromptHandler) deviceID(c *gin.Context) string {
	deviceID := c.Param("device_id")
	if deviceID == "" || len(deviceID) > maxDeviceIDLength {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid device id"})
		return ""
	}
	return deviceID
}

func (h *PromptHandler) getCurrentPrompt(c *gin.Context) {
	deviceID := h.deviceID(c)
	if deviceID == "" {
		return
	}

	current, err := h.rotator.GetCurrentPrompt(c.Request.Context(), deviceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if current.IsNewPrompt {
		rotationsTotal.Inc()
	} else {
		cacheHitsTotal.Inc()
	}

	c.JSON(http.StatusOK, current)
}

func (h *PromptHandler) rotatePrompt(c *gin.Context) {
	deviceID := h.deviceID(c)
	if deviceID == "" {
		return
	}

	current, err := h.rotator.SelectNewPrompt(c.Request.Context(), deviceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	rotationsTotal.Inc()

	c.JSON(http.StatusOK, current)
}

func (h *PromptHandler) getLateness(c *gin.Context) {
	deviceID := h.deviceID(c)
	if deviceID == "" {
		return
	}

	lateness, ok := h.rotator.Lateness(c.Request.Context(), deviceID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, models.ErrorResponse{Error: "no active prompt for device"})
		return
	}

	c.JSON(http.StatusOK, lateness)
}

type createPromptRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *PromptHandler) createPrompt(c *gin.Context) {
	var req createPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}

	prompt := models.Prompt{Text: req.Text}
	if err := h.catalog.Create(c.Request.Context(), &prompt); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, prompt)
}

func (h *PromptHandler) listPrompts(c *gin.Context) {
	prompts, err := h.catalog.List(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompts": prompts})
}

func (h *PromptHandler) deactivatePrompt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid prompt id"})
		return
	}

	if err := h.catalog.Deactivate(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
