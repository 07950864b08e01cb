package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var countdownUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin checks are handled by the CORS layer in front of the router.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// countdownTick is one frame of the countdown stream.
type countdownTick struct {
	PromptID      string    `json:"promptId"`
	TimeRemaining string    `json:"timeRemaining"`
	ExpiresAt     time.Time `json:"expiresAt"`
	IsNewPrompt   bool      `json:"isNewPrompt"`
}

// streamCountdown pushes the device's countdown once per second over a
// websocket. When the active prompt expires mid-stream the next tick carries
// the freshly rotated prompt, so clients keep a live countdown across
// rotations.
func (h *PromptHandler) streamCountdown(c *gin.Context) {
	deviceID := h.deviceID(c)
	if deviceID == "" {
		return
	}

	conn, err := countdownUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Failed to upgrade countdown websocket",
			zap.Error(err), zap.String("deviceID", deviceID))
		return
	}
	defer conn.Close()

	h.logger.Debug("Countdown stream opened", zap.String("deviceID", deviceID))

	ctx := c.Request.Context()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		current, err := h.rotator.GetCurrentPrompt(ctx, deviceID)
		if err != nil {
			// Exhaustion or a catalog fault ends the stream; the client falls
			// back to its polling/refresh path.
			h.logger.Debug("Countdown stream ending on rotation error",
				zap.Error(err), zap.String("deviceID", deviceID))
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "rotation unavailable"),
				time.Now().Add(time.Second))
			return
		}

		tick := countdownTick{
			PromptID:      current.Prompt.ID.String(),
			TimeRemaining: current.TimeRemaining,
			ExpiresAt:     current.ExpiresAt,
			IsNewPrompt:   current.IsNewPrompt,
		}
		if err := conn.WriteJSON(tick); err != nil {
			h.logger.Debug("Countdown stream closed by peer",
				zap.Error(err), zap.String("deviceID", deviceID))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
