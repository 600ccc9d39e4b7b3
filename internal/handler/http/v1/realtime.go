package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary Realtime event stream
// @Description Websocket. Client commands: join-volunteers, leave-volunteers, join-volunteer, leave-volunteer. Server frames are {"event","data"}.
// @Tags Realtime
// @Security ApiKeyAuth
// @Param user_id query string false "Caller ID when headers cannot be set"
// @Param role query string false "Caller role when headers cannot be set"
// @Success 101 {string} string "Switching Protocols"
// @Failure 503 {object} ErrorResponse "Realtime disabled"
// @Router /ws [get]
func (h *Handler) serveWS(c *gin.Context) {
	log := h.log(c, "serveWS")
	if h.realtime == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "realtime is disabled", Code: "unavailable"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже записал ответ с ошибкой
		log.WithError(err).Warn("Failed to upgrade websocket connection")
		return
	}
	h.realtime.Serve(c.Request.Context(), conn, callerFrom(c))
}
