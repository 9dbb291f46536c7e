package activity

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/middleware"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/internal/session"
)

// Realtime returns the rolling chart of the last ten refresh ticks
// @Summary      Real-time activity chart
// @Description  Samples of the session's refresh controller, oldest first. When auto-refresh is off a sample is taken on request.
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SuccessResponse{data=dto.RealtimeResponse}
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Router       /activity/realtime [get]
func Realtime(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := middleware.CurrentSession(c)
		if !ok {
			sess = session.Anonymous(cfg.Settings.DefaultLanguage)
		}

		ctrl := cfg.Refresh.Ensure(sess)
		if !ctrl.Running() {
			ctrl.Tick(c.Request.Context())
		}

		status := ctrl.Status()
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, dto.RealtimeResponse{
			Running:  status.Running,
			Interval: status.Interval,
			Samples:  ctrl.Samples(),
		}, ""))
	}
}
