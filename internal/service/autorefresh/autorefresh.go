// Package autorefresh toggles and reports the periodic dashboard refresh of
// a session.
package autorefresh

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/middleware"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/internal/refresh"
)

// Toggle turns auto-refresh on or off
// @Summary      Toggle auto-refresh
// @Description  Starts or stops the refresh ticker of the session. Every tick rebuilds the snapshot and appends a chart sample.
// @Tags         refresh
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AutoRefreshRequest true "Desired state"
// @Success      200 {object} dto.SuccessResponse{data=refresh.Status}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Router       /refresh/auto [put]
func Toggle(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req dto.AutoRefreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest,
				"Bad Request", "Invalid request body", err.Error()))
			return
		}

		sess, _ := middleware.CurrentSession(c)
		status := cfg.Refresh.Toggle(sess, *req.Enabled)

		key := "messages.refresh_disabled"
		if status.Running {
			key = "messages.refresh_enabled"
		}
		cfg.Logger.Info("Auto refresh toggled", map[string]interface{}{
			"session_id": sess.ID,
			"running":    status.Running,
		})
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, status, sess.Translator().T(key)))
	}
}

// Status reports the refresh controller of the session
// @Summary      Auto-refresh status
// @Tags         refresh
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.SuccessResponse{data=refresh.Status}
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Router       /refresh/status [get]
func Status(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, _ := middleware.CurrentSession(c)

		status := refresh.Status{Interval: cfg.Settings.RefreshInterval.String()}
		if ctrl, ok := cfg.Refresh.Get(sess.ID); ok {
			status = ctrl.Status()
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, status, ""))
	}
}
