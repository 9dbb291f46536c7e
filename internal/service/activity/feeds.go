// Package activity serves the activity and notification feeds and the
// real-time chart samples.
package activity

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/middleware"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/internal/session"
)

func bindFeed(c *gin.Context) (session.Session, dto.FeedQuery, bool) {
	var q dto.FeedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest,
			"Bad Request", "Invalid query parameters", err.Error()))
		return session.Session{}, q, false
	}
	sess, _ := middleware.CurrentSession(c)
	if q.Lang != "" {
		sess.Language = locale.Lang(q.Lang)
	}
	return sess, q, true
}

// Recent returns the latest activity entries
// @Summary      Recent activity
// @Description  Normalized recent activity of the complaint backend. Failures yield an empty list with the failure attached.
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int    false "Number of entries (1-100, default 10)"
// @Param        lang  query string false "Language override" Enums(en, hi)
// @Success      200 {object} dto.SuccessResponse{data=pipeline.Feed[records.ActivityEvent]}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Router       /activity/recent [get]
func Recent(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, q, ok := bindFeed(c)
		if !ok {
			return
		}
		feed := cfg.Pipeline.RecentActivity(c.Request.Context(), sess, q.Limit)
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, feed, ""))
	}
}

// Notifications returns the latest notifications of the caller
// @Summary      Notifications
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int    false "Number of entries (1-100, default 10)"
// @Param        lang  query string false "Language override" Enums(en, hi)
// @Success      200 {object} dto.SuccessResponse{data=pipeline.Feed[records.Notification]}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Router       /activity/notifications [get]
func Notifications(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, q, ok := bindFeed(c)
		if !ok {
			return
		}
		feed := cfg.Pipeline.Notifications(c.Request.Context(), sess, q.Limit)
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, feed, ""))
	}
}
