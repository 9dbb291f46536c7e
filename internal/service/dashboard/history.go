package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/middleware"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/internal/pipeline"
)

// History lists archived snapshots of the caller
// @Summary      Snapshot history
// @Description  Returns the live snapshots archived for the signed-in user, newest first.
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        since query string false "Only snapshots generated on or after this date (YYYY-MM-DD)"
// @Param        limit query int    false "Maximum number of records (1-100)"
// @Success      200 {object} dto.SuccessResponse{data=dto.HistoryResponse}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Failure      501 {object} dto.ErrorResponse "Archive not configured"
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /analytics/history [get]
func History(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var q dto.HistoryQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest,
				"Bad Request", "Invalid query parameters", err.Error()))
			return
		}

		sess, _ := middleware.CurrentSession(c)
		records, err := cfg.Pipeline.History(c.Request.Context(), sess, q.Since, q.Limit)
		switch {
		case errors.Is(err, pipeline.ErrNoArchive):
			c.JSON(http.StatusNotImplemented, dto.NewErrorResponse(c, http.StatusNotImplemented,
				"Not Implemented", "Snapshot archive is not configured", nil))
			return
		case err != nil:
			cfg.Logger.Error("Failed to read snapshot history", err, map[string]interface{}{"session_id": sess.ID})
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError,
				"Internal Server Error", "Failed to read snapshot history", err.Error()))
			return
		}

		if records == nil {
			records = []pipeline.ArchiveRecord{}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, dto.HistoryResponse{
			Count:   len(records),
			Records: records,
		}, ""))
	}
}
