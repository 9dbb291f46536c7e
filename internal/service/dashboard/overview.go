package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/models/dto"
)

// Overview returns the full dashboard snapshot
// @Summary      Dashboard overview
// @Description  Builds the analytics snapshot of the caller's role. Without a session the placeholder dataset is used.
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        lang  query string false "Language override" Enums(en, hi)
// @Param        fresh query bool   false "Bypass the snapshot cache"
// @Success      200 {object} dto.SuccessResponse{data=pipeline.Result}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Failure      429 {object} dto.RateLimitErrorResponse "Rate limit exceeded"
// @Failure      503 {object} dto.ErrorResponse "Request canceled"
// @Router       /analytics/overview [get]
func Overview(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, res, ok := load(c, cfg)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, res, messageOf(res)))
	}
}
