package healthcheck

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/models/dto"
)

// Health - Healthcheck endpoint
// @Summary      Healthcheck
// @Description  Liveness plus the state of every configured backing service
// @Tags         health
// @Produce      json
// @Success      200 {object} dto.HealthResponse
// @Failure      503 {object} dto.HealthResponse
// @Router       /healthcheck/ [get]
func Health(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		checks := cfg.Checks(ctx)
		status := "OK"
		for _, v := range checks {
			if strings.HasPrefix(v, "down") {
				status = "DEGRADED"
				break
			}
		}

		code := http.StatusOK
		if status != "OK" {
			code = http.StatusServiceUnavailable
		}
		uptime := time.Since(cfg.StartedAt).Round(time.Second).String()
		c.JSON(code, dto.NewHealthResponse(c, status, config.ServiceName, config.ServiceVersion, uptime, checks))
	}
}
