// Package dashboard serves the aggregated analytics snapshot and its
// individual breakdowns.
package dashboard

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/config"
	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/middleware"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/internal/pipeline"
	"viksitkanpur/internal/session"
)

// load resolves the session and query and builds the snapshot. It writes the
// error response itself and returns false on failure.
func load(c *gin.Context, cfg *config.App) (session.Session, pipeline.Result, bool) {
	var q dto.LangQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(c, http.StatusBadRequest,
			"Bad Request", "Invalid query parameters", err.Error()))
		return session.Session{}, pipeline.Result{}, false
	}

	sess, ok := middleware.CurrentSession(c)
	if !ok {
		sess = session.Anonymous(cfg.Settings.DefaultLanguage)
	}

	res, err := cfg.Pipeline.Snapshot(c.Request.Context(), sess, pipeline.LoadOptions{
		Language: locale.Lang(q.Lang),
		Fresh:    q.Fresh,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, c.Request.Context().Err()) {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, dto.NewErrorResponse(c, status,
			"Snapshot Unavailable", "Could not build the dashboard, please reload the page", err.Error()))
		return sess, pipeline.Result{}, false
	}

	c.Set("cache_hit", res.Cached)
	middleware.AddLogFields(c, map[string]interface{}{
		"source":   string(res.Source),
		"failures": len(res.Failures),
	})
	return sess, res, true
}

func messageOf(res pipeline.Result) string {
	tr := locale.For(res.Language)
	switch {
	case res.Source == pipeline.SourcePlaceholder:
		return tr.T("messages.placeholder_data")
	case res.Degraded():
		return tr.T("messages.partial_data")
	default:
		return tr.T("messages.snapshot_loaded")
	}
}
