package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"viksitkanpur/internal/analytics"
	"viksitkanpur/internal/config"
	"viksitkanpur/internal/gateway"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/internal/pipeline"
)

func sectionData(res pipeline.Result, section analytics.Section) interface{} {
	switch section {
	case analytics.SectionMonthly:
		return res.Monthly
	case analytics.SectionDepartments:
		return res.Departments
	case analytics.SectionCategories:
		return res.Categories
	case analytics.SectionWards:
		return res.Wards
	case analytics.SectionWorkers:
		return res.Workers
	case analytics.SectionPriorities:
		return res.Priorities
	case analytics.SectionToday:
		return res.Today
	}
	return nil
}

// Section returns one breakdown of the snapshot
// @Summary      Dashboard section
// @Description  Returns a single breakdown. Sections outside the caller's role answer 403.
// @Tags         analytics
// @Produce      json
// @Security     BearerAuth
// @Param        lang  query string false "Language override" Enums(en, hi)
// @Param        fresh query bool   false "Bypass the snapshot cache"
// @Success      200 {object} dto.SuccessResponse{data=dto.SectionResponse}
// @Failure      400 {object} dto.ErrorResponse "Bad Request"
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Failure      403 {object} dto.ErrorResponse "Section not available for the role"
// @Router       /analytics/monthly [get]
// @Router       /analytics/departments [get]
// @Router       /analytics/categories [get]
// @Router       /analytics/wards [get]
// @Router       /analytics/workers [get]
// @Router       /analytics/priorities [get]
// @Router       /analytics/today [get]
func Section(cfg *config.App, section analytics.Section) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, res, ok := load(c, cfg)
		if !ok {
			return
		}

		if !res.Has(section) {
			c.JSON(http.StatusForbidden, dto.NewErrorResponse(c, http.StatusForbidden,
				"Forbidden", "Section not available for this role", gin.H{"section": section, "role": sess.Role}))
			return
		}

		failures := res.Failures
		if failures == nil {
			failures = []gateway.Failure{}
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(c, dto.SectionResponse{
			Section:     string(section),
			Language:    string(res.Language),
			Source:      res.Source,
			GeneratedAt: res.GeneratedAt,
			Failures:    failures,
			Data:        sectionData(res, section),
		}, messageOf(res)))
	}
}
