package dashboard

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"viksitkanpur/internal/analytics"
	"viksitkanpur/internal/config"
	"viksitkanpur/internal/locale"
	"viksitkanpur/internal/models/dto"
	"viksitkanpur/internal/pipeline"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export streams the snapshot as an XLSX workbook
// @Summary      Export dashboard
// @Description  Renders the caller's snapshot as a workbook with one sheet per breakdown, labelled in the snapshot language.
// @Tags         analytics
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Param        lang  query string false "Language override" Enums(en, hi)
// @Success      200 {file} binary
// @Failure      401 {object} dto.AuthErrorResponse "Invalid session token"
// @Failure      500 {object} dto.ErrorResponse "Internal Server Error"
// @Router       /analytics/export [get]
func Export(cfg *config.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		_, res, ok := load(c, cfg)
		if !ok {
			return
		}

		f, err := BuildWorkbook(res)
		if err != nil {
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError,
				"Internal Server Error", "Failed to build the workbook", err.Error()))
			return
		}
		defer f.Close()

		var buf bytes.Buffer
		if err := f.Write(&buf); err != nil {
			c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(c, http.StatusInternalServerError,
				"Internal Server Error", "Failed to write the workbook", err.Error()))
			return
		}

		name := fmt.Sprintf("viksitkanpur-%s-%s.xlsx", res.Role, res.GeneratedAt.Format("20060102-1504"))
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

// BuildWorkbook renders res into a new workbook. The summary sheet is always
// present; the others follow the sections of the snapshot.
func BuildWorkbook(res pipeline.Result) (*excelize.File, error) {
	tr := locale.For(res.Language)
	col := func(key string) string { return tr.T("export.columns." + key) }
	metric := func(key string) string { return tr.T("export.metrics." + key) }

	f := excelize.NewFile()
	w := sheetWriter{f: f}

	summary := tr.T("export.sheets.summary")
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, err
	}
	rows := [][]interface{}{
		{col("metric"), col("value")},
		{metric("total_complaints"), res.Totals.TotalComplaints},
		{metric("completed_complaints"), res.Totals.Completed},
		{metric("pending_complaints"), res.Totals.Pending},
		{metric("in_progress_complaints"), res.Totals.InProgress},
	}
	if res.Today != nil {
		rows = append(rows,
			[]interface{}{metric("new_today"), res.Today.NewComplaints},
			[]interface{}{metric("active_workers"), res.Today.ActiveWorkers},
			[]interface{}{metric("avg_response"), res.Today.AvgResponseTime},
		)
	}
	w.rows(summary, rows)

	for _, section := range res.Sections {
		switch section {
		case analytics.SectionMonthly:
			rows := [][]interface{}{{col("month"), col("complaints"), col("resolved"), col("efficiency")}}
			for _, m := range res.Monthly {
				rows = append(rows, []interface{}{m.Month, m.Complaints, m.Resolved, m.Efficiency})
			}
			w.sheet(tr.T("export.sheets.monthly"), rows)
		case analytics.SectionDepartments:
			rows := [][]interface{}{{col("department"), col("complaints"), col("resolved"), col("pending"), col("efficiency"), col("avg_days"), col("budget")}}
			for _, d := range res.Departments {
				rows = append(rows, []interface{}{d.Name, d.TotalComplaints, d.Resolved, d.Pending, d.Efficiency, d.AvgResolutionDays, d.BudgetDisplay})
			}
			w.sheet(tr.T("export.sheets.departments"), rows)
		case analytics.SectionCategories:
			rows := [][]interface{}{{col("category"), col("count"), col("percentage")}}
			for _, s := range res.Categories {
				rows = append(rows, []interface{}{s.Name, s.Count, s.Percentage})
			}
			w.sheet(tr.T("export.sheets.categories"), rows)
		case analytics.SectionWards:
			rows := [][]interface{}{{col("ward"), col("population"), col("density"), col("complaints"), col("resolved"), col("resolution_rate")}}
			for _, s := range res.Wards {
				rows = append(rows, []interface{}{s.Name, s.Population, s.DensityLabel, s.Complaints, s.Resolved, s.ResolutionRate})
			}
			w.sheet(tr.T("export.sheets.wards"), rows)
		case analytics.SectionWorkers:
			rows := [][]interface{}{{col("worker"), col("department"), col("assigned"), col("completed"), col("efficiency"), col("rating")}}
			for _, s := range res.Workers {
				rows = append(rows, []interface{}{s.Name, s.Department, s.Assigned, s.Completed, s.Efficiency, s.Rating})
			}
			w.sheet(tr.T("export.sheets.workers"), rows)
		case analytics.SectionPriorities:
			rows := [][]interface{}{{col("priority"), col("count"), col("resolved"), col("avg_days")}}
			for _, p := range res.Priorities {
				rows = append(rows, []interface{}{p.Label, p.Count, p.Resolved, p.AvgResolutionDays})
			}
			w.sheet(tr.T("export.sheets.priorities"), rows)
		}
	}

	if w.err != nil {
		_ = f.Close()
		return nil, w.err
	}
	return f, nil
}

// sheetWriter keeps the first error so the section loop stays flat.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) sheet(name string, rows [][]interface{}) {
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = err
		return
	}
	w.rows(name, rows)
}

func (w *sheetWriter) rows(sheet string, rows [][]interface{}) {
	for i, row := range rows {
		if w.err != nil {
			return
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetSheetRow(sheet, cell, &row); err != nil {
			w.err = err
			return
		}
	}
}
