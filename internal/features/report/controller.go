package report

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportController struct {
	ReportService ReportService
	Log           *zap.Logger
}

func NewReportController(reportService ReportService, log *zap.Logger) *ReportController {
	return &ReportController{
		ReportService: reportService,
		Log:           log,
	}
}

// ParseFilters reads FilterValues from query parameters
func ParseFilters(c *fiber.Ctx) FilterValues {
	filters := FilterValues{
		Period:         c.Query("period", "30"),
		Subcontratista: c.Query("subcontratista"),
		ElaboradoPor:   c.Query("elaboradoPor"),
		Categoria:      c.Query("categoria"),
		Page:           c.QueryInt("page", 1),
		PageSize:       c.QueryInt("pageSize", defaultPageSize),
	}
	if filters.Period == PeriodCustom {
		if start, err := time.Parse(dayFormat, c.Query("start")); err == nil {
			filters.StartDate = start
		}
		if end, err := time.Parse(dayFormat, c.Query("end")); err == nil {
			filters.EndDate = end
		}
	}
	return filters
}

func parseCursor(c *fiber.Ctx) (*PageCursor, bool) {
	fecha := c.Query("afterFecha")
	id := c.Query("afterId")
	if fecha == "" || id == "" {
		return nil, false
	}
	return &PageCursor{Fecha: fecha, ID: id}, c.Query("dir") == "prev"
}

// List godoc
// @Summary      List reports
// @Description  One page of reports for the current filters, with facets and pagination
// @Tags         reports
// @Produce      json
// @Success      200  {object} QueryResult
// @Failure      502  {string} string "Fetch failed"
// @Router       /api/reports [get]
func (ctrl *ReportController) List(c *fiber.Ctx) error {
	filters := ParseFilters(c)
	cursor, backward := parseCursor(c)

	result, err := ctrl.ReportService.FetchReports(c.Context(), filters, cursor, backward)
	if err != nil {
		ctrl.Log.Error("report fetch failed", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al cargar datos. Por favor intente más tarde.",
		})
	}
	return c.JSON(result)
}

// Current godoc
// @Summary      Current result page
// @Description  The most recently applied page result, without refetching
// @Tags         reports
// @Produce      json
// @Success      200  {object} QueryResult
// @Failure      404  {string} string "No page applied yet"
// @Router       /api/reports/current [get]
func (ctrl *ReportController) Current(c *fiber.Ctx) error {
	snapshot := ctrl.ReportService.CurrentSnapshot()
	if snapshot == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Aún no se ha cargado ninguna página.",
		})
	}
	return c.JSON(snapshot)
}

// Refresh godoc
// @Summary      Refresh reports
// @Description  Drops the cached entries for the current filters and re-fetches
// @Tags         reports
// @Produce      json
// @Router       /api/reports/refresh [post]
func (ctrl *ReportController) Refresh(c *fiber.Ctx) error {
	filters := ParseFilters(c)

	result, err := ctrl.ReportService.FetchFresh(c.Context(), filters)
	if err != nil {
		ctrl.Log.Error("report refresh failed", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al cargar datos. Por favor intente más tarde.",
		})
	}
	return c.JSON(result)
}

// Export godoc
// @Summary      Export reports
// @Description  Exports the full filtered report listing as csv or xlsx
// @Tags         reports
// @Produce      application/octet-stream
// @Param        format query string false "csv or xlsx" default(csv)
// @Router       /api/reports/export [get]
func (ctrl *ReportController) Export(c *fiber.Ctx) error {
	filters := ParseFilters(c)
	format := c.Query("format", "csv")

	data, filename, err := ctrl.ReportService.ExportReports(c.Context(), filters, format)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}
