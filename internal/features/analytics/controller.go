package analytics

import (
	"errors"

	"go-obra/internal/features/report"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type AnalyticsController struct {
	AnalyticsService AnalyticsService
	Log              *zap.Logger
}

func NewAnalyticsController(analyticsService AnalyticsService, log *zap.Logger) *AnalyticsController {
	return &AnalyticsController{
		AnalyticsService: analyticsService,
		Log:              log,
	}
}

func parseBucket(c *fiber.Ctx) Bucket {
	switch Bucket(c.Query("bucket", string(BucketDay))) {
	case BucketWeek:
		return BucketWeek
	case BucketMonth:
		return BucketMonth
	default:
		return BucketDay
	}
}

func parseMetric(c *fiber.Ctx) TrendMetric {
	switch TrendMetric(c.Query("metric", string(MetricAvance))) {
	case MetricMetrado:
		return MetricMetrado
	case MetricCosto:
		return MetricCosto
	default:
		return MetricAvance
	}
}

// withReports resolves the filtered set and hands it to one transform
func (ctrl *AnalyticsController) withReports(c *fiber.Ctx, transform func([]report.ReportDetail) any) error {
	filters := report.ParseFilters(c)

	reports, err := ctrl.AnalyticsService.ReportsFor(c.Context(), filters)
	if err != nil {
		ctrl.Log.Error("analytics fetch failed", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al cargar datos. Por favor intente más tarde.",
		})
	}
	return c.JSON(transform(reports))
}

// Trend godoc
// @Summary      Trend series
// @Tags         analytics
// @Produce      json
// @Param        bucket query string false "day, week or month" default(day)
// @Router       /api/analytics/trend [get]
func (ctrl *AnalyticsController) Trend(c *fiber.Ctx) error {
	bucket := parseBucket(c)
	return ctrl.withReports(c, func(reports []report.ReportDetail) any {
		return TrendSeries(reports, bucket)
	})
}

// Forecast godoc
// @Summary      Metric forecast
// @Tags         analytics
// @Produce      json
// @Param        metric query string false "avance, metrado or costo" default(avance)
// @Failure      422  {string} string "Not enough data points"
// @Router       /api/analytics/forecast [get]
func (ctrl *AnalyticsController) Forecast(c *fiber.Ctx) error {
	filters := report.ParseFilters(c)

	points, err := ctrl.AnalyticsService.ForecastFor(c.Context(), filters, parseBucket(c), parseMetric(c))
	if err != nil {
		if errors.Is(err, ErrInsufficientData) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
		}
		ctrl.Log.Error("forecast failed", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al cargar datos. Por favor intente más tarde.",
		})
	}
	return c.JSON(points)
}

// Correlations godoc
// @Summary      Variable correlations
// @Tags         analytics
// @Produce      json
// @Router       /api/analytics/correlations [get]
func (ctrl *AnalyticsController) Correlations(c *fiber.Ctx) error {
	return ctrl.withReports(c, func(reports []report.ReportDetail) any {
		return Correlations(reports)
	})
}

// Productivity godoc
// @Summary      Productivity by category
// @Tags         analytics
// @Produce      json
// @Router       /api/analytics/productivity [get]
func (ctrl *AnalyticsController) Productivity(c *fiber.Ctx) error {
	return ctrl.withReports(c, func(reports []report.ReportDetail) any {
		return ProductivityByCategory(reports)
	})
}

// Categories godoc
// @Summary      Workforce rollup by category
// @Tags         analytics
// @Produce      json
// @Router       /api/analytics/categories [get]
func (ctrl *AnalyticsController) Categories(c *fiber.Ctx) error {
	return ctrl.withReports(c, func(reports []report.ReportDetail) any {
		return CategorySummaries(reports)
	})
}

// Workers godoc
// @Summary      Top workers by hours
// @Tags         analytics
// @Produce      json
// @Param        limit query int false "row limit" default(10)
// @Router       /api/analytics/workers [get]
func (ctrl *AnalyticsController) Workers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultTopWorkers)
	return ctrl.withReports(c, func(reports []report.ReportDetail) any {
		return TopWorkers(reports, limit)
	})
}

// Activities godoc
// @Summary      Activity rollups
// @Tags         analytics
// @Produce      json
// @Router       /api/analytics/activities [get]
func (ctrl *AnalyticsController) Activities(c *fiber.Ctx) error {
	return ctrl.withReports(c, func(reports []report.ReportDetail) any {
		return ActivityRollups(reports)
	})
}

// Contractors godoc
// @Summary      Contractor ranking
// @Tags         analytics
// @Produce      json
// @Router       /api/analytics/contractors [get]
func (ctrl *AnalyticsController) Contractors(c *fiber.Ctx) error {
	return ctrl.withReports(c, func(reports []report.ReportDetail) any {
		return ContractorRanking(reports)
	})
}

// Hours godoc
// @Summary      Hours distribution by category
// @Tags         analytics
// @Produce      json
// @Router       /api/analytics/hours [get]
func (ctrl *AnalyticsController) Hours(c *fiber.Ctx) error {
	return ctrl.withReports(c, func(reports []report.ReportDetail) any {
		return HoursDistribution(reports)
	})
}

// Get godoc
// @Summary      Analytics dashboard
// @Description  Trend, forecast, correlations and workforce rollups over the full filtered set
// @Tags         analytics
// @Produce      json
// @Success      200  {object} Dashboard
// @Router       /api/analytics [get]
func (ctrl *AnalyticsController) Get(c *fiber.Ctx) error {
	filters := report.ParseFilters(c)

	dash, err := ctrl.AnalyticsService.DashboardFor(c.Context(), filters, parseBucket(c), parseMetric(c))
	if err != nil {
		ctrl.Log.Error("analytics computation failed", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al cargar datos. Por favor intente más tarde.",
		})
	}
	return c.JSON(dash)
}
