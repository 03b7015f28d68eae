package metrics

import (
	"go-obra/internal/features/report"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type MetricsController struct {
	MetricsService MetricsService
	Log            *zap.Logger
}

func NewMetricsController(metricsService MetricsService, log *zap.Logger) *MetricsController {
	return &MetricsController{
		MetricsService: metricsService,
		Log:            log,
	}
}

// Get godoc
// @Summary      KPI metrics
// @Description  KPI snapshot over the full filtered report set
// @Tags         metrics
// @Produce      json
// @Success      200  {object} KPIMetrics
// @Router       /api/metrics [get]
func (ctrl *MetricsController) Get(c *fiber.Ctx) error {
	filters := report.ParseFilters(c)

	m, err := ctrl.MetricsService.MetricsFor(c.Context(), filters)
	if err != nil {
		ctrl.Log.Error("metrics computation failed", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al cargar datos. Por favor intente más tarde.",
		})
	}
	return c.JSON(m)
}
