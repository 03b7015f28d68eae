package analytics

import (
	"go-obra/internal/config"
	"go-obra/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AnalyticsApi struct {
	AnalyticsController *AnalyticsController
	Config              *config.Config
}

func NewAnalyticsApi(analyticsController *AnalyticsController, config *config.Config) *AnalyticsApi {
	return &AnalyticsApi{
		AnalyticsController: analyticsController,
		Config:              config,
	}
}

func (api *AnalyticsApi) Setup(app *fiber.App) {
	group := app.Group("/api/analytics", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.AnalyticsController.Get)
	group.Get("/trend", api.AnalyticsController.Trend)
	group.Get("/forecast", api.AnalyticsController.Forecast)
	group.Get("/correlations", api.AnalyticsController.Correlations)
	group.Get("/productivity", api.AnalyticsController.Productivity)
	group.Get("/categories", api.AnalyticsController.Categories)
	group.Get("/workers", api.AnalyticsController.Workers)
	group.Get("/activities", api.AnalyticsController.Activities)
	group.Get("/contractors", api.AnalyticsController.Contractors)
	group.Get("/hours", api.AnalyticsController.Hours)
}
