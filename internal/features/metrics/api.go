package metrics

import (
	"go-obra/internal/config"
	"go-obra/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type MetricsApi struct {
	MetricsController *MetricsController
	Config            *config.Config
}

func NewMetricsApi(metricsController *MetricsController, config *config.Config) *MetricsApi {
	return &MetricsApi{
		MetricsController: metricsController,
		Config:            config,
	}
}

func (api *MetricsApi) Setup(app *fiber.App) {
	group := app.Group("/api/metrics", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.MetricsController.Get)
}
