package indicator

import (
	"go-obra/internal/config"
	"go-obra/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type IndicatorApi struct {
	IndicatorController *IndicatorController
	Config              *config.Config
}

func NewIndicatorApi(indicatorController *IndicatorController, config *config.Config) *IndicatorApi {
	return &IndicatorApi{
		IndicatorController: indicatorController,
		Config:              config,
	}
}

func (api *IndicatorApi) Setup(app *fiber.App) {
	group := app.Group("/api/indicators", middleware.AuthMiddleware(api.Config.SkipAuth))

	group.Get("/", api.IndicatorController.List)
	group.Get("/evaluate", api.IndicatorController.EvaluateAll)
	group.Post("/evaluate", api.IndicatorController.Evaluate)
	group.Get("/:id/eval", api.IndicatorController.EvaluateOne)
	group.Get("/:id", api.IndicatorController.Get)
	group.Post("/", api.IndicatorController.Create)
	group.Put("/:id", api.IndicatorController.Update)
	group.Delete("/:id", api.IndicatorController.Delete)
}
