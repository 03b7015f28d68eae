package main

import (
	"context"
	"fmt"
	"log"

	"go-obra/internal/cache"
	common_api "go-obra/internal/common/api"
	"go-obra/internal/config"
	"go-obra/internal/database"
	"go-obra/internal/features/analytics"
	"go-obra/internal/features/auth"
	"go-obra/internal/features/indicator"
	"go-obra/internal/features/live"
	"go-obra/internal/features/metrics"
	"go-obra/internal/features/report"
	"go-obra/internal/features/system"
	"go-obra/internal/features/warmup"
	"go-obra/internal/logger"
	"go-obra/internal/middleware"
	"go-obra/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

// NewFiberServer creates a new Fiber app instance
func NewFiberServer() *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Use custom CORS middleware
	app.Use(middleware.CORSMiddleware())

	return app
}

// AsRoute is a helper function to reduce boilerplate.
// It tags the constructor so Fx knows to add it to the "routes" group.
func AsRoute(f any) any {
	return fx.Annotate(
		f,
		fx.As(new(common_api.Route)),    // Cast to Interface
		fx.ResultTags(`group:"routes"`), // Add to Group
	)
}

// RegisterAllRoutes takes the group "routes" (slice of interfaces)
// and calls Setup() on each one.
func RegisterAllRoutes(app *fiber.App, routes []common_api.Route) {
	for _, route := range routes {
		route.Setup(app)
	}
	log.Printf("Registered %d routes\n", len(routes))
}

// RegisterAllRoutesWithAnnotation wraps RegisterAllRoutes with fx annotations
var RegisterAllRoutesWithAnnotation = fx.Annotate(
	RegisterAllRoutes,
	fx.ParamTags(``, `group:"routes"`),
)

// StartServer creates a lifecycle hook to start Fiber in a goroutine
// and shut it down when the app exits.
func StartServer(lc fx.Lifecycle, app *fiber.App, cfg *config.Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			utils.SetSecret(cfg.JWTSecret)
			go func() {
				port := fmt.Sprintf(":%s", cfg.Port)
				if err := app.Listen(port); err != nil {
					log.Fatalf("Server failed to start: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.Shutdown()
		},
	})
}

// WireRefreshListener points background cache refreshes at the live hub
func WireRefreshListener(store *cache.Store, hub *live.Hub) {
	store.SetRefreshListener(hub)
}

func main() {
	app := fx.New(
		fx.Provide(
			// Load Config
			config.LoadConfig,

			// Initialize Logger
			logger.NewLogger,

			// Initialize Fiber Server
			NewFiberServer,

			// Initialize Database & Cache
			database.NewDatabase,
			cache.NewStore,

			// Initialize Repository
			report.NewReportRepository,
			auth.NewUserRepository,
			indicator.NewIndicatorRepository,

			// Initialize Service
			auth.NewSessionBroker,
			report.NewReportService,
			metrics.NewMetricsService,
			analytics.NewAnalyticsService,
			auth.NewAuthService,
			indicator.NewIndicatorService,
			live.NewHub,
			warmup.NewWarmupService,

			// Initialize Controller
			report.NewReportController,
			metrics.NewMetricsController,
			analytics.NewAnalyticsController,
			auth.NewAuthController,
			indicator.NewIndicatorController,

			// Initialize API Routes
			AsRoute(report.NewReportApi),
			AsRoute(metrics.NewMetricsApi),
			AsRoute(analytics.NewAnalyticsApi),
			AsRoute(auth.NewAuthApi),
			AsRoute(indicator.NewIndicatorApi),
			AsRoute(live.NewLiveApi),
			AsRoute(system.NewHealthApi),
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		fx.Invoke(
			// Register Routes & Start
			RegisterAllRoutesWithAnnotation,
			StartServer,
			WireRefreshListener,
			func(*warmup.WarmupService) {},
		),
	)

	app.Run()
}
