package auth

import (
	"go-obra/internal/config"
	"go-obra/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	controller *AuthController
	config     *config.Config
}

func NewAuthApi(controller *AuthController, config *config.Config) *AuthApi {
	return &AuthApi{
		controller: controller,
		config:     config,
	}
}

// Setup registers all auth-related routes
func (h *AuthApi) Setup(app *fiber.App) {
	// Public routes
	app.Post("/api/auth/register", h.controller.Register)
	app.Post("/api/auth/login", h.controller.Login)

	// Protected routes
	app.Get("/api/auth/me", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.Me)
	app.Post("/api/auth/logout", middleware.AuthMiddleware(h.config.SkipAuth), h.controller.Logout)
}
