package indicator

import (
	"errors"

	"go-obra/internal/features/report"
	"go-obra/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type IndicatorController struct {
	IndicatorService IndicatorService
	Log              *zap.Logger
}

func NewIndicatorController(indicatorService IndicatorService, log *zap.Logger) *IndicatorController {
	return &IndicatorController{
		IndicatorService: indicatorService,
		Log:              log,
	}
}

type EvaluateRequest struct {
	Expresion string `json:"expresion"`
}

// List godoc
// @Summary      List saved indicators
// @Tags         indicators
// @Produce      json
// @Router       /api/indicators [get]
func (ctrl *IndicatorController) List(c *fiber.Ctx) error {
	inds, err := ctrl.IndicatorService.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to list indicators"})
	}
	return c.JSON(inds)
}

// Get godoc
// @Summary      Get one indicator
// @Tags         indicators
// @Produce      json
// @Router       /api/indicators/{id} [get]
func (ctrl *IndicatorController) Get(c *fiber.Ctx) error {
	ind, err := ctrl.IndicatorService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if ind == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Indicator not found"})
	}
	return c.JSON(ind)
}

// Create godoc
// @Summary      Save an indicator
// @Description  Validates and stores a custom KPI expression
// @Tags         indicators
// @Accept       json
// @Produce      json
// @Failure      400  {string} string "Invalid expression"
// @Router       /api/indicators [post]
func (ctrl *IndicatorController) Create(c *fiber.Ctx) error {
	var ind Indicator
	if err := c.BodyParser(&ind); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if ind.Nombre == "" || ind.Expresion == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Nombre y expresión son obligatorios"})
	}
	if claims := middleware.ClaimsFrom(c); claims != nil {
		ind.CreatedBy = claims.Email
	}

	if err := ctrl.IndicatorService.Create(c.Context(), &ind); err != nil {
		var bad *ErrBadExpression
		if errors.As(err, &bad) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": bad.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save indicator"})
	}
	return c.Status(fiber.StatusCreated).JSON(ind)
}

// Update godoc
// @Summary      Update an indicator
// @Tags         indicators
// @Accept       json
// @Produce      json
// @Router       /api/indicators/{id} [put]
func (ctrl *IndicatorController) Update(c *fiber.Ctx) error {
	existing, err := ctrl.IndicatorService.Get(c.Context(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if existing == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Indicator not found"})
	}

	var ind Indicator
	if err := c.BodyParser(&ind); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	ind.ID = existing.ID
	ind.CreatedAt = existing.CreatedAt

	if err := ctrl.IndicatorService.Update(c.Context(), &ind); err != nil {
		var bad *ErrBadExpression
		if errors.As(err, &bad) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": bad.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update indicator"})
	}
	return c.JSON(ind)
}

// Delete godoc
// @Summary      Delete an indicator
// @Tags         indicators
// @Router       /api/indicators/{id} [delete]
func (ctrl *IndicatorController) Delete(c *fiber.Ctx) error {
	if err := ctrl.IndicatorService.Delete(c.Context(), c.Params("id")); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Indicator deleted"})
}

// EvaluateAll godoc
// @Summary      Evaluate saved indicators
// @Description  Computes every saved indicator over the current filter window
// @Tags         indicators
// @Produce      json
// @Router       /api/indicators/evaluate [get]
func (ctrl *IndicatorController) EvaluateAll(c *fiber.Ctx) error {
	filters := report.ParseFilters(c)

	evals, err := ctrl.IndicatorService.EvaluateAll(c.Context(), filters)
	if err != nil {
		ctrl.Log.Error("indicator evaluation failed", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al cargar datos. Por favor intente más tarde.",
		})
	}
	return c.JSON(evals)
}

// EvaluateOne godoc
// @Summary      Evaluate one saved indicator
// @Tags         indicators
// @Produce      json
// @Router       /api/indicators/{id}/eval [get]
func (ctrl *IndicatorController) EvaluateOne(c *fiber.Ctx) error {
	filters := report.ParseFilters(c)

	eval, err := ctrl.IndicatorService.EvaluateByID(c.Context(), c.Params("id"), filters)
	if err != nil {
		var bad *ErrBadExpression
		if errors.As(err, &bad) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": bad.Error()})
		}
		ctrl.Log.Error("indicator evaluation failed", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al cargar datos. Por favor intente más tarde.",
		})
	}
	if eval == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Indicator not found"})
	}
	return c.JSON(eval)
}

// Evaluate godoc
// @Summary      Evaluate an ad-hoc expression
// @Tags         indicators
// @Accept       json
// @Produce      json
// @Failure      400  {string} string "Invalid expression"
// @Router       /api/indicators/evaluate [post]
func (ctrl *IndicatorController) Evaluate(c *fiber.Ctx) error {
	var req EvaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	filters := report.ParseFilters(c)

	value, err := ctrl.IndicatorService.Evaluate(c.Context(), req.Expresion, filters)
	if err != nil {
		var bad *ErrBadExpression
		if errors.As(err, &bad) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": bad.Error()})
		}
		ctrl.Log.Error("indicator evaluation failed", zap.Error(err), zap.String("path", c.Path()))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Error al cargar datos. Por favor intente más tarde.",
		})
	}
	return c.JSON(fiber.Map{"valor": value})
}
