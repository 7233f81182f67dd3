package router

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/noah-isme/judge-api/internal/config"
	"github.com/noah-isme/judge-api/internal/handler"
	"github.com/noah-isme/judge-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	SubmissionHandler *handler.SubmissionHandler
	JudgeHandler      *handler.JudgeHandler
	AssignmentHandler *handler.AssignmentHandler
	EvaluationHandler *handler.EvaluationHandler
	DB                *gorm.DB
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB))

	if deps.SubmissionHandler != nil {
		deps.SubmissionHandler.Register(api.Group("/submissions"))
	}

	if deps.JudgeHandler != nil {
		deps.JudgeHandler.Register(api.Group("/judges"))
		deps.JudgeHandler.RegisterModels(api.Group("/models"))
	}

	if deps.AssignmentHandler != nil {
		deps.AssignmentHandler.Register(api.Group("/assignments"))
	}

	if deps.EvaluationHandler != nil {
		deps.EvaluationHandler.Register(api.Group("/evaluations"))
	}

	app.Get("/metrics", observability.MetricsHandler())
}
