package server

import (
	"errors"
	"time"

	"github.com/svasthya/svasthya/internal/controllers"
	"github.com/svasthya/svasthya/internal/middlewares"
	"github.com/svasthya/svasthya/internal/version"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/rs/zerolog/log"
)

const serviceName = "svasthya"

type HTTPServerDependencies struct {
	AgentController *controllers.AgentController
}

func NewHTTPServer(deps HTTPServerDependencies) *fiber.App {
	router := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: errorHandler,
	})

	router.Use(requestid.New())
	router.Use(middlewares.RequestLoggerMiddleware())
	router.Use(recoverer.New())
	router.Use(helmet.New())
	router.Use(cors.New())

	router.Get("/health", func(c fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":    "ok",
			"message":   "Svasthya Backend is running",
			"service":   serviceName,
			"version":   version.GetVersion(),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	if deps.AgentController == nil {
		log.Fatal().Msg("Agent controller is nil, cannot register agent routes")
	}

	agent := router.Group("/api/agent")

	agent.Post("/chat", deps.AgentController.Chat)
	agent.Post("/analyze-report", deps.AgentController.AnalyzeReport)

	return router
}

func errorHandler(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := "Internal server error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
		message = fiberErr.Message
	}

	return c.Status(status).JSON(fiber.Map{"error": message})
}
