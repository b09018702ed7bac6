// Package main provides the FlowPilot API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/casali/flowpilot/pkg/cmd"
	"github.com/casali/flowpilot/pkg/web"
)

type API struct {
	logger    *slog.Logger
	assistant *cmd.Assistant
}

func NewAPI(logger *slog.Logger, assistant *cmd.Assistant) *API {
	return &API{
		logger:    logger,
		assistant: assistant,
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewHandlers(
		a.assistant.Orchestrator,
		a.assistant.Executor,
		a.assistant.Aux,
		a.assistant.Gate,
		a.logger,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("FlowPilot API")
	})

	app.Post("/chat", handlers.Chat)
	app.Get("/actions", handlers.Actions)
	app.Post("/actions/execute", handlers.Execute)
	app.Get("/usage", handlers.Usage)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
