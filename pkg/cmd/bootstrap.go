// Package cmd provides common initialization for the command-line
// applications: flag definitions, settings resolution, and assembly of the
// assistant components.
package cmd

import (
	"context"
	"fmt"
	"log/slog"

	cli "github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/trace"

	"github.com/casali/flowpilot/pkg/chat"
	"github.com/casali/flowpilot/pkg/config"
	"github.com/casali/flowpilot/pkg/executor"
	"github.com/casali/flowpilot/pkg/llm"
	"github.com/casali/flowpilot/pkg/models"
	"github.com/casali/flowpilot/pkg/n8n"
	"github.com/casali/flowpilot/pkg/storage"
	"github.com/casali/flowpilot/pkg/usage"
	"github.com/casali/flowpilot/pkg/websearch"
)

// CommonFlags are the settings flags shared by every binary.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "storage-url",
			Usage:   "Key-value storage URL (file://path, redis://host:port/db, memory://)",
			Value:   "file://./data",
			Sources: cli.EnvVars("STORAGE_URL"),
		},
		&cli.StringFlag{
			Name:    "n8n-base-url",
			Usage:   "Base URL of the n8n instance",
			Sources: cli.EnvVars("N8N_BASE_URL"),
		},
		&cli.StringFlag{
			Name:    "n8n-api-key",
			Usage:   "API key for the n8n instance",
			Sources: cli.EnvVars("N8N_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "gateway-base-url",
			Usage:   "Base URL of the LLM gateway",
			Sources: cli.EnvVars("GATEWAY_BASE_URL"),
		},
		&cli.StringFlag{
			Name:    "gateway-api-key",
			Usage:   "API key for the LLM gateway",
			Sources: cli.EnvVars("GATEWAY_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "model",
			Usage:   "Model identifier sent to the gateway",
			Sources: cli.EnvVars("MODEL"),
		},
		&cli.StringFlag{
			Name:    "mode",
			Usage:   "Assistant mode (builder or helper)",
			Sources: cli.EnvVars("ASSISTANT_MODE"),
		},
		&cli.StringFlag{
			Name:    "search-api-key",
			Usage:   "Tavily API key enabling the web search tools",
			Sources: cli.EnvVars("SEARCH_API_KEY"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
	}
}

// NewStorage selects the key-value backend from the storage URL.
func NewStorage(storageURL string) storage.Storage {
	store, err := storage.NewFromURL(storageURL)
	if err != nil {
		panic(fmt.Errorf("failed to create storage: %w", err))
	}

	return store
}

// ResolveSettings loads persisted settings and applies flag overrides on
// top. Flags win because they are the operator's explicit word.
func ResolveSettings(ctx context.Context, store storage.Storage, command *cli.Command) (config.Settings, error) {
	settings, err := config.Load(ctx, store)
	if err != nil {
		return config.Settings{}, err
	}

	if v := command.String("n8n-base-url"); v != "" {
		settings.N8NBaseURL = v
	}

	if v := command.String("n8n-api-key"); v != "" {
		settings.N8NAPIKey = v
	}

	settings.N8NConnected = settings.N8NBaseURL != "" && settings.N8NAPIKey != ""

	if v := command.String("gateway-base-url"); v != "" {
		settings.GatewayBaseURL = v
	}

	if v := command.String("gateway-api-key"); v != "" {
		settings.GatewayAPIKey = v
	}

	if v := command.String("model"); v != "" {
		settings.Model = v
	}

	if v := command.String("mode"); v != "" {
		settings.AssistantMode = models.AssistantMode(v)
	}

	if v := command.String("search-api-key"); v != "" {
		settings.SearchAPIKey = v
	}

	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}

	return settings, nil
}

// Assistant bundles the wired components both binaries run on.
type Assistant struct {
	Settings     config.Settings
	Orchestrator *chat.Orchestrator
	Executor     *executor.Executor
	Aux          *websearch.AuxExecutor
	Gate         *usage.Gate
	N8N          *n8n.Client
	Gateway      *llm.Client
}

// BuildAssistant wires every component from resolved settings.
func BuildAssistant(settings config.Settings, store storage.Storage, logger *slog.Logger, tracer trace.Tracer) *Assistant {
	n8nClient := n8n.NewClient(n8n.Config{
		BaseURL: settings.N8NBaseURL,
		APIKey:  settings.N8NAPIKey,
	}, logger)

	gateway := llm.NewClient(llm.Config{
		BaseURL: settings.GatewayBaseURL,
		APIKey:  settings.GatewayAPIKey,
	}, logger)

	var aux *websearch.AuxExecutor
	if settings.SearchAPIKey != "" {
		aux = websearch.NewAuxExecutor(websearch.NewClient(websearch.Config{
			APIKey: settings.SearchAPIKey,
		}, logger))
	}

	entitlements := usage.EntitlementFunc(func(context.Context) bool {
		return settings.Premium
	})

	return &Assistant{
		Settings:     settings,
		Orchestrator: chat.NewOrchestrator(gateway, settings, logger, tracer),
		Executor:     executor.NewExecutor(n8nClient, logger, tracer),
		Aux:          aux,
		Gate:         usage.NewGate(store, entitlements, settings.DailyLimit, logger),
		N8N:          n8nClient,
		Gateway:      gateway,
	}
}
