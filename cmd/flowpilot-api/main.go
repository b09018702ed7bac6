package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/casali/flowpilot/pkg/cmd"
	"github.com/casali/flowpilot/pkg/log"
	"github.com/casali/flowpilot/pkg/otelhelper"
)

const defaultPort = 9230

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "flowpilot-api",
		Usage:                 "Serve the n8n assistant core over HTTP",
		EnableShellCompletion: true,
		Flags: append(cmd.CommonFlags(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP HTTP",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing FlowPilot API")

			store := cmd.NewStorage(command.String("storage-url"))

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close storage", "error", err)
				}
			}()

			settings, err := cmd.ResolveSettings(ctx, store, command)
			if err != nil {
				return err
			}

			tracer := otelhelper.NoopTracer()

			if command.Bool("tracing") {
				tracer, err = otelhelper.NewTracer(ctx, "flowpilot-api")
				if err != nil {
					return err
				}
			}

			assistant := cmd.BuildAssistant(settings, store, logger, tracer)

			api := NewAPI(logger, assistant)

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
