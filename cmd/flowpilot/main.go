package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/casali/flowpilot/pkg/cmd"
	"github.com/casali/flowpilot/pkg/log"
	"github.com/casali/flowpilot/pkg/otelhelper"
)

func main() {
	logger := log.WithModule("cli")

	command := &cli.Command{
		Name:                  "flowpilot",
		Usage:                 "Chat with the n8n assistant from the terminal",
		EnableShellCompletion: true,
		Flags:                 cmd.CommonFlags(),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

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

			assistant := cmd.BuildAssistant(settings, store, logger, otelhelper.NoopTracer())

			repl := NewREPL(assistant, os.Stdin, os.Stdout, logger)

			return repl.Run(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
